package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	corpus := cfg.GetCorpus()
	assert.Equal(t, "csv", corpus.Type)
	assert.Equal(t, "spam.csv", corpus.Path)
	assert.Equal(t, "latin-1", corpus.Encoding)
	assert.Equal(t, "v1", corpus.LabelColumn)
	assert.Equal(t, "v2", corpus.MessageColumn)

	opts := cfg.GetTrainOptions()
	assert.Equal(t, 1, opts.Vectorizer.NGramMin)
	assert.Equal(t, 3, opts.Vectorizer.NGramMax)
	assert.Equal(t, 3, opts.Vectorizer.MinDF)
	assert.True(t, opts.Vectorizer.SkipStopWords)
	assert.Equal(t, 1.0, opts.Alpha)

	server := cfg.GetServer()
	assert.Equal(t, "http", server.FilterType)
	assert.Equal(t, "X-Risk-Level", server.RiskHeader)
	assert.Equal(t, 65536, server.MaxBodySize)

	ttl, err := cfg.GetDuration("cache.ttl")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
corpus:
  path: /data/sms.csv
  encoding: utf-8
model:
  min_df: 5
server:
  filter_type: postfix
`), 0o644))

	cfg, err := NewFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/sms.csv", cfg.GetCorpus().Path)
	assert.Equal(t, "utf-8", cfg.GetCorpus().Encoding)
	assert.Equal(t, 5, cfg.GetTrainOptions().Vectorizer.MinDF)
	assert.Equal(t, 3, cfg.GetTrainOptions().Vectorizer.NGramMax)
	assert.Equal(t, "postfix", cfg.GetServer().FilterType)
}

func TestNewFromFile_Missing(t *testing.T) {
	_, err := NewFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("RISK_DETECTOR_CORPUS_PATH", "/env/corpus.csv")

	cfg, err := NewFromFile(filepath.Join(writeEmpty(t), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/env/corpus.csv", cfg.GetCorpus().Path)
}

func writeEmpty(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{}\n"), 0o644))
	return dir
}
