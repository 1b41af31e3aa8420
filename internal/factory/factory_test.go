package factory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mikey/sms-risk-detector/internal/adapters/cache"
	"github.com/mikey/sms-risk-detector/internal/adapters/filter"
	"github.com/mikey/sms-risk-detector/internal/config"
	"github.com/mikey/sms-risk-detector/internal/core"
	"github.com/mikey/sms-risk-detector/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T, settings map[string]any) *config.Config {
	t.Helper()
	v := config.NewEmptyViper()
	for k, val := range settings {
		v.Set(k, val)
	}
	return config.NewFromViper(v)
}

func writeCorpus(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("v1,v2\n")
	for i := 0; i < 5; i++ {
		b.WriteString("ham,see you at dinner tonight\n")
		b.WriteString("spam,win free money now\n")
	}
	path := filepath.Join(t.TempDir(), "spam.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestCorpusFactory(t *testing.T) {
	cfg := testConfig(t, map[string]any{"corpus.path": writeCorpus(t)})

	src, err := NewCorpusFactory(cfg, zap.NewNop()).CreateCorpusSource()
	require.NoError(t, err)

	rows, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 10)
}

func TestCorpusFactory_Unsupported(t *testing.T) {
	cfg := testConfig(t, map[string]any{"corpus.type": "parquet"})

	_, err := NewCorpusFactory(cfg, zap.NewNop()).CreateCorpusSource()
	assert.Error(t, err)
}

func TestModelFactory(t *testing.T) {
	cfg := testConfig(t, map[string]any{"corpus.path": writeCorpus(t)})
	logger := zap.NewNop()

	src, err := NewCorpusFactory(cfg, logger).CreateCorpusSource()
	require.NoError(t, err)

	mf := NewModelFactory(cfg, logger, utils.NewTextProcessor(logger), nil)
	bundle, err := mf.CreateModelBundle(context.Background(), mf.CreateTrainer(), src)
	require.NoError(t, err)
	assert.True(t, bundle.Fitted())
	assert.Equal(t, 5, bundle.SpamDocuments)
}

func TestModelFactory_TrainingFailure(t *testing.T) {
	cfg := testConfig(t, map[string]any{"corpus.path": filepath.Join(t.TempDir(), "missing.csv")})
	logger := zap.NewNop()

	src, err := NewCorpusFactory(cfg, logger).CreateCorpusSource()
	require.NoError(t, err)

	mf := NewModelFactory(cfg, logger, utils.NewTextProcessor(logger), nil)
	_, err = mf.CreateModelBundle(context.Background(), mf.CreateTrainer(), src)
	assert.Error(t, err)
}

func TestCacheFactory(t *testing.T) {
	cfg := testConfig(t, map[string]any{"cache.ttl": "30m"})
	f := NewCacheFactory(cfg, zap.NewNop())

	repo, err := f.CreateCacheRepository()
	require.NoError(t, err)
	mem, ok := repo.(*cache.MemoryCache)
	require.True(t, ok)
	mem.Stop()

	settings, err := f.CacheSettings()
	require.NoError(t, err)
	assert.True(t, settings.Enabled)
	assert.Equal(t, 30*time.Minute, settings.TTL)
}

func TestCacheFactory_Invalid(t *testing.T) {
	_, err := NewCacheFactory(testConfig(t, map[string]any{"cache.type": "redis"}), zap.NewNop()).CreateCacheRepository()
	assert.Error(t, err)

	_, err = NewCacheFactory(testConfig(t, map[string]any{"cache.ttl": "soon"}), zap.NewNop()).CacheSettings()
	assert.Error(t, err)
}

func TestFilterFactory(t *testing.T) {
	logger := zap.NewNop()
	service := core.NewRiskService(nil, nil, nil, nil, core.CacheSettings{}, nil, nil, logger)

	for filterType, want := range map[string]any{
		"http":    &filter.HTTPFilter{},
		"postfix": &filter.PostfixFilter{},
		"cli":     &filter.CliFilter{},
	} {
		cfg := testConfig(t, map[string]any{"server.filter_type": filterType})
		f := NewFilterFactory(cfg, logger, service, utils.NewTextProcessor(logger), prometheus.NewRegistry())

		got, err := f.CreateMessageFilter()
		require.NoError(t, err, filterType)
		assert.IsType(t, want, got, filterType)
	}

	cfg := testConfig(t, map[string]any{"server.filter_type": "milter"})
	_, err := NewFilterFactory(cfg, logger, service, utils.NewTextProcessor(logger), nil).CreateMessageFilter()
	assert.Error(t, err)
}
