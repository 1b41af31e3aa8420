package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/sms-risk-detector/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func entry(key string, ttl time.Duration) *core.CacheEntry {
	now := time.Now()
	return &core.CacheEntry{
		Key:         key,
		Tier:        core.Suspicious,
		Probability: 0.52,
		CleanedText: "free entry in  num  a wkly comp",
		LastSeen:    now,
		ExpiresAt:   now.Add(ttl),
	}
}

// exercise runs the same contract checks against any repository
func exercise(t *testing.T, repo core.CacheRepository) {
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Set(ctx, entry("live", time.Hour)))
	got, err := repo.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "live", got.Key)
	assert.Equal(t, core.Suspicious, got.Tier)
	assert.Equal(t, 0.52, got.Probability)
	assert.Equal(t, "free entry in  num  a wkly comp", got.CleanedText)

	// overwrite
	updated := entry("live", time.Hour)
	updated.Tier = core.HighRisk
	require.NoError(t, repo.Set(ctx, updated))
	got, err = repo.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, core.HighRisk, got.Tier)

	require.NoError(t, repo.Set(ctx, entry("stale", -time.Minute)))
	_, err = repo.Get(ctx, "stale")
	assert.Error(t, err)

	require.NoError(t, repo.Cleanup(ctx))
	require.NoError(t, repo.Delete(ctx, "live"))
	_, err = repo.Get(ctx, "live")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()

	exercise(t, c)
}

func TestMemoryCache_CleanupRemovesExpired(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), 0)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("a", -time.Second)))
	require.NoError(t, c.Set(ctx, entry("b", time.Hour)))

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrExpired)

	require.NoError(t, c.Cleanup(ctx))
	assert.Equal(t, 1, c.Len())
}

func TestSQLiteCache(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop(), time.Hour)
	require.NoError(t, err)
	defer c.Stop()

	exercise(t, c)
}
