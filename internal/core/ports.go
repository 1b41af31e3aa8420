package core

import (
	"context"
	"time"
)

// CorpusSource supplies labeled rows for training
type CorpusSource interface {
	// Load reads every row of the corpus
	Load(ctx context.Context) ([]CorpusRow, error)

	// Name identifies the source in logs
	Name() string
}

// CacheRepository defines the interface for caching verdicts
type CacheRepository interface {
	// Get retrieves a cached entry by key
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// MetricsRecorder receives pipeline measurements
type MetricsRecorder interface {
	ObserveVerdict(tier RiskTier, source string, elapsed time.Duration)
	ObserveTraining(documents, features int, elapsed time.Duration)
	ObserveCacheHit()
}

type noopRecorder struct{}

func (noopRecorder) ObserveVerdict(RiskTier, string, time.Duration) {}
func (noopRecorder) ObserveTraining(int, int, time.Duration)       {}
func (noopRecorder) ObserveCacheHit()                              {}
