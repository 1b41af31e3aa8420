package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/sms-risk-detector/internal/nlp"
	"github.com/mikey/sms-risk-detector/internal/whitelist"
	"go.uber.org/zap"
)

// CacheSettings controls verdict caching in RiskService
type CacheSettings struct {
	Enabled bool
	TTL     time.Duration
}

// RiskService is the core service for message risk scoring. It owns the
// current model bundle and swaps it atomically on retrain.
type RiskService struct {
	bundle    atomic.Pointer[ModelBundle]
	trainer   *Trainer
	source    CorpusSource
	cache     CacheRepository
	cacheCfg  CacheSettings
	whitelist *whitelist.Checker
	metrics   MetricsRecorder
	logger    *zap.Logger
}

// NewRiskService creates a new risk service around an already trained bundle
func NewRiskService(
	bundle *ModelBundle,
	trainer *Trainer,
	source CorpusSource,
	cache CacheRepository,
	cacheCfg CacheSettings,
	checker *whitelist.Checker,
	metrics MetricsRecorder,
	logger *zap.Logger,
) *RiskService {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	if cache == nil {
		cacheCfg.Enabled = false
	}

	s := &RiskService{
		trainer:   trainer,
		source:    source,
		cache:     cache,
		cacheCfg:  cacheCfg,
		whitelist: checker,
		metrics:   metrics,
		logger:    logger,
	}
	s.bundle.Store(bundle)
	return s
}

// Bundle returns the bundle currently used for scoring
func (s *RiskService) Bundle() *ModelBundle {
	return s.bundle.Load()
}

// Retrain fits a new bundle from the configured corpus and makes it current.
// The previous bundle stays in use if training fails.
func (s *RiskService) Retrain(ctx context.Context) (*ModelBundle, error) {
	start := time.Now()
	bundle, err := s.trainer.Train(ctx, s.source)
	if err != nil {
		s.logger.Error("Retrain failed, keeping current model", zap.Error(err))
		return nil, err
	}
	s.metrics.ObserveTraining(bundle.Documents, bundle.Features(), time.Since(start))

	old := s.bundle.Swap(bundle)
	fields := []zap.Field{zap.String("bundle_id", bundle.ID)}
	if old != nil {
		fields = append(fields, zap.String("previous_bundle_id", old.ID))
	}
	s.logger.Info("Model bundle replaced", fields...)
	return bundle, nil
}

// AnalyzeMessage scores one raw message
func (s *RiskService) AnalyzeMessage(ctx context.Context, text string) (*AnalysisResult, error) {
	start := time.Now()
	bundle := s.bundle.Load()
	if !bundle.Fitted() {
		return nil, ErrNotFitted
	}

	cleaned := nlp.Normalize(text)
	key := cacheKey(bundle.ID, cleaned)

	if s.cacheCfg.Enabled {
		if entry, err := s.cache.Get(ctx, key); err == nil {
			s.logger.Debug("Cache hit for message", zap.String("key", key))
			s.metrics.ObserveCacheHit()
			result := s.newResult(bundle, SourceCache, RiskVerdict{
				Tier:        entry.Tier,
				Probability: entry.Probability,
				CleanedText: cleaned,
			})
			s.metrics.ObserveVerdict(entry.Tier, SourceCache, time.Since(start))
			return result, nil
		}
	}

	verdict, err := predictCleaned(cleaned, bundle)
	if err != nil {
		return nil, err
	}

	if s.cacheCfg.Enabled {
		now := time.Now()
		entry := &CacheEntry{
			Key:         key,
			Tier:        verdict.Tier,
			Probability: verdict.Probability,
			CleanedText: cleaned,
			LastSeen:    now,
			ExpiresAt:   now.Add(s.cacheCfg.TTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	s.metrics.ObserveVerdict(verdict.Tier, SourceModel, time.Since(start))
	return s.newResult(bundle, SourceModel, *verdict), nil
}

// AnalyzeEmail scores the subject and body of an email. Senders from
// whitelisted domains are reported Safe without scoring.
func (s *RiskService) AnalyzeEmail(ctx context.Context, email *Email) (*AnalysisResult, error) {
	if s.whitelist.IsWhitelisted(email.From) {
		s.logger.Info("Skipping risk check for whitelisted domain",
			zap.String("sender", email.From),
			zap.String("action", "whitelist_bypass"))

		bundle := s.bundle.Load()
		result := s.newResult(bundle, SourceWhitelist, RiskVerdict{Tier: Safe})
		s.metrics.ObserveVerdict(Safe, SourceWhitelist, 0)
		return result, nil
	}

	text := email.Body
	if email.Subject != "" {
		text = email.Subject + "\n" + email.Body
	}
	return s.AnalyzeMessage(ctx, text)
}

// IsHighRisk reports whether a result should be treated as spam
func (s *RiskService) IsHighRisk(result *AnalysisResult) bool {
	return result.Verdict.Tier == HighRisk
}

func (s *RiskService) newResult(bundle *ModelBundle, source string, verdict RiskVerdict) *AnalysisResult {
	result := &AnalysisResult{
		Verdict:      verdict,
		Source:       source,
		ProcessingID: uuid.NewString(),
		AnalyzedAt:   time.Now(),
	}
	if bundle != nil {
		result.BundleID = bundle.ID
	}
	return result
}

// cacheKey scopes a normalized message to the bundle that scored it.
// Whitespace layout does not change the feature vector, so it is folded.
func cacheKey(bundleID, cleaned string) string {
	sum := sha256.Sum256([]byte(strings.Join(strings.Fields(cleaned), " ")))
	return bundleID + ":" + hex.EncodeToString(sum[:])
}
