package core

import (
	"time"

	"github.com/mikey/sms-risk-detector/internal/bayes"
	"github.com/mikey/sms-risk-detector/internal/nlp"
)

// Email represents an email message
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
	Headers map[string][]string
}

// CorpusRow is one raw row of a labeled training corpus
type CorpusRow struct {
	Line    int
	Label   string
	Message string
}

// LabeledExample is a normalized message with its class
type LabeledExample struct {
	Text  string
	Label bayes.Label
}

// ModelBundle holds the fitted vectorizer and classifier. A bundle is
// immutable once Train returns it and may be shared by any number of
// goroutines.
type ModelBundle struct {
	ID            string
	TrainedAt     time.Time
	Documents     int
	SpamDocuments int

	vectorizer *nlp.Vectorizer
	classifier *bayes.Model
}

// Fitted reports whether the bundle came out of a successful training run
func (b *ModelBundle) Fitted() bool {
	return b != nil && b.vectorizer != nil && b.classifier != nil
}

// Features returns the size of the learned vocabulary
func (b *ModelBundle) Features() int {
	if !b.Fitted() {
		return 0
	}
	return b.vectorizer.Dim()
}

// RiskVerdict is the outcome of scoring one message
type RiskVerdict struct {
	Tier        RiskTier `json:"risk"`
	Probability float64  `json:"spam_probability"`
	CleanedText string   `json:"cleaned_text"`
}

// AnalysisResult wraps a verdict with where and when it was produced
type AnalysisResult struct {
	Verdict      RiskVerdict
	Source       string
	BundleID     string
	ProcessingID string
	AnalyzedAt   time.Time
}

// Analysis result sources
const (
	SourceModel     = "model"
	SourceCache     = "cache"
	SourceWhitelist = "whitelist"
)

// CacheEntry is a stored verdict for a normalized message under one bundle
type CacheEntry struct {
	Key         string
	Tier        RiskTier
	Probability float64
	CleanedText string
	LastSeen    time.Time
	ExpiresAt   time.Time
}
