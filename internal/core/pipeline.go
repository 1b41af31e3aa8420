package core

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/sms-risk-detector/internal/bayes"
	"github.com/mikey/sms-risk-detector/internal/nlp"
	"github.com/mikey/sms-risk-detector/internal/utils"
	"go.uber.org/zap"
)

// Corpus label values
const (
	LabelHam  = "ham"
	LabelSpam = "spam"
)

// TrainOptions configures vectorizer and classifier fitting
type TrainOptions struct {
	Vectorizer nlp.VectorizerOptions
	Alpha      float64
}

// DefaultTrainOptions returns 1-3 grams, min document frequency 3, alpha 1
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		Vectorizer: nlp.DefaultVectorizerOptions(),
		Alpha:      1.0,
	}
}

// Trainer fits model bundles from a corpus source
type Trainer struct {
	opts          TrainOptions
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
}

// NewTrainer creates a new trainer
func NewTrainer(opts TrainOptions, textProcessor *utils.TextProcessor, logger *zap.Logger) *Trainer {
	return &Trainer{
		opts:          opts,
		textProcessor: textProcessor,
		logger:        logger,
	}
}

// Train loads the corpus, normalizes every message and fits the vectorizer
// and classifier. No bundle is returned on error.
func (t *Trainer) Train(ctx context.Context, src CorpusSource) (*ModelBundle, error) {
	start := time.Now()

	rows, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus %s: %w", src.Name(), err)
	}

	examples, err := t.labelRows(rows)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	texts := make([]string, len(examples))
	labels := make([]bayes.Label, len(examples))
	spam := 0
	for i, ex := range examples {
		texts[i] = ex.Text
		labels[i] = ex.Label
		if ex.Label == bayes.Spam {
			spam++
		}
	}

	vectorizer, err := nlp.FitVectorizer(texts, t.opts.Vectorizer)
	if err != nil {
		return nil, fmt.Errorf("failed to fit vectorizer: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	classifier, err := bayes.Fit(vectorizer.TransformAll(texts), labels, t.opts.Alpha)
	if err != nil {
		return nil, fmt.Errorf("failed to fit classifier: %w", err)
	}

	bundle := &ModelBundle{
		ID:            uuid.NewString(),
		TrainedAt:     time.Now(),
		Documents:     len(examples),
		SpamDocuments: spam,
		vectorizer:    vectorizer,
		classifier:    classifier,
	}

	t.logger.Info("Model trained",
		zap.String("bundle_id", bundle.ID),
		zap.String("corpus", src.Name()),
		zap.Int("documents", bundle.Documents),
		zap.Int("spam_documents", bundle.SpamDocuments),
		zap.Int("features", vectorizer.Dim()),
		zap.Duration("elapsed", time.Since(start)))
	t.logProfile(rows, labels)

	return bundle, nil
}

// labelRows maps textual labels onto classes and normalizes messages
func (t *Trainer) labelRows(rows []CorpusRow) ([]LabeledExample, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: corpus has no rows", ErrCorpusFormat)
	}

	examples := make([]LabeledExample, len(rows))
	for i, row := range rows {
		var label bayes.Label
		switch row.Label {
		case LabelHam:
			label = bayes.Ham
		case LabelSpam:
			label = bayes.Spam
		default:
			return nil, fmt.Errorf("%w: unknown label %q on line %d", ErrCorpusFormat, row.Label, row.Line)
		}
		examples[i] = LabeledExample{Text: nlp.Normalize(row.Message), Label: label}
	}
	return examples, nil
}

// logProfile reports average message statistics per class. The statistics
// are descriptive only and never enter the feature vectors.
func (t *Trainer) logProfile(rows []CorpusRow, labels []bayes.Label) {
	if t.textProcessor == nil || !t.logger.Core().Enabled(zap.DebugLevel) {
		return
	}

	var sums [2]utils.MessageStats
	var counts [2]int
	for i, row := range rows {
		s := t.textProcessor.Stats(row.Message)
		c := labels[i]
		sums[c].Length += s.Length
		sums[c].Digits += s.Digits
		sums[c].Links += s.Links
		counts[c]++
	}

	for c, name := range []string{LabelHam, LabelSpam} {
		n := float64(counts[c])
		if n == 0 {
			continue
		}
		t.logger.Debug("Corpus profile",
			zap.String("class", name),
			zap.Float64("avg_length", float64(sums[c].Length)/n),
			zap.Float64("avg_digits", float64(sums[c].Digits)/n),
			zap.Float64("avg_links", float64(sums[c].Links)/n))
	}
}

// Predict scores one raw message with a fitted bundle. Any string, including
// the empty string, is valid input.
func Predict(raw string, bundle *ModelBundle) (*RiskVerdict, error) {
	return predictCleaned(nlp.Normalize(raw), bundle)
}

func predictCleaned(cleaned string, bundle *ModelBundle) (*RiskVerdict, error) {
	if !bundle.Fitted() {
		return nil, ErrNotFitted
	}

	p, err := bundle.classifier.PredictSpamProbability(bundle.vectorizer.Transform(cleaned))
	if err != nil {
		return nil, fmt.Errorf("failed to score message: %w", err)
	}

	tier, err := ClassifyRisk(p)
	if err != nil {
		return nil, err
	}

	return &RiskVerdict{
		Tier:        tier,
		Probability: math.Round(p*100) / 100,
		CleanedText: cleaned,
	}, nil
}
