package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/mikey/sms-risk-detector/internal/config"
	"github.com/mikey/sms-risk-detector/internal/core"
	"github.com/mikey/sms-risk-detector/internal/utils"
	"go.uber.org/zap"
)

// ModelFactory builds the trainer and fits the initial model bundle
type ModelFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	metrics       core.MetricsRecorder
}

// NewModelFactory creates a new model factory
func NewModelFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor, metrics core.MetricsRecorder) *ModelFactory {
	return &ModelFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
		metrics:       metrics,
	}
}

// CreateTrainer creates a trainer with the configured model options
func (f *ModelFactory) CreateTrainer() *core.Trainer {
	return core.NewTrainer(f.cfg.GetTrainOptions(), f.textProcessor, f.logger)
}

// CreateModelBundle trains the bundle the service starts with
func (f *ModelFactory) CreateModelBundle(ctx context.Context, trainer *core.Trainer, src core.CorpusSource) (*core.ModelBundle, error) {
	start := time.Now()
	bundle, err := trainer.Train(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to train initial model: %w", err)
	}
	if f.metrics != nil {
		f.metrics.ObserveTraining(bundle.Documents, bundle.Features(), time.Since(start))
	}
	return bundle, nil
}
