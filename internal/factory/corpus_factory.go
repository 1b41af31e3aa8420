package factory

import (
	"fmt"

	"github.com/mikey/sms-risk-detector/internal/adapters/corpus"
	"github.com/mikey/sms-risk-detector/internal/config"
	"github.com/mikey/sms-risk-detector/internal/core"
	"go.uber.org/zap"
)

// CorpusFactory creates the training corpus source based on configuration
type CorpusFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCorpusFactory creates a new corpus factory
func NewCorpusFactory(cfg *config.Config, logger *zap.Logger) *CorpusFactory {
	return &CorpusFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCorpusSource creates a corpus source based on the configuration
func (f *CorpusFactory) CreateCorpusSource() (core.CorpusSource, error) {
	c := f.cfg.GetCorpus()

	switch c.Type {
	case "csv":
		return corpus.NewCSVSource(c.Path, c.Encoding, c.LabelColumn, c.MessageColumn, f.logger)
	case "sqlite", "sqlite3":
		dsn := c.DSN
		if dsn == "" {
			dsn = c.Path
		}
		return corpus.NewSQLSource("sqlite3", dsn, c.Query, f.logger)
	case "mysql":
		return corpus.NewSQLSource("mysql", c.DSN, c.Query, f.logger)
	default:
		return nil, fmt.Errorf("unsupported corpus type: %s", c.Type)
	}
}
