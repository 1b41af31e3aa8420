package factory

import (
	"fmt"
	"os"

	"github.com/mikey/sms-risk-detector/internal/adapters/filter"
	"github.com/mikey/sms-risk-detector/internal/config"
	"github.com/mikey/sms-risk-detector/internal/core"
	"github.com/mikey/sms-risk-detector/internal/ports"
	"github.com/mikey/sms-risk-detector/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// FilterFactory creates message filters based on configuration
type FilterFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	service       *core.RiskService
	textProcessor *utils.TextProcessor
	gatherer      prometheus.Gatherer
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.RiskService,
	textProcessor *utils.TextProcessor,
	gatherer prometheus.Gatherer,
) *FilterFactory {
	return &FilterFactory{
		cfg:           cfg,
		logger:        logger,
		service:       service,
		textProcessor: textProcessor,
		gatherer:      gatherer,
	}
}

// CreateMessageFilter creates a message filter based on the configuration
func (f *FilterFactory) CreateMessageFilter() (ports.MessageFilter, error) {
	server := f.cfg.GetServer()

	switch server.FilterType {
	case "http":
		return filter.NewHTTPFilter(
			f.service,
			f.textProcessor,
			f.logger,
			server.ListenAddress,
			server.MaxBodySize,
			f.gatherer,
		), nil
	case "postfix":
		return filter.NewPostfixFilter(f.service, f.textProcessor, f.logger, server), nil
	case "cli":
		return filter.NewCliFilter(f.service, f.logger, os.Stdout, f.cfg.GetBool("cli.verbose"))
	default:
		return nil, fmt.Errorf("unsupported filter type: %s", server.FilterType)
	}
}
