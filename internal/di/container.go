package di

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/sms-risk-detector/internal/config"
	"github.com/mikey/sms-risk-detector/internal/core"
	"github.com/mikey/sms-risk-detector/internal/factory"
	"github.com/mikey/sms-risk-detector/internal/logging"
	"github.com/mikey/sms-risk-detector/internal/metrics"
	"github.com/mikey/sms-risk-detector/internal/ports"
	"github.com/mikey/sms-risk-detector/internal/utils"
	"github.com/mikey/sms-risk-detector/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideMetrics(container); err != nil {
		return nil, err
	}
	if err := provideCore(container); err != nil {
		return nil, err
	}

	// Register cache repository and settings
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheSettings, error) {
		return f.CacheSettings()
	}); err != nil {
		return nil, err
	}

	// Register whitelist checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *whitelist.Checker {
		domains := cfg.GetStringSlice("spam.whitelisted_domains")
		if len(domains) > 0 {
			logger.Info("Loaded whitelisted domains", zap.Strings("domains", domains))
		}
		return whitelist.NewChecker(domains, logger)
	}); err != nil {
		return nil, err
	}

	// Register risk service
	if err := container.Provide(core.NewRiskService); err != nil {
		return nil, err
	}

	// Register message filter
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FilterFactory) (ports.MessageFilter, error) {
		return f.CreateMessageFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideMetrics registers the Prometheus registry and the recorder fed by the service
func provideMetrics(container *dig.Container) error {
	if err := container.Provide(func() (*prometheus.Registry, error) {
		reg := prometheus.NewRegistry()
		if err := reg.Register(collectors.NewGoCollector()); err != nil {
			return nil, err
		}
		if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
			return nil, err
		}
		return reg, nil
	}); err != nil {
		return err
	}
	if err := container.Provide(func(reg *prometheus.Registry) prometheus.Gatherer {
		return reg
	}); err != nil {
		return err
	}
	return container.Provide(func(reg *prometheus.Registry) (core.MetricsRecorder, error) {
		return metrics.NewRecorder(reg)
	})
}

// provideCore registers the text processor, corpus source, trainer and the
// initial model bundle. Training runs once, when the bundle is first resolved.
func provideCore(container *dig.Container) error {
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}
	if err := container.Provide(factory.NewCorpusFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewModelFactory); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.CorpusFactory) (core.CorpusSource, error) {
		return f.CreateCorpusSource()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.ModelFactory) *core.Trainer {
		return f.CreateTrainer()
	}); err != nil {
		return err
	}
	return container.Provide(func(f *factory.ModelFactory, trainer *core.Trainer, src core.CorpusSource) (*core.ModelBundle, error) {
		return f.CreateModelBundle(context.Background(), trainer, src)
	})
}
