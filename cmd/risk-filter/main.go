package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/sms-risk-detector/internal/core"
	"github.com/mikey/sms-risk-detector/internal/di"
	"github.com/mikey/sms-risk-detector/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	messageFilter ports.MessageFilter,
	service *core.RiskService,
	cacheRepo core.CacheRepository,
) error {
	defer logger.Sync()

	bundle := service.Bundle()
	logger.Info("Model ready",
		zap.String("bundle_id", bundle.ID),
		zap.Int("documents", bundle.Documents),
		zap.Int("features", bundle.Features()))

	if err := messageFilter.Start(); err != nil {
		logger.Error("Failed to start filter", zap.Error(err))
		return err
	}

	// SIGHUP retrains from the configured corpus, SIGINT/SIGTERM shut down
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for sig := range sigCh {
		if sig == syscall.SIGHUP {
			logger.Info("Retraining on SIGHUP")
			if _, err := service.Retrain(context.Background()); err != nil {
				logger.Warn("Retrain failed", zap.Error(err))
			}
			continue
		}
		break
	}
	signal.Stop(sigCh)
	logger.Info("Shutting down...")

	if err := messageFilter.Stop(); err != nil {
		logger.Error("Failed to stop filter", zap.Error(err))
	}

	// Stop the cache cleanup task and close its database
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
