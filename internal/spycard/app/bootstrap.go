//go:build !wireinject

package app

import (
	"context"
	"log/slog"

	"github.com/park285/spycard-go/internal/common/bootstrap"
	"github.com/park285/spycard-go/internal/spycard/config"
)

// Initialize 는 Spy Card 애플리케이션 의존성을 초기화하고 ServerApp을 반환한다.
func Initialize(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*bootstrap.ServerApp, func(), error) {
	tracerProvider, cleanupTelemetry, err := newSpyCardTelemetry(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	msgProvider, err := newSpyCardMessageProvider()
	if err != nil {
		cleanupTelemetry()
		return nil, nil, err
	}

	formula, err := newSpyCardFormula(cfg)
	if err != nil {
		cleanupTelemetry()
		return nil, nil, err
	}

	dataValkeyClient, cleanupDataValkey, err := newSpyCardDataRedis(ctx, cfg, logger)
	if err != nil {
		cleanupTelemetry()
		return nil, nil, err
	}

	stores := newSpyCardStores(cfg, dataValkeyClient, logger)

	db, cleanupDB, err := newSpyCardDB(ctx, cfg, logger)
	if err != nil {
		cleanupDataValkey()
		cleanupTelemetry()
		return nil, nil, err
	}

	repository, err := newSpyCardRepository(ctx, db)
	if err != nil {
		cleanupDB()
		cleanupDataValkey()
		cleanupTelemetry()
		return nil, nil, err
	}

	analyzer, err := newSpyCardJudge(ctx, cfg, msgProvider, logger)
	if err != nil {
		cleanupDB()
		cleanupDataValkey()
		cleanupTelemetry()
		return nil, nil, err
	}

	catalogProvider, err := newSpyCardCatalog(ctx, cfg, logger)
	if err != nil {
		cleanupDB()
		cleanupDataValkey()
		cleanupTelemetry()
		return nil, nil, err
	}

	registry := newSpyCardMetricsRegistry()
	metrics := newSpyCardServiceMetrics(registry)

	services := newSpyCardServices(cfg, repository, catalogProvider, formula, analyzer, stores, metrics, logger)

	httpMux := newSpyCardHTTPMux(cfg, services, catalogProvider, repository, dataValkeyClient, registry, msgProvider, logger)
	httpServer := newSpyCardHTTPServer(cfg, httpMux)

	serverApp := newSpyCardServerApp(cfg, logger, httpServer, catalogProvider, tracerProvider)

	cleanup := func() {
		cleanupDB()
		cleanupDataValkey()
		cleanupTelemetry()
	}

	return serverApp, cleanup, nil
}
