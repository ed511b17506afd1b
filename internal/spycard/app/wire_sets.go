//go:build wireinject

package app

import "github.com/google/wire"

var spyCardProviderSet = wire.NewSet(
	newSpyCardTelemetry,
	newSpyCardDataRedis,
	newSpyCardMessageProvider,
	newSpyCardDB,
	newSpyCardRepository,
	newSpyCardCatalog,
	newSpyCardFormula,
	newSpyCardJudge,
	newSpyCardMetricsRegistry,
	newSpyCardServiceMetrics,
	newSpyCardStores,
	newSpyCardServices,
	newSpyCardHTTPMux,
	newSpyCardHTTPServer,
	newSpyCardServerApp,
)
