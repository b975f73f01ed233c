//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"FinChat/pkg/config"
	"FinChat/pkg/server"
)

var infraSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideRedisClient,
	ProvideCache,
	ProvideKafkaProducer,
	ProvideErrorDigest,
)

var serviceSet = wire.NewSet(
	ProvideLLM,
	ProvideClassifier,
	ProvideTranslator,
	ProvideAnalyst,
	ProvideNewsClient,
	ProvideKeyMetricsClient,
	ProvideFDAClient,
	ProvideValuationClient,
	ProvideEarningsClient,
)

var usecaseSet = wire.NewSet(
	ProvideQueryLogStore,
	ProvideQueryLogPublisher,
	ProvideQueryLogUseCase,
	ProvideValuationUseCase,
	ProvideEarningsUseCase,
	ProvideHandlers,
	ProvideDispatcher,
	ProvideSessionStore,
	ProvideChatUseCase,
	ProvideLimiter,
)

var httpSet = wire.NewSet(
	ProvideChatHandler,
	ProvideResearchHandler,
	ProvideHTTPServer,
	ProvideApp,
)

// InitializeApp wires up all dependencies and returns the application with its cleanup.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(infraSet, serviceSet, usecaseSet, httpSet)
	return nil, nil, nil
}
