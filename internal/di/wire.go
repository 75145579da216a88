//go:build wireinject
// +build wireinject

package di

import (
	"MonteSim/internal/usecase"
	"MonteSim/pkg/config"
	"MonteSim/pkg/server"

	"github.com/google/wire"
)

var fetchSet = wire.NewSet(
	ProvideLogger,
	ProvideRegistry,
	ProvideMetrics,

	// Infrastructure clients
	ProvideCache,
	ProvideLimiter,
	ProvideHTTPClient,
	ProvideClickHouseClient,
	ProvidePriceStore,

	ProvideFetcher,
	ProvideVisualizer,
	ProvideRunner,
)

// InitializeApp wires up the server with all its dependencies.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		fetchSet,
		ProvideBaseParams,
		ProvideQueue,
		ProvideScheduler,

		// Run event fan-out
		ProvideKafkaProducer,
		ProvideRunPublisher,
		ProvideHub,

		ProvideAPIHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil, nil
}

// InitializeRunner wires a runner for one-shot CLI runs.
func InitializeRunner(cfg *config.Config) (*usecase.SimulationRunner, func(), error) {
	wire.Build(fetchSet)
	return nil, nil, nil
}
