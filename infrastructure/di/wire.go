//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"titlechain/application/ports"
	"titlechain/infrastructure/config"
	"titlechain/infrastructure/persistence/memory"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideCache,
	wire.Bind(new(ports.Cache), new(*InMemoryCache)),
	ProvideActRepository,
	ProvideActCatalog,
	ProvideLayoutWatcher,
	ProvideLayoutSource,
	ProvideCanvasStore,
	wire.Bind(new(ports.CanvasStore), new(*memory.CanvasStore)),
	ProvideEventPublisher,
	ProvideMetrics,
	ProvideTracer,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideRateLimiter,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container. The returned cleanup
// stops background goroutines and flushes metrics.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
