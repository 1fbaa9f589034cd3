package di

import (
	"go.uber.org/zap"

	"titlechain/application/commands/bus"
	querybus "titlechain/application/queries/bus"
	"titlechain/application/services"
	"titlechain/infrastructure/config"
	"titlechain/infrastructure/persistence/memory"
	"titlechain/interfaces/http/rest"
	"titlechain/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Store      *memory.CanvasStore
	Catalog    *services.ActCatalogService
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Metrics    *observability.Metrics
	Tracer     *observability.Tracer
	Router     *rest.Router
}
