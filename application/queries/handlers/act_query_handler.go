package handlers

import (
	"context"
	"fmt"

	"titlechain/application/queries"
	"titlechain/application/queries/bus"
	"titlechain/application/services"
)

// ActQueryHandler serves the available-acts list from the catalog snapshot
type ActQueryHandler struct {
	catalog *services.ActCatalogService
}

// NewActQueryHandler creates a new act query handler
func NewActQueryHandler(catalog *services.ActCatalogService) *ActQueryHandler {
	return &ActQueryHandler{catalog: catalog}
}

// Queries lists the query types this handler serves
func (h *ActQueryHandler) Queries() []bus.Query {
	return []bus.Query{
		queries.ListActsQuery{},
		queries.GetActQuery{},
	}
}

// Handle implements bus.QueryHandler
func (h *ActQueryHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	switch q := query.(type) {
	case queries.ListActsQuery:
		return h.catalog.List(ctx, q.Query, q.Limit)
	case queries.GetActQuery:
		return h.catalog.Find(ctx, q.NumeroActe)
	}
	return nil, fmt.Errorf("unsupported query %T", query)
}
