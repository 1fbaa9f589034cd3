package handlers

import (
	"context"
	"fmt"

	"titlechain/application/dto"
	"titlechain/application/ports"
	"titlechain/application/queries"
	"titlechain/application/queries/bus"
	"titlechain/domain/core/aggregates"
	"titlechain/domain/core/valueobjects"
	"titlechain/domain/interaction"
	domainservices "titlechain/domain/services"
	pkgerrors "titlechain/pkg/errors"
)

// CanvasQueryHandler answers read-only questions about live canvases.
// Reads take the canvas lock so they never see a half-applied gesture.
type CanvasQueryHandler struct {
	store ports.CanvasStore
}

// NewCanvasQueryHandler creates a new canvas query handler
func NewCanvasQueryHandler(store ports.CanvasStore) *CanvasQueryHandler {
	return &CanvasQueryHandler{store: store}
}

// Queries lists the query types this handler serves
func (h *CanvasQueryHandler) Queries() []bus.Query {
	return []bus.Query{
		queries.GetCanvasQuery{},
		queries.ListCanvasesQuery{},
		queries.GetLineageQuery{},
	}
}

// Handle implements bus.QueryHandler
func (h *CanvasQueryHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	switch q := query.(type) {
	case queries.GetCanvasQuery:
		return h.getCanvas(ctx, q)
	case queries.ListCanvasesQuery:
		return h.listCanvases(ctx)
	case queries.GetLineageQuery:
		return h.lineage(ctx, q)
	}
	return nil, fmt.Errorf("unsupported query %T", query)
}

func (h *CanvasQueryHandler) getCanvas(ctx context.Context, q queries.GetCanvasQuery) (dto.CanvasSnapshot, error) {
	var snapshot dto.CanvasSnapshot
	err := h.store.WithSession(ctx, aggregates.CanvasID(q.CanvasID), func(s *interaction.Session) error {
		snapshot = dto.SnapshotOf(s)
		return nil
	})
	return snapshot, err
}

func (h *CanvasQueryHandler) listCanvases(ctx context.Context) ([]dto.CanvasSummary, error) {
	ids := h.store.List(ctx)
	out := make([]dto.CanvasSummary, 0, len(ids))
	for _, id := range ids {
		err := h.store.WithSession(ctx, id, func(s *interaction.Session) error {
			out = append(out, dto.SummaryOf(s))
			return nil
		})
		// evicted between List and WithSession
		if pkgerrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (h *CanvasQueryHandler) lineage(ctx context.Context, q queries.GetLineageQuery) ([]domainservices.LineageStep, error) {
	nodeID, err := valueobjects.NewNodeIDFromString(q.NodeID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	var steps []domainservices.LineageStep
	err = h.store.WithSession(ctx, aggregates.CanvasID(q.CanvasID), func(s *interaction.Session) error {
		var err error
		steps, err = domainservices.Lineage(s.Canvas(), nodeID, q.MaxDepth)
		return err
	})
	return steps, err
}
