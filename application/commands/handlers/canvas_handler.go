package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"titlechain/application/commands"
	"titlechain/application/commands/bus"
	"titlechain/application/dto"
	"titlechain/application/ports"
	"titlechain/application/services"
	"titlechain/domain/core/aggregates"
	"titlechain/domain/core/valueobjects"
	"titlechain/domain/events"
	"titlechain/domain/interaction"
	domainservices "titlechain/domain/services"
	pkgerrors "titlechain/pkg/errors"
)

// CanvasHandler executes every canvas command. Each mutation runs under
// the canvas lock held by the store; the domain events it produced are
// published after the lock is released.
type CanvasHandler struct {
	store     ports.CanvasStore
	catalog   *services.ActCatalogService
	layout    ports.LayoutSource
	resolver  *domainservices.ChainResolver
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewCanvasHandler creates a new canvas command handler
func NewCanvasHandler(
	store ports.CanvasStore,
	catalog *services.ActCatalogService,
	layout ports.LayoutSource,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *CanvasHandler {
	return &CanvasHandler{
		store:     store,
		catalog:   catalog,
		layout:    layout,
		resolver:  domainservices.NewChainResolver(),
		publisher: publisher,
		logger:    logger,
	}
}

// Commands lists the command types this handler serves
func (h *CanvasHandler) Commands() []bus.Command {
	return []bus.Command{
		commands.CreateCanvasCommand{},
		commands.DeleteCanvasCommand{},
		commands.PlaceActCommand{},
		commands.DropActCommand{},
		commands.MoveSubBlockCommand{},
		commands.BeginDragCommand{},
		commands.DragToCommand{},
		commands.EndDragCommand{},
		commands.RemoveNodeCommand{},
		commands.ConnectNodesCommand{},
		commands.RemoveConnectionCommand{},
		commands.RemoveConnectionsByKindCommand{},
		commands.StartConnectCommand{},
		commands.ClickNodeCommand{},
		commands.CancelConnectCommand{},
		commands.WheelCommand{},
		commands.ClearCanvasCommand{},
	}
}

// Handle implements bus.CommandHandler
func (h *CanvasHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	switch c := cmd.(type) {
	case commands.CreateCanvasCommand:
		return h.create(ctx)
	case commands.DeleteCanvasCommand:
		return nil, h.store.Delete(ctx, aggregates.CanvasID(c.CanvasID))
	case commands.PlaceActCommand:
		return h.placeAct(ctx, c)
	case commands.DropActCommand:
		return h.drop(ctx, c)
	case commands.MoveSubBlockCommand:
		return h.moveSubBlock(ctx, c)
	case commands.BeginDragCommand:
		return h.beginDrag(ctx, c)
	case commands.DragToCommand:
		return h.dragTo(ctx, c)
	case commands.EndDragCommand:
		return h.mutate(ctx, c.CanvasID, func(s *interaction.Session) (*dto.CanvasUpdate, error) {
			moved := s.EndDrag()
			return &dto.CanvasUpdate{Moved: &moved}, nil
		})
	case commands.RemoveNodeCommand:
		return h.removeNode(ctx, c)
	case commands.ConnectNodesCommand:
		return h.connect(ctx, c)
	case commands.RemoveConnectionCommand:
		return h.mutate(ctx, c.CanvasID, func(s *interaction.Session) (*dto.CanvasUpdate, error) {
			if err := s.RemoveConnection(c.Index); err != nil {
				return nil, err
			}
			removed := 1
			return &dto.CanvasUpdate{Removed: &removed}, nil
		})
	case commands.RemoveConnectionsByKindCommand:
		return h.removeConnectionsByKind(ctx, c)
	case commands.StartConnectCommand:
		return h.startConnect(ctx, c)
	case commands.ClickNodeCommand:
		return h.clickNode(ctx, c)
	case commands.CancelConnectCommand:
		return h.mutate(ctx, c.CanvasID, func(s *interaction.Session) (*dto.CanvasUpdate, error) {
			s.CancelConnect()
			return nil, nil
		})
	case commands.WheelCommand:
		return h.mutate(ctx, c.CanvasID, func(s *interaction.Session) (*dto.CanvasUpdate, error) {
			s.Wheel(c.DeltaY, c.Modifier)
			return nil, nil
		})
	case commands.ClearCanvasCommand:
		return h.mutate(ctx, c.CanvasID, func(s *interaction.Session) (*dto.CanvasUpdate, error) {
			s.Clear()
			return nil, nil
		})
	}
	return nil, fmt.Errorf("%w: %T", bus.ErrHandlerNotFound, cmd)
}

func (h *CanvasHandler) create(ctx context.Context) (*dto.CanvasUpdate, error) {
	canvas := aggregates.NewCanvas(h.layout.Current())
	session := interaction.NewSession(canvas, h.resolver, nil)

	update := &dto.CanvasUpdate{Canvas: dto.SnapshotOf(session)}
	pending := canvas.GetUncommittedEvents()
	canvas.MarkEventsAsCommitted()

	if err := h.store.Add(ctx, session); err != nil {
		return nil, err
	}
	h.publish(ctx, pending)

	h.logger.Info("Canvas created", zap.String("canvasID", canvas.ID().String()))
	return update, nil
}

func (h *CanvasHandler) placeAct(ctx context.Context, cmd commands.PlaceActCommand) (*dto.CanvasUpdate, error) {
	at, err := valueobjects.NewPosition(cmd.X, cmd.Y)
	if err != nil {
		return nil, err
	}
	act, err := h.catalog.Find(ctx, cmd.NumeroActe)
	if err != nil {
		return nil, err
	}
	catalog, err := h.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	return h.mutate(ctx, cmd.CanvasID, func(s *interaction.Session) (*dto.CanvasUpdate, error) {
		s.SetCatalog(catalog)
		result, err := s.PlaceAct(act, at)
		if err != nil {
			return nil, err
		}
		h.logPlacement(cmd.CanvasID, act.NumeroActe, result)
		return &dto.CanvasUpdate{Placement: dto.PlacementOf(result)}, nil
	})
}

func (h *CanvasHandler) drop(ctx context.Context, cmd commands.DropActCommand) (*dto.CanvasUpdate, error) {
	pointer, err := valueobjects.NewPosition(cmd.PointerX, cmd.PointerY)
	if err != nil {
		return nil, err
	}
	origin, err := valueobjects.NewPosition(cmd.OriginX, cmd.OriginY)
	if err != nil {
		return nil, err
	}
	catalog, err := h.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	payload := unwrapPayload(cmd.Payload)

	return h.mutate(ctx, cmd.CanvasID, func(s *interaction.Session) (*dto.CanvasUpdate, error) {
		s.SetCatalog(catalog)
		result, err := s.Drop(payload, pointer, origin)
		if err != nil {
			return nil, err
		}
		if result.Ignored {
			h.logger.Debug("Ignored drop without a usable act", zap.String("canvasID", cmd.CanvasID))
			return &dto.CanvasUpdate{Placement: &dto.PlacementDTO{Ignored: true, Antecedents: []string{}, Missing: []string{}}}, nil
		}
		h.logPlacement(cmd.CanvasID, "", result.Placement)
		return &dto.CanvasUpdate{Placement: dto.PlacementOf(result.Placement)}, nil
	})
}

func (h *CanvasHandler) moveSubBlock(ctx context.Context, cmd commands.MoveSubBlockCommand) (*dto.CanvasUpdate, error) {
	nodeID, err := parseNodeID(cmd.NodeID)
	if err != nil {
		return nil, err
	}
	block, err := valueobjects.ParseBlockKind(cmd.Block)
	if err != nil {
		return nil, err
	}
	to, err := valueobjects.NewPosition(cmd.X, cmd.Y)
	if err != nil {
		return nil, err
	}

	return h.mutate(ctx, cmd.CanvasID, func(s *interaction.Session) (*dto.CanvasUpdate, error) {
		if err := s.MoveSubBlock(nodeID, block, to); err != nil {
			return nil, err
		}
		moved := true
		return &dto.CanvasUpdate{Moved: &moved}, nil
	})
}

func (h *CanvasHandler) beginDrag(ctx context.Context, cmd commands.BeginDragCommand) (*dto.CanvasUpdate, error) {
	nodeID, err := parseNodeID(cmd.NodeID)
	if err != nil {
		return nil, err
	}
	block, err := valueobjects.ParseBlockKind(cmd.Block)
	if err != nil {
		return nil, err
	}
	pointer, err := valueobjects.NewPosition(cmd.X, cmd.Y)
	if err != nil {
		return nil, err
	}

	return h.mutate(ctx, cmd.CanvasID, func(s *interaction.Session) (*dto.CanvasUpdate, error) {
		return nil, s.BeginDrag(nodeID, block, pointer)
	})
}

func (h *CanvasHandler) dragTo(ctx context.Context, cmd commands.DragToCommand) (*dto.CanvasUpdate, error) {
	pointer, err := valueobjects.NewPosition(cmd.X, cmd.Y)
	if err != nil {
		return nil, err
	}

	return h.mutate(ctx, cmd.CanvasID, func(s *interaction.Session) (*dto.CanvasUpdate, error) {
		moved, err := s.DragTo(pointer)
		if err != nil {
			return nil, err
		}
		return &dto.CanvasUpdate{Moved: &moved}, nil
	})
}

func (h *CanvasHandler) removeNode(ctx context.Context, cmd commands.RemoveNodeCommand) (*dto.CanvasUpdate, error) {
	nodeID, err := parseNodeID(cmd.NodeID)
	if err != nil {
		return nil, err
	}

	return h.mutate(ctx, cmd.CanvasID, func(s *interaction.Session) (*dto.CanvasUpdate, error) {
		cascaded, err := s.RemoveNode(nodeID)
		if err != nil {
			return nil, err
		}
		return &dto.CanvasUpdate{Removed: &cascaded}, nil
	})
}

func (h *CanvasHandler) connect(ctx context.Context, cmd commands.ConnectNodesCommand) (*dto.CanvasUpdate, error) {
	from, err := parseNodeID(cmd.From)
	if err != nil {
		return nil, err
	}
	to, err := parseNodeID(cmd.To)
	if err != nil {
		return nil, err
	}

	return h.mutate(ctx, cmd.CanvasID, func(s *interaction.Session) (*dto.CanvasUpdate, error) {
		created, err := s.Connect(from, to)
		if err != nil {
			return nil, err
		}
		return &dto.CanvasUpdate{Connected: &created}, nil
	})
}

func (h *CanvasHandler) removeConnectionsByKind(ctx context.Context, cmd commands.RemoveConnectionsByKindCommand) (*dto.CanvasUpdate, error) {
	kind, err := valueobjects.ParseConnectionKind(cmd.Kind)
	if err != nil {
		return nil, err
	}

	return h.mutate(ctx, cmd.CanvasID, func(s *interaction.Session) (*dto.CanvasUpdate, error) {
		removed := s.RemoveConnectionsByKind(kind)
		return &dto.CanvasUpdate{Removed: &removed}, nil
	})
}

func (h *CanvasHandler) startConnect(ctx context.Context, cmd commands.StartConnectCommand) (*dto.CanvasUpdate, error) {
	nodeID, err := parseNodeID(cmd.NodeID)
	if err != nil {
		return nil, err
	}

	return h.mutate(ctx, cmd.CanvasID, func(s *interaction.Session) (*dto.CanvasUpdate, error) {
		_, err := s.StartConnect(nodeID)
		return nil, err
	})
}

func (h *CanvasHandler) clickNode(ctx context.Context, cmd commands.ClickNodeCommand) (*dto.CanvasUpdate, error) {
	nodeID, err := parseNodeID(cmd.NodeID)
	if err != nil {
		return nil, err
	}

	return h.mutate(ctx, cmd.CanvasID, func(s *interaction.Session) (*dto.CanvasUpdate, error) {
		created, err := s.ClickNode(nodeID)
		if err != nil {
			return nil, err
		}
		return &dto.CanvasUpdate{Connected: &created}, nil
	})
}

// mutate runs fn under the canvas lock and attaches a fresh snapshot to
// its result. Events are published even when fn fails part way, since the
// canvas may already have changed.
func (h *CanvasHandler) mutate(ctx context.Context, canvasID string, fn func(*interaction.Session) (*dto.CanvasUpdate, error)) (*dto.CanvasUpdate, error) {
	var (
		update  *dto.CanvasUpdate
		pending []events.DomainEvent
	)

	err := h.store.WithSession(ctx, aggregates.CanvasID(canvasID), func(s *interaction.Session) error {
		u, err := fn(s)

		canvas := s.Canvas()
		pending = canvas.GetUncommittedEvents()
		canvas.MarkEventsAsCommitted()

		if err != nil {
			return err
		}
		if u == nil {
			u = &dto.CanvasUpdate{}
		}
		u.Canvas = dto.SnapshotOf(s)
		update = u
		return nil
	})

	h.publish(ctx, pending)
	if err != nil {
		return nil, err
	}
	return update, nil
}

func (h *CanvasHandler) publish(ctx context.Context, pending []events.DomainEvent) {
	if len(pending) == 0 {
		return
	}
	if err := h.publisher.PublishBatch(ctx, pending); err != nil {
		h.logger.Warn("Failed to publish canvas events",
			zap.Int("count", len(pending)),
			zap.Error(err),
		)
	}
}

func (h *CanvasHandler) logPlacement(canvasID, numero string, result domainservices.PlacementResult) {
	if len(result.Missing) > 0 {
		h.logger.Debug("Antecedents not found in record store",
			zap.String("canvasID", canvasID),
			zap.Strings("missing", result.Missing),
		)
	}
	h.logger.Debug("Act placed",
		zap.String("canvasID", canvasID),
		zap.String("numeroActe", numero),
		zap.String("nodeID", result.RootID.String()),
		zap.Bool("placed", result.Placed),
		zap.Int("antecedents", len(result.Antecedents)),
		zap.Int("links", result.Links),
	)
}

func parseNodeID(s string) (valueobjects.NodeID, error) {
	id, err := valueobjects.NewNodeIDFromString(s)
	if err != nil {
		return valueobjects.NodeID{}, pkgerrors.NewValidationError(err.Error())
	}
	return id, nil
}

// unwrapPayload accepts the drag payload either as a JSON object or as the
// JSON-encoded string a browser dataTransfer hands over
func unwrapPayload(raw json.RawMessage) []byte {
	if len(raw) > 0 && raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err == nil {
			return []byte(text)
		}
	}
	return raw
}
