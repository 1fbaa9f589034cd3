package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"titlechain/application/commands"
	"titlechain/application/commands/bus"
	"titlechain/application/dto"
	"titlechain/application/queries"
	querybus "titlechain/application/queries/bus"
	"titlechain/pkg/common"
	pkgerrors "titlechain/pkg/errors"
)

// CanvasHandler handles canvas HTTP requests. Every mutating route answers
// with the canvas snapshot after the change.
type CanvasHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewCanvasHandler creates a new canvas handler
func NewCanvasHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *CanvasHandler {
	return &CanvasHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errorHandler,
		logger:     logger,
	}
}

// PlaceActRequest is the body of POST /canvases/{canvasID}/acts
type PlaceActRequest struct {
	NumeroActe string  `json:"numero_acte"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
}

// DropRequest is the body of POST /canvases/{canvasID}/drop
type DropRequest struct {
	Payload json.RawMessage `json:"payload"`
	Pointer point           `json:"pointer"`
	Origin  point           `json:"origin"`
}

// DragStartRequest is the body of POST /canvases/{canvasID}/drag/start
type DragStartRequest struct {
	NodeID string  `json:"node_id"`
	Block  string  `json:"block"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// ConnectRequest is the body of POST /canvases/{canvasID}/connections
type ConnectRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// NodeRequest names a node for the connection tool
type NodeRequest struct {
	NodeID string `json:"node_id"`
}

// ZoomRequest is one wheel tick
type ZoomRequest struct {
	DeltaY   float64 `json:"delta_y"`
	Modifier bool    `json:"modifier"`
}

// CreateCanvas handles POST /canvases
func (h *CanvasHandler) CreateCanvas(w http.ResponseWriter, r *http.Request) {
	update, err := h.send(r, commands.CreateCanvasCommand{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.logger.Info("Canvas created", zap.String("canvas_id", update.Canvas.ID))
	common.RespondJSON(w, http.StatusCreated, update.Canvas)
}

// ListCanvases handles GET /canvases
func (h *CanvasHandler) ListCanvases(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListCanvasesQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetCanvas handles GET /canvases/{canvasID}
func (h *CanvasHandler) GetCanvas(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetCanvasQuery{CanvasID: canvasID(r)})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// DeleteCanvas handles DELETE /canvases/{canvasID}
func (h *CanvasHandler) DeleteCanvas(w http.ResponseWriter, r *http.Request) {
	if _, err := h.commandBus.Send(r.Context(), commands.DeleteCanvasCommand{CanvasID: canvasID(r)}); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PlaceAct handles POST /canvases/{canvasID}/acts
func (h *CanvasHandler) PlaceAct(w http.ResponseWriter, r *http.Request) {
	var req PlaceActRequest
	if err := decode(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respond(w, r, commands.PlaceActCommand{
		CanvasID:   canvasID(r),
		NumeroActe: req.NumeroActe,
		X:          req.X,
		Y:          req.Y,
	})
}

// Drop handles POST /canvases/{canvasID}/drop
func (h *CanvasHandler) Drop(w http.ResponseWriter, r *http.Request) {
	var req DropRequest
	if err := decode(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respond(w, r, commands.DropActCommand{
		CanvasID: canvasID(r),
		Payload:  req.Payload,
		PointerX: req.Pointer.X,
		PointerY: req.Pointer.Y,
		OriginX:  req.Origin.X,
		OriginY:  req.Origin.Y,
	})
}

// MoveSubBlock handles PUT /canvases/{canvasID}/nodes/{nodeID}/blocks/{block}
func (h *CanvasHandler) MoveSubBlock(w http.ResponseWriter, r *http.Request) {
	var req point
	if err := decode(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respond(w, r, commands.MoveSubBlockCommand{
		CanvasID: canvasID(r),
		NodeID:   chi.URLParam(r, "nodeID"),
		Block:    chi.URLParam(r, "block"),
		X:        req.X,
		Y:        req.Y,
	})
}

// DragStart handles POST /canvases/{canvasID}/drag/start
func (h *CanvasHandler) DragStart(w http.ResponseWriter, r *http.Request) {
	var req DragStartRequest
	if err := decode(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respond(w, r, commands.BeginDragCommand{
		CanvasID: canvasID(r),
		NodeID:   req.NodeID,
		Block:    req.Block,
		X:        req.X,
		Y:        req.Y,
	})
}

// DragMove handles POST /canvases/{canvasID}/drag/move
func (h *CanvasHandler) DragMove(w http.ResponseWriter, r *http.Request) {
	var req point
	if err := decode(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respond(w, r, commands.DragToCommand{CanvasID: canvasID(r), X: req.X, Y: req.Y})
}

// DragEnd handles POST /canvases/{canvasID}/drag/end
func (h *CanvasHandler) DragEnd(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, commands.EndDragCommand{CanvasID: canvasID(r)})
}

// RemoveNode handles DELETE /canvases/{canvasID}/nodes/{nodeID}
func (h *CanvasHandler) RemoveNode(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, commands.RemoveNodeCommand{
		CanvasID: canvasID(r),
		NodeID:   chi.URLParam(r, "nodeID"),
	})
}

// Lineage handles GET /canvases/{canvasID}/nodes/{nodeID}/lineage
func (h *CanvasHandler) Lineage(w http.ResponseWriter, r *http.Request) {
	maxDepth := 0
	if raw := r.URL.Query().Get("max_depth"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.errors.Handle(w, r, pkgerrors.NewValidationError("max_depth must be an integer"))
			return
		}
		maxDepth = n
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetLineageQuery{
		CanvasID: canvasID(r),
		NodeID:   chi.URLParam(r, "nodeID"),
		MaxDepth: maxDepth,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Connect handles POST /canvases/{canvasID}/connections
func (h *CanvasHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if err := decode(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respond(w, r, commands.ConnectNodesCommand{CanvasID: canvasID(r), From: req.From, To: req.To})
}

// RemoveConnection handles DELETE /canvases/{canvasID}/connections/{index}
func (h *CanvasHandler) RemoveConnection(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("connection index must be an integer"))
		return
	}
	h.respond(w, r, commands.RemoveConnectionCommand{CanvasID: canvasID(r), Index: index})
}

// RemoveConnectionsByKind handles DELETE /canvases/{canvasID}/connections?kind=
func (h *CanvasHandler) RemoveConnectionsByKind(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, commands.RemoveConnectionsByKindCommand{
		CanvasID: canvasID(r),
		Kind:     r.URL.Query().Get("kind"),
	})
}

// ConnectStart handles POST /canvases/{canvasID}/connect/start
func (h *CanvasHandler) ConnectStart(w http.ResponseWriter, r *http.Request) {
	var req NodeRequest
	if err := decode(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respond(w, r, commands.StartConnectCommand{CanvasID: canvasID(r), NodeID: req.NodeID})
}

// ConnectClick handles POST /canvases/{canvasID}/connect/click
func (h *CanvasHandler) ConnectClick(w http.ResponseWriter, r *http.Request) {
	var req NodeRequest
	if err := decode(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respond(w, r, commands.ClickNodeCommand{CanvasID: canvasID(r), NodeID: req.NodeID})
}

// ConnectCancel handles POST /canvases/{canvasID}/connect/cancel
func (h *CanvasHandler) ConnectCancel(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, commands.CancelConnectCommand{CanvasID: canvasID(r)})
}

// Zoom handles POST /canvases/{canvasID}/zoom
func (h *CanvasHandler) Zoom(w http.ResponseWriter, r *http.Request) {
	var req ZoomRequest
	if err := decode(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respond(w, r, commands.WheelCommand{CanvasID: canvasID(r), DeltaY: req.DeltaY, Modifier: req.Modifier})
}

// Clear handles POST /canvases/{canvasID}/clear
func (h *CanvasHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, commands.ClearCanvasCommand{CanvasID: canvasID(r)})
}

// send dispatches a canvas command and unwraps the update it returns
func (h *CanvasHandler) send(r *http.Request, cmd bus.Command) (*dto.CanvasUpdate, error) {
	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		return nil, err
	}
	update, ok := result.(*dto.CanvasUpdate)
	if !ok || update == nil {
		return nil, pkgerrors.NewInternalError("unexpected command result")
	}
	return update, nil
}

func (h *CanvasHandler) respond(w http.ResponseWriter, r *http.Request, cmd bus.Command) {
	update, err := h.send(r, cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, update)
}

func canvasID(r *http.Request) string {
	return chi.URLParam(r, "canvasID")
}
