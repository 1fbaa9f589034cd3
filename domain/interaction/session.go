package interaction

import (
	"math"
	"time"

	"titlechain/domain/core/aggregates"
	"titlechain/domain/core/entities"
	"titlechain/domain/core/valueobjects"
	"titlechain/domain/services"
	pkgerrors "titlechain/pkg/errors"
)

// ConnectMode is the state of the manual connection tool
type ConnectMode string

const (
	ModeIdle  ConnectMode = "idle"
	ModeArmed ConnectMode = "armed"
)

// ConnectState is a snapshot of the connection tool
type ConnectState struct {
	Mode    ConnectMode         `json:"mode"`
	Pending valueobjects.NodeID `json:"pending,omitempty"`
}

// DragState is a snapshot of the active sub-block drag
type DragState struct {
	NodeID valueobjects.NodeID    `json:"node_id"`
	Block  valueobjects.BlockKind `json:"block"`
}

type activeDrag struct {
	nodeID       valueobjects.NodeID
	block        valueobjects.BlockKind
	pointerStart valueobjects.Position
	blockStart   valueobjects.Position
}

// DropResult reports the outcome of a drop on the canvas
type DropResult struct {
	// Ignored is true when the payload did not carry a usable act
	Ignored   bool
	Placement services.PlacementResult
	Position  valueobjects.Position
}

// Session translates pointer gestures into canvas operations. It owns the
// canvas plus the view state around it: zoom, the single active drag and
// the connection tool. A Session is not safe for concurrent use.
type Session struct {
	canvas   *aggregates.Canvas
	resolver *services.ChainResolver
	catalog  services.ActCatalog

	zoom         float64
	drag         *activeDrag
	pending      *valueobjects.NodeID
	lastActivity time.Time
}

// NewSession wraps a canvas. catalog is the act snapshot used to resolve
// antecedents; it may be replaced later with SetCatalog.
func NewSession(canvas *aggregates.Canvas, resolver *services.ChainResolver, catalog services.ActCatalog) *Session {
	if resolver == nil {
		resolver = services.NewChainResolver()
	}
	return &Session{
		canvas:       canvas,
		resolver:     resolver,
		catalog:      catalog,
		zoom:         1.0,
		lastActivity: time.Now(),
	}
}

// Canvas returns the underlying graph model
func (s *Session) Canvas() *aggregates.Canvas {
	return s.canvas
}

// SetCatalog swaps the act snapshot used for auto-chaining
func (s *Session) SetCatalog(catalog services.ActCatalog) {
	s.catalog = catalog
}

// Zoom returns the current zoom factor
func (s *Session) Zoom() float64 {
	return s.zoom
}

// LastActivity returns when the session last handled a gesture
func (s *Session) LastActivity() time.Time {
	return s.lastActivity
}

// Touch records activity without changing state
func (s *Session) Touch() {
	s.lastActivity = time.Now()
}

// PlaceAct places an act at a canvas position and resolves its antecedents
func (s *Session) PlaceAct(act entities.Act, at valueobjects.Position) (services.PlacementResult, error) {
	s.Touch()
	return s.resolver.Place(s.canvas, s.catalog, act, at)
}

// Drop handles an act card dropped from the available-acts list. pointer
// and origin are in screen pixels; the canvas position is (pointer-origin)/zoom.
// Payloads that are not a JSON act are ignored.
func (s *Session) Drop(payload []byte, pointer, origin valueobjects.Position) (DropResult, error) {
	s.Touch()

	act, ok := entities.DecodeActPayload(payload)
	if !ok {
		return DropResult{Ignored: true}, nil
	}

	dx, dy := pointer.Sub(origin)
	at, err := valueobjects.NewPosition(dx/s.zoom, dy/s.zoom)
	if err != nil {
		return DropResult{}, err
	}

	placement, err := s.resolver.Place(s.canvas, s.catalog, act, at)
	if err != nil {
		return DropResult{}, err
	}
	return DropResult{Placement: placement, Position: at}, nil
}

// MoveSubBlock sets a sub-block position directly
func (s *Session) MoveSubBlock(nodeID valueobjects.NodeID, block valueobjects.BlockKind, to valueobjects.Position) error {
	s.Touch()
	return s.canvas.MoveSubBlock(nodeID, block, to)
}

// BeginDrag starts dragging one sub-block from the given pointer position.
// Any drag already in progress is replaced.
func (s *Session) BeginDrag(nodeID valueobjects.NodeID, block valueobjects.BlockKind, pointer valueobjects.Position) error {
	s.Touch()

	node, err := s.canvas.Node(nodeID)
	if err != nil {
		return err
	}
	start, err := node.BlockPosition(block)
	if err != nil {
		return err
	}

	s.drag = &activeDrag{
		nodeID:       nodeID,
		block:        block,
		pointerStart: pointer,
		blockStart:   start,
	}
	return nil
}

// DragTo moves the dragged sub-block so it follows the pointer. Pointer
// deltas are divided by the zoom factor. moved is false when no drag is active.
func (s *Session) DragTo(pointer valueobjects.Position) (moved bool, err error) {
	s.Touch()
	if s.drag == nil {
		return false, nil
	}

	dx, dy := pointer.Sub(s.drag.pointerStart)
	to, err := s.drag.blockStart.Translate(dx/s.zoom, dy/s.zoom)
	if err != nil {
		return false, err
	}

	if err := s.canvas.MoveSubBlock(s.drag.nodeID, s.drag.block, to); err != nil {
		if pkgerrors.IsNotFound(err) {
			s.drag = nil
		}
		return false, err
	}
	return true, nil
}

// EndDrag releases the active drag. It reports whether one was active.
func (s *Session) EndDrag() bool {
	s.Touch()
	active := s.drag != nil
	s.drag = nil
	return active
}

// Drag returns the active drag, if any
func (s *Session) Drag() (DragState, bool) {
	if s.drag == nil {
		return DragState{}, false
	}
	return DragState{NodeID: s.drag.nodeID, Block: s.drag.block}, true
}

// StartConnect arms the connection tool on a node. Starting again on the
// armed node disarms it.
func (s *Session) StartConnect(nodeID valueobjects.NodeID) (ConnectState, error) {
	s.Touch()

	if s.pending != nil && s.pending.Equals(nodeID) {
		s.pending = nil
		return s.ConnectState(), nil
	}
	if !s.canvas.HasNode(nodeID) {
		return s.ConnectState(), pkgerrors.NewNotFoundError("node")
	}

	id := nodeID
	s.pending = &id
	return s.ConnectState(), nil
}

// ClickNode completes a pending connection on another node's info block.
// The tool is disarmed whatever the outcome. created reports whether a
// manual connection was added.
func (s *Session) ClickNode(nodeID valueobjects.NodeID) (created bool, err error) {
	s.Touch()
	if s.pending == nil {
		return false, nil
	}

	from := *s.pending
	s.pending = nil

	if from.Equals(nodeID) {
		return false, nil
	}
	return s.canvas.AddConnection(from, nodeID, valueobjects.ConnectionManual)
}

// CancelConnect disarms the connection tool
func (s *Session) CancelConnect() {
	s.Touch()
	s.pending = nil
}

// ConnectState returns the connection tool state
func (s *Session) ConnectState() ConnectState {
	if s.pending == nil {
		return ConnectState{Mode: ModeIdle}
	}
	return ConnectState{Mode: ModeArmed, Pending: *s.pending}
}

// Wheel applies one scroll tick. Zoom only changes while the modifier key
// is held: scrolling up zooms in, down zooms out, by ZoomStep within
// [MinZoom, MaxZoom].
func (s *Session) Wheel(deltaY float64, modifier bool) float64 {
	s.Touch()
	if !modifier || deltaY == 0 {
		return s.zoom
	}

	step := s.canvas.Config().ZoomStep
	if deltaY > 0 {
		step = -step
	}
	return s.SetZoom(s.zoom + step)
}

// SetZoom sets the zoom factor, clamped to the configured bounds and
// rounded to one decimal
func (s *Session) SetZoom(z float64) float64 {
	cfg := s.canvas.Config()
	if math.IsNaN(z) {
		return s.zoom
	}
	z = math.Max(cfg.MinZoom, math.Min(cfg.MaxZoom, z))
	s.zoom = math.Round(z*10) / 10
	return s.zoom
}

// RemoveNode removes a node and drops any drag or pending connection
// that referenced it
func (s *Session) RemoveNode(nodeID valueobjects.NodeID) (int, error) {
	s.Touch()

	removed, err := s.canvas.RemoveNode(nodeID)
	if err != nil {
		return 0, err
	}
	if s.drag != nil && s.drag.nodeID.Equals(nodeID) {
		s.drag = nil
	}
	if s.pending != nil && s.pending.Equals(nodeID) {
		s.pending = nil
	}
	return removed, nil
}

// Connect adds a manual connection directly
func (s *Session) Connect(from, to valueobjects.NodeID) (bool, error) {
	s.Touch()
	return s.canvas.AddConnection(from, to, valueobjects.ConnectionManual)
}

// RemoveConnection removes one connection by index
func (s *Session) RemoveConnection(index int) error {
	s.Touch()
	return s.canvas.RemoveConnection(index)
}

// RemoveConnectionsByKind removes all connections of one kind
func (s *Session) RemoveConnectionsByKind(kind valueobjects.ConnectionKind) int {
	s.Touch()
	return s.canvas.RemoveConnectionsByKind(kind)
}

// Clear empties the canvas and resets the drag and connection tools.
// Zoom is kept.
func (s *Session) Clear() {
	s.Touch()
	s.canvas.Clear()
	s.drag = nil
	s.pending = nil
}
