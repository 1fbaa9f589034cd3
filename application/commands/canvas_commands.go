package commands

import (
	"encoding/json"

	"titlechain/pkg/utils"
)

// Every canvas command names its target canvas and is validated with the
// struct tags below before it reaches a handler.

// CreateCanvasCommand opens a new empty canvas
type CreateCanvasCommand struct{}

// Validate implements bus.Command
func (c CreateCanvasCommand) Validate() error { return nil }

// DeleteCanvasCommand discards a canvas and everything on it
type DeleteCanvasCommand struct {
	CanvasID string `json:"canvas_id" validate:"required,uuid"`
}

// Validate implements bus.Command
func (c DeleteCanvasCommand) Validate() error { return utils.ValidateStruct(c) }

// PlaceActCommand places an act from the record store at a canvas position
type PlaceActCommand struct {
	CanvasID   string  `json:"canvas_id" validate:"required,uuid"`
	NumeroActe string  `json:"numero_acte" validate:"required,max=100"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
}

// Validate implements bus.Command
func (c PlaceActCommand) Validate() error { return utils.ValidateStruct(c) }

// DropActCommand places an act carried by a drag payload. Pointer and
// origin are screen coordinates.
type DropActCommand struct {
	CanvasID string          `json:"canvas_id" validate:"required,uuid"`
	Payload  json.RawMessage `json:"payload"`
	PointerX float64         `json:"pointer_x"`
	PointerY float64         `json:"pointer_y"`
	OriginX  float64         `json:"origin_x"`
	OriginY  float64         `json:"origin_y"`
}

// Validate implements bus.Command. The payload itself is not validated;
// unusable payloads are ignored by the handler.
func (c DropActCommand) Validate() error { return utils.ValidateStruct(c) }

// MoveSubBlockCommand sets one sub-block's position
type MoveSubBlockCommand struct {
	CanvasID string  `json:"canvas_id" validate:"required,uuid"`
	NodeID   string  `json:"node_id" validate:"required,uuid"`
	Block    string  `json:"block" validate:"required,oneof=buyer info seller"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Validate implements bus.Command
func (c MoveSubBlockCommand) Validate() error { return utils.ValidateStruct(c) }

// BeginDragCommand grabs a sub-block at a screen pointer position
type BeginDragCommand struct {
	CanvasID string  `json:"canvas_id" validate:"required,uuid"`
	NodeID   string  `json:"node_id" validate:"required,uuid"`
	Block    string  `json:"block" validate:"required,oneof=buyer info seller"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Validate implements bus.Command
func (c BeginDragCommand) Validate() error { return utils.ValidateStruct(c) }

// DragToCommand moves the grabbed sub-block with the pointer
type DragToCommand struct {
	CanvasID string  `json:"canvas_id" validate:"required,uuid"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Validate implements bus.Command
func (c DragToCommand) Validate() error { return utils.ValidateStruct(c) }

// EndDragCommand releases the grabbed sub-block
type EndDragCommand struct {
	CanvasID string `json:"canvas_id" validate:"required,uuid"`
}

// Validate implements bus.Command
func (c EndDragCommand) Validate() error { return utils.ValidateStruct(c) }

// RemoveNodeCommand deletes a node and its connections
type RemoveNodeCommand struct {
	CanvasID string `json:"canvas_id" validate:"required,uuid"`
	NodeID   string `json:"node_id" validate:"required,uuid"`
}

// Validate implements bus.Command
func (c RemoveNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// ConnectNodesCommand draws a manual connection between two nodes
type ConnectNodesCommand struct {
	CanvasID string `json:"canvas_id" validate:"required,uuid"`
	From     string `json:"from" validate:"required,uuid"`
	To       string `json:"to" validate:"required,uuid"`
}

// Validate implements bus.Command
func (c ConnectNodesCommand) Validate() error { return utils.ValidateStruct(c) }

// RemoveConnectionCommand deletes the connection at an index
type RemoveConnectionCommand struct {
	CanvasID string `json:"canvas_id" validate:"required,uuid"`
	Index    int    `json:"index" validate:"gte=0"`
}

// Validate implements bus.Command
func (c RemoveConnectionCommand) Validate() error { return utils.ValidateStruct(c) }

// RemoveConnectionsByKindCommand deletes every connection of one kind
type RemoveConnectionsByKindCommand struct {
	CanvasID string `json:"canvas_id" validate:"required,uuid"`
	Kind     string `json:"kind" validate:"required,oneof=auto-chain manual"`
}

// Validate implements bus.Command
func (c RemoveConnectionsByKindCommand) Validate() error { return utils.ValidateStruct(c) }

// StartConnectCommand arms, or disarms, the connection tool on a node
type StartConnectCommand struct {
	CanvasID string `json:"canvas_id" validate:"required,uuid"`
	NodeID   string `json:"node_id" validate:"required,uuid"`
}

// Validate implements bus.Command
func (c StartConnectCommand) Validate() error { return utils.ValidateStruct(c) }

// ClickNodeCommand completes a pending connection
type ClickNodeCommand struct {
	CanvasID string `json:"canvas_id" validate:"required,uuid"`
	NodeID   string `json:"node_id" validate:"required,uuid"`
}

// Validate implements bus.Command
func (c ClickNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// CancelConnectCommand disarms the connection tool
type CancelConnectCommand struct {
	CanvasID string `json:"canvas_id" validate:"required,uuid"`
}

// Validate implements bus.Command
func (c CancelConnectCommand) Validate() error { return utils.ValidateStruct(c) }

// WheelCommand is one scroll tick over the canvas
type WheelCommand struct {
	CanvasID string  `json:"canvas_id" validate:"required,uuid"`
	DeltaY   float64 `json:"delta_y"`
	Modifier bool    `json:"modifier"`
}

// Validate implements bus.Command
func (c WheelCommand) Validate() error { return utils.ValidateStruct(c) }

// ClearCanvasCommand empties a canvas
type ClearCanvasCommand struct {
	CanvasID string `json:"canvas_id" validate:"required,uuid"`
}

// Validate implements bus.Command
func (c ClearCanvasCommand) Validate() error { return utils.ValidateStruct(c) }
