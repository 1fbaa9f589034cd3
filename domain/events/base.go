package events

import (
	"time"

	"titlechain/domain/core/valueobjects"
)

// SourceCanvas is the event source name used on the event bus
const SourceCanvas = "titlechain.canvas"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBase(canvasID, eventType string, version int, timestamp time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: canvasID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     version,
	}
}

// Canvas Events

// CanvasCreated is raised when a new canvas session is opened
type CanvasCreated struct {
	BaseEvent
	CanvasID string `json:"canvas_id"`
}

// NewCanvasCreated creates a CanvasCreated event
func NewCanvasCreated(canvasID string, timestamp time.Time) CanvasCreated {
	return CanvasCreated{
		BaseEvent: newBase(canvasID, "canvas.created", 1, timestamp),
		CanvasID:  canvasID,
	}
}

// CanvasCleared is raised when all nodes and connections are removed at once
type CanvasCleared struct {
	BaseEvent
	RemovedNodes       int `json:"removed_nodes"`
	RemovedConnections int `json:"removed_connections"`
}

// NewCanvasCleared creates a CanvasCleared event
func NewCanvasCleared(canvasID string, version, nodes, connections int, timestamp time.Time) CanvasCleared {
	return CanvasCleared{
		BaseEvent:          newBase(canvasID, "canvas.cleared", version, timestamp),
		RemovedNodes:       nodes,
		RemovedConnections: connections,
	}
}

// Node Events

// ActPlaced is raised when an act is drawn on the canvas
type ActPlaced struct {
	BaseEvent
	NodeID     valueobjects.NodeID   `json:"node_id"`
	NumeroActe string                `json:"numero_acte"`
	Position   valueobjects.Position `json:"position"`
}

// NewActPlaced creates an ActPlaced event
func NewActPlaced(canvasID string, version int, nodeID valueobjects.NodeID, numero string, pos valueobjects.Position, timestamp time.Time) ActPlaced {
	return ActPlaced{
		BaseEvent:  newBase(canvasID, "canvas.act_placed", version, timestamp),
		NodeID:     nodeID,
		NumeroActe: numero,
		Position:   pos,
	}
}

// SubBlockMoved is raised when one sub-block of a node is repositioned
type SubBlockMoved struct {
	BaseEvent
	NodeID      valueobjects.NodeID    `json:"node_id"`
	Block       valueobjects.BlockKind `json:"block"`
	OldPosition valueobjects.Position  `json:"old_position"`
	NewPosition valueobjects.Position  `json:"new_position"`
}

// NewSubBlockMoved creates a SubBlockMoved event
func NewSubBlockMoved(canvasID string, version int, nodeID valueobjects.NodeID, block valueobjects.BlockKind, oldPos, newPos valueobjects.Position, timestamp time.Time) SubBlockMoved {
	return SubBlockMoved{
		BaseEvent:   newBase(canvasID, "canvas.sub_block_moved", version, timestamp),
		NodeID:      nodeID,
		Block:       block,
		OldPosition: oldPos,
		NewPosition: newPos,
	}
}

// NodeRemoved is raised when a node and its connections are removed
type NodeRemoved struct {
	BaseEvent
	NodeID             valueobjects.NodeID `json:"node_id"`
	NumeroActe         string              `json:"numero_acte"`
	RemovedConnections int                 `json:"removed_connections"`
}

// NewNodeRemoved creates a NodeRemoved event
func NewNodeRemoved(canvasID string, version int, nodeID valueobjects.NodeID, numero string, cascaded int, timestamp time.Time) NodeRemoved {
	return NodeRemoved{
		BaseEvent:          newBase(canvasID, "canvas.node_removed", version, timestamp),
		NodeID:             nodeID,
		NumeroActe:         numero,
		RemovedConnections: cascaded,
	}
}

// Connection Events

// NodesConnected is raised when a connection is drawn between two nodes
type NodesConnected struct {
	BaseEvent
	SourceID valueobjects.NodeID         `json:"source_id"`
	TargetID valueobjects.NodeID         `json:"target_id"`
	Kind     valueobjects.ConnectionKind `json:"kind"`
}

// NewNodesConnected creates a NodesConnected event
func NewNodesConnected(canvasID string, version int, sourceID, targetID valueobjects.NodeID, kind valueobjects.ConnectionKind, timestamp time.Time) NodesConnected {
	return NodesConnected{
		BaseEvent: newBase(canvasID, "canvas.nodes_connected", version, timestamp),
		SourceID:  sourceID,
		TargetID:  targetID,
		Kind:      kind,
	}
}

// ConnectionRemoved is raised when a single connection is deleted
type ConnectionRemoved struct {
	BaseEvent
	SourceID valueobjects.NodeID         `json:"source_id"`
	TargetID valueobjects.NodeID         `json:"target_id"`
	Kind     valueobjects.ConnectionKind `json:"kind"`
}

// NewConnectionRemoved creates a ConnectionRemoved event
func NewConnectionRemoved(canvasID string, version int, sourceID, targetID valueobjects.NodeID, kind valueobjects.ConnectionKind, timestamp time.Time) ConnectionRemoved {
	return ConnectionRemoved{
		BaseEvent: newBase(canvasID, "canvas.connection_removed", version, timestamp),
		SourceID:  sourceID,
		TargetID:  targetID,
		Kind:      kind,
	}
}
