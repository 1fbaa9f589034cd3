package aggregates

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"titlechain/domain/config"
	"titlechain/domain/core/entities"
	"titlechain/domain/core/valueobjects"
	"titlechain/domain/events"
	pkgerrors "titlechain/pkg/errors"
)

// CanvasID represents a unique canvas identifier
type CanvasID string

// NewCanvasID creates a new random CanvasID
func NewCanvasID() CanvasID {
	return CanvasID(uuid.New().String())
}

// String returns the string representation
func (id CanvasID) String() string {
	return string(id)
}

// maxIDAttempts bounds node ID regeneration after a collision
const maxIDAttempts = 8

// Canvas is the aggregate root for one chain-of-title drawing.
// It owns the placed nodes and the connections between them and keeps
// two invariants: one node per act number, and no connection to a
// missing node. A Canvas is not safe for concurrent use.
type Canvas struct {
	id          CanvasID
	cfg         *config.DomainConfig
	nodes       map[valueobjects.NodeID]*entities.PlacedNode
	order       []valueobjects.NodeID
	byAct       map[string]valueobjects.NodeID
	connections []Connection
	createdAt   time.Time
	updatedAt   time.Time
	version     int
	events      []events.DomainEvent

	newNodeID func() valueobjects.NodeID
}

// NewCanvas creates an empty canvas
func NewCanvas(cfg *config.DomainConfig) *Canvas {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	now := time.Now()
	c := &Canvas{
		id:          NewCanvasID(),
		cfg:         cfg,
		nodes:       make(map[valueobjects.NodeID]*entities.PlacedNode),
		byAct:       make(map[string]valueobjects.NodeID),
		connections: []Connection{},
		createdAt:   now,
		updatedAt:   now,
		version:     1,
		events:      []events.DomainEvent{},
		newNodeID:   valueobjects.NewNodeID,
	}

	c.addEvent(events.NewCanvasCreated(c.id.String(), now))
	return c
}

// ID returns the canvas identifier
func (c *Canvas) ID() CanvasID {
	return c.id
}

// Config returns the rules this canvas was created with
func (c *Canvas) Config() *config.DomainConfig {
	return c.cfg
}

// Version returns the mutation counter
func (c *Canvas) Version() int {
	return c.version
}

// CreatedAt returns when the canvas was created
func (c *Canvas) CreatedAt() time.Time {
	return c.createdAt
}

// UpdatedAt returns when the canvas last changed
func (c *Canvas) UpdatedAt() time.Time {
	return c.updatedAt
}

// NodeCount returns the number of placed nodes
func (c *Canvas) NodeCount() int {
	return len(c.nodes)
}

// ConnectionCount returns the number of connections
func (c *Canvas) ConnectionCount() int {
	return len(c.connections)
}

// PlaceAct draws an act with its buyer block at origin. If an act with the
// same numero_acte is already on the canvas nothing changes and the existing
// node's ID is returned with placed set to false.
func (c *Canvas) PlaceAct(act entities.Act, origin valueobjects.Position) (id valueobjects.NodeID, placed bool, err error) {
	if err := act.Validate(); err != nil {
		return valueobjects.NodeID{}, false, err
	}

	if existing, ok := c.byAct[act.Number()]; ok {
		return existing, false, nil
	}

	if len(c.nodes) >= c.cfg.MaxNodesPerCanvas {
		return valueobjects.NodeID{}, false, pkgerrors.NewLimitError("nodes", c.cfg.MaxNodesPerCanvas)
	}

	id, err = c.freshNodeID()
	if err != nil {
		return valueobjects.NodeID{}, false, err
	}

	node, err := entities.NewPlacedNode(id, act, origin, c.cfg.SubBlockSpacing)
	if err != nil {
		return valueobjects.NodeID{}, false, err
	}

	c.nodes[id] = node
	c.order = append(c.order, id)
	c.byAct[act.Number()] = id
	c.touch()

	c.addEvent(events.NewActPlaced(c.id.String(), c.version, id, act.NumeroActe, origin, c.updatedAt))
	return id, true, nil
}

// MoveSubBlock repositions one sub-block of a node. Positions are free:
// no canvas bounds apply.
func (c *Canvas) MoveSubBlock(nodeID valueobjects.NodeID, block valueobjects.BlockKind, to valueobjects.Position) error {
	node, ok := c.nodes[nodeID]
	if !ok {
		return pkgerrors.NewNotFoundError("node")
	}

	from, err := node.BlockPosition(block)
	if err != nil {
		return err
	}
	if from.Equals(to) {
		return nil
	}

	if err := node.MoveBlock(block, to); err != nil {
		return err
	}
	c.touch()

	c.addEvent(events.NewSubBlockMoved(c.id.String(), c.version, nodeID, block, from, to, c.updatedAt))
	return nil
}

// RemoveNode deletes a node and every connection referencing it.
// It returns the number of connections removed by the cascade.
func (c *Canvas) RemoveNode(nodeID valueobjects.NodeID) (int, error) {
	node, ok := c.nodes[nodeID]
	if !ok {
		return 0, pkgerrors.NewNotFoundError("node")
	}

	kept := c.connections[:0]
	removed := 0
	for _, conn := range c.connections {
		if conn.Touches(nodeID) {
			removed++
			continue
		}
		kept = append(kept, conn)
	}
	c.connections = kept

	delete(c.nodes, nodeID)
	delete(c.byAct, node.ActNumber())
	for i, id := range c.order {
		if id.Equals(nodeID) {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.touch()

	c.addEvent(events.NewNodeRemoved(c.id.String(), c.version, nodeID, node.ActNumber(), removed, c.updatedAt))
	return removed, nil
}

// AddConnection draws an arrow between two nodes. Self-loops are silently
// rejected. Unless the canvas allows duplicates, an existing connection with
// the same endpoints and kind makes this a no-op. created reports whether a
// connection was appended.
func (c *Canvas) AddConnection(from, to valueobjects.NodeID, kind valueobjects.ConnectionKind) (created bool, err error) {
	if from.Equals(to) {
		return false, nil
	}
	if _, ok := c.nodes[from]; !ok {
		return false, pkgerrors.NewNotFoundError("source node")
	}
	if _, ok := c.nodes[to]; !ok {
		return false, pkgerrors.NewNotFoundError("target node")
	}
	if _, err := valueobjects.ParseConnectionKind(string(kind)); err != nil {
		return false, err
	}

	if !c.cfg.AllowDuplicateConnections {
		for _, conn := range c.connections {
			if conn.sameLink(from, to, kind) {
				return false, nil
			}
		}
	}

	if len(c.connections) >= c.cfg.MaxConnectionsPerCanvas {
		return false, pkgerrors.NewLimitError("connections", c.cfg.MaxConnectionsPerCanvas)
	}

	fromBlock, toBlock := anchorBlocks(kind)
	c.touch()
	c.connections = append(c.connections, Connection{
		FromNodeID: from,
		ToNodeID:   to,
		FromBlock:  fromBlock,
		ToBlock:    toBlock,
		Kind:       kind,
		CreatedAt:  c.updatedAt,
	})

	c.addEvent(events.NewNodesConnected(c.id.String(), c.version, from, to, kind, c.updatedAt))
	return true, nil
}

// RemoveConnection deletes the connection at index
func (c *Canvas) RemoveConnection(index int) error {
	if index < 0 || index >= len(c.connections) {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("connection %d", index))
	}

	conn := c.connections[index]
	c.connections = append(c.connections[:index], c.connections[index+1:]...)
	c.touch()

	c.addEvent(events.NewConnectionRemoved(c.id.String(), c.version, conn.FromNodeID, conn.ToNodeID, conn.Kind, c.updatedAt))
	return nil
}

// RemoveConnectionsByKind deletes every connection of one kind and returns
// how many were removed
func (c *Canvas) RemoveConnectionsByKind(kind valueobjects.ConnectionKind) int {
	kept := c.connections[:0]
	var removed []Connection
	for _, conn := range c.connections {
		if conn.Kind == kind {
			removed = append(removed, conn)
			continue
		}
		kept = append(kept, conn)
	}
	c.connections = kept
	if len(removed) == 0 {
		return 0
	}

	c.touch()
	for _, conn := range removed {
		c.addEvent(events.NewConnectionRemoved(c.id.String(), c.version, conn.FromNodeID, conn.ToNodeID, conn.Kind, c.updatedAt))
	}
	return len(removed)
}

// Clear removes all nodes and connections at once
func (c *Canvas) Clear() {
	nodes, conns := len(c.nodes), len(c.connections)

	c.nodes = make(map[valueobjects.NodeID]*entities.PlacedNode)
	c.byAct = make(map[string]valueobjects.NodeID)
	c.order = nil
	c.connections = []Connection{}
	c.touch()

	c.addEvent(events.NewCanvasCleared(c.id.String(), c.version, nodes, conns, c.updatedAt))
}

// Node retrieves a node by ID
func (c *Canvas) Node(nodeID valueobjects.NodeID) (*entities.PlacedNode, error) {
	node, ok := c.nodes[nodeID]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("node")
	}
	return node, nil
}

// HasNode checks if a node exists without error
func (c *Canvas) HasNode(nodeID valueobjects.NodeID) bool {
	_, ok := c.nodes[nodeID]
	return ok
}

// NodeByActNumber returns the node visualizing the given numero_acte
func (c *Canvas) NodeByActNumber(numero string) (*entities.PlacedNode, bool) {
	id, ok := c.byAct[entities.NormalizeNumber(numero)]
	if !ok {
		return nil, false
	}
	return c.nodes[id], true
}

// Nodes returns the placed nodes in placement order
func (c *Canvas) Nodes() []*entities.PlacedNode {
	nodes := make([]*entities.PlacedNode, 0, len(c.order))
	for _, id := range c.order {
		nodes = append(nodes, c.nodes[id])
	}
	return nodes
}

// Connections returns a copy of the connection list in creation order
func (c *Canvas) Connections() []Connection {
	conns := make([]Connection, len(c.connections))
	copy(conns, c.connections)
	return conns
}

// ConnectionsByKind returns the connections of one kind in creation order
func (c *Canvas) ConnectionsByKind(kind valueobjects.ConnectionKind) []Connection {
	var conns []Connection
	for _, conn := range c.connections {
		if conn.Kind == kind {
			conns = append(conns, conn)
		}
	}
	return conns
}

// Validate ensures canvas invariants
func (c *Canvas) Validate() error {
	for _, conn := range c.connections {
		if _, ok := c.nodes[conn.FromNodeID]; !ok {
			return errors.New("connection references non-existent source node")
		}
		if _, ok := c.nodes[conn.ToNodeID]; !ok {
			return errors.New("connection references non-existent target node")
		}
	}

	if len(c.byAct) != len(c.nodes) || len(c.order) != len(c.nodes) {
		return errors.New("node index mismatch")
	}
	for numero, id := range c.byAct {
		node, ok := c.nodes[id]
		if !ok || node.ActNumber() != numero {
			return fmt.Errorf("act index corrupt for %q", numero)
		}
	}

	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (c *Canvas) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(c.events))
	copy(out, c.events)
	return out
}

// MarkEventsAsCommitted clears all uncommitted events
func (c *Canvas) MarkEventsAsCommitted() {
	c.events = []events.DomainEvent{}
}

// Private helper methods

func (c *Canvas) addEvent(event events.DomainEvent) {
	c.events = append(c.events, event)
}

func (c *Canvas) touch() {
	c.updatedAt = time.Now()
	c.version++
}

// freshNodeID generates an ID not already used on this canvas
func (c *Canvas) freshNodeID() (valueobjects.NodeID, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := c.newNodeID()
		if id.IsZero() {
			continue
		}
		if _, taken := c.nodes[id]; !taken {
			return id, nil
		}
	}
	return valueobjects.NodeID{}, pkgerrors.NewInternalError("could not allocate a unique node ID")
}
