package aggregates

import (
	"time"

	"titlechain/domain/core/valueobjects"
)

// Connection is a directed arrow between two placed nodes. Endpoints are
// weak references: removing a node removes every connection touching it.
type Connection struct {
	FromNodeID valueobjects.NodeID         `json:"from_node_id"`
	ToNodeID   valueobjects.NodeID         `json:"to_node_id"`
	FromBlock  valueobjects.BlockKind      `json:"from_block"`
	ToBlock    valueobjects.BlockKind      `json:"to_block"`
	Kind       valueobjects.ConnectionKind `json:"kind"`
	CreatedAt  time.Time                   `json:"created_at"`
}

// Touches reports whether the connection references the node at either end
func (c Connection) Touches(id valueobjects.NodeID) bool {
	return c.FromNodeID.Equals(id) || c.ToNodeID.Equals(id)
}

// sameLink reports whether two connections have the same endpoints and kind
func (c Connection) sameLink(from, to valueobjects.NodeID, kind valueobjects.ConnectionKind) bool {
	return c.FromNodeID.Equals(from) && c.ToNodeID.Equals(to) && c.Kind == kind
}

// anchorBlocks returns the sub-blocks a connection of the given kind joins.
// An auto-chain arrow runs from the later act's sellers to the earlier act's
// buyers: the seller in the later transaction was the buyer in the earlier one.
func anchorBlocks(kind valueobjects.ConnectionKind) (from, to valueobjects.BlockKind) {
	if kind == valueobjects.ConnectionAutoChain {
		return valueobjects.BlockSeller, valueobjects.BlockBuyer
	}
	return valueobjects.BlockInfo, valueobjects.BlockInfo
}
