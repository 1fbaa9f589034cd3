package entities

import (
	"time"

	"titlechain/domain/core/valueobjects"
	pkgerrors "titlechain/pkg/errors"
)

// PlacedNode is an act drawn on a canvas as three stacked sub-blocks.
// It lives only as long as the canvas that owns it.
type PlacedNode struct {
	id        valueobjects.NodeID
	act       Act
	buyer     valueobjects.Position
	info      valueobjects.Position
	seller    valueobjects.Position
	placedAt  time.Time
	updatedAt time.Time
}

// NewPlacedNode lays out the three sub-blocks vertically from origin:
// buyer at origin, info spacing below, seller twice spacing below.
func NewPlacedNode(id valueobjects.NodeID, act Act, origin valueobjects.Position, spacing float64) (*PlacedNode, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node ID cannot be empty")
	}
	if err := act.Validate(); err != nil {
		return nil, err
	}

	info, err := origin.Translate(0, spacing)
	if err != nil {
		return nil, err
	}
	seller, err := origin.Translate(0, 2*spacing)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &PlacedNode{
		id:        id,
		act:       act.Clone(),
		buyer:     origin,
		info:      info,
		seller:    seller,
		placedAt:  now,
		updatedAt: now,
	}, nil
}

// ID returns the node's identifier
func (n *PlacedNode) ID() valueobjects.NodeID {
	return n.id
}

// Act returns a copy of the visualized act
func (n *PlacedNode) Act() Act {
	return n.act.Clone()
}

// ActNumber returns the normalized numero_acte of the visualized act
func (n *PlacedNode) ActNumber() string {
	return n.act.Number()
}

// BlockPosition returns the position of one sub-block
func (n *PlacedNode) BlockPosition(kind valueobjects.BlockKind) (valueobjects.Position, error) {
	switch kind {
	case valueobjects.BlockBuyer:
		return n.buyer, nil
	case valueobjects.BlockInfo:
		return n.info, nil
	case valueobjects.BlockSeller:
		return n.seller, nil
	}
	return valueobjects.Position{}, pkgerrors.NewValidationError("unknown block kind: " + string(kind))
}

// BuyerBlockPos returns the buyer sub-block position
func (n *PlacedNode) BuyerBlockPos() valueobjects.Position { return n.buyer }

// InfoBlockPos returns the info sub-block position
func (n *PlacedNode) InfoBlockPos() valueobjects.Position { return n.info }

// SellerBlockPos returns the seller sub-block position
func (n *PlacedNode) SellerBlockPos() valueobjects.Position { return n.seller }

// MoveBlock moves one sub-block. Canvas bounds are not enforced.
func (n *PlacedNode) MoveBlock(kind valueobjects.BlockKind, to valueobjects.Position) error {
	switch kind {
	case valueobjects.BlockBuyer:
		n.buyer = to
	case valueobjects.BlockInfo:
		n.info = to
	case valueobjects.BlockSeller:
		n.seller = to
	default:
		return pkgerrors.NewValidationError("unknown block kind: " + string(kind))
	}
	n.updatedAt = time.Now()
	return nil
}

// PlacedAt returns when the node was placed
func (n *PlacedNode) PlacedAt() time.Time {
	return n.placedAt
}

// UpdatedAt returns when a sub-block last moved
func (n *PlacedNode) UpdatedAt() time.Time {
	return n.updatedAt
}
