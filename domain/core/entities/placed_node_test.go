package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"titlechain/domain/core/valueobjects"
	pkgerrors "titlechain/pkg/errors"
)

func TestNewPlacedNode_Layout(t *testing.T) {
	node, err := NewPlacedNode(valueobjects.NewNodeID(), Act{NumeroActe: "100"}, valueobjects.MustPosition(10, 20), 130)
	require.NoError(t, err)

	assert.True(t, node.BuyerBlockPos().Equals(valueobjects.MustPosition(10, 20)))
	assert.True(t, node.InfoBlockPos().Equals(valueobjects.MustPosition(10, 150)))
	assert.True(t, node.SellerBlockPos().Equals(valueobjects.MustPosition(10, 280)))
	assert.Equal(t, "100", node.ActNumber())
}

func TestNewPlacedNode_Validation(t *testing.T) {
	_, err := NewPlacedNode(valueobjects.NodeID{}, Act{NumeroActe: "1"}, valueobjects.MustPosition(0, 0), 130)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = NewPlacedNode(valueobjects.NewNodeID(), Act{}, valueobjects.MustPosition(0, 0), 130)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestPlacedNode_MoveBlockIsIndependent(t *testing.T) {
	node, err := NewPlacedNode(valueobjects.NewNodeID(), Act{NumeroActe: "1"}, valueobjects.MustPosition(0, 0), 130)
	require.NoError(t, err)

	require.NoError(t, node.MoveBlock(valueobjects.BlockInfo, valueobjects.MustPosition(-50, 999)))

	pos, err := node.BlockPosition(valueobjects.BlockInfo)
	require.NoError(t, err)
	assert.True(t, pos.Equals(valueobjects.MustPosition(-50, 999)))
	assert.True(t, node.BuyerBlockPos().Equals(valueobjects.MustPosition(0, 0)))
	assert.True(t, node.SellerBlockPos().Equals(valueobjects.MustPosition(0, 260)))

	assert.Error(t, node.MoveBlock(valueobjects.BlockKind("footer"), valueobjects.MustPosition(0, 0)))
}

func TestPlacedNode_ActIsCopied(t *testing.T) {
	act := Act{NumeroActe: "1", Acheteurs: []string{"A"}}
	node, err := NewPlacedNode(valueobjects.NewNodeID(), act, valueobjects.MustPosition(0, 0), 130)
	require.NoError(t, err)

	act.Acheteurs[0] = "changed"
	assert.Equal(t, "A", node.Act().Acheteurs[0])
}
