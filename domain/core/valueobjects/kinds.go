package valueobjects

import (
	"fmt"

	pkgerrors "titlechain/pkg/errors"
)

// BlockKind names one of the three sub-blocks of a placed node
type BlockKind string

const (
	BlockBuyer  BlockKind = "buyer"
	BlockInfo   BlockKind = "info"
	BlockSeller BlockKind = "seller"
)

// ParseBlockKind validates a sub-block name
func ParseBlockKind(s string) (BlockKind, error) {
	switch BlockKind(s) {
	case BlockBuyer, BlockInfo, BlockSeller:
		return BlockKind(s), nil
	}
	return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown block kind %q", s))
}

// ConnectionKind distinguishes resolver-created links from user-drawn ones.
// The distinction drives the rendering style only.
type ConnectionKind string

const (
	ConnectionAutoChain ConnectionKind = "auto-chain"
	ConnectionManual    ConnectionKind = "manual"
)

// ParseConnectionKind validates a connection kind name
func ParseConnectionKind(s string) (ConnectionKind, error) {
	switch ConnectionKind(s) {
	case ConnectionAutoChain, ConnectionManual:
		return ConnectionKind(s), nil
	}
	return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown connection kind %q", s))
}
