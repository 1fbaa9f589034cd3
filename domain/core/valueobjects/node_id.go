package valueobjects

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeID identifies a placed node. Two placements of the same act on one
// canvas get distinct IDs.
type NodeID struct {
	value uuid.UUID
}

// NewNodeID creates a new random NodeID
func NewNodeID() NodeID {
	return NodeID{value: uuid.New()}
}

// NewNodeIDFromString parses a NodeID from its UUID form
func NewNodeIDFromString(id string) (NodeID, error) {
	if id == "" {
		return NodeID{}, fmt.Errorf("node ID cannot be empty")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return NodeID{}, fmt.Errorf("node ID %q is not a valid UUID", id)
	}
	return NodeID{value: parsed}, nil
}

func (id NodeID) String() string {
	if id.IsZero() {
		return ""
	}
	return id.value.String()
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id.value == other.value
}

// IsZero reports whether the NodeID was never assigned
func (id NodeID) IsZero() bool {
	return id.value == uuid.Nil
}

// MarshalText implements encoding.TextMarshaler
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text yields the
// zero NodeID.
func (id *NodeID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*id = NodeID{}
		return nil
	}
	parsed, err := NewNodeIDFromString(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
