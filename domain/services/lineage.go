package services

import (
	"titlechain/domain/core/aggregates"
	"titlechain/domain/core/valueobjects"
)

// LineageStep is one act reached while walking a chain of title backwards
type LineageStep struct {
	NodeID     valueobjects.NodeID `json:"node_id"`
	NumeroActe string              `json:"numero_acte"`
	Depth      int                 `json:"depth"`
	// ParentOf is the node whose antecedent this is; zero for the start node
	ParentOf valueobjects.NodeID `json:"parent_of"`
}

// Lineage walks auto-chain connections from a node towards its antecedents
// in breadth-first order. The start node is returned first at depth 0.
// maxDepth <= 0 means unbounded.
func Lineage(canvas *aggregates.Canvas, start valueobjects.NodeID, maxDepth int) ([]LineageStep, error) {
	root, err := canvas.Node(start)
	if err != nil {
		return nil, err
	}

	parents := make(map[valueobjects.NodeID][]valueobjects.NodeID)
	for _, conn := range canvas.ConnectionsByKind(valueobjects.ConnectionAutoChain) {
		parents[conn.FromNodeID] = append(parents[conn.FromNodeID], conn.ToNodeID)
	}

	steps := []LineageStep{{NodeID: start, NumeroActe: root.ActNumber()}}
	visited := map[valueobjects.NodeID]bool{start: true}
	queue := []LineageStep{steps[0]}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if maxDepth > 0 && current.Depth >= maxDepth {
			continue
		}

		for _, parentID := range parents[current.NodeID] {
			if visited[parentID] {
				continue
			}
			visited[parentID] = true

			parent, err := canvas.Node(parentID)
			if err != nil {
				continue
			}
			step := LineageStep{
				NodeID:     parentID,
				NumeroActe: parent.ActNumber(),
				Depth:      current.Depth + 1,
				ParentOf:   current.NodeID,
			}
			steps = append(steps, step)
			queue = append(queue, step)
		}
	}

	return steps, nil
}
