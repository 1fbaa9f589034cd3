package dto

import (
	"time"

	"titlechain/domain/core/aggregates"
	"titlechain/domain/core/entities"
	"titlechain/domain/core/valueobjects"
	"titlechain/domain/interaction"
	"titlechain/domain/services"
)

// NodeDTO is a placed act with its three sub-block positions
type NodeDTO struct {
	ID       string                `json:"id"`
	Act      entities.Act          `json:"act"`
	Buyer    valueobjects.Position `json:"buyer"`
	Info     valueobjects.Position `json:"info"`
	Seller   valueobjects.Position `json:"seller"`
	PlacedAt time.Time             `json:"placed_at"`
}

// ConnectionDTO is one connection. Index addresses it for removal.
type ConnectionDTO struct {
	Index     int    `json:"index"`
	From      string `json:"from"`
	To        string `json:"to"`
	FromBlock string `json:"from_block"`
	ToBlock   string `json:"to_block"`
	Kind      string `json:"kind"`
}

// ToolsDTO is the interaction state around the graph
type ToolsDTO struct {
	Zoom    float64                  `json:"zoom"`
	Connect interaction.ConnectState `json:"connect"`
	Drag    *interaction.DragState   `json:"drag,omitempty"`
}

// CanvasSnapshot is everything a client needs to render a canvas
type CanvasSnapshot struct {
	ID          string          `json:"id"`
	Version     int             `json:"version"`
	Nodes       []NodeDTO       `json:"nodes"`
	Connections []ConnectionDTO `json:"connections"`
	Tools       ToolsDTO        `json:"tools"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PlacementDTO reports what a placement or drop did
type PlacementDTO struct {
	Ignored     bool     `json:"ignored,omitempty"`
	RootID      string   `json:"root_id,omitempty"`
	Placed      bool     `json:"placed"`
	Antecedents []string `json:"antecedents"`
	Links       int      `json:"links"`
	Missing     []string `json:"missing"`
}

// CanvasUpdate is returned by every canvas mutation: the new snapshot plus
// whichever detail the operation produced
type CanvasUpdate struct {
	Canvas    CanvasSnapshot `json:"canvas"`
	Placement *PlacementDTO  `json:"placement,omitempty"`
	Connected *bool          `json:"connected,omitempty"`
	Removed   *int           `json:"removed,omitempty"`
	Moved     *bool          `json:"moved,omitempty"`
}

// CanvasSummary is a listing entry
type CanvasSummary struct {
	ID          string    `json:"id"`
	Nodes       int       `json:"nodes"`
	Connections int       `json:"connections"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SnapshotOf copies session state into a CanvasSnapshot
func SnapshotOf(s *interaction.Session) CanvasSnapshot {
	c := s.Canvas()

	nodes := c.Nodes()
	nodeDTOs := make([]NodeDTO, 0, len(nodes))
	for _, n := range nodes {
		nodeDTOs = append(nodeDTOs, NodeDTO{
			ID:       n.ID().String(),
			Act:      n.Act(),
			Buyer:    n.BuyerBlockPos(),
			Info:     n.InfoBlockPos(),
			Seller:   n.SellerBlockPos(),
			PlacedAt: n.PlacedAt(),
		})
	}

	conns := c.Connections()
	connDTOs := make([]ConnectionDTO, 0, len(conns))
	for i, conn := range conns {
		connDTOs = append(connDTOs, connectionDTO(i, conn))
	}

	tools := ToolsDTO{Zoom: s.Zoom(), Connect: s.ConnectState()}
	if drag, ok := s.Drag(); ok {
		tools.Drag = &drag
	}

	return CanvasSnapshot{
		ID:          c.ID().String(),
		Version:     c.Version(),
		Nodes:       nodeDTOs,
		Connections: connDTOs,
		Tools:       tools,
		CreatedAt:   c.CreatedAt(),
		UpdatedAt:   c.UpdatedAt(),
	}
}

// SummaryOf builds a listing entry
func SummaryOf(s *interaction.Session) CanvasSummary {
	c := s.Canvas()
	return CanvasSummary{
		ID:          c.ID().String(),
		Nodes:       c.NodeCount(),
		Connections: c.ConnectionCount(),
		UpdatedAt:   c.UpdatedAt(),
	}
}

// PlacementOf converts a resolver result
func PlacementOf(r services.PlacementResult) *PlacementDTO {
	antecedents := make([]string, 0, len(r.Antecedents))
	for _, id := range r.Antecedents {
		antecedents = append(antecedents, id.String())
	}
	missing := r.Missing
	if missing == nil {
		missing = []string{}
	}
	return &PlacementDTO{
		RootID:      r.RootID.String(),
		Placed:      r.Placed,
		Antecedents: antecedents,
		Links:       r.Links,
		Missing:     missing,
	}
}

func connectionDTO(index int, conn aggregates.Connection) ConnectionDTO {
	return ConnectionDTO{
		Index:     index,
		From:      conn.FromNodeID.String(),
		To:        conn.ToNodeID.String(),
		FromBlock: string(conn.FromBlock),
		ToBlock:   string(conn.ToBlock),
		Kind:      string(conn.Kind),
	}
}
