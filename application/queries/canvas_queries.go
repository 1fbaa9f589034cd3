package queries

import (
	"strconv"
	"strings"

	"titlechain/domain/core/entities"
	"titlechain/pkg/utils"
)

// GetCanvasQuery returns the full snapshot of one canvas
type GetCanvasQuery struct {
	CanvasID string `json:"canvas_id" validate:"required,uuid"`
}

// Validate implements bus.Query
func (q GetCanvasQuery) Validate() error { return utils.ValidateStruct(q) }

// ListCanvasesQuery lists live canvases
type ListCanvasesQuery struct{}

// Validate implements bus.Query
func (q ListCanvasesQuery) Validate() error { return nil }

// GetLineageQuery walks a node's chain of title through auto-chain links
type GetLineageQuery struct {
	CanvasID string `json:"canvas_id" validate:"required,uuid"`
	NodeID   string `json:"node_id" validate:"required,uuid"`
	MaxDepth int    `json:"max_depth" validate:"gte=0"`
}

// Validate implements bus.Query
func (q GetLineageQuery) Validate() error { return utils.ValidateStruct(q) }

// ListActsQuery searches the record store snapshot
type ListActsQuery struct {
	Query string `json:"q" validate:"max=200"`
	Limit int    `json:"limit" validate:"gte=0,max=1000"`
}

// Validate implements bus.Query
func (q ListActsQuery) Validate() error { return utils.ValidateStruct(q) }

// CacheKey implements bus.Cacheable. Searches are case-insensitive, so the
// key folds case and surrounding space.
func (q ListActsQuery) CacheKey() (string, bool) {
	term := strings.ToLower(strings.TrimSpace(q.Query))
	return "acts:list:" + strconv.Itoa(q.Limit) + ":" + term, true
}

// GetActQuery fetches one act by numero_acte
type GetActQuery struct {
	NumeroActe string `json:"numero_acte" validate:"required,max=100"`
}

// Validate implements bus.Query
func (q GetActQuery) Validate() error { return utils.ValidateStruct(q) }

// CacheKey implements bus.Cacheable
func (q GetActQuery) CacheKey() (string, bool) {
	numero := entities.NormalizeNumber(q.NumeroActe)
	return "acts:get:" + numero, numero != ""
}
