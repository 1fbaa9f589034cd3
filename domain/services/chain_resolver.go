package services

import (
	"titlechain/domain/core/aggregates"
	"titlechain/domain/core/entities"
	"titlechain/domain/core/valueobjects"
)

// ActCatalog is a read-only snapshot of the firm's acts, keyed by numero_acte
type ActCatalog interface {
	FindByNumber(numero string) (entities.Act, bool)
}

// MapCatalog is an ActCatalog over an in-memory map
type MapCatalog map[string]entities.Act

// NewMapCatalog indexes acts by numero_acte. Later duplicates win.
func NewMapCatalog(acts []entities.Act) MapCatalog {
	catalog := make(MapCatalog, len(acts))
	for _, act := range acts {
		if n := act.Number(); n != "" {
			catalog[n] = act
		}
	}
	return catalog
}

// FindByNumber implements ActCatalog
func (m MapCatalog) FindByNumber(numero string) (entities.Act, bool) {
	act, ok := m[entities.NormalizeNumber(numero)]
	return act, ok
}

// PlacementResult describes what a single placement did to the canvas
type PlacementResult struct {
	RootID valueobjects.NodeID
	// Placed is false when the root act was already on the canvas
	Placed bool
	// Antecedents lists nodes the resolver added, in placement order
	Antecedents []valueobjects.NodeID
	// Links counts auto-chain connections created
	Links int
	// Missing lists antecedent numbers absent from the catalog
	Missing []string
}

// ChainResolver places an act and then links its recorded antecedents.
// Root placement and antecedent resolution happen in the same call so the
// canvas never observes a half-resolved state.
type ChainResolver struct{}

// NewChainResolver creates a chain resolver
func NewChainResolver() *ChainResolver {
	return &ChainResolver{}
}

// Place draws act at origin and, when it was not already on the canvas,
// resolves its antecedents up to the canvas' AutoChainDepth. Antecedents
// missing from the catalog are skipped without error.
func (r *ChainResolver) Place(canvas *aggregates.Canvas, catalog ActCatalog, act entities.Act, origin valueobjects.Position) (PlacementResult, error) {
	rootID, placed, err := canvas.PlaceAct(act, origin)
	if err != nil {
		return PlacementResult{}, err
	}

	result := PlacementResult{RootID: rootID, Placed: placed}
	if !placed || catalog == nil {
		return result, nil
	}

	_, err = r.expand(canvas, catalog, rootID, act, 1, &result)
	return result, err
}

// expand links the antecedents of the act shown by childID and returns the
// lowest buyer-block Y used by the subtree it placed. Each act is placed at
// most once, which also terminates circular references.
//
// The i-th antecedent sits AntecedentBaseOffset + i*BlockGroupHeight below
// the child's buyer block, pushed further down when an earlier sibling's
// own antecedents already reach that far.
func (r *ChainResolver) expand(
	canvas *aggregates.Canvas,
	catalog ActCatalog,
	childID valueobjects.NodeID,
	act entities.Act,
	level int,
	result *PlacementResult,
) (float64, error) {
	child, err := canvas.Node(childID)
	if err != nil {
		return 0, err
	}
	base := child.BuyerBlockPos()
	bottom := base.Y()

	cfg := canvas.Config()
	if level > cfg.AutoChainDepth {
		return bottom, nil
	}

	cursorSet := false
	for _, ref := range act.Antecedents() {
		antecedent, ok := catalog.FindByNumber(ref.Number)
		if !ok {
			result.Missing = append(result.Missing, ref.Number)
			continue
		}

		var parentID valueobjects.NodeID
		newlyPlaced := false
		if existing, ok := canvas.NodeByActNumber(antecedent.Number()); ok {
			parentID = existing.ID()
		} else {
			dy := cfg.AntecedentBaseOffset + float64(ref.Index)*cfg.BlockGroupHeight
			if cursorSet && base.Y()+dy < bottom+cfg.BlockGroupHeight {
				dy = bottom + cfg.BlockGroupHeight - base.Y()
			}
			pos, err := base.Translate(0, dy)
			if err != nil {
				return bottom, err
			}
			parentID, newlyPlaced, err = canvas.PlaceAct(antecedent, pos)
			if err != nil {
				return bottom, err
			}
			if newlyPlaced {
				result.Antecedents = append(result.Antecedents, parentID)
				bottom = max(bottom, pos.Y())
				cursorSet = true
			}
		}

		created, err := canvas.AddConnection(childID, parentID, valueobjects.ConnectionAutoChain)
		if err != nil {
			return bottom, err
		}
		if created {
			result.Links++
		}

		if newlyPlaced {
			subtree, err := r.expand(canvas, catalog, parentID, antecedent, level+1, result)
			if err != nil {
				return bottom, err
			}
			bottom = max(bottom, subtree)
		}
	}

	return bottom, nil
}
