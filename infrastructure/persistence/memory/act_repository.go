package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"titlechain/domain/core/entities"
	pkgerrors "titlechain/pkg/errors"
)

// ActRepository is a read-only record store held in memory. It serves
// local development and tests in place of the DynamoDB table.
type ActRepository struct {
	mu    sync.RWMutex
	acts  []entities.Act
	index map[string]int
}

// NewActRepository creates a repository over the given acts. Acts without
// a numero_acte are dropped; for duplicate numbers the first one wins.
func NewActRepository(acts []entities.Act) *ActRepository {
	r := &ActRepository{index: make(map[string]int, len(acts))}
	for _, act := range acts {
		if act.Validate() != nil {
			continue
		}
		if _, dup := r.index[act.Number()]; dup {
			continue
		}
		r.index[act.Number()] = len(r.acts)
		r.acts = append(r.acts, act.Clone())
	}
	return r
}

// LoadActRepository reads a JSON array of acts from path
func LoadActRepository(path string) (*ActRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read acts file: %w", err)
	}

	var acts []entities.Act
	if err := json.Unmarshal(data, &acts); err != nil {
		return nil, fmt.Errorf("failed to parse acts file %s: %w", path, err)
	}
	return NewActRepository(acts), nil
}

// List implements ports.ActRepository
func (r *ActRepository) List(ctx context.Context) ([]entities.Act, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entities.Act, len(r.acts))
	for i, act := range r.acts {
		out[i] = act.Clone()
	}
	return out, nil
}

// FindByNumber implements ports.ActRepository
func (r *ActRepository) FindByNumber(ctx context.Context, numero string) (entities.Act, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[entities.NormalizeNumber(numero)]
	if !ok {
		return entities.Act{}, pkgerrors.NewNotFoundError("act " + numero)
	}
	return r.acts[i].Clone(), nil
}
