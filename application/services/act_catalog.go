package services

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"titlechain/application/ports"
	"titlechain/domain/core/entities"
	domainservices "titlechain/domain/services"
	pkgerrors "titlechain/pkg/errors"
)

const snapshotCacheKey = "acts:snapshot"

// catalogSnapshot is one upfront fetch of the record store
type catalogSnapshot struct {
	acts  []entities.Act
	index domainservices.MapCatalog
}

// ActCatalogService serves the act list and the resolver's lookup table
// from a cached snapshot of the record store
type ActCatalogService struct {
	repo   ports.ActRepository
	cache  ports.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewActCatalogService creates a new catalog service
func NewActCatalogService(repo ports.ActRepository, cache ports.Cache, ttl time.Duration, logger *zap.Logger) *ActCatalogService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ActCatalogService{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Catalog returns the lookup table used for auto-chaining
func (s *ActCatalogService) Catalog(ctx context.Context) (domainservices.ActCatalog, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.index, nil
}

// List returns acts matching query, ordered by numero_acte.
// An empty query matches everything; limit <= 0 means no limit.
func (s *ActCatalogService) List(ctx context.Context, query string, limit int) ([]entities.Act, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]entities.Act, 0, len(snap.acts))
	for _, act := range snap.acts {
		if !act.Matches(query) {
			continue
		}
		out = append(out, act.Clone())
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Find returns one act. Acts recorded after the snapshot was taken are
// looked up in the record store directly.
func (s *ActCatalogService) Find(ctx context.Context, numero string) (entities.Act, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return entities.Act{}, err
	}
	if act, ok := snap.index.FindByNumber(numero); ok {
		return act.Clone(), nil
	}

	act, err := s.repo.FindByNumber(ctx, numero)
	if err != nil {
		return entities.Act{}, err
	}
	return act, nil
}

// Invalidate drops the cached snapshot so the next call refetches
func (s *ActCatalogService) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, snapshotCacheKey)
}

func (s *ActCatalogService) snapshot(ctx context.Context) (*catalogSnapshot, error) {
	if cached, ok := s.cache.Get(ctx, snapshotCacheKey); ok {
		if snap, ok := cached.(*catalogSnapshot); ok {
			return snap, nil
		}
	}

	start := time.Now()
	acts, err := s.repo.List(ctx)
	if err != nil {
		if pkgerrors.IsAppError(err) {
			return nil, err
		}
		return nil, pkgerrors.NewDatabaseError("list acts", err)
	}

	sort.SliceStable(acts, func(i, j int) bool {
		return acts[i].NumeroActe < acts[j].NumeroActe
	})
	snap := &catalogSnapshot{acts: acts, index: domainservices.NewMapCatalog(acts)}

	if err := s.cache.Set(ctx, snapshotCacheKey, snap, int(s.ttl.Seconds())); err != nil {
		s.logger.Warn("Failed to cache act snapshot", zap.Error(err))
	}
	s.logger.Debug("Loaded act snapshot",
		zap.Int("acts", len(acts)),
		zap.Duration("duration", time.Since(start)),
	)
	return snap, nil
}
