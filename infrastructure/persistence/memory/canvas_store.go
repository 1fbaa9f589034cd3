package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"titlechain/domain/core/aggregates"
	"titlechain/domain/interaction"
	pkgerrors "titlechain/pkg/errors"
)

type canvasEntry struct {
	mu      sync.Mutex
	session *interaction.Session
	removed bool
}

// CanvasStore keeps canvas sessions in process memory. Each canvas has its
// own lock so gestures on one canvas run one at a time while different
// canvases proceed in parallel. Idle canvases are evicted by a sweeper.
type CanvasStore struct {
	mu      sync.RWMutex
	entries map[aggregates.CanvasID]*canvasEntry

	idleTTL time.Duration
	now     func() time.Time
	logger  *zap.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewCanvasStore creates a store. idleTTL <= 0 disables eviction.
// sweepInterval <= 0 disables the background sweeper; Sweep can still be
// called directly.
func NewCanvasStore(idleTTL, sweepInterval time.Duration, logger *zap.Logger) *CanvasStore {
	s := &CanvasStore{
		entries: make(map[aggregates.CanvasID]*canvasEntry),
		idleTTL: idleTTL,
		now:     time.Now,
		logger:  logger,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if idleTTL > 0 && sweepInterval > 0 {
		go s.sweepLoop(sweepInterval)
	} else {
		close(s.done)
	}
	return s
}

// Add implements ports.CanvasStore
func (s *CanvasStore) Add(ctx context.Context, session *interaction.Session) error {
	id := session.Canvas().ID()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[id]; exists {
		return pkgerrors.NewConflictError("canvas " + id.String() + " already exists")
	}
	s.entries[id] = &canvasEntry{session: session}
	return nil
}

// WithSession implements ports.CanvasStore
func (s *CanvasStore) WithSession(ctx context.Context, id aggregates.CanvasID, fn func(*interaction.Session) error) error {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return pkgerrors.NewNotFoundError("canvas")
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	// deleted or evicted while we waited for the lock
	if entry.removed {
		return pkgerrors.NewNotFoundError("canvas")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(entry.session)
}

// Delete implements ports.CanvasStore
func (s *CanvasStore) Delete(ctx context.Context, id aggregates.CanvasID) error {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if ok {
		delete(s.entries, id)
	}
	s.mu.Unlock()

	if !ok {
		return pkgerrors.NewNotFoundError("canvas")
	}

	entry.mu.Lock()
	entry.removed = true
	entry.mu.Unlock()
	return nil
}

// List implements ports.CanvasStore. IDs are sorted for stable output.
func (s *CanvasStore) List(ctx context.Context) []aggregates.CanvasID {
	s.mu.RLock()
	ids := make([]aggregates.CanvasID, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of live canvases
func (s *CanvasStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep evicts canvases idle for longer than the TTL and returns how many
// were removed. A canvas busy with a gesture is skipped.
func (s *CanvasStore) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, entry := range s.entries {
		if !entry.mu.TryLock() {
			continue
		}
		if entry.session.LastActivity().Before(cutoff) {
			entry.removed = true
			delete(s.entries, id)
			evicted++
		}
		entry.mu.Unlock()
	}

	if evicted > 0 {
		s.logger.Info("Evicted idle canvases",
			zap.Int("evicted", evicted),
			zap.Int("remaining", len(s.entries)),
		)
	}
	return evicted
}

// Close stops the sweeper. It is safe to call more than once.
func (s *CanvasStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
	return nil
}

func (s *CanvasStore) sweepLoop(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
