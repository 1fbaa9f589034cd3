package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"titlechain/domain/core/aggregates"
	"titlechain/domain/core/entities"
	"titlechain/domain/core/valueobjects"
	"titlechain/domain/interaction"
	pkgerrors "titlechain/pkg/errors"
)

func newSession() *interaction.Session {
	return interaction.NewSession(aggregates.NewCanvas(nil), nil, nil)
}

func TestCanvasStore_AddAndWithSession(t *testing.T) {
	store := NewCanvasStore(0, 0, zap.NewNop())
	defer store.Close()
	ctx := context.Background()

	session := newSession()
	require.NoError(t, store.Add(ctx, session))
	assert.True(t, pkgerrors.IsConflict(store.Add(ctx, session)))

	id := session.Canvas().ID()
	err := store.WithSession(ctx, id, func(s *interaction.Session) error {
		assert.Same(t, session, s)
		return nil
	})
	require.NoError(t, err)

	err = store.WithSession(ctx, aggregates.NewCanvasID(), func(*interaction.Session) error { return nil })
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestCanvasStore_Delete(t *testing.T) {
	store := NewCanvasStore(0, 0, zap.NewNop())
	defer store.Close()
	ctx := context.Background()

	session := newSession()
	require.NoError(t, store.Add(ctx, session))
	require.NoError(t, store.Delete(ctx, session.Canvas().ID()))

	err := store.WithSession(ctx, session.Canvas().ID(), func(*interaction.Session) error { return nil })
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.True(t, pkgerrors.IsNotFound(store.Delete(ctx, session.Canvas().ID())))
}

func TestCanvasStore_ListIsSorted(t *testing.T) {
	store := NewCanvasStore(0, 0, zap.NewNop())
	defer store.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Add(ctx, newSession()))
	}

	ids := store.List(ctx)
	require.Len(t, ids, 5)
	for i := 1; i < len(ids); i++ {
		assert.Less(t, string(ids[i-1]), string(ids[i]))
	}
}

func TestCanvasStore_SerialisesMutations(t *testing.T) {
	store := NewCanvasStore(0, 0, zap.NewNop())
	defer store.Close()
	ctx := context.Background()

	session := newSession()
	require.NoError(t, store.Add(ctx, session))
	id := session.Canvas().ID()

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			_ = store.WithSession(ctx, id, func(s *interaction.Session) error {
				_, err := s.PlaceAct(entities.Act{NumeroActe: string(rune('A' + i))}, valueobjects.MustPosition(float64(i*10), 0))
				return err
			})
		}(i)
	}
	wg.Wait()

	err := store.WithSession(ctx, id, func(s *interaction.Session) error {
		assert.Equal(t, workers, s.Canvas().NodeCount())
		return s.Canvas().Validate()
	})
	require.NoError(t, err)
}

func TestCanvasStore_SweepEvictsIdle(t *testing.T) {
	store := NewCanvasStore(time.Hour, 0, zap.NewNop())
	defer store.Close()
	ctx := context.Background()

	idle := newSession()
	require.NoError(t, store.Add(ctx, idle))

	assert.Equal(t, 0, store.Sweep())

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 0, store.Len())

	err := store.WithSession(ctx, idle.Canvas().ID(), func(*interaction.Session) error { return nil })
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestCanvasStore_CancelledContext(t *testing.T) {
	store := NewCanvasStore(0, 0, zap.NewNop())
	defer store.Close()

	session := newSession()
	require.NoError(t, store.Add(context.Background(), session))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.WithSession(ctx, session.Canvas().ID(), func(*interaction.Session) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestCanvasStore_CloseStopsSweeper(t *testing.T) {
	store := NewCanvasStore(time.Minute, 10*time.Millisecond, zap.NewNop())

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
