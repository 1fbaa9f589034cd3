package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"titlechain/domain/core/entities"
	pkgerrors "titlechain/pkg/errors"
)

func TestActRepository(t *testing.T) {
	repo := NewActRepository([]entities.Act{
		{NumeroActe: "100", NumerosActesAnterieurs: []string{"50"}},
		{NumeroActe: "50"},
		{NumeroActe: ""},
		{NumeroActe: "100", TypeActe: "duplicate"},
	})
	ctx := context.Background()

	acts, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, acts, 2)

	act, err := repo.FindByNumber(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, []string{"50"}, act.NumerosActesAnterieurs)
	assert.Empty(t, act.TypeActe)

	_, err = repo.FindByNumber(ctx, "999")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestActRepository_ReturnsCopies(t *testing.T) {
	repo := NewActRepository([]entities.Act{{NumeroActe: "1", Acheteurs: []string{"A"}}})
	ctx := context.Background()

	act, err := repo.FindByNumber(ctx, "1")
	require.NoError(t, err)
	act.Acheteurs[0] = "changed"

	again, err := repo.FindByNumber(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "A", again.Acheteurs[0])
}

func TestLoadActRepository(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "acts.json")
	content := `[
		{"id":"r1","numero_acte":"100","numeros_actes_anterieurs":["50"],"acheteurs":["Tremblay"],"vendeurs":["Gagnon"]},
		{"id":"r2","numero_acte":"50","numeros_actes_anterieurs":[],"acheteurs":["Gagnon"],"vendeurs":["Roy"]}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	repo, err := LoadActRepository(path)
	require.NoError(t, err)

	act, err := repo.FindByNumber(context.Background(), "50")
	require.NoError(t, err)
	assert.Equal(t, "r2", act.ID)

	_, err = LoadActRepository(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err = LoadActRepository(path)
	assert.Error(t, err)
}

func TestActRepository_FindByPaddedNumber(t *testing.T) {
	repo := NewActRepository([]entities.Act{{NumeroActe: "50 "}})

	act, err := repo.FindByNumber(context.Background(), "50")
	require.NoError(t, err)
	assert.Equal(t, "50", act.Number())
}
