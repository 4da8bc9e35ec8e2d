package persistence

import (
	"context"
	"testing"

	"github.com/clubhub/backend/internal/domain/finance"
	"github.com/clubhub/backend/internal/infrastructure/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocLegacyRepository(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	repo := NewDocLegacyRepository(store, nil)

	require.NoError(t, store.Set(ctx, docstore.Join(docstore.LegacyRootCategoryBucket("entrada"), "a"), map[string]any{"nome": "Bar"}))
	require.NoError(t, store.Set(ctx, docstore.Join(docstore.LegacyRootCategoryBucket("saida"), "b"), map[string]any{"nome": ""}))
	require.NoError(t, store.Set(ctx, docstore.Join(docstore.LegacyClubCategories(testClub), "Luz"), map[string]any{"tipo": "despesa"}))
	require.NoError(t, store.Set(ctx, docstore.Join(docstore.LegacyClubCategories(testClub), "Velha"), true))
	require.NoError(t, store.Set(ctx, docstore.Join(docstore.LegacyClubCategories(testClub), "k1"), map[string]any{"nome": "Cantina", "tipo": "entrada"}))
	require.NoError(t, store.Set(ctx, docstore.Join(docstore.LegacyRootLedger(), "t1"), map[string]any{"tipo": "receita", "valor": "10,5", "data": "2024-05-01"}))
	require.NoError(t, store.Set(ctx, docstore.Join(docstore.LegacyRootLedger(), "t2"), map[string]any{"tipo": "saida", "valor": "n/a", "data": "2024-05-01"}))

	t.Run("root categories skip nameless entries", func(t *testing.T) {
		cats, err := repo.RootCategories(ctx)
		require.NoError(t, err)
		require.Len(t, cats, 1)
		assert.Equal(t, "Bar", cats[0].Nome)
		assert.Equal(t, finance.TipoEntrada, cats[0].Tipo)
	})

	t.Run("club categories are keyed by name", func(t *testing.T) {
		cats, skipped, err := repo.ClubCategories(ctx, testClub)
		require.NoError(t, err)
		assert.Equal(t, 1, skipped)
		require.Len(t, cats, 2)
		assert.Equal(t, "Luz", cats[0].Nome)
		assert.Equal(t, finance.TipoSaida, cats[0].Tipo)
		assert.Equal(t, "Cantina", cats[1].Nome)
		assert.Equal(t, finance.TipoEntrada, cats[1].Tipo)
	})

	t.Run("root ledger normalizes tipos and drops unreadable amounts", func(t *testing.T) {
		list, err := repo.RootTransactions(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "t1", list[0].ID)
		assert.Equal(t, finance.TipoEntrada, list[0].Tipo)
		assert.Equal(t, "2024-05", list[0].Mes)
		assert.Equal(t, "10.5", list[0].Valor.String())
	})

	t.Run("empty club", func(t *testing.T) {
		cats, skipped, err := repo.ClubCategories(ctx, "other")
		require.NoError(t, err)
		assert.Empty(t, cats)
		assert.Zero(t, skipped)
	})
}
