package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/clubhub/backend/internal/domain/audit"
	"github.com/clubhub/backend/internal/domain/finance"
	"github.com/clubhub/backend/internal/domain/identity"
	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/clubhub/backend/internal/infrastructure/docstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClub = "club-1"

func newTransaction(t *testing.T, tipo, categoria string, valor int64, data string) *finance.Transaction {
	t.Helper()
	tx, err := finance.NewTransaction(finance.NewTransactionInput{
		Tipo:      tipo,
		Categoria: categoria,
		Valor:     decimal.NewFromInt(valor),
		Descricao: categoria,
		Data:      data,
	}, finance.Author{UID: "u1", Login: "ana"}, time.Now())
	require.NoError(t, err)
	return tx
}

func TestDocTransactionRepository(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	repo := NewDocTransactionRepository(store, nil)

	in := newTransaction(t, "entrada", "Mensalidade", 100, "2025-01-10")
	require.NoError(t, repo.Create(ctx, testClub, in))
	require.NotEmpty(t, in.ID)
	out := newTransaction(t, "saida", "Luz", 40, "2025-02-03")
	require.NoError(t, repo.Create(ctx, testClub, out))

	t.Run("find by id", func(t *testing.T) {
		got, err := repo.FindByID(ctx, testClub, in.ID)
		require.NoError(t, err)
		assert.Equal(t, "Mensalidade", got.Categoria)
		assert.True(t, got.Valor.Equal(decimal.NewFromInt(100)))
	})

	t.Run("find by id missing", func(t *testing.T) {
		_, err := repo.FindByID(ctx, testClub, "nope")
		assert.True(t, shared.HasCode(err, shared.CodeNotFound))
		_, err = repo.FindByID(ctx, testClub, "bad.id")
		assert.True(t, shared.HasCode(err, shared.CodeNotFound))
	})

	t.Run("find all skips unreadable amounts", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, docstore.ClubTransaction(testClub, "zzz"), map[string]any{
			"tipo": "saida", "categoria": "Luz", "valor": "abc", "data": "2025-01-01",
		}))
		all, err := repo.FindAll(ctx, testClub)
		require.NoError(t, err)
		assert.Len(t, all, 2)
		require.NoError(t, store.Remove(ctx, docstore.ClubTransaction(testClub, "zzz")))
	})

	t.Run("find by month", func(t *testing.T) {
		list, err := repo.FindByMes(ctx, testClub, "2025-02")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, out.ID, list[0].ID)
	})

	t.Run("exists by category", func(t *testing.T) {
		ok, err := repo.ExistsByCategoria(ctx, testClub, "Luz")
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = repo.ExistsByCategoria(ctx, testClub, "Agua")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("save and delete", func(t *testing.T) {
		out.Valor = decimal.NewFromInt(55)
		require.NoError(t, repo.Save(ctx, testClub, out))
		got, err := repo.FindByID(ctx, testClub, out.ID)
		require.NoError(t, err)
		assert.True(t, got.Valor.Equal(decimal.NewFromInt(55)))

		require.NoError(t, repo.Delete(ctx, testClub, out.ID))
		_, err = repo.FindByID(ctx, testClub, out.ID)
		assert.True(t, shared.HasCode(err, shared.CodeNotFound))
	})
}

func TestDocCategoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDocCategoryRepository(docstore.NewMemoryStore())

	c, err := finance.NewCategory("Mensalidade", "entrada")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, testClub, c))
	d, err := finance.NewCategory("Luz", "saida")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, testClub, d))

	entradas, err := repo.FindByTipo(ctx, testClub, finance.TipoEntrada)
	require.NoError(t, err)
	require.Len(t, entradas, 1)
	assert.Equal(t, "Mensalidade", entradas[0].Nome)

	found, err := repo.FindByName(ctx, testClub, "Luz")
	require.NoError(t, err)
	assert.Equal(t, finance.TipoSaida, found.Tipo)
	assert.Equal(t, d.ID, found.ID)

	_, err = repo.FindByName(ctx, testClub, "Agua")
	assert.True(t, shared.HasCode(err, shared.CodeNotFound))

	require.NoError(t, repo.Delete(ctx, testClub, found))
	_, err = repo.FindByName(ctx, testClub, "Luz")
	assert.True(t, shared.HasCode(err, shared.CodeNotFound))
}

func TestDocBalanceCacheRepository(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	repo := NewDocBalanceCacheRepository(store)
	now := time.Now()

	t.Run("absent cache", func(t *testing.T) {
		c, err := repo.Get(ctx, testClub)
		require.NoError(t, err)
		assert.Nil(t, c)

		_, err = repo.Adjust(ctx, testClub, func(c *finance.BalanceCache) {})
		assert.ErrorIs(t, err, finance.ErrCacheAbsent)
	})

	t.Run("put get adjust invalidate", func(t *testing.T) {
		entry := finance.NewBalanceCache(decimal.NewFromInt(100), decimal.NewFromInt(40), "u1", now)
		require.NoError(t, repo.Put(ctx, testClub, entry))

		got, err := repo.Get(ctx, testClub)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.Balance.Equal(decimal.NewFromInt(60)))

		adjusted, err := repo.Adjust(ctx, testClub, func(c *finance.BalanceCache) {
			c.ApplyDelta(decimal.NewFromInt(10), decimal.Zero, "u2", finance.UpdateSourceDelta, now)
		})
		require.NoError(t, err)
		assert.True(t, adjusted.Balance.Equal(decimal.NewFromInt(70)))
		assert.True(t, adjusted.IncrementalUpdate)
		assert.Equal(t, finance.UpdateSourceDelta, adjusted.LastUpdate)

		require.NoError(t, repo.Invalidate(ctx, testClub))
		got, err = repo.Get(ctx, testClub)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("corrupt cache reads as absent", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, docstore.ClubBalanceCache(testClub), map[string]any{"timestamp": "soon"}))
		got, err := repo.Get(ctx, testClub)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestDocPlayerRepository(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	repo := NewDocPlayerRepository(store, nil)

	require.NoError(t, store.Set(ctx, docstore.ClubPlayer(testClub, "p1"), map[string]any{
		"nome":                 "Rui",
		"posicao":              "zagueiro",
		"valorMensalidade":     50,
		"mensalidadesBaseYear": 2025,
		"mensalidades":         []any{map[string]any{"pago": true, "valor": 50}},
	}))
	require.NoError(t, store.Set(ctx, docstore.ClubPlayer(testClub, "p2"), map[string]any{
		"nome":   "Isa",
		"isento": true,
	}))

	players, err := repo.FindAll(ctx, testClub)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.True(t, players[0].Mensalidades["2025-01"].Pago)

	t.Run("modify writes month keyed mensalidades", func(t *testing.T) {
		p, err := repo.Modify(ctx, testClub, "p1", func(p *finance.Player) error {
			_, err := p.RecordPayment("2025-02", true, decimal.NewFromInt(50), time.Now())
			return err
		})
		require.NoError(t, err)
		assert.Len(t, p.Mensalidades, 2)

		raw, err := store.Get(ctx, docstore.ClubPlayer(testClub, "p1"))
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"2025-02"`)
		assert.Contains(t, string(raw), `"posicao":"zagueiro"`)
		assert.NotContains(t, string(raw), "mensalidadesBaseYear")
	})

	t.Run("domain errors abort the write", func(t *testing.T) {
		before, err := store.Get(ctx, docstore.ClubPlayer(testClub, "p2"))
		require.NoError(t, err)

		_, err = repo.Modify(ctx, testClub, "p2", func(p *finance.Player) error {
			_, err := p.RecordPayment("2025-02", true, decimal.NewFromInt(50), time.Now())
			return err
		})
		assert.True(t, shared.HasCode(err, shared.CodeFailedPrecondition))

		after, err := store.Get(ctx, docstore.ClubPlayer(testClub, "p2"))
		require.NoError(t, err)
		assert.JSONEq(t, string(before), string(after))
	})

	t.Run("missing player", func(t *testing.T) {
		_, err := repo.Modify(ctx, testClub, "ghost", func(p *finance.Player) error { return nil })
		assert.True(t, shared.HasCode(err, shared.CodeNotFound))
	})
}

func TestDocMemberRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDocMemberRepository(docstore.NewMemoryStore())

	require.NoError(t, repo.Save(ctx, testClub, &identity.Member{
		UID: "u1", Role: identity.RoleDiretor, Status: identity.MemberStatusApproved, Login: "ana",
	}))

	m, err := repo.FindByUID(ctx, testClub, "u1")
	require.NoError(t, err)
	assert.Equal(t, identity.RoleDiretor, m.Role)
	assert.True(t, m.IsApproved())

	_, err = repo.FindByUID(ctx, testClub, "u2")
	assert.True(t, shared.HasCode(err, shared.CodeNotFound))
}

func TestDocAuditRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDocAuditRepository(docstore.NewMemoryStore())
	now := time.Now()

	for _, d := range []string{"first", "second", "third"} {
		e := audit.NewEntry("ana", "admin", audit.ActionFinancialAdd, d, nil, now, time.UTC)
		require.NoError(t, repo.Append(ctx, testClub, e))
		require.NotEmpty(t, e.ID)
	}

	recent, err := repo.Recent(ctx, testClub, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "third", recent[0].Descricao)
	assert.Equal(t, "second", recent[1].Descricao)
	assert.Equal(t, audit.SourceServer, recent[0].Source)
}
