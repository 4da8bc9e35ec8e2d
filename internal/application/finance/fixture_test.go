package finance

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	appaudit "github.com/clubhub/backend/internal/application/audit"
	"github.com/clubhub/backend/internal/application/guard"
	"github.com/clubhub/backend/internal/domain/audit"
	"github.com/clubhub/backend/internal/domain/finance"
	"github.com/clubhub/backend/internal/domain/identity"
	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/clubhub/backend/internal/infrastructure/docstore"
	"github.com/clubhub/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClub = "club-1"

var (
	adminCaller   = &identity.Caller{UID: "u-admin", Email: "admin@club.test"}
	diretorCaller = &identity.Caller{UID: "u-diretor", Email: "diretor@club.test"}
	jogadorCaller = &identity.Caller{UID: "u-jogador", Email: "jogador@club.test"}
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type fixture struct {
	ctx   context.Context
	store *docstore.MemoryStore
	clock *fakeClock

	transactions *persistence.DocTransactionRepository
	categories   *persistence.DocCategoryRepository
	cache        *persistence.DocBalanceCacheRepository
	players      *persistence.DocPlayerRepository
	auditLog     *persistence.DocAuditRepository

	balance      *BalanceService
	ledger       *TransactionService
	registry     *CategoryService
	mensalidades *MensalidadeService
}

type fixtureConfig struct {
	immutabilityDays int
}

func newFixture(t *testing.T, cfgs ...fixtureConfig) *fixture {
	t.Helper()
	var cfg fixtureConfig
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}

	ctx := context.Background()
	store := docstore.NewMemoryStore()
	clock := &fakeClock{now: time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)}

	members := persistence.NewDocMemberRepository(store)
	for uid, role := range map[string]identity.Role{
		"u-admin":   identity.RoleAdmin,
		"u-diretor": identity.RoleDiretor,
		"u-jogador": identity.RoleJogador,
	} {
		require.NoError(t, members.Save(ctx, testClub, &identity.Member{
			UID:    uid,
			Role:   role,
			Status: identity.MemberStatusApproved,
			Login:  uid[2:],
		}))
	}

	f := &fixture{
		ctx:          ctx,
		store:        store,
		clock:        clock,
		transactions: persistence.NewDocTransactionRepository(store, nil),
		categories:   persistence.NewDocCategoryRepository(store),
		cache:        persistence.NewDocBalanceCacheRepository(store),
		players:      persistence.NewDocPlayerRepository(store, nil),
		auditLog:     persistence.NewDocAuditRepository(store),
	}

	g := guard.New(members)
	recorder := appaudit.NewRecorder(f.auditLog, appaudit.LoadLocation(appaudit.DefaultTimezone),
		appaudit.WithClock(clock.Now))
	opts := []Option{WithClock(clock.Now)}

	f.balance = NewBalanceService(f.transactions, f.players, f.cache, g, recorder, finance.CacheTTL, opts...)
	f.ledger = NewTransactionService(f.transactions, f.categories, f.cache, g, recorder, cfg.immutabilityDays, opts...)
	f.registry = NewCategoryService(f.categories, f.transactions, g, recorder, opts...)
	f.mensalidades = NewMensalidadeService(f.players, f.cache, g, recorder, opts...)
	return f
}

func (f *fixture) createCategory(t *testing.T, nome string, tipo finance.Tipo) *CategoryResponse {
	t.Helper()
	c, err := f.registry.CreateCategory(f.ctx, adminCaller, testClub, CreateCategoryRequest{Nome: nome, Tipo: tipo.String()})
	require.NoError(t, err)
	return c
}

func (f *fixture) add(t *testing.T, tipo finance.Tipo, categoria string, valor int64, data string) string {
	t.Helper()
	resp, err := f.ledger.AddFinancialTransaction(f.ctx, diretorCaller, testClub, AddTransactionRequest{
		Tipo:      tipo.String(),
		Categoria: categoria,
		Valor:     decimal.NewFromInt(valor),
		Descricao: categoria + " " + data,
		Data:      data,
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.TransactionID)
	return resp.TransactionID
}

func (f *fixture) seedPlayer(t *testing.T, id string, doc map[string]any) {
	t.Helper()
	require.NoError(t, f.store.Set(f.ctx, docstore.ClubPlayer(testClub, id), doc))
}

func (f *fixture) ledgerSize(t *testing.T) int {
	t.Helper()
	all, err := f.transactions.FindAll(f.ctx, testClub)
	require.NoError(t, err)
	return len(all)
}

func (f *fixture) auditEntries(t *testing.T) []audit.Entry {
	t.Helper()
	entries, err := f.auditLog.Recent(f.ctx, testClub, 0)
	require.NoError(t, err)
	return entries
}

func (f *fixture) lastAudit(t *testing.T) audit.Entry {
	t.Helper()
	entries := f.auditEntries(t)
	require.NotEmpty(t, entries)
	return entries[0]
}

func updates(t *testing.T, fields map[string]any) map[string]json.RawMessage {
	t.Helper()
	out := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		out[k] = raw
	}
	return out
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}

func assertCode(t *testing.T, code string, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, shared.CodeOf(err), err.Error())
}
