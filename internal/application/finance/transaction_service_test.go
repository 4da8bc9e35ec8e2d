package finance

import (
	"testing"
	"time"

	"github.com/clubhub/backend/internal/domain/audit"
	"github.com/clubhub/backend/internal/domain/finance"
	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFinancialTransaction(t *testing.T) {
	f := newFixture(t)
	f.createCategory(t, "Mensalidade", finance.TipoEntrada)

	resp, err := f.ledger.AddFinancialTransaction(f.ctx, diretorCaller, testClub, AddTransactionRequest{
		Tipo:        "entrada",
		Categoria:   "Mensalidade",
		Valor:       decimal.NewFromInt(50),
		Descricao:   "Mensalidade março",
		Observacoes: "pago em dinheiro",
		Data:        "2025-03-10",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	stored, err := f.transactions.FindByID(f.ctx, testClub, resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, finance.TipoEntrada, stored.Tipo)
	assert.Equal(t, "2025-03", stored.Mes)
	assert.Equal(t, f.clock.Now().UnixMilli(), stored.Timestamp)
	assert.Equal(t, "u-diretor", stored.CriadoPor)
	assert.Equal(t, "diretor", stored.CriadoPorLogin)
	assert.True(t, stored.Editavel)
	assertDecimal(t, "50", stored.Valor)

	last := f.lastAudit(t)
	assert.Equal(t, audit.ActionFinancialAdd, last.Acao)
	assert.Equal(t, "Adicionou entrada: Mensalidade março - R$ 50", last.Descricao)
	assert.Equal(t, "diretor", last.Usuario)
	assert.Equal(t, "diretor", last.Role)
	assert.Equal(t, audit.SourceServer, last.Source)
	assert.Equal(t, resp.TransactionID, last.Dados["transactionId"])
	assert.Equal(t, "2025-03-15", last.Data)
	assert.Equal(t, "09:00:00", last.Hora)
}

func TestAddFinancialTransaction_Validation(t *testing.T) {
	f := newFixture(t)
	f.createCategory(t, "Bar", finance.TipoEntrada)

	base := AddTransactionRequest{Tipo: "entrada", Categoria: "Bar", Valor: decimal.NewFromInt(10), Data: "2025-03-01"}
	tests := []struct {
		name   string
		mutate func(r *AddTransactionRequest)
		code   string
	}{
		{"zero valor", func(r *AddTransactionRequest) { r.Valor = decimal.Zero }, shared.CodeInvalidArgument},
		{"negative valor", func(r *AddTransactionRequest) { r.Valor = decimal.NewFromInt(-10) }, shared.CodeInvalidArgument},
		{"unknown tipo", func(r *AddTransactionRequest) { r.Tipo = "receita" }, shared.CodeInvalidArgument},
		{"missing categoria", func(r *AddTransactionRequest) { r.Categoria = " " }, shared.CodeInvalidArgument},
		{"bad data", func(r *AddTransactionRequest) { r.Data = "10/03/2025" }, shared.CodeInvalidArgument},
		{"missing data", func(r *AddTransactionRequest) { r.Data = "" }, shared.CodeInvalidArgument},
		{"unknown categoria", func(r *AddTransactionRequest) { r.Categoria = "Luz" }, shared.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := f.ledger.AddFinancialTransaction(f.ctx, adminCaller, testClub, req)
			assertCode(t, tt.code, err)
			assert.Zero(t, f.ledgerSize(t))
		})
	}
}

func TestAddFinancialTransaction_InvalidatesCache(t *testing.T) {
	f := newFixture(t)
	f.createCategory(t, "Bar", finance.TipoEntrada)
	_, err := f.balance.GetBalance(f.ctx, adminCaller, testClub, false)
	require.NoError(t, err)

	f.add(t, finance.TipoEntrada, "Bar", 15, "2025-03-02")

	entry, err := f.cache.Get(f.ctx, testClub)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestUpdateFinancialTransaction(t *testing.T) {
	f := newFixture(t)
	f.createCategory(t, "Bar", finance.TipoEntrada)
	f.createCategory(t, "Cantina", finance.TipoEntrada)
	id := f.add(t, finance.TipoEntrada, "Bar", 100, "2025-03-01")

	f.clock.Advance(time.Hour)
	err := f.ledger.UpdateFinancialTransaction(f.ctx, adminCaller, testClub, id, updates(t, map[string]any{
		"valor":     40,
		"categoria": "Cantina",
		"data":      "2025-02-28",
	}))
	require.NoError(t, err)

	stored, err := f.transactions.FindByID(f.ctx, testClub, id)
	require.NoError(t, err)
	assertDecimal(t, "40", stored.Valor)
	assert.Equal(t, "Cantina", stored.Categoria)
	assert.Equal(t, "2025-02", stored.Mes)
	assert.Equal(t, "u-admin", stored.EditadoPor)
	assert.Equal(t, "admin", stored.EditadoPorLogin)
	require.NotNil(t, stored.EditadoEm)
	assert.True(t, stored.EditadoEm.Equal(f.clock.Now()))
	assert.Equal(t, "u-diretor", stored.CriadoPor)

	resp, err := f.balance.GetBalance(f.ctx, adminCaller, testClub, false)
	require.NoError(t, err)
	assertDecimal(t, "40", resp.Balance)

	last := f.lastAudit(t)
	assert.Equal(t, audit.ActionFinancialUpdate, last.Acao)
	assert.Equal(t, "Editou transação: Bar 2025-03-01", last.Descricao)
	oldData, ok := last.Dados["oldData"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Bar", oldData["categoria"])
	newData, ok := last.Dados["newData"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Cantina", newData["categoria"])
	assert.NotContains(t, newData, "descricao")
}

func TestUpdateFinancialTransaction_Rejections(t *testing.T) {
	f := newFixture(t)
	f.createCategory(t, "Bar", finance.TipoEntrada)
	id := f.add(t, finance.TipoEntrada, "Bar", 100, "2025-03-01")

	tests := []struct {
		name    string
		id      string
		fields  map[string]any
		code    string
		message string
	}{
		{"disallowed fields", id, map[string]any{"valor": 10, "criadoPor": "x", "id": "y"}, shared.CodeInvalidArgument, "Campos não permitidos: criadoPor, id"},
		{"zero valor", id, map[string]any{"valor": 0}, shared.CodeInvalidArgument, "Valor deve ser maior que zero"},
		{"empty patch", id, map[string]any{}, shared.CodeInvalidArgument, "Nenhum campo para atualizar"},
		{"unknown category", id, map[string]any{"categoria": "Luz"}, shared.CodeNotFound, "Categoria não encontrada"},
		{"missing record", "nope", map[string]any{"valor": 10}, shared.CodeNotFound, "Transação não encontrada"},
		{"empty id", "", map[string]any{"valor": 10}, shared.CodeInvalidArgument, "ID da transação obrigatório"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.ledger.UpdateFinancialTransaction(f.ctx, adminCaller, testClub, tt.id, updates(t, tt.fields))
			assertCode(t, tt.code, err)
			assert.Equal(t, tt.message, err.Error())
		})
	}

	stored, err := f.transactions.FindByID(f.ctx, testClub, id)
	require.NoError(t, err)
	assertDecimal(t, "100", stored.Valor)
	assert.Nil(t, stored.EditadoEm)
}

func TestDeleteFinancialTransaction(t *testing.T) {
	f := newFixture(t)
	f.createCategory(t, "Luz", finance.TipoSaida)
	id := f.add(t, finance.TipoSaida, "Luz", 75, "2025-03-03")

	require.NoError(t, f.ledger.DeleteFinancialTransaction(f.ctx, diretorCaller, testClub, id))

	_, err := f.transactions.FindByID(f.ctx, testClub, id)
	assertCode(t, shared.CodeNotFound, err)

	last := f.lastAudit(t)
	assert.Equal(t, audit.ActionFinancialDelete, last.Acao)
	assert.Equal(t, "Excluiu saida: Luz 2025-03-03 - R$ 75", last.Descricao)

	err = f.ledger.DeleteFinancialTransaction(f.ctx, diretorCaller, testClub, id)
	assertCode(t, shared.CodeNotFound, err)
}

func TestImmutabilityWindow(t *testing.T) {
	f := newFixture(t, fixtureConfig{immutabilityDays: 30})
	f.createCategory(t, "Bar", finance.TipoEntrada)
	old := f.add(t, finance.TipoEntrada, "Bar", 10, "2025-01-02")
	recent := f.add(t, finance.TipoEntrada, "Bar", 10, "2025-03-01")

	err := f.ledger.UpdateFinancialTransaction(f.ctx, adminCaller, testClub, old, updates(t, map[string]any{"valor": 20}))
	assertCode(t, shared.CodeFailedPrecondition, err)
	assert.Equal(t, "Transação imutável (>30 dias). Data: 2025-01-02", err.Error())

	err = f.ledger.DeleteFinancialTransaction(f.ctx, adminCaller, testClub, old)
	assertCode(t, shared.CodeFailedPrecondition, err)
	assert.Equal(t, 2, f.ledgerSize(t))

	require.NoError(t, f.ledger.UpdateFinancialTransaction(f.ctx, adminCaller, testClub, recent,
		updates(t, map[string]any{"descricao": "corrigido"})))
}

func TestJogadorCannotMutate(t *testing.T) {
	f := newFixture(t)
	f.createCategory(t, "Bar", finance.TipoEntrada)
	id := f.add(t, finance.TipoEntrada, "Bar", 10, "2025-03-01")
	before := len(f.auditEntries(t))

	_, err := f.ledger.AddFinancialTransaction(f.ctx, jogadorCaller, testClub, AddTransactionRequest{
		Tipo: "entrada", Categoria: "Bar", Valor: decimal.NewFromInt(10), Data: "2025-03-01",
	})
	assertCode(t, shared.CodePermissionDenied, err)

	err = f.ledger.UpdateFinancialTransaction(f.ctx, jogadorCaller, testClub, id, updates(t, map[string]any{"valor": 99}))
	assertCode(t, shared.CodePermissionDenied, err)

	err = f.ledger.DeleteFinancialTransaction(f.ctx, jogadorCaller, testClub, id)
	assertCode(t, shared.CodePermissionDenied, err)

	_, err = f.registry.CreateCategory(f.ctx, jogadorCaller, testClub, CreateCategoryRequest{Nome: "Luz", Tipo: "saida"})
	assertCode(t, shared.CodePermissionDenied, err)

	err = f.registry.DeleteCategory(f.ctx, jogadorCaller, testClub, "Bar")
	assertCode(t, shared.CodePermissionDenied, err)

	assert.Equal(t, 1, f.ledgerSize(t))
	stored, err := f.transactions.FindByID(f.ctx, testClub, id)
	require.NoError(t, err)
	assertDecimal(t, "10", stored.Valor)
	_, err = f.categories.FindByName(f.ctx, testClub, "Luz")
	assertCode(t, shared.CodeNotFound, err)
	_, err = f.categories.FindByName(f.ctx, testClub, "Bar")
	require.NoError(t, err)
	assert.Len(t, f.auditEntries(t), before)
}

func TestListTransactions(t *testing.T) {
	f := newFixture(t)
	f.createCategory(t, "Bar", finance.TipoEntrada)
	f.add(t, finance.TipoEntrada, "Bar", 1, "2025-02-10")
	f.add(t, finance.TipoEntrada, "Bar", 2, "2025-03-05")
	f.clock.Advance(time.Minute)
	f.add(t, finance.TipoEntrada, "Bar", 3, "2025-03-05")
	f.add(t, finance.TipoEntrada, "Bar", 4, "2025-03-20")

	page, err := f.ledger.ListTransactions(f.ctx, jogadorCaller, testClub, ListTransactionsRequest{Mes: "2025-03"})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, int64(3), page.Total)
	assertDecimal(t, "4", page.Items[0].Valor)
	assertDecimal(t, "3", page.Items[1].Valor)
	assertDecimal(t, "2", page.Items[2].Valor)

	page, err = f.ledger.ListTransactions(f.ctx, jogadorCaller, testClub, ListTransactionsRequest{Page: 2, PageSize: 3})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(4), page.Total)
	assertDecimal(t, "1", page.Items[0].Valor)

	_, err = f.ledger.ListTransactions(f.ctx, jogadorCaller, testClub, ListTransactionsRequest{Mes: "03/2025"})
	assertCode(t, shared.CodeInvalidArgument, err)
}
