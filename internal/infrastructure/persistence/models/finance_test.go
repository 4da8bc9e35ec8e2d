package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/clubhub/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionDoc_RoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	tx, err := finance.NewTransaction(finance.NewTransactionInput{
		Tipo:      "saida",
		Categoria: "Luz",
		Valor:     decimal.RequireFromString("40.5"),
		Descricao: "Conta de luz",
		Data:      "2025-03-09",
	}, finance.Author{UID: "u1", Login: "ana"}, now)
	require.NoError(t, err)

	data, err := json.Marshal(FromTransaction(tx))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"valor":40.5`)

	var doc TransactionDoc
	require.NoError(t, json.Unmarshal(data, &doc))
	got, ok := doc.ToDomain("t1")
	require.True(t, ok)
	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, finance.TipoSaida, got.Tipo)
	assert.True(t, got.Valor.Equal(tx.Valor))
	assert.Equal(t, "2025-03", got.Mes)
	assert.True(t, got.CriadoEm.Equal(now))
}

func TestTransactionDoc_LegacyRecords(t *testing.T) {
	t.Run("string amount and legacy tipo", func(t *testing.T) {
		var doc TransactionDoc
		require.NoError(t, json.Unmarshal([]byte(`{"tipo":"receita","valor":"100","data":"2024-12-01"}`), &doc))
		got, ok := doc.ToDomain("x")
		require.True(t, ok)
		assert.Equal(t, finance.TipoEntrada, got.Tipo)
		assert.True(t, got.Valor.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, "2024-12", got.Mes)
	})

	t.Run("unreadable amount is skipped", func(t *testing.T) {
		var doc TransactionDoc
		require.NoError(t, json.Unmarshal([]byte(`{"tipo":"saida","valor":"n/a"}`), &doc))
		_, ok := doc.ToDomain("x")
		assert.False(t, ok)
	})
}

func TestBalanceCacheDoc_DerivesBalance(t *testing.T) {
	var doc BalanceCacheDoc
	require.NoError(t, json.Unmarshal([]byte(`{"balance":999,"totalReceitas":100,"totalDespesas":40,"timestamp":1}`), &doc))
	c := doc.ToDomain()
	assert.True(t, c.Balance.Equal(decimal.NewFromInt(60)))
}

func TestPlayerDoc_ToDomain(t *testing.T) {
	t.Run("map keyed mensalidades", func(t *testing.T) {
		var doc PlayerDoc
		require.NoError(t, json.Unmarshal([]byte(`{
			"nome": "Rui",
			"valorMensalidade": 50,
			"mensalidades": {"2025-01": {"pago": true, "valor": 50, "valorPago": 45}, "fev/25": {"pago": false, "valor": 50}}
		}`), &doc))
		p, err := doc.ToDomain("p1", 2030)
		require.NoError(t, err)
		require.Len(t, p.Mensalidades, 2)
		assert.True(t, p.Mensalidades["2025-01"].Contribution().Equal(decimal.NewFromInt(45)))
		assert.False(t, p.Mensalidades["2025-02"].Pago)
	})

	t.Run("array mensalidades use base year", func(t *testing.T) {
		var doc PlayerDoc
		require.NoError(t, json.Unmarshal([]byte(`{
			"nome": "Rui",
			"mensalidadesBaseYear": 2024,
			"mensalidades": [{"pago": true, "valor": 30}, null, {"pago": true, "valor": 30}]
		}`), &doc))
		p, err := doc.ToDomain("p1", 2030)
		require.NoError(t, err)
		assert.Len(t, p.Mensalidades, 2)
		assert.True(t, p.Mensalidades["2024-01"].Pago)
		assert.True(t, p.Mensalidades["2024-03"].Pago)
	})

	t.Run("array mensalidades fall back to createdAt year", func(t *testing.T) {
		created := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
		raw := []byte(`{"nome":"Rui","mensalidades":[{"pago":true,"valor":10}],"createdAt":` + decimal.NewFromInt(created).String() + `}`)
		var doc PlayerDoc
		require.NoError(t, json.Unmarshal(raw, &doc))
		p, err := doc.ToDomain("p1", 2030)
		require.NoError(t, err)
		assert.Contains(t, p.Mensalidades, "2023-01")
	})
}

func TestMergePlayer_PreservesOtherFields(t *testing.T) {
	current := []byte(`{"nome":"Rui","posicao":"goleiro","mensalidades":[{"pago":false,"valor":10}],"mensalidadesBaseYear":2024}`)
	p := &finance.Player{
		ID: "p1",
		Mensalidades: map[string]finance.Mensalidade{
			"2024-01": {Pago: true, Valor: decimal.NewFromInt(10), ValorPago: decimal.NewFromInt(10), DataPagamento: "2024-01-05"},
		},
	}

	out, err := MergePlayer(current, p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"nome": "Rui",
		"posicao": "goleiro",
		"mensalidades": {"2024-01": {"pago": true, "valor": 10, "valorPago": 10, "dataPagamento": "2024-01-05"}}
	}`, string(out))
}
