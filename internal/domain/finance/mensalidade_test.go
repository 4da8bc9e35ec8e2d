package finance

import (
	"testing"

	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMonthKey(t *testing.T) {
	tests := map[string]string{
		"2025-03":    "2025-03",
		"2025-3-01":  "2025-03",
		"2025-03-15": "2025-03",
		"MAR/25":     "2025-03",
		"dez/24":     "2024-12",
		" fev/26 ":   "2026-02",
		"xyz/25":     "xyz/25",
		"março":      "março",
		"":           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeMonthKey(in), in)
	}
}

func TestMonthKeyFromIndex(t *testing.T) {
	assert.Equal(t, "2025-01", MonthKeyFromIndex(2025, 0))
	assert.Equal(t, "2025-12", MonthKeyFromIndex(2025, 11))
}

func TestMensalidade_Contribution(t *testing.T) {
	assert.True(t, Mensalidade{Pago: false, Valor: d("50")}.Contribution().IsZero())
	assert.True(t, d("50").Equal(Mensalidade{Pago: true, Valor: d("50")}.Contribution()))
	assert.True(t, d("45").Equal(Mensalidade{Pago: true, Valor: d("50"), ValorPago: d("45")}.Contribution()))
}

func TestPlayer_RecordPayment(t *testing.T) {
	p := &Player{ID: "p1", ValorMensalidade: d("50")}

	change, err := p.RecordPayment("mar/25", true, d("45"), testNow)
	require.NoError(t, err)
	assert.Equal(t, "2025-03", change.Month)
	assert.True(t, d("45").Equal(change.Delta()))
	m := p.Mensalidades["2025-03"]
	assert.True(t, m.Pago)
	assert.True(t, d("50").Equal(m.Valor))
	assert.Equal(t, "2025-03-15", m.DataPagamento)

	change, err = p.RecordPayment("2025-03", false, d("0"), testNow)
	require.NoError(t, err)
	assert.True(t, d("-45").Equal(change.Delta()))
	assert.Empty(t, p.Mensalidades["2025-03"].DataPagamento)

	_, err = p.RecordPayment("2025-04", true, d("0"), testNow)
	assert.True(t, shared.HasCode(err, shared.CodeInvalidArgument))

	_, err = p.RecordPayment("abril", true, d("50"), testNow)
	assert.True(t, shared.HasCode(err, shared.CodeInvalidArgument))

	isento := &Player{ID: "p2", Isento: true}
	_, err = isento.RecordPayment("2025-03", true, d("50"), testNow)
	assert.True(t, shared.HasCode(err, shared.CodeFailedPrecondition))
	assert.Empty(t, isento.Mensalidades)
}

func TestNewCategory(t *testing.T) {
	c, err := NewCategory("  Luz ", "saida")
	require.NoError(t, err)
	assert.Equal(t, "Luz", c.Nome)
	assert.Equal(t, TipoSaida, c.Tipo)

	_, err = NewCategory("", "saida")
	assert.True(t, shared.HasCode(err, shared.CodeInvalidArgument))
	_, err = NewCategory("Luz", "despesa")
	assert.True(t, shared.HasCode(err, shared.CodeInvalidArgument))

	list := []Category{{Nome: "Bar"}, {Nome: "Luz"}}
	found, ok := FindByName(list, "Luz")
	require.True(t, ok)
	assert.Equal(t, "Luz", found.Nome)
	_, ok = FindByName(list, "luz")
	assert.False(t, ok)
}
