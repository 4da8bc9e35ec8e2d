package finance

import (
	"testing"
	"time"

	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func validInput() NewTransactionInput {
	return NewTransactionInput{
		Tipo:      "entrada",
		Categoria: " Bar ",
		Valor:     decimal.NewFromInt(50),
		Descricao: "Vendas do bar",
		Data:      "2025-03-10",
	}
}

func TestNewTransaction(t *testing.T) {
	tx, err := NewTransaction(validInput(), Author{UID: "u1", Login: "ana"}, testNow)
	require.NoError(t, err)
	assert.Empty(t, tx.ID)
	assert.Equal(t, TipoEntrada, tx.Tipo)
	assert.Equal(t, "Bar", tx.Categoria)
	assert.Equal(t, "2025-03", tx.Mes)
	assert.Equal(t, testNow.UnixMilli(), tx.Timestamp)
	assert.Equal(t, "u1", tx.CriadoPor)
	assert.Equal(t, "ana", tx.CriadoPorLogin)
	assert.True(t, tx.Editavel)
	assert.Nil(t, tx.EditadoEm)
}

func TestNewTransaction_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *NewTransactionInput)
	}{
		{"zero valor", func(in *NewTransactionInput) { in.Valor = decimal.Zero }},
		{"negative valor", func(in *NewTransactionInput) { in.Valor = decimal.NewFromInt(-10) }},
		{"legacy tipo", func(in *NewTransactionInput) { in.Tipo = "despesa" }},
		{"empty categoria", func(in *NewTransactionInput) { in.Categoria = "" }},
		{"empty data", func(in *NewTransactionInput) { in.Data = "" }},
		{"short data", func(in *NewTransactionInput) { in.Data = "2025-3" }},
		{"impossible data", func(in *NewTransactionInput) { in.Data = "2025-02-30" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := NewTransaction(in, Author{UID: "u1"}, testNow)
			assert.True(t, shared.HasCode(err, shared.CodeInvalidArgument), err)
		})
	}
}

func TestNormalizeLegacyTipo(t *testing.T) {
	assert.Equal(t, TipoEntrada, NormalizeLegacyTipo("Receita"))
	assert.Equal(t, TipoSaida, NormalizeLegacyTipo(" despesa"))
	assert.Equal(t, TipoSaida, NormalizeLegacyTipo("saida"))
	assert.False(t, NormalizeLegacyTipo("outro").IsValid())
}

func TestTransaction_Signed(t *testing.T) {
	in := &Transaction{Tipo: TipoEntrada, Valor: decimal.NewFromInt(10)}
	out := &Transaction{Tipo: TipoSaida, Valor: decimal.NewFromInt(10)}
	assert.Equal(t, "10", in.Signed().String())
	assert.Equal(t, "-10", out.Signed().String())
}

func TestTransaction_AgeDays(t *testing.T) {
	assert.Equal(t, 5, (&Transaction{Data: "2025-03-10"}).AgeDays(testNow))
	assert.Equal(t, 0, (&Transaction{Data: ""}).AgeDays(testNow))
	assert.Equal(t, 0, (&Transaction{Data: "garbage!!"}).AgeDays(testNow))
}

func TestCheckUpdatableFields(t *testing.T) {
	assert.NoError(t, CheckUpdatableFields(UpdatableFields))
	assert.NoError(t, CheckUpdatableFields(nil))

	err := CheckUpdatableFields([]string{"valor", "mes", "criadoPor"})
	require.Error(t, err)
	assert.Equal(t, "Campos não permitidos: criadoPor, mes", err.Error())
}

func TestTransaction_Apply(t *testing.T) {
	tx, err := NewTransaction(validInput(), Author{UID: "u1", Login: "ana"}, testNow)
	require.NoError(t, err)

	valor := decimal.NewFromInt(40)
	data := "2025-04-02"
	categoria := "  Cantina "
	p := TransactionPatch{Valor: &valor, Data: &data, Categoria: &categoria}
	require.NoError(t, p.Validate())
	assert.True(t, p.ChangesCategoria(tx.Categoria))

	later := testNow.Add(time.Hour)
	tx.Apply(p, Author{UID: "u2", Login: "rui"}, later)
	assert.Equal(t, "40", tx.Valor.String())
	assert.Equal(t, "2025-04", tx.Mes)
	assert.Equal(t, "Cantina", tx.Categoria)
	assert.Equal(t, "Vendas do bar", tx.Descricao)
	require.NotNil(t, tx.EditadoEm)
	assert.True(t, tx.EditadoEm.Equal(later))
	assert.Equal(t, "u2", tx.EditadoPor)
	assert.Equal(t, "u1", tx.CriadoPor)
}

func TestTransactionPatch_ChangesCategoria(t *testing.T) {
	same := "Bar"
	assert.False(t, TransactionPatch{Categoria: &same}.ChangesCategoria("Bar"))
	assert.False(t, TransactionPatch{}.ChangesCategoria("Bar"))
}
