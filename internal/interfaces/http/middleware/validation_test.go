package middleware

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Tipo      string `json:"tipo" binding:"required,tipo"`
	Categoria string `json:"categoria" binding:"required"`
	Descricao string `json:"descricao" binding:"max=5"`
	Page      int    `form:"page" binding:"min=0"`
}

func newTestValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	RegisterValidations(v)
	return v
}

func TestSetupValidator(t *testing.T) {
	require.NoError(t, SetupValidator())
}

func TestBindingError_Validation(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		req     sampleRequest
		message string
	}{
		{"missing tipo", sampleRequest{Categoria: "Bar"}, "Tipo inválido. Use: entrada ou saida"},
		{"legacy tipo", sampleRequest{Tipo: "despesa", Categoria: "Bar"}, "Tipo inválido. Use: entrada ou saida"},
		{"missing categoria", sampleRequest{Tipo: "entrada"}, "Categoria obrigatória"},
		{"long descricao", sampleRequest{Tipo: "saida", Categoria: "Luz", Descricao: "abcdef"}, "Campo descricao excede 5 caracteres"},
		{"negative page", sampleRequest{Tipo: "saida", Categoria: "Luz", Page: -1}, "Campo page deve ser no mínimo 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			require.Error(t, err)
			de := BindingError(err)
			assert.Equal(t, shared.CodeInvalidArgument, de.Code)
			assert.Equal(t, tt.message, de.Message)
		})
	}

	assert.NoError(t, v.Struct(sampleRequest{Tipo: " entrada ", Categoria: "Bar"}))
}

func TestBindingError_Decode(t *testing.T) {
	var req sampleRequest
	err := json.Unmarshal([]byte(`{"tipo":`), &req)
	require.Error(t, err)
	// truncated input is reported by encoding/json as an unexpected end
	assert.Equal(t, shared.CodeInvalidArgument, BindingError(err).Code)

	err = json.Unmarshal([]byte(`{"tipo": 1}`), &req)
	assert.Equal(t, "Campo tipo com tipo inválido", BindingError(err).Message)

	err = json.Unmarshal([]byte(`{"tipo" "x"}`), &req)
	assert.Equal(t, "JSON inválido", BindingError(err).Message)

	assert.Equal(t, "Requisição inválida", BindingError(errors.New("boom")).Message)
}
