package handler

import (
	"net/http"
	"testing"

	financeapp "github.com/clubhub/backend/internal/application/finance"
	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMensalidadeHandler_RecordPayment(t *testing.T) {
	svc := new(mockMensalidadeService)
	engine := newTestEngine(NewMensalidadeHandler(svc), testCaller)

	svc.On("RecordPayment", mock.Anything, testCaller, testClub, "p1", "2025-03", mock.MatchedBy(func(req financeapp.RecordPaymentRequest) bool {
		return req.Pago && req.ValorPago.Equal(decimal.NewFromInt(45))
	})).Return(&financeapp.PaymentResponse{
		PlayerID:     "p1",
		Month:        "2025-03",
		Pago:         true,
		ValorPago:    decimal.NewFromInt(45),
		Delta:        decimal.NewFromInt(45),
		CacheUpdated: true,
	}, nil)

	w := doRequest(engine, http.MethodPut, "/api/v1/clubs/club-1/players/p1/mensalidades/2025-03", `{"pago":true,"valorPago":45}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got financeapp.PaymentResponse
	decodeData(t, w, &got)
	assert.Equal(t, "2025-03", got.Month)
	assert.True(t, got.Delta.Equal(decimal.NewFromInt(45)))
	assert.True(t, got.CacheUpdated)
	svc.AssertExpectations(t)
}

func TestMensalidadeHandler_Errors(t *testing.T) {
	svc := new(mockMensalidadeService)
	engine := newTestEngine(NewMensalidadeHandler(svc), testCaller)

	svc.On("RecordPayment", mock.Anything, testCaller, testClub, "ghost", "2025-03", mock.Anything).
		Return(nil, shared.NotFound("Jogador não encontrado"))

	w := doRequest(engine, http.MethodPut, "/api/v1/clubs/club-1/players/ghost/mensalidades/2025-03", `{"pago":true}`)
	assertError(t, w, http.StatusNotFound, "not-found", "Jogador não encontrado")

	w = doRequest(engine, http.MethodPut, "/api/v1/clubs/club-1/players/p1/mensalidades/2025-03", `{"pago":"sim"}`)
	assertError(t, w, http.StatusBadRequest, "invalid-argument", "Campo pago com tipo inválido")
}
