package handler

import (
	"context"

	financeapp "github.com/clubhub/backend/internal/application/finance"
	"github.com/clubhub/backend/internal/domain/identity"
	"github.com/gin-gonic/gin"
)

// MensalidadeService records monthly dues payments
type MensalidadeService interface {
	RecordPayment(ctx context.Context, caller *identity.Caller, clubID, playerID, month string, req financeapp.RecordPaymentRequest) (*financeapp.PaymentResponse, error)
}

// MensalidadeHandler serves player dues
type MensalidadeHandler struct {
	BaseHandler
	service MensalidadeService
}

// NewMensalidadeHandler creates a new MensalidadeHandler
func NewMensalidadeHandler(service MensalidadeService) *MensalidadeHandler {
	return &MensalidadeHandler{service: service}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *MensalidadeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("/clubs/:clubId/players/:playerId/mensalidades/:month", h.RecordPayment)
}

// RecordPayment handles PUT /clubs/:clubId/players/:playerId/mensalidades/:month
func (h *MensalidadeHandler) RecordPayment(c *gin.Context) {
	var req financeapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.RecordPayment(c.Request.Context(), caller(c), c.Param("clubId"), c.Param("playerId"), c.Param("month"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
