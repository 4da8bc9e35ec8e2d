package handler

import (
	"context"
	"encoding/json"

	financeapp "github.com/clubhub/backend/internal/application/finance"
	"github.com/clubhub/backend/internal/domain/identity"
	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// TransactionService is the ledger use case consumed by TransactionHandler
type TransactionService interface {
	AddFinancialTransaction(ctx context.Context, caller *identity.Caller, clubID string, req financeapp.AddTransactionRequest) (*financeapp.AddTransactionResponse, error)
	UpdateFinancialTransaction(ctx context.Context, caller *identity.Caller, clubID, transactionID string, updates map[string]json.RawMessage) error
	DeleteFinancialTransaction(ctx context.Context, caller *identity.Caller, clubID, transactionID string) error
	ListTransactions(ctx context.Context, caller *identity.Caller, clubID string, req financeapp.ListTransactionsRequest) (shared.Paginated[financeapp.TransactionResponse], error)
}

// TransactionHandler serves the club ledger
type TransactionHandler struct {
	BaseHandler
	service TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(service TransactionService) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *TransactionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/clubs/:clubId/transactions")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List handles GET /clubs/:clubId/transactions?mes=&page=&page_size=
func (h *TransactionHandler) List(c *gin.Context) {
	var req financeapp.ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.service.ListTransactions(c.Request.Context(), caller(c), c.Param("clubId"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Create handles POST /clubs/:clubId/transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	var req financeapp.AddTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.AddFinancialTransaction(c.Request.Context(), caller(c), c.Param("clubId"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update handles PATCH /clubs/:clubId/transactions/:id. The body is a partial
// object; field checks happen in the service so that unknown keys are
// reported by name.
func (h *TransactionHandler) Update(c *gin.Context) {
	var updates map[string]json.RawMessage
	if err := c.ShouldBindJSON(&updates); err != nil {
		h.BindError(c, err)
		return
	}

	err := h.service.UpdateFinancialTransaction(c.Request.Context(), caller(c), c.Param("clubId"), c.Param("id"), updates)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c)
}

// Delete handles DELETE /clubs/:clubId/transactions/:id
func (h *TransactionHandler) Delete(c *gin.Context) {
	err := h.service.DeleteFinancialTransaction(c.Request.Context(), caller(c), c.Param("clubId"), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c)
}
