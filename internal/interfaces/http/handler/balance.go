package handler

import (
	"context"
	"strconv"

	financeapp "github.com/clubhub/backend/internal/application/finance"
	"github.com/clubhub/backend/internal/domain/identity"
	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// BalanceService is the balance use case consumed by BalanceHandler
type BalanceService interface {
	GetBalance(ctx context.Context, caller *identity.Caller, clubID string, force bool) (*financeapp.BalanceResponse, error)
	UpdateBalanceCache(ctx context.Context, caller *identity.Caller, clubID string, deltaReceitas, deltaDespesas decimal.Decimal) (*financeapp.CacheUpdateResponse, error)
	InvalidateBalanceCache(ctx context.Context, caller *identity.Caller, clubID string) error
}

// BalanceHandler serves the club balance and its cache
type BalanceHandler struct {
	BaseHandler
	service BalanceService
}

// NewBalanceHandler creates a new BalanceHandler
func NewBalanceHandler(service BalanceService) *BalanceHandler {
	return &BalanceHandler{service: service}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *BalanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/clubs/:clubId/balance")
	g.GET("", h.GetBalance)
	g.POST("/cache/delta", h.UpdateCache)
	g.DELETE("/cache", h.InvalidateCache)
}

// GetBalance handles GET /clubs/:clubId/balance?force=true
func (h *BalanceHandler) GetBalance(c *gin.Context) {
	force := false
	if raw := c.Query("force"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.HandleError(c, shared.InvalidArgument("Parâmetro force inválido"))
			return
		}
		force = v
	}

	resp, err := h.service.GetBalance(c.Request.Context(), caller(c), c.Param("clubId"), force)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateCache handles POST /clubs/:clubId/balance/cache/delta
func (h *BalanceHandler) UpdateCache(c *gin.Context) {
	var req financeapp.UpdateCacheRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.UpdateBalanceCache(c.Request.Context(), caller(c), c.Param("clubId"), req.DeltaReceitas, req.DeltaDespesas)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// InvalidateCache handles DELETE /clubs/:clubId/balance/cache
func (h *BalanceHandler) InvalidateCache(c *gin.Context) {
	if err := h.service.InvalidateBalanceCache(c.Request.Context(), caller(c), c.Param("clubId")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c)
}
