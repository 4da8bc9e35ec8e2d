package handler

import (
	"context"

	financeapp "github.com/clubhub/backend/internal/application/finance"
	"github.com/clubhub/backend/internal/domain/identity"
	"github.com/gin-gonic/gin"
)

// CategoryService is the category use case consumed by CategoryHandler
type CategoryService interface {
	CreateCategory(ctx context.Context, caller *identity.Caller, clubID string, req financeapp.CreateCategoryRequest) (*financeapp.CategoryResponse, error)
	DeleteCategory(ctx context.Context, caller *identity.Caller, clubID, nome string) error
	ListCategories(ctx context.Context, caller *identity.Caller, clubID string) (*financeapp.CategoryListResponse, error)
}

// CategoryHandler serves the club's income and expense categories
type CategoryHandler struct {
	BaseHandler
	service CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(service CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/clubs/:clubId/categories")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.DELETE("/:nome", h.Delete)
}

// List handles GET /clubs/:clubId/categories
func (h *CategoryHandler) List(c *gin.Context) {
	resp, err := h.service.ListCategories(c.Request.Context(), caller(c), c.Param("clubId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create handles POST /clubs/:clubId/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req financeapp.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.CreateCategory(c.Request.Context(), caller(c), c.Param("clubId"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Delete handles DELETE /clubs/:clubId/categories/:nome
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteCategory(c.Request.Context(), caller(c), c.Param("clubId"), c.Param("nome")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c)
}
