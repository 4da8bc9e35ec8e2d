package handler

import (
	"errors"
	"net/http"

	"github.com/clubhub/backend/internal/domain/identity"
	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/clubhub/backend/internal/interfaces/http/dto"
	"github.com/clubhub/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}

// caller returns the authenticated caller, nil when unauthenticated
func caller(c *gin.Context) *identity.Caller {
	return middleware.GetCaller(c)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// OK sends {"success": true} without data
func (h *BaseHandler) OK(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(nil))
}

// Paginated sends a page of results with pagination meta
func Paginated[T any](c *gin.Context, p shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(p))
}

// Error sends an error response, deriving the status from the code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BindError answers a request whose body or query failed to bind
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	h.HandleError(c, middleware.BindingError(err))
}

// HandleError writes err as an error response. Domain errors keep their code
// and message. Anything else becomes a generic internal error. The error is
// attached to the gin context so the request log carries it.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, domainErr.Code, domainErr.Message)
		return
	}
	h.Error(c, shared.CodeInternal, shared.ErrInternal.Message)
}
