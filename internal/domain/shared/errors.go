package shared

import (
	"errors"
	"fmt"
)

// Error codes returned to API callers. They are stable, machine-readable and
// shared by every operation of the service.
const (
	CodeUnauthenticated    = "unauthenticated"
	CodePermissionDenied   = "permission-denied"
	CodeInvalidArgument    = "invalid-argument"
	CodeNotFound           = "not-found"
	CodeAlreadyExists      = "already-exists"
	CodeFailedPrecondition = "failed-precondition"
	CodeInternal           = "internal"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a DomainError with the same code, so
// errors.Is(err, ErrNotFound) matches any not-found error.
func (e *DomainError) Is(target error) bool {
	de, ok := target.(*DomainError)
	return ok && de.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrUnauthenticated    = NewDomainError(CodeUnauthenticated, "Usuário não autenticado")
	ErrPermissionDenied   = NewDomainError(CodePermissionDenied, "Acesso negado")
	ErrInvalidArgument    = NewDomainError(CodeInvalidArgument, "Argumento inválido")
	ErrNotFound           = NewDomainError(CodeNotFound, "Recurso não encontrado")
	ErrAlreadyExists      = NewDomainError(CodeAlreadyExists, "Recurso já existe")
	ErrFailedPrecondition = NewDomainError(CodeFailedPrecondition, "Operação não permitida no estado atual")
	ErrInternal           = NewDomainError(CodeInternal, "Erro interno")
)

// Unauthenticated returns an unauthenticated error with the given message.
func Unauthenticated(message string) *DomainError {
	return NewDomainError(CodeUnauthenticated, message)
}

// PermissionDenied returns a permission-denied error with the given message.
func PermissionDenied(message string) *DomainError {
	return NewDomainError(CodePermissionDenied, message)
}

// InvalidArgument returns an invalid-argument error with the given message.
func InvalidArgument(message string) *DomainError {
	return NewDomainError(CodeInvalidArgument, message)
}

// NotFound returns a not-found error with the given message.
func NotFound(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// AlreadyExists returns an already-exists error with the given message.
func AlreadyExists(message string) *DomainError {
	return NewDomainError(CodeAlreadyExists, message)
}

// FailedPrecondition returns a failed-precondition error with the given message.
func FailedPrecondition(message string) *DomainError {
	return NewDomainError(CodeFailedPrecondition, message)
}

// Internal wraps an infrastructure failure into an internal error. The cause
// stays reachable through errors.Unwrap but is never shown to callers.
func Internal(message string, cause error) *DomainError {
	return &DomainError{
		Code:    CodeInternal,
		Message: message,
		cause:   cause,
	}
}

// Internalf is Internal with a formatted message.
func Internalf(cause error, format string, args ...any) *DomainError {
	return Internal(fmt.Sprintf(format, args...), cause)
}

// CodeOf returns the code of err if it is a DomainError, otherwise internal.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether err is a DomainError carrying the given code.
func HasCode(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}
