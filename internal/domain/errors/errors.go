package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrAlreadyExists     = errors.New("resource already exists")
	ErrBadRequest        = errors.New("bad request")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Accrual and referral errors
var (
	ErrUnknownPlanType      = errors.New("unknown plan type")
	ErrOutOfRange           = errors.New("amount out of plan range")
	ErrInvestmentNotActive  = errors.New("investment not active")
	ErrAlreadyPaidToday     = errors.New("investment already paid today")
	ErrAncestorUnresolvable = errors.New("referral ancestor unresolvable")
	ErrStoreUnavailable     = errors.New("store unavailable")
)

// Error codes returned to API clients
const (
	CodeBadRequest    = "ERR_BAD_REQUEST"
	CodeUnauthorized  = "ERR_UNAUTHORIZED"
	CodeForbidden     = "ERR_FORBIDDEN"
	CodeNotFound      = "ERR_NOT_FOUND"
	CodeConflict      = "ERR_CONFLICT"
	CodeUnprocessable = "ERR_UNPROCESSABLE"
	CodeInternalError = "ERR_INTERNAL"
	CodeUnavailable   = "ERR_UNAVAILABLE"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeBadRequest, message, ErrBadRequest)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

// FromDomain maps a domain sentinel error to an AppError.
// Errors that are already AppErrors are returned as-is.
func FromDomain(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, CodeNotFound, err.Error(), err)
	case errors.Is(err, ErrUnknownPlanType),
		errors.Is(err, ErrOutOfRange),
		errors.Is(err, ErrBadRequest):
		return NewAppError(http.StatusBadRequest, CodeBadRequest, err.Error(), err)
	case errors.Is(err, ErrUnauthorized):
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, err.Error(), err)
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, CodeForbidden, err.Error(), err)
	case errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrAlreadyPaidToday),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrInvestmentNotActive):
		return NewAppError(http.StatusConflict, CodeConflict, err.Error(), err)
	case errors.Is(err, ErrInsufficientFunds):
		return NewAppError(http.StatusUnprocessableEntity, CodeUnprocessable, err.Error(), err)
	case errors.Is(err, ErrStoreUnavailable):
		return NewAppError(http.StatusServiceUnavailable, CodeUnavailable, "service temporarily unavailable", err)
	default:
		return InternalError(err)
	}
}
