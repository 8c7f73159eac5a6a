package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError provides a structured error that can be rendered to API consumers.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// WithMessage returns a copy of the AppError with a replaced message.
func (e *AppError) WithMessage(message string) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Message = message
	return &cpy
}

// Common errors exposed to the rest of the application.
var (
	ErrResourceNotFound = &AppError{
		Code:       "RESOURCE_NOT_FOUND",
		Message:    "Paid resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrResourceInactive = &AppError{
		Code:       "RESOURCE_INACTIVE",
		Message:    "Paid resource is no longer available",
		StatusCode: http.StatusGone,
	}

	ErrFeeDelegateUnavailable = &AppError{
		Code:       "FEE_DELEGATE_UNAVAILABLE",
		Message:    "No fee payer identity configured for this network",
		StatusCode: http.StatusPaymentRequired,
	}

	ErrUnsupportedNetwork = &AppError{
		Code:       "UNSUPPORTED_NETWORK",
		Message:    "Payment network is not supported",
		StatusCode: http.StatusBadRequest,
	}

	ErrMalformedProof = &AppError{
		Code:       "MALFORMED_PAYMENT_PROOF",
		Message:    "Payment proof header could not be decoded",
		StatusCode: http.StatusBadRequest,
	}

	ErrVerificationFailed = &AppError{
		Code:       "VERIFICATION_FAILED",
		Message:    "Payment verification failed",
		StatusCode: http.StatusPaymentRequired,
	}

	ErrSettlementFailed = &AppError{
		Code:       "SETTLEMENT_FAILED",
		Message:    "Payment settlement failed",
		StatusCode: http.StatusPaymentRequired,
	}

	ErrOriginForward = &AppError{
		Code:       "ORIGIN_FORWARD_ERROR",
		Message:    "Upstream origin could not be reached",
		StatusCode: http.StatusBadGateway,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Method not allowed for this resource",
		StatusCode: http.StatusMethodNotAllowed,
	}

	ErrTokenInvalid = &AppError{
		Code:       "TOKEN_INVALID",
		Message:    "No valid entitlement for this resource",
		StatusCode: http.StatusPaymentRequired,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}
)

// New builds a new application error with the provided metadata.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap turns any error into an AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest wraps validation errors with a helpful message.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:       ErrBadRequest.Code,
		Message:    message,
		StatusCode: ErrBadRequest.StatusCode,
	}
}
