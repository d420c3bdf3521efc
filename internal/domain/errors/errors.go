package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoWallet           = errors.New("no wallet provider available")
	ErrNoAccount          = errors.New("no authorized wallet account")
	ErrNotPrivileged      = errors.New("account lacks the required role")
	ErrInFlight           = errors.New("transaction already in flight")
	ErrWrongNetwork       = errors.New("connected to the wrong network")
)

// Error codes returned to API clients
const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeInternalError = "INTERNAL_ERROR"
	CodeNoWallet      = "NO_WALLET"
	CodeNoAccount     = "NO_ACCOUNT"
	CodeContractRead  = "CONTRACT_READ_FAILED"
	CodeContractWrite = "CONTRACT_WRITE_FAILED"
	CodeInFlight      = "TX_IN_FLIGHT"
	CodeWrongNetwork  = "WRONG_NETWORK"
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
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrConflict)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

// NewError creates a new error with a custom message wrapping an existing error
func NewError(message string, err error) error {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
		Err:     err,
	}
}

// ContractReadError is returned once every schema surface failed a read.
// Attempts holds one failure per surface, in the order they were tried.
type ContractReadError struct {
	Operation string
	Attempts  []error
}

func (e *ContractReadError) Error() string {
	return fmt.Sprintf("contract read %s failed: %v", e.Operation, e.Unwrap())
}

// Unwrap returns the last failure
func (e *ContractReadError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1]
}

// ContractWriteError is the write-side counterpart of ContractReadError
type ContractWriteError struct {
	Operation string
	Attempts  []error
}

func (e *ContractWriteError) Error() string {
	return fmt.Sprintf("contract write %s failed: %v", e.Operation, e.Unwrap())
}

func (e *ContractWriteError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1]
}

// ValidationError rejects client input before any network call
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// Invalid is shorthand for a ValidationError
func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// PerRecordDecodeError marks a single enumerated record that could not be read.
// It is logged and counted, never returned to API clients.
type PerRecordDecodeError struct {
	ID  uint64
	Err error
}

func (e *PerRecordDecodeError) Error() string {
	return fmt.Sprintf("property %d: %v", e.ID, e.Err)
}

func (e *PerRecordDecodeError) Unwrap() error {
	return e.Err
}

// ToAppError maps any error into the API error shape
func ToAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return NewAppError(http.StatusBadRequest, CodeInvalidInput, validationErr.Error(), err)
	}

	var readErr *ContractReadError
	if errors.As(err, &readErr) {
		return NewAppError(http.StatusBadGateway, CodeContractRead, "failed to read property registry", err)
	}

	var writeErr *ContractWriteError
	if errors.As(err, &writeErr) {
		msg := fmt.Sprintf("%s failed: %v", writeErr.Operation, writeErr.Unwrap())
		return NewAppError(http.StatusBadGateway, CodeContractWrite, msg, err)
	}

	switch {
	case errors.Is(err, ErrNoWallet):
		return NewAppError(http.StatusServiceUnavailable, CodeNoWallet, "wallet provider is not installed", err)
	case errors.Is(err, ErrNoAccount):
		return NewAppError(http.StatusUnauthorized, CodeNoAccount, "please connect your wallet", err)
	case errors.Is(err, ErrNotPrivileged):
		return NewAppError(http.StatusForbidden, CodeForbidden, "you do not have the required role", err)
	case errors.Is(err, ErrWrongNetwork):
		return NewAppError(http.StatusServiceUnavailable, CodeWrongNetwork, "make sure the node is on the registry's network", err)
	case errors.Is(err, ErrInFlight):
		return NewAppError(http.StatusConflict, CodeInFlight, "a transaction for this action is already in flight", err)
	case errors.Is(err, ErrInvalidCredentials):
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, "invalid username or password", err)
	case errors.Is(err, ErrTokenExpired):
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, "token has expired", err)
	case errors.Is(err, ErrUnauthorized):
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized", err)
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, CodeForbidden, "forbidden", err)
	case errors.Is(err, ErrConflict):
		return NewAppError(http.StatusConflict, CodeConflict, err.Error(), err)
	case errors.Is(err, ErrNotFound):
		return NotFound(err.Error())
	}
	return InternalError(err)
}
