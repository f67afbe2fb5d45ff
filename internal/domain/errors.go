package domain

import (
	"errors"
	"fmt"
)

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Error codes.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeDuplicateAttendee = "DUPLICATE_ATTENDEE"
	CodeIncompleteEvent   = "INCOMPLETE_EVENT"
	CodeAlreadySettled    = "ALREADY_SETTLED"
	CodeStoreUnavailable  = "STORE_UNAVAILABLE"
	CodeRateLimited       = "RATE_LIMITED"
	CodeInternal          = "INTERNAL_ERROR"
)

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: CodeConflict, Message: msg, Status: 409}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: CodeValidation, Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: CodeForbidden, Message: msg, Status: 403}
}

// ErrInsufficientFunds rejects a stake larger than the member's bankroll.
func ErrInsufficientFunds(member string, bankroll, stake int64) *AppError {
	return &AppError{
		Code:    CodeInsufficientFunds,
		Message: fmt.Sprintf("%s has %s but needs %s", member, FormatCents(bankroll), FormatCents(stake)),
		Status:  422,
	}
}

func ErrDuplicateAttendee(name string) *AppError {
	return &AppError{Code: CodeDuplicateAttendee, Message: fmt.Sprintf("%s is already attending", name), Status: 409}
}

func ErrIncompleteEvent() *AppError {
	return &AppError{Code: CodeIncompleteEvent, Message: "add attendees before completing the event", Status: 422}
}

func ErrAlreadySettled(betID int64, status BetStatus) *AppError {
	return &AppError{Code: CodeAlreadySettled, Message: fmt.Sprintf("bet %d is already %s", betID, status), Status: 409}
}

func ErrStoreUnavailable(op string, cause error) *AppError {
	return &AppError{Code: CodeStoreUnavailable, Message: fmt.Sprintf("%s: store write failed", op), Status: 503, Cause: cause}
}

func ErrRateLimited(msg string) *AppError {
	return &AppError{Code: CodeRateLimited, Message: msg, Status: 429}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: CodeInternal, Message: msg, Status: 500, Cause: cause}
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
