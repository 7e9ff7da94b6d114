package common

import (
	"errors"
	"fmt"
	"strings"
)

type Code string

const (
	CodeValidation             Code = "validation_error"
	CodeNotFound               Code = "not_found"
	CodeConflict               Code = "conflict"
	CodeUnauthorized           Code = "unauthorized"
	CodeForbidden              Code = "forbidden"
	CodeRateLimited            Code = "rate_limited"
	CodeWeakCredential         Code = "weak_credential"
	CodeNotAssigned            Code = "not_assigned"
	CodeRecipientNotRegistered Code = "recipient_not_registered"
	CodeUploadRejected         Code = "upload_rejected"
	CodeDeliveryFailed         Code = "delivery_failed"
	CodeInternal               Code = "internal_error"
)

// FieldViolation is a single failed validation rule. Order matters: callers
// report violations in form order so the client can render a consolidated
// error block.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Code       Code
	Message    string
	Violations []FieldViolation
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NewError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func NewValidationError(message string, violations []FieldViolation) *Error {
	return &Error{Code: CodeValidation, Message: message, Violations: violations}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}

// ViolationsOf returns the ordered violations attached to err, if any.
func ViolationsOf(err error) []FieldViolation {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Violations
	}
	return nil
}

// MissingFieldsMessage builds the user-facing summary the notification API
// returns for incomplete payloads.
func MissingFieldsMessage(violations []FieldViolation) string {
	fields := make([]string, 0, len(violations))
	for _, v := range violations {
		fields = append(fields, v.Field)
	}
	return "Missing required fields: " + strings.Join(fields, ", ")
}
