package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeMapping         = "MAPPING_ERROR"
	CodeGuardAmbiguity  = "GUARD_AMBIGUITY"
	CodeClassifierError = "CLASSIFIER_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
	CodeRateLimited     = "RATE_LIMITED"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

// NewValidationError reports malformed caller input.
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewMappingError reports a raw document that is missing a required field.
func NewMappingError(kind, field string) *AppError {
	return &AppError{
		Code:    CodeMapping,
		Message: fmt.Sprintf("%s document is missing required field %q", kind, field),
	}
}

// NewMappingTypeError reports a raw document with a field of the wrong type.
func NewMappingTypeError(kind string, err error) *AppError {
	return &AppError{
		Code:    CodeMapping,
		Message: fmt.Sprintf("%s document has an invalid field", kind),
		Err:     err,
	}
}

// NewGuardAmbiguityError reports a chat message carrying more than one variant marker.
func NewGuardAmbiguityError(messageID string) *AppError {
	return &AppError{
		Code:    CodeGuardAmbiguity,
		Message: fmt.Sprintf("chat message %q is marked both system and review", messageID),
	}
}

// NewClassifierError wraps a failure of the content classifier.
func NewClassifierError(err error) *AppError {
	return &AppError{
		Code:    CodeClassifierError,
		Message: "content classifier failed",
		Err:     err,
	}
}

// NewRateLimitError reports a client that exceeded its request budget.
func NewRateLimitError(message string) *AppError {
	return &AppError{
		Code:    CodeRateLimited,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// HasCode reports whether err (or anything it wraps) is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// RespondWithError sends a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
