package service

import (
	"errors"
	"fmt"
	"strings"

	"posledger/internal/model"
	"posledger/internal/repository"

	"github.com/go-playground/validator/v10"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = repository.ErrNotFound
	ErrDuplicate          = repository.ErrDuplicate
	ErrOutstandingBalance = errors.New("customer has an outstanding balance")
	ErrNavigationBusy     = errors.New("navigation already in progress")
	ErrRowLimit           = fmt.Errorf("a document cannot have more than %d rows", model.MaxDocumentRows)
)

// ValidationError is a refused operation. Nothing was persisted.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// validate reads the same binding tags gin checks on request DTOs, so
// services enforce them when called outside the HTTP layer too.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	return v
}

// validateStruct runs the validate tags on v and reports the first failure.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return newValidationError("", err.Error())
	}
	fe := ve[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return newValidationError(field, field+" is required")
	case "oneof":
		return newValidationError(field, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
	case "gte", "min":
		return newValidationError(field, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
	case "gt":
		return newValidationError(field, fmt.Sprintf("%s must be greater than %s", field, fe.Param()))
	default:
		return newValidationError(field, fmt.Sprintf("%s is invalid", field))
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
