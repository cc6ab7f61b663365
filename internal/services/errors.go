package services

import (
	"errors"

	apperrors "github.com/graduate-tracer/survey-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Survey specific errors
	ErrSurveyNotFound          = errors.New("survey not found")
	ErrSurveyNotEditable       = errors.New("survey can only be edited while in draft")
	ErrSurveyNotDeletable      = errors.New("survey cannot be deleted - has existing responses")
	ErrInvalidStatusTransition = errors.New("invalid survey status transition")

	// Response specific errors
	ErrEmploymentRecordNotFound = errors.New("employment record not found")
	ErrUnsupportedExportFormat  = errors.New("unsupported export format")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSurveyNotFound) ||
		errors.Is(err, ErrEmploymentRecordNotFound)
}

// IsValidation checks if error represents a validation failure of submitted answers
// or of a single request field
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrBadRequest) || errors.Is(err, ErrUnsupportedExportFormat) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsSchemaError checks if error reports an invalid survey definition
func IsSchemaError(err error) bool {
	var se *apperrors.SchemaError
	return errors.As(err, &se)
}

// IsBlocked checks if error reports a submission against a survey that is not open
func IsBlocked(err error) bool {
	return errors.Is(err, apperrors.ErrSubmissionBlocked)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSurveyNotEditable) ||
		errors.Is(err, ErrSurveyNotDeletable) ||
		errors.Is(err, ErrInvalidStatusTransition)
}
