package domain

import "errors"

// ErrorKind classifies failures so the API layer can pick a status code.
type ErrorKind string

const (
	KindStore      ErrorKind = "store_error"
	KindGeneration ErrorKind = "generation_error"
	KindValidation ErrorKind = "validation_error"
	KindNotFound   ErrorKind = "not_found"
)

// AppError carries a kind, a human message and the underlying cause.
type AppError struct {
	Kind    ErrorKind
	Message string
	Origin  error
}

func (e *AppError) Error() string {
	if e.Origin != nil {
		return e.Message + ": " + e.Origin.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Origin
}

// NewStoreError wraps a record store failure.
func NewStoreError(message string, origin error) *AppError {
	return &AppError{Kind: KindStore, Message: message, Origin: origin}
}

// NewGenerationError wraps a text generation failure.
func NewGenerationError(message string, origin error) *AppError {
	return &AppError{Kind: KindGeneration, Message: message, Origin: origin}
}

// NewValidationError reports bad or missing input.
func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// NewNotFoundError reports a missing record.
func NewNotFoundError(message string, origin error) *AppError {
	return &AppError{Kind: KindNotFound, Message: message, Origin: origin}
}

// IsKind reports whether the first AppError in err's chain has the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
