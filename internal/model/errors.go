package model

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map them onto HTTP status codes.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrModelUnavailable  = errors.New("model unavailable")
	ErrProcessingFailure = errors.New("processing failure")
	ErrNotFound          = errors.New("not found")
)

// Error carries a kind, a message safe to show to the caller and the cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// InvalidInput creates an ErrInvalidInput error.
func InvalidInput(message string) *Error {
	return &Error{Kind: ErrInvalidInput, Message: message}
}

// NotFound creates an ErrNotFound error.
func NotFound(message string) *Error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// ProcessingFailure wraps err as an ErrProcessingFailure.
func ProcessingFailure(message string, err error) *Error {
	return &Error{Kind: ErrProcessingFailure, Message: message, Err: err}
}

// ModelUnavailable wraps the reason the detection backend cannot serve.
func ModelUnavailable(err error) *Error {
	return &Error{Kind: ErrModelUnavailable, Message: "detection model is not loaded", Err: err}
}
