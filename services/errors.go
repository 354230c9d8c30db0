package services

import (
	"errors"
	"fmt"
)

// Envelope messages returned to API clients.
const (
	MsgValidation   = "Error de validación"
	MsgIDValidation = "Error de validación del ID"
	MsgNotFound     = "Persona no encontrada"
	MsgStorage      = "Error de base de datos"
	MsgInternal     = "Error interno del servidor"
)

var (
	// ErrNotFound means the id does not resolve to an existing persona.
	ErrNotFound = errors.New("persona not found")
	// ErrInvalidID is the cause of a ValidationError raised for the path id.
	ErrInvalidID = errors.New("invalid persona id")
)

// ValidationError carries per-field messages for malformed or missing input.
type ValidationError struct {
	Message string
	Fields  map[string][]string
	cause   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Fields)
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

// StorageError wraps constraint violations and other persistence failures.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// InternalError wraps any other unexpected failure.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	return "internal: " + e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func newValidationError(message string, fields map[string][]string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}
