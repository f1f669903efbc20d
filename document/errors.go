package document

import "errors"

var (
	// ErrPathNotFound is returned when a path does not resolve inside a document
	ErrPathNotFound = errors.New("path not found")

	// ErrInvalidInput is returned when a document cannot be flattened
	ErrInvalidInput = errors.New("invalid input")
)
