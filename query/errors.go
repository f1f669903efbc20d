package query

import (
	"errors"

	"github.com/vegasq/docsql/document"
)

// Error kinds returned by parsing and execution. Every failure aborts the
// whole query; callers classify it with errors.Is.
var (
	// ErrParse is returned for malformed query text
	ErrParse = errors.New("parse error")

	// ErrUnsupportedClause is returned for a clause or value shape the engine does not handle
	ErrUnsupportedClause = errors.New("unsupported clause shape")

	// ErrUnsupportedAggregateType is returned when an aggregate meets a value kind it cannot combine
	ErrUnsupportedAggregateType = errors.New("unsupported aggregate type")

	// ErrEmptyAggregateSet is returned when AVG, MIN or MAX have no values to work on
	ErrEmptyAggregateSet = errors.New("empty aggregate set")

	// ErrUnsupportedComparison is returned when two values of incompatible kinds are compared
	ErrUnsupportedComparison = errors.New("unsupported comparison type")

	// ErrUnknownFunction is returned for an unrecognized function name
	ErrUnknownFunction = errors.New("unknown function")

	// ErrArityMismatch is returned when a function receives the wrong number of arguments
	ErrArityMismatch = errors.New("arity mismatch")

	// ErrInvalidArgument is returned when a function cannot convert its input or arguments
	ErrInvalidArgument = errors.New("invalid function argument")

	// ErrPathNotFound is returned when the FROM root path does not resolve
	ErrPathNotFound = document.ErrPathNotFound

	// ErrInvalidInput is returned when the root value is not an object or an array
	ErrInvalidInput = document.ErrInvalidInput
)
