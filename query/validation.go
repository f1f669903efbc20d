package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Validation limits applied before and during parsing
const (
	// MaxQueryLength is the maximum allowed query string length (1MB)
	MaxQueryLength = 1024 * 1024

	// MaxTokens is the maximum number of tokens in a query
	MaxTokens = 10000

	// MaxExpressionDepth is the maximum nesting depth for conditions
	MaxExpressionDepth = 100

	// MaxPathIndex is the largest array index a query path or alias may name.
	// Results are rebuilt with arrays padded up to the written index.
	MaxPathIndex = 1 << 20
)

var (
	// ErrQueryTooLong is returned when query exceeds MaxQueryLength
	ErrQueryTooLong = fmt.Errorf("%w: query too long", ErrParse)

	// ErrTooManyTokens is returned when query has too many tokens
	ErrTooManyTokens = fmt.Errorf("%w: too many tokens in query", ErrParse)

	// ErrExpressionTooDeep is returned when condition nesting exceeds limit
	ErrExpressionTooDeep = fmt.Errorf("%w: condition nesting too deep", ErrParse)

	// ErrIndexTooLarge is returned when a path names an index above MaxPathIndex
	ErrIndexTooLarge = fmt.Errorf("%w: array index too large", ErrParse)
)

// ValidateQuery checks the raw query text
func ValidateQuery(query string) error {
	if len(query) > MaxQueryLength {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrQueryTooLong, len(query), MaxQueryLength)
	}
	return nil
}

// ValidateTokens validates token count
func ValidateTokens(tokens []Token) error {
	if len(tokens) > MaxTokens {
		return fmt.Errorf("%w: %d tokens (max %d)", ErrTooManyTokens, len(tokens), MaxTokens)
	}
	return nil
}

// ValidatePath checks the bracketed indices of a path or alias
func ValidatePath(path string) error {
	for rest := path; ; {
		open := strings.IndexByte(rest, '[')
		if open < 0 {
			return nil
		}
		rest = rest[open+1:]
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil
		}
		digits := rest[:end]
		rest = rest[end+1:]
		if digits == "" || strings.Trim(digits, "0123456789") != "" {
			continue
		}
		if n, err := strconv.Atoi(digits); err != nil || n > MaxPathIndex {
			return fmt.Errorf("%w: %s (max %d)", ErrIndexTooLarge, path, MaxPathIndex)
		}
	}
}

// ExpressionDepthCounter tracks condition nesting depth
type ExpressionDepthCounter struct {
	depth    int
	maxDepth int
}

// NewExpressionDepthCounter creates a new depth counter
func NewExpressionDepthCounter() *ExpressionDepthCounter {
	return &ExpressionDepthCounter{depth: 0, maxDepth: MaxExpressionDepth}
}

// Enter increments depth and returns error if limit exceeded
func (c *ExpressionDepthCounter) Enter() error {
	c.depth++
	if c.depth > c.maxDepth {
		return fmt.Errorf("%w: %d (max %d)", ErrExpressionTooDeep, c.depth, c.maxDepth)
	}
	return nil
}

// Exit decrements depth
func (c *ExpressionDepthCounter) Exit() {
	c.depth--
}
