package output

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnknownFormat is returned by NewFormatter for unsupported format names
var ErrUnknownFormat = errors.New("unknown output format")

// Formatter defines the interface for output formatters.
//
// Implementers must provide Format to convert rows to the target format
// and SetOutput to change the output destination.
type Formatter interface {
	// Format writes rows in the formatter's specific format
	Format(rows []map[string]interface{}) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// Formats lists the names accepted by NewFormatter
var Formats = []string{"json", "jsonl", "csv", "table"}

// NewFormatter returns the formatter registered under name
func NewFormatter(name string, w io.Writer) (Formatter, error) {
	switch strings.ToLower(name) {
	case "json":
		return NewJSONFormatter(w), nil
	case "jsonl", "ndjson":
		return NewJSONLinesFormatter(w), nil
	case "csv":
		return NewCSVFormatter(w), nil
	case "table":
		return NewTableFormatter(w), nil
	default:
		return nil, fmt.Errorf("%w %q, supported formats: %s", ErrUnknownFormat, name, strings.Join(Formats, ", "))
	}
}

// Objects converts a query result into formatter rows. Elements that are not
// objects are wrapped as {"value": element}.
func Objects(result []any) []map[string]interface{} {
	rows := make([]map[string]interface{}, len(result))
	for i, elem := range result {
		if obj, ok := elem.(map[string]any); ok {
			rows[i] = obj
		} else {
			rows[i] = map[string]interface{}{"value": elem}
		}
	}
	return rows
}
