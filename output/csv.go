package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vegasq/docsql/document"
)

// CSVFormatter outputs rows as CSV. Nested objects and arrays are flattened
// into one column per path, e.g. "account.tags[0]".
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes rows as CSV
func (c *CSVFormatter) Format(rows []map[string]interface{}) error {
	csvWriter := csv.NewWriter(c.writer)

	header, records, err := flattenRows(rows)
	if err != nil {
		return err
	}

	if len(rows) > 0 {
		if err := csvWriter.Write(header); err != nil {
			return err
		}
		for _, record := range records {
			if err := csvWriter.Write(record); err != nil {
				return err
			}
		}
	}

	// Flush and check for errors
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// flattenRows turns rows into a sorted header covering every path seen in any
// row (rows may be heterogeneous) and one sanitized record per row.
func flattenRows(rows []map[string]interface{}) ([]string, [][]string, error) {
	flat := make([]document.Row, len(rows))
	columnSet := make(map[string]bool)
	for i, row := range rows {
		r, err := document.FlattenObject(row)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i, err)
		}
		flat[i] = r
		for key := range r {
			columnSet[key.Key] = true
		}
	}

	columns := make([]string, 0, len(columnSet))
	for col := range columnSet {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	records := make([][]string, len(flat))
	for i, r := range flat {
		record := make([]string, len(columns))
		for j, col := range columns {
			record[j] = formatValue(r.Lookup(col))
		}
		records[i] = record
	}
	return columns, records, nil
}

// formatValue converts a value to its cell text. Null is the empty string.
func formatValue(v document.Value) string {
	switch v.Kind() {
	case document.KindNull:
		return ""
	case document.KindString:
		return sanitize(v.AsString())
	default:
		return v.String()
	}
}

// sanitize guards against CSV injection by prefixing characters that could
// trigger formula execution in spreadsheet applications
func sanitize(val string) string {
	if len(val) == 0 {
		return val
	}
	switch val[0] {
	case '=', '+', '-', '@', '\t', '\r', '\n', '|':
		return "'" + strings.ReplaceAll(val, "'", "''")
	}
	return val
}
