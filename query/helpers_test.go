package query

import (
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/vegasq/docsql/document"
)

var fixedNow = time.Date(2023, 10, 24, 0, 0, 0, 0, time.UTC)

// testContext returns an execution context with a fixed clock
func testContext() *ExecutionContext {
	return NewExecutionContext(language.Und, fixedNow)
}

// flattenDocs flattens objects into one row each
func flattenDocs(t *testing.T, docs ...map[string]any) []document.Row {
	t.Helper()
	in := make([]any, len(docs))
	for i, d := range docs {
		in[i] = d
	}
	rows, err := document.Flatten(in)
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	return rows
}

// mustParseStage parses a single-stage query
func mustParseStage(t *testing.T, sql string) *Stage {
	t.Helper()
	q, err := Parse(sql)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", sql, err)
	}
	if len(q.Stages) != 1 {
		t.Fatalf("Parse(%q) returned %d stages, want 1", sql, len(q.Stages))
	}
	return q.Stages[0]
}

// column extracts one key from every row
func column(rows []document.Row, key string) []any {
	out := make([]any, len(rows))
	for i, row := range rows {
		out[i] = row.Lookup(key).Native()
	}
	return out
}
