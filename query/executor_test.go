package query

import (
	"errors"
	"reflect"
	"testing"
)

func peopleDoc() map[string]any {
	return map[string]any{
		"meta": map[string]any{"source": "census"},
		"people": []any{
			map[string]any{"name": "Mücahit", "age": 26, "city": "Baku"},
			map[string]any{"name": "Ayşe", "age": 19, "city": "Izmir"},
			map[string]any{"name": "Nesimi", "age": 31, "city": "Baku"},
		},
	}
}

func TestExecuteRows_SingleStage(t *testing.T) {
	q, err := Parse("SELECT name FROM $r.people WHERE age > 20 ORDER BY age DESC")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	rows, err := ExecuteRows(q, peopleDoc(), testContext())
	if err != nil {
		t.Fatalf("ExecuteRows() error = %v", err)
	}
	if got, want := column(rows, "name"), []any{"Nesimi", "Mücahit"}; !reflect.DeepEqual(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}
	for _, row := range rows {
		if len(row) != 1 {
			t.Errorf("row %v has %d keys, want 1", row, len(row))
		}
	}
}

func TestExecuteRows_Stages(t *testing.T) {
	// The innermost stage filters and the outer stage groups its output
	q, err := Parse("SELECT city, COUNT(*) AS n FROM $r GROUP BY city >>> SELECT city, age FROM $r.people WHERE age > 20")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(q.Stages) != 2 {
		t.Fatalf("got %d stages, want 2", len(q.Stages))
	}

	rows, err := ExecuteRows(q, peopleDoc(), testContext())
	if err != nil {
		t.Fatalf("ExecuteRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Lookup("city").AsString() != "Baku" || rows[0].Lookup("n").AsInt() != 2 {
		t.Errorf("row = %v", rows[0])
	}
}

func TestExecuteRows_OuterFromIsInert(t *testing.T) {
	q, err := Parse("SELECT name FROM $r.nowhere >>> SELECT * FROM $r.people")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	rows, err := ExecuteRows(q, peopleDoc(), testContext())
	if err != nil {
		t.Fatalf("ExecuteRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows, want 3", len(rows))
	}
}

func TestExecuteRows_Errors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		doc  any
		want error
	}{
		{"missing root", "SELECT * FROM $r.missing", peopleDoc(), ErrPathNotFound},
		{"scalar root", "SELECT * FROM $r.meta.source", peopleDoc(), ErrInvalidInput},
		{"scalar document", "SELECT * FROM $r", 42, ErrInvalidInput},
		{"bad comparison", "SELECT * FROM $r.people WHERE age > 'old'", peopleDoc(), ErrUnsupportedComparison},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.sql)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if _, err := ExecuteRows(q, tt.doc, testContext()); !errors.Is(err, tt.want) {
				t.Errorf("ExecuteRows() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExecuteRows_NilContext(t *testing.T) {
	q, err := Parse("SELECT * FROM $r")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	rows, err := ExecuteRows(q, []any{map[string]any{"a": 1}}, nil)
	if err != nil {
		t.Fatalf("ExecuteRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows, want 1", len(rows))
	}
}

func TestExecuteRows_EmptyQuery(t *testing.T) {
	if _, err := ExecuteRows(&Query{}, peopleDoc(), testContext()); !errors.Is(err, ErrParse) {
		t.Errorf("ExecuteRows() error = %v, want ErrParse", err)
	}
}
