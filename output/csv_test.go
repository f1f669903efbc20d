package output

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, text string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(text)).ReadAll()
	require.NoError(t, err, "Format() produced invalid CSV")
	return records
}

func TestCSVFormatter_Format(t *testing.T) {
	tests := []struct {
		name      string
		rows      []map[string]interface{}
		wantLines int
	}{
		{
			name:      "empty rows",
			rows:      []map[string]interface{}{},
			wantLines: 0,
		},
		{
			name: "single row",
			rows: []map[string]interface{}{
				{"id": int64(1), "name": "alice", "age": int32(30)},
			},
			wantLines: 2, // header + 1 data row
		},
		{
			name: "multiple rows",
			rows: []map[string]interface{}{
				{"id": int64(1), "name": "alice", "age": int32(30)},
				{"id": int64(2), "name": "bob", "age": int32(25)},
			},
			wantLines: 3, // header + 2 data rows
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewCSVFormatter(&buf).Format(tt.rows))

			if tt.wantLines == 0 {
				assert.Empty(t, buf.String())
				return
			}
			assert.Len(t, readCSV(t, buf.String()), tt.wantLines)
		})
	}
}

func TestCSVFormatter_NestedAndSparse(t *testing.T) {
	rows := []map[string]interface{}{
		{"name": "Mücahit", "account": map[string]interface{}{"id": int64(1), "tags": []interface{}{"admin", "ops"}}},
		{"name": "Ayşe", "nick": nil, "score": 1.5},
	}

	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter(&buf).Format(rows))

	records := readCSV(t, buf.String())
	assert.Equal(t, []string{"account.id", "account.tags[0]", "account.tags[1]", "name", "nick", "score"}, records[0])
	assert.Equal(t, []string{"1", "admin", "ops", "Mücahit", "", ""}, records[1])
	assert.Equal(t, []string{"", "", "", "Ayşe", "", "1.5"}, records[2])
}

func TestCSVFormatter_Sanitizing(t *testing.T) {
	rows := []map[string]interface{}{
		{"a": "=SUM(A1:A9)", "b": "-it's", "c": int64(-5), "d": "plain, with comma"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter(&buf).Format(rows))

	records := readCSV(t, buf.String())
	assert.Equal(t, []string{"'=SUM(A1:A9)", "'-it''s", "-5", "plain, with comma"}, records[1])
}

func TestTableFormatter_Format(t *testing.T) {
	rows := []map[string]interface{}{
		{"name": "Nesimi", "age": int64(31)},
		{"name": "Ayşe", "age": int64(19)},
	}

	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf).Format(rows))

	out := buf.String()
	assert.Contains(t, out, "age")
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "Nesimi")
	assert.Contains(t, out, "19")
	assert.Less(t, strings.Index(out, "Nesimi"), strings.Index(out, "Ayşe"))

	buf.Reset()
	require.NoError(t, NewTableFormatter(&buf).Format(nil))
	assert.Empty(t, buf.String())
}
