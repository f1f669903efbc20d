package query

import (
	"bytes"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

const peopleJSON = `[
	{"name": "Mücahit", "age": 26, "active": true, "created": "2023-10-23T20:00:00", "joined": "01/06/1997",
	 "account": {"id": 1, "tags": ["admin", "ops"]}},
	{"name": "MÜCAHİT", "age": 28, "active": false, "created": "2023-10-25T08:30:00", "joined": "15/03/1995",
	 "account": {"id": 2, "tags": []}},
	{"name": "mücahit", "age": 31, "active": true, "created": "2023-10-20T10:00:00", "joined": "02/01/2001",
	 "nick": "mü"},
	{"name": "Nesimi", "age": 35, "active": true, "created": "2023-10-22T09:15:00", "joined": "31/12/1990"},
	{"name": "NESİMİ", "age": 22, "active": false, "created": "2023-10-26T12:00:00", "joined": "10/10/2010"},
	{"name": "Ayşe", "age": 19, "active": true, "created": "2023-10-21T18:45:00", "joined": "05/05/2005"}
]`

func decodeJSON(t *testing.T, text string) any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var doc any
	require.NoError(t, dec.Decode(&doc))
	return doc
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	e, err := New(opts...)
	require.NoError(t, err)
	return e
}

func TestEngine_Query_EndToEnd(t *testing.T) {
	e := newTestEngine(t)

	got, err := e.Query("SELECT name, age FROM $r", decodeJSON(t, `{"name":"Mücahit","age":26}`))
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"name": "Mücahit", "age": int64(26)}}, got)
}

func TestEngine_Query(t *testing.T) {
	tests := []struct {
		name string
		doc  string // defaults to peopleJSON
		sql  string
		want []any
	}{
		{
			name: "grouped aggregates over two keys",
			doc: `[
				{"field1": "a", "field2": "x", "field3": "p", "value": 1},
				{"field1": "a", "field2": "x", "field3": "q", "value": 2},
				{"field1": "b", "field2": "x", "field3": "p", "value": 10},
				{"field1": "a", "field2": "x", "field3": "r", "value": 3}
			]`,
			sql: "SELECT field1, field2, SUM(value) AS total, COUNT(value) AS cnt, MIN(value) AS min, " +
				"MAX(value) AS max, AVG(value) AS avg FROM $r GROUP BY field1, field2",
			want: []any{
				map[string]any{"field1": "a", "field2": "x", "total": float64(6), "cnt": int64(3),
					"min": float64(1), "max": float64(3), "avg": float64(2)},
				map[string]any{"field1": "b", "field2": "x", "total": float64(10), "cnt": int64(1),
					"min": float64(10), "max": float64(10), "avg": float64(10)},
			},
		},
		{
			name: "locale aware grouping",
			sql: "SELECT LOWER(name, 'tr-TR') AS name, COUNT(*) AS n FROM $r WHERE age > 20 " +
				"GROUP BY LOWER(name, 'tr-TR') HAVING n > 1 ORDER BY n DESC",
			want: []any{
				map[string]any{"name": "mücahit", "n": int64(3)},
				map[string]any{"name": "nesimi", "n": int64(2)},
			},
		},
		{
			name: "date-time before now",
			sql:  "SELECT age FROM $r WHERE TO_DATE(created) < NOW() AND TO_DATE(created) >= TO_DATE('2023-10-22T00:00:00') ORDER BY age",
			want: []any{
				map[string]any{"age": int64(26)},
				map[string]any{"age": int64(35)},
			},
		},
		{
			name: "patterned dates",
			sql:  "SELECT age FROM $r WHERE TO_DATE(joined, 'dd/MM/yyyy') < TO_DATE('1997-01-01') ORDER BY TO_DATE(joined, 'dd/MM/yyyy') DESC",
			want: []any{
				map[string]any{"age": int64(28)},
				map[string]any{"age": int64(35)},
			},
		},
		{
			name: "like",
			sql:  "SELECT age FROM $r WHERE name LIKE 'N%'",
			want: []any{
				map[string]any{"age": int64(35)},
				map[string]any{"age": int64(22)},
			},
		},
		{
			name: "is null",
			sql:  "SELECT age FROM $r WHERE nick IS NOT NULL",
			want: []any{map[string]any{"age": int64(31)}},
		},
		{
			name: "boolean",
			sql:  "SELECT age FROM $r WHERE active = false ORDER BY age DESC",
			want: []any{
				map[string]any{"age": int64(28)},
				map[string]any{"age": int64(22)},
			},
		},
		{
			name: "compound alias",
			sql:  "SELECT account AS user.account FROM $r WHERE age < 27",
			want: []any{
				map[string]any{"user": map[string]any{"account": map[string]any{"id": int64(1), "tags": []any{"admin", "ops"}}}},
				map[string]any{"user": map[string]any{"account": nil}},
			},
		},
		{
			name: "coalesce",
			sql:  "SELECT COALESCE(nick, '-') AS nick FROM $r WHERE age > 30",
			want: []any{
				map[string]any{"nick": "mü"},
				map[string]any{"nick": "-"},
			},
		},
		{
			name: "aggregates without group",
			sql:  "SELECT COUNT(*) AS n, MIN(age) AS youngest, MAX(age) AS oldest FROM $r",
			want: []any{map[string]any{"n": int64(6), "youngest": float64(19), "oldest": float64(35)}},
		},
		{
			name: "stages",
			sql:  "SELECT name FROM $r WHERE age < 30 >>> SELECT name, age FROM $r WHERE active = true",
			want: []any{
				map[string]any{"name": "Mücahit"},
				map[string]any{"name": "Ayşe"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := tt.doc
			if doc == "" {
				doc = peopleJSON
			}
			e := newTestEngine(t)
			got, err := e.Query(tt.sql, decodeJSON(t, doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_Query_DefaultLocale(t *testing.T) {
	doc := decodeJSON(t, `[{"name": "mücahit"}]`)

	plain := newTestEngine(t)
	got, err := plain.Query("SELECT UPPER(name) AS name FROM $r", doc)
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"name": "MÜCAHIT"}}, got)

	turkish := newTestEngine(t, WithLocale(language.Turkish))
	got, err = turkish.Query("SELECT UPPER(name) AS name FROM $r", doc)
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"name": "MÜCAHİT"}}, got)
}

func TestEngine_Query_Errors(t *testing.T) {
	doc := decodeJSON(t, peopleJSON)
	tests := []struct {
		name string
		sql  string
		want error
	}{
		{"syntax", "SELECT FROM $r", ErrParse},
		{"unknown function", "SELECT REVERSE(name) FROM $r", ErrUnknownFunction},
		{"column comparison", "SELECT * FROM $r WHERE age > other", ErrUnsupportedClause},
		{"average of strings", "SELECT AVG(name) FROM $r", ErrUnsupportedAggregateType},
		{"missing root", "SELECT * FROM $r.people", ErrPathNotFound},
		{"like on numbers", "SELECT * FROM $r WHERE age LIKE '2%'", ErrUnsupportedComparison},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestEngine(t).Query(tt.sql, doc)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
