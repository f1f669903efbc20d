package reader

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/docsql/document"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path        string
		format      Format
		compression Compression
		wantErr     bool
	}{
		{"people.json", FormatJSON, CompressionNone, false},
		{"dir/People.JSON", FormatJSON, CompressionNone, false},
		{"events.jsonl", FormatJSONLines, CompressionNone, false},
		{"events.ndjson", FormatJSONLines, CompressionNone, false},
		{"events.jsonl.zst", FormatJSONLines, CompressionZstd, false},
		{"people.json.gz", FormatJSON, CompressionGzip, false},
		{"data.parquet", FormatParquet, CompressionNone, false},
		{"data.parquet.gz", 0, 0, true},
		{"data.csv", 0, 0, true},
		{"README", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, compression, err := DetectFormat(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, tt.compression, compression)
		})
	}
}

func TestReader_JSON(t *testing.T) {
	dir := t.TempDir()
	const content = `{"name": "Mücahit", "age": 26, "big": 9007199254740993, "ratio": 0.5}`

	for _, name := range []string{"doc.json", "doc.json.zst", "doc.json.gz"} {
		t.Run(name, func(t *testing.T) {
			doc, err := ReadFile(writeFile(t, dir, name, content))
			require.NoError(t, err)

			obj, ok := doc.(map[string]any)
			require.True(t, ok, "document is %T", doc)
			assert.Equal(t, "Mücahit", obj["name"])
			assert.Equal(t, json.Number("9007199254740993"), obj["big"])

			v, err := document.ValueOf(obj["big"])
			require.NoError(t, err)
			assert.Equal(t, int64(9007199254740993), v.AsInt())
		})
	}
}

func TestReader_JSONLines(t *testing.T) {
	dir := t.TempDir()
	content := "{\"id\": 1}\n{\"id\": 2}\n\n{\"id\": 3}\n"

	doc, err := ReadFile(writeFile(t, dir, "events.jsonl.zst", content))
	require.NoError(t, err)

	arr, ok := doc.([]any)
	require.True(t, ok, "document is %T", doc)
	require.Len(t, arr, 3)
	assert.Equal(t, json.Number("3"), arr[2].(map[string]any)["id"])
}

func TestReader_Parquet(t *testing.T) {
	path := writeParquet(t, t.TempDir(), "people.parquet", []Person{
		{ID: 1, Name: "Alice", Age: 30, Score: 95.5},
		{ID: 2, Name: "Bob", Age: 25, Score: 82.3},
	})

	r, err := NewReader(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	assert.Equal(t, FormatParquet, r.Format())
	assert.NotNil(t, r.Schema())

	doc, err := r.ReadAll()
	require.NoError(t, err)
	rows, err := document.Flatten(doc)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Bob", rows[1].Lookup("name").AsString())
	assert.Equal(t, int64(25), rows[1].Lookup("age").AsInt())
}

func TestReadDocument(t *testing.T) {
	doc, err := ReadDocument(strings.NewReader(`[{"a": 1}, {"a": 2}]`), FormatJSON)
	require.NoError(t, err)
	assert.Len(t, doc, 2)

	_, err = ReadDocument(strings.NewReader(`{"a": 1} {"a": 2}`), FormatJSON)
	assert.ErrorIs(t, err, document.ErrInvalidInput)

	_, err = ReadDocument(strings.NewReader(""), FormatJSON)
	assert.ErrorIs(t, err, document.ErrInvalidInput)

	_, err = ReadDocument(strings.NewReader(`{"a": `), FormatJSONLines)
	assert.Error(t, err)
}

func TestReadMultipleFiles_SingleFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "one.json", `[{"id": 1}, {"id": 2}]`)

	doc, err := ReadMultipleFiles(path)
	require.NoError(t, err)

	// A single file keeps its shape and gets no _file tag
	arr := doc.([]any)
	require.Len(t, arr, 2)
	assert.NotContains(t, arr[0].(map[string]any), FileKey)
}

func TestReadMultipleFiles_GlobPattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", `{"id": 3}`)
	writeFile(t, dir, "a.jsonl", "{\"id\": 1}\n{\"id\": 2}\n")
	writeFile(t, dir, "c.json.zst", `[{"id": 4}, "scalar"]`)

	doc, err := ReadMultipleFiles(filepath.Join(dir, "*"))
	require.NoError(t, err)

	arr := doc.([]any)
	require.Len(t, arr, 5)

	wantFiles := []string{"a.jsonl", "a.jsonl", "b.json", "c.json.zst"}
	for i, want := range wantFiles {
		obj := arr[i].(map[string]any)
		assert.Equal(t, json.Number(string(rune('1'+i))), obj["id"])
		assert.Equal(t, filepath.Join(dir, want), obj[FileKey])
	}
	assert.Equal(t, "scalar", arr[4])
}

func TestReadMultipleFiles_Parquet(t *testing.T) {
	dir := t.TempDir()
	writeParquet(t, dir, "p1.parquet", []Person{{ID: 1, Name: "Alice"}})
	writeParquet(t, dir, "p2.parquet", []Person{{ID: 2, Name: "Bob"}, {ID: 3, Name: "Charlie"}})

	doc, err := ReadMultipleFiles(filepath.Join(dir, "p*.parquet"))
	require.NoError(t, err)

	rows, err := document.Flatten(doc)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, filepath.Join(dir, "p2.parquet"), rows[2].Lookup(FileKey).AsString())
	assert.Equal(t, "Charlie", rows[2].Lookup("name").AsString())
}

func TestReadMultipleFiles_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.json", `{"id": 1}`)
	writeFile(t, dir, "bad.json", `{"id": `)

	_, err := ReadMultipleFiles(filepath.Join(dir, "*.json"))
	assert.Error(t, err)

	_, err = ReadMultipleFiles(filepath.Join(dir, "*.none"))
	assert.ErrorContains(t, err, "no files match pattern")

	_, err = ReadMultipleFiles(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	_, err = ReadMultipleFiles(filepath.Join(dir, "[.json"))
	assert.ErrorContains(t, err, "invalid glob pattern")
}

func TestReadFile_NotFound(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnsupportedFormat))
}
