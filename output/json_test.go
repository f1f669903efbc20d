package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatter_Format(t *testing.T) {
	rows := []map[string]interface{}{
		{"name": "Mücahit", "user": map[string]interface{}{"age": int64(26)}},
		{"name": "Ayşe", "tags": []interface{}{"a", nil}},
	}

	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf).Format(rows))

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Mücahit", decoded[0]["name"])
	assert.Equal(t, float64(26), decoded[0]["user"].(map[string]interface{})["age"])
	assert.True(t, strings.HasSuffix(buf.String(), "]\n"))
	assert.Contains(t, buf.String(), "\n  {")
}

func TestJSONFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf).Format(nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestJSONLinesFormatter_Format(t *testing.T) {
	rows := []map[string]interface{}{
		{"id": int64(1), "expr": "a<b"},
		{"id": int64(2)},
	}

	var buf bytes.Buffer
	require.NoError(t, NewJSONLinesFormatter(&buf).Format(rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"expr":"a<b","id":1}`, lines[0])
	assert.Equal(t, `{"id":2}`, lines[1])
}

func TestJSONFormatter_SetOutput(t *testing.T) {
	var first, second bytes.Buffer
	f := NewJSONLinesFormatter(&first)
	f.SetOutput(&second)

	require.NoError(t, f.Format([]map[string]interface{}{{"a": 1}}))
	assert.Empty(t, first.String())
	assert.NotEmpty(t, second.String())
}
