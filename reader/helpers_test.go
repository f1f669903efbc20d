package reader

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/segmentio/parquet-go"
)

// Person is the parquet fixture row
type Person struct {
	ID    int64   `parquet:"id"`
	Name  string  `parquet:"name"`
	Age   int32   `parquet:"age"`
	Score float64 `parquet:"score"`
}

// writeParquet creates a parquet file in dir
func writeParquet[T any](t *testing.T, dir, filename string, rows []T) string {
	t.Helper()
	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	writer := parquet.NewGenericWriter[T](f)
	if _, err := writer.Write(rows); err != nil {
		t.Fatalf("failed to write test data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close file: %v", err)
	}
	return path
}

// writeFile creates a file in dir, compressing content according to the extension
func writeFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)

	var buf bytes.Buffer
	switch filepath.Ext(filename) {
	case ".zst":
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			t.Fatalf("failed to create zstd writer: %v", err)
		}
		_, _ = enc.Write([]byte(content))
		if err := enc.Close(); err != nil {
			t.Fatalf("failed to close zstd writer: %v", err)
		}
	case ".gz":
		gz := gzip.NewWriter(&buf)
		_, _ = gz.Write([]byte(content))
		if err := gz.Close(); err != nil {
			t.Fatalf("failed to close gzip writer: %v", err)
		}
	default:
		buf.WriteString(content)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}
