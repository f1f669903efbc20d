package reader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ErrUnsupportedFormat is returned for files whose extension names no known format
var ErrUnsupportedFormat = errors.New("unsupported input format")

// Format is an input document format
type Format int

const (
	FormatJSON Format = iota + 1
	FormatJSONLines
	FormatParquet
)

// String returns the format name as accepted by ParseFormat
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatJSONLines:
		return "jsonl"
	case FormatParquet:
		return "parquet"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat resolves a format name (json, jsonl, ndjson, parquet)
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "jsonl", "ndjson":
		return FormatJSONLines, nil
	case "parquet":
		return FormatParquet, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Compression is a transparent compression layer around JSON input
type Compression int

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionGzip
)

// DetectFormat derives the format and compression from a file name, e.g.
// "events.jsonl.zst" is zstd compressed JSON Lines.
func DetectFormat(path string) (Format, Compression, error) {
	name := strings.ToLower(filepath.Base(path))

	compression := CompressionNone
	switch ext := filepath.Ext(name); ext {
	case ".zst", ".zstd":
		compression = CompressionZstd
		name = strings.TrimSuffix(name, ext)
	case ".gz":
		compression = CompressionGzip
		name = strings.TrimSuffix(name, ext)
	}

	ext := filepath.Ext(name)
	if ext == "" {
		return 0, 0, fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, path)
	}
	format, err := ParseFormat(ext[1:])
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", path, err)
	}
	if format == FormatParquet && compression != CompressionNone {
		return 0, 0, fmt.Errorf("%w: parquet files carry their own compression, got %s", ErrUnsupportedFormat, path)
	}
	return format, compression, nil
}

// decompress wraps r according to c. The returned closer releases decoder state.
func decompress(r io.Reader, c Compression) (io.Reader, func(), error) {
	switch c {
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return dec, dec.Close, nil
	case CompressionGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gz, func() { _ = gz.Close() }, nil
	default:
		return r, func() {}, nil
	}
}
