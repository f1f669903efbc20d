package reader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"
	"golang.org/x/sync/errgroup"
)

// MaxFiles caps the number of files a glob pattern may expand to
const MaxFiles = 1000

// FileKey is the field added to every object read through a glob pattern
const FileKey = "_file"

// Reader reads one input file as a document.
//
// It maintains both an OS file handle and, for parquet input, a parquet
// file handle to enable proper resource cleanup.
type Reader struct {
	path        string
	format      Format
	compression Compression
	file        *os.File
	pqFile      *parquet.File
}

// NewReader opens the file at path. The format is detected from the extension.
//
// Example:
//
//	reader, err := NewReader("people.json.zst")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reader.Close()
func NewReader(path string) (*Reader, error) {
	format, compression, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r := &Reader{path: path, format: format, compression: compression, file: file}
	if format == FormatParquet {
		if r.pqFile, err = openParquet(file); err != nil {
			_ = file.Close()
			return nil, err
		}
	}
	return r, nil
}

// Format returns the detected input format
func (r *Reader) Format() Format {
	return r.format
}

// ReadAll reads the whole file into memory.
//
// JSON input yields the decoded value itself. JSON Lines and parquet input
// yield an array holding one object per line or row.
func (r *Reader) ReadAll() (any, error) {
	if r.format == FormatParquet {
		rows, err := readParquet(r.pqFile)
		if err != nil {
			return nil, err
		}
		return rows, nil
	}

	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind %s: %w", r.path, err)
	}
	in, release, err := decompress(r.file, r.compression)
	if err != nil {
		return nil, err
	}
	defer release()

	return ReadDocument(in, r.format)
}

// Schema returns the parquet file schema, or nil for JSON input
func (r *Reader) Schema() *parquet.Schema {
	if r.pqFile == nil {
		return nil
	}
	return r.pqFile.Schema()
}

// Close closes the reader and releases associated resources
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ReadDocument decodes uncompressed input such as stdin
func ReadDocument(in io.Reader, format Format) (any, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(in)
	case FormatJSONLines:
		docs, err := decodeJSONLines(in)
		if err != nil {
			return nil, err
		}
		return docs, nil
	case FormatParquet:
		// parquet needs random access
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet input: %w", err)
		}
		pqFile, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("failed to open parquet file: %w", err)
		}
		rows, err := readParquet(pqFile)
		if err != nil {
			return nil, err
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// ReadFile opens, reads and closes a single file
func ReadFile(path string) (any, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}

	doc, readErr := r.ReadAll()
	closeErr := r.Close()

	// Preserve the first error encountered
	if readErr != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, readErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to close %s: %w", path, closeErr)
	}
	return doc, nil
}

// IsGlob reports whether pattern contains glob wildcards
func IsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[]{}")
}

// ExpandGlob returns the sorted files matching pattern, at most MaxFiles
func ExpandGlob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}
	if len(matches) > MaxFiles {
		return nil, fmt.Errorf("glob pattern matched too many files (%d), maximum is %d", len(matches), MaxFiles)
	}
	sort.Strings(matches)
	return matches, nil
}

// ReadMultipleFiles reads every file matching a glob pattern into one array.
//
// The pattern can include wildcards:
//   - * matches any sequence of non-separator characters
//   - ? matches any single non-separator character
//   - [range] matches any character in range
//
// Files are read concurrently and concatenated in sorted path order: array
// documents contribute their elements, other documents contribute themselves.
// Every object element is tagged with a "_file" field holding its source path.
//
// A pattern without wildcards reads that single file and returns its document
// unchanged, without "_file" tags.
func ReadMultipleFiles(pattern string) (any, error) {
	if !IsGlob(pattern) {
		return ReadFile(pattern)
	}

	matches, err := ExpandGlob(pattern)
	if err != nil {
		return nil, err
	}

	docs := make([]any, len(matches))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range matches {
		i, path := i, path
		g.Go(func() error {
			doc, err := ReadFile(path)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]any, 0, len(matches))
	for i, doc := range docs {
		elems, ok := doc.([]any)
		if !ok {
			elems = []any{doc}
		}
		for _, elem := range elems {
			if obj, ok := elem.(map[string]any); ok {
				obj[FileKey] = matches[i]
			}
			all = append(all, elem)
		}
	}
	return all, nil
}
