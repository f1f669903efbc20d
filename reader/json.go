package reader

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/vegasq/docsql/document"
)

// decodeJSON reads exactly one JSON value. Numbers are kept as json.Number so
// integers survive without a float round trip.
func decodeJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty JSON input", document.ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON value", document.ErrInvalidInput)
	}
	return doc, nil
}

// decodeJSONLines reads a stream of JSON values, one per line, into an array
func decodeJSONLines(r io.Reader) ([]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	docs := make([]any, 0)
	for line := 1; ; line++ {
		var doc any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode record %d: %w", line, err)
		}
		docs = append(docs, doc)
	}
}
