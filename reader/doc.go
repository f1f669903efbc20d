// Package reader loads input documents for the query engine.
//
// Supported formats are detected from the file extension:
//   - .json: a single JSON value
//   - .jsonl and .ndjson: one JSON value per line, read as an array
//   - .parquet: one object per row, read as an array
//
// JSON formats may carry a .zst or .gz suffix and are decompressed
// transparently. JSON numbers are decoded as json.Number so large integers
// keep their exact value.
//
// # Basic Usage
//
// Reading a single file:
//
//	reader, err := reader.NewReader("people.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reader.Close()
//
//	doc, err := reader.ReadAll()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Reading standard input:
//
//	doc, err := reader.ReadDocument(os.Stdin, reader.FormatJSONLines)
//
// # Multi-file Operations
//
// Reading multiple files using glob patterns:
//
//	doc, err := reader.ReadMultipleFiles("logs/*.jsonl.zst")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Files are read concurrently and concatenated into one array in sorted path
// order. Each object gets a "_file" field with its source path.
//
// # Schema Introspection
//
// ExtractSchemaInfo reports the declared schema of parquet files. For JSON
// input it reads the data and reports every path family with the value kinds
// seen under it:
//
//	infos, err := reader.ExtractSchemaInfo("people.json")
//	for _, info := range infos {
//	    fmt.Printf("%s: %s\n", info.Name, info.Type)
//	}
//
// The package uses github.com/parquet-go/parquet-go for parquet files,
// github.com/goccy/go-json for JSON and github.com/klauspost/compress for
// decompression.
package reader
