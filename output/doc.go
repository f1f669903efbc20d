// Package output provides formatters for writing query results.
//
// This package defines the Formatter interface and provides implementations
// for JSON, JSON Lines, CSV and text tables. All formatters work with rows
// represented as []map[string]interface{}; Objects converts a query result
// into that shape.
//
// # Supported Formats
//
//   - json: the result as one indented JSON array
//   - jsonl: one JSON object per line (suitable for streaming)
//   - csv: comma-separated values with a header row
//   - table: an aligned text table
//
// # Basic Usage
//
// Selecting a formatter by name:
//
//	formatter, err := output.NewFormatter("csv", os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := formatter.Format(output.Objects(result)); err != nil {
//	    log.Fatal(err)
//	}
//
// # Writing to Different Destinations
//
// Change output destination dynamically:
//
//	formatter := output.NewJSONFormatter(os.Stdout)
//	formatter.SetOutput(file)
//
// # Type Handling
//
// JSON formatters preserve nested objects and arrays. CSV and table output
// flatten them into one column per path ("account.tags[0]"), with the header
// sorted alphabetically. Null values become empty cells. String cells that
// start with a formula character are prefixed with a single quote.
package output
