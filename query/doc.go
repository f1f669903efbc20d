// Package query provides SQL-like querying of in-memory JSON documents.
//
// A document is the value produced by decoding JSON into Go: nested
// map[string]any and []any holding strings, numbers, booleans and nil.
// The query language supports:
//   - SELECT with column projection, aliases and "*"
//   - FROM $r with an optional path into the document ($r.people)
//   - WHERE conditions joined with AND and OR, with parentheses
//   - GROUP BY and HAVING for aggregations
//   - ORDER BY with any number of keys
//   - Aggregate functions (COUNT, SUM, AVG, MIN, MAX)
//   - Value decorators (TO_DATE, UPPER, LOWER, COALESCE) and NOW()
//   - Stages chained with ">>>"
//
// # Basic Usage
//
// Create an engine and run a query:
//
//	engine, err := query.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := engine.Query("SELECT name, age FROM $r WHERE age > 20", doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The result is a []any holding one nested object per result row.
//
// # Rows
//
// Before evaluation the document is flattened into rows keyed by paths such
// as "account.tags[0]". Every clause works on these rows and the final rows
// are rebuilt into nested objects. Aliases may use dotted paths, so
// "SELECT name AS user.name" produces {"user": {"name": ...}}.
//
// Aggregates span every element of repeated arrays: SUM(orders.amount)
// adds orders[0].amount, orders[1].amount and so on.
//
// # Stages
//
// Stages are written outermost first and run innermost first:
//
//	SELECT city, COUNT(*) AS n FROM $r GROUP BY city >>> SELECT * FROM $r.people WHERE age > 20
//
// Only the FROM path of the last stage is used. Outer stages consume the rows
// left by the stage after them.
//
// # Conditions
//
// Comparison operators are =, !=, <>, <, >, <=, >=, LIKE, IS NULL and
// IS NOT NULL. The right-hand side is always a literal, NOW() or a decorated
// literal such as TO_DATE('2023-10-24').
//
// AND and OR have equal precedence and group to the right, so
// "a AND b OR c" means "a AND (b OR c)". Use parentheses to be explicit.
//
// LIKE translates % to "any sequence of characters"; every other character
// of the pattern is matched as a regular expression.
//
// # Decorators
//
//   - TO_DATE(path) parses ISO-8601 dates and date-times
//   - TO_DATE(path, 'dd/MM/yyyy') uses a java.time style pattern
//   - TO_DATE(path, '%d/%m/%Y') uses a strftime pattern
//   - UPPER(path[, locale]) and LOWER(path[, locale]) use locale casing rules
//   - COALESCE(path, fallback) replaces null with fallback
//
// # Engine Options
//
// New accepts options for the default casing locale (WithLocale), the clock
// behind NOW() (WithClock), a go-kit logger (WithLogger), Prometheus
// instrumentation (WithMetrics) and the size of the compiled query cache
// (WithCacheSize).
//
// # Error Handling
//
// Errors wrap sentinel values that can be tested with errors.Is:
//   - ErrParse for syntax errors and parser limits
//   - ErrUnsupportedClause, ErrUnknownFunction and ErrArityMismatch
//   - ErrUnsupportedComparison for incomparable values
//   - ErrUnsupportedAggregateType and ErrEmptyAggregateSet
//   - ErrPathNotFound and ErrInvalidInput for unusable documents
package query
