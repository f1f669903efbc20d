package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vegasq/docsql/document"
)

// compare applies op to the row value x and the test value y.
//
// Numbers compare as float64 and dates chronologically. Any other pair is
// ordered by string form. Equality treats a null test value as "x is null";
// a null row value never equals a non-null test value.
func compare(op Operator, x, y document.Value, pattern *regexp.Regexp) (bool, error) {
	switch op {
	case OpEqual:
		return equals(x, y)
	case OpNotEqual:
		if y.IsNull() {
			return !x.IsNull(), nil
		}
		if x.IsNull() {
			return true, nil
		}
		eq, err := equals(x, y)
		return !eq, err
	case OpLike:
		return matchLike(x, pattern)
	}

	// Ordering against null is never true
	if x.IsNull() || y.IsNull() {
		return false, nil
	}
	c, err := order(x, y)
	if err != nil {
		return false, err
	}
	switch op {
	case OpLess:
		return c < 0, nil
	case OpGreater:
		return c > 0, nil
	case OpLessEqual:
		return c <= 0, nil
	case OpGreaterEqual:
		return c >= 0, nil
	default:
		return false, fmt.Errorf("%w: operator %s", ErrUnsupportedClause, op)
	}
}

func equals(x, y document.Value) (bool, error) {
	if y.IsNull() {
		return x.IsNull(), nil
	}
	if x.IsNull() {
		return false, nil
	}
	if x.IsTemporal() {
		if !y.IsTemporal() {
			return false, fmt.Errorf("%w: %s = %s", ErrUnsupportedComparison, x.Kind(), y.Kind())
		}
		return compareTime(x, y) == 0, nil
	}
	return x.Equal(y), nil
}

// order compares two non-null values and returns -1, 0 or 1
func order(x, y document.Value) (int, error) {
	switch {
	case x.IsNumber():
		if !y.IsNumber() {
			return 0, fmt.Errorf("%w: cannot order %s against %s", ErrUnsupportedComparison, x.Kind(), y.Kind())
		}
		return compareFloats(x.AsFloat(), y.AsFloat()), nil
	case x.IsTemporal():
		if !y.IsTemporal() {
			return 0, fmt.Errorf("%w: cannot order %s against %s", ErrUnsupportedComparison, x.Kind(), y.Kind())
		}
		return compareTime(x, y), nil
	default:
		return strings.Compare(x.String(), y.String()), nil
	}
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareTime orders temporal values. A date compares as midnight of that day.
func compareTime(x, y document.Value) int {
	return x.AsTime().Compare(y.AsTime())
}

func matchLike(x document.Value, pattern *regexp.Regexp) (bool, error) {
	if x.IsNull() || pattern == nil {
		return false, nil
	}
	if x.Kind() != document.KindString {
		return false, fmt.Errorf("%w: LIKE needs a string, got %s", ErrUnsupportedComparison, x.Kind())
	}
	return pattern.MatchString(x.AsString()), nil
}

// compileLike turns a LIKE pattern into an anchored regular expression. Only
// % is translated (to "any sequence"); every other character keeps its
// regular expression meaning.
func compileLike(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("^(?:" + strings.ReplaceAll(pattern, "%", ".*") + ")$")
	if err != nil {
		return nil, fmt.Errorf("%w: invalid LIKE pattern %q: %v", ErrParse, pattern, err)
	}
	return re, nil
}

// ApplyFilter keeps the rows for which cond is true. Rows are not modified.
func ApplyFilter(rows []document.Row, cond Condition, ctx *ExecutionContext) ([]document.Row, error) {
	if cond == nil {
		return rows, nil
	}

	result := make([]document.Row, 0, len(rows))
	for _, row := range rows {
		match, err := cond.Evaluate(row, ctx)
		if err != nil {
			return nil, err
		}
		if match {
			result = append(result, row)
		}
	}
	return result, nil
}
