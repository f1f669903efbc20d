package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vegasq/docsql/document"
)

// sortKind is the comparator chosen for one ORDER BY key
type sortKind int

const (
	sortNumber sortKind = iota
	sortString
	sortBool
	sortTemporal
	sortStringForm
)

func sortKindOf(v document.Value) sortKind {
	switch v.Kind() {
	case document.KindNumber:
		return sortNumber
	case document.KindString:
		return sortString
	case document.KindBool:
		return sortBool
	case document.KindDate, document.KindDateTime:
		return sortTemporal
	default:
		return sortStringForm
	}
}

// sortKey is one ORDER BY key prepared for sorting
type sortKey struct {
	item OrderByItem
	kind sortKind
	col  int // index into the precomputed key matrix
}

// ApplyOrderBy sorts rows in place by all ORDER BY keys, earlier keys first.
//
// A key's comparator type comes from the first row holding a non-null value
// at its path, after decoration. Decorators are applied to every compared
// value, nulls included, so COALESCE can place missing values. Keys with no
// non-null value are skipped.
// Nulls sort before other values. The sort is stable.
func ApplyOrderBy(rows []document.Row, orderBy []OrderByItem, ctx *ExecutionContext) error {
	if len(rows) < 2 || len(orderBy) == 0 {
		return nil
	}

	// Decorate every key of every row once
	matrix := make([][]document.Value, len(rows))
	for i, row := range rows {
		matrix[i] = make([]document.Value, len(orderBy))
		for j, item := range orderBy {
			v := row.Lookup(item.Ref.Path)
			if item.Ref.Decorator != nil {
				decorated, err := item.Ref.Decorator.Apply(v, ctx)
				if err != nil {
					return fmt.Errorf("ORDER BY %s: %w", item.Ref, err)
				}
				v = decorated
			}
			matrix[i][j] = v
		}
	}

	var keys []sortKey
	for j, item := range orderBy {
		for i := range rows {
			if v := matrix[i][j]; !v.IsNull() {
				keys = append(keys, sortKey{item: item, kind: sortKindOf(v), col: j})
				break
			}
		}
	}
	if len(keys) == 0 {
		return nil
	}

	perm := make([]int, len(rows))
	for i := range perm {
		perm[i] = i
	}

	var sortErr error
	sort.SliceStable(perm, func(a, b int) bool {
		if sortErr != nil {
			return false
		}
		for _, key := range keys {
			c, err := compareSortValues(key.kind, matrix[perm[a]][key.col], matrix[perm[b]][key.col])
			if err != nil {
				sortErr = fmt.Errorf("ORDER BY %s: %w", key.item.Ref, err)
				return false
			}
			if key.item.Desc {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
	if sortErr != nil {
		return sortErr
	}

	sorted := make([]document.Row, len(rows))
	for i, p := range perm {
		sorted[i] = rows[p]
	}
	copy(rows, sorted)
	return nil
}

func compareSortValues(kind sortKind, a, b document.Value) (int, error) {
	switch {
	case a.IsNull() && b.IsNull():
		return 0, nil
	case a.IsNull():
		return -1, nil
	case b.IsNull():
		return 1, nil
	}

	switch kind {
	case sortNumber:
		if !a.IsNumber() || !b.IsNumber() {
			return 0, mismatch(kind, a, b)
		}
		return compareFloats(a.AsFloat(), b.AsFloat()), nil
	case sortString:
		if a.Kind() != document.KindString || b.Kind() != document.KindString {
			return 0, mismatch(kind, a, b)
		}
		return strings.Compare(a.AsString(), b.AsString()), nil
	case sortBool:
		if a.Kind() != document.KindBool || b.Kind() != document.KindBool {
			return 0, mismatch(kind, a, b)
		}
		switch {
		case a.AsBool() == b.AsBool():
			return 0, nil
		case !a.AsBool():
			return -1, nil
		default:
			return 1, nil
		}
	case sortTemporal:
		if !a.IsTemporal() || !b.IsTemporal() {
			return 0, mismatch(kind, a, b)
		}
		return compareTime(a, b), nil
	default:
		return strings.Compare(a.String(), b.String()), nil
	}
}

func mismatch(kind sortKind, a, b document.Value) error {
	names := [...]string{"number", "string", "boolean", "temporal", "string form"}
	return fmt.Errorf("%w: %s ordering over %s and %s", ErrUnsupportedComparison, names[kind], a.Kind(), b.Kind())
}
