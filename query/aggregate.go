package query

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/vegasq/docsql/document"
)

// Aggregate identifies an aggregate function. The set is closed: every
// aggregate is handled by the switch in Aggregate.Apply.
type Aggregate int

const (
	AggregateNone Aggregate = iota
	AggregateCount
	AggregateSum
	AggregateAvg
	AggregateMin
	AggregateMax
)

var aggregateNames = map[string]Aggregate{
	"COUNT": AggregateCount,
	"SUM":   AggregateSum,
	"AVG":   AggregateAvg,
	"MIN":   AggregateMin,
	"MAX":   AggregateMax,
}

// LookupAggregate resolves an aggregate name (case-insensitive)
func LookupAggregate(name string) (Aggregate, bool) {
	agg, ok := aggregateNames[strings.ToUpper(name)]
	return agg, ok
}

// String returns the function name
func (a Aggregate) String() string {
	switch a {
	case AggregateCount:
		return "COUNT"
	case AggregateSum:
		return "SUM"
	case AggregateAvg:
		return "AVG"
	case AggregateMin:
		return "MIN"
	case AggregateMax:
		return "MAX"
	default:
		return ""
	}
}

// Apply folds non-null values into one result
func (a Aggregate) Apply(values []document.Value) (document.Value, error) {
	switch a {
	case AggregateCount:
		return document.Int(int64(len(values))), nil
	case AggregateSum:
		sum, err := sumValues(values)
		if err != nil {
			return document.Null, err
		}
		return document.Float(sum), nil
	case AggregateAvg:
		if len(values) == 0 {
			return document.Null, fmt.Errorf("%w: AVG over no values", ErrEmptyAggregateSet)
		}
		sum, err := sumValues(values)
		if err != nil {
			return document.Null, err
		}
		return document.Float(sum / float64(len(values))), nil
	case AggregateMin:
		return extreme(a, values, -1)
	case AggregateMax:
		return extreme(a, values, 1)
	default:
		return document.Null, fmt.Errorf("%w: aggregate %d", ErrUnknownFunction, int(a))
	}
}

func sumValues(values []document.Value) (float64, error) {
	var sum float64
	for _, v := range values {
		if !v.IsNumber() {
			return 0, fmt.Errorf("%w: SUM/AVG over %s", ErrUnsupportedAggregateType, v.Kind())
		}
		sum += v.AsFloat()
	}
	return sum, nil
}

// extreme returns the minimum (want < 0) or maximum (want > 0) of values.
// Numbers yield a float, dates and date-times keep their kind.
func extreme(a Aggregate, values []document.Value, want int) (document.Value, error) {
	if len(values) == 0 {
		return document.Null, fmt.Errorf("%w: %s over no values", ErrEmptyAggregateSet, a)
	}

	kind := values[0].Kind()
	if kind != document.KindNumber && kind != document.KindDate && kind != document.KindDateTime {
		return document.Null, fmt.Errorf("%w: %s over %s", ErrUnsupportedAggregateType, a, kind)
	}

	best := values[0]
	for _, v := range values[1:] {
		if v.Kind() != kind {
			return document.Null, fmt.Errorf("%w: %s over mixed %s and %s", ErrUnsupportedAggregateType, a, kind, v.Kind())
		}
		var c int
		if kind == document.KindNumber {
			c = compareFloats(v.AsFloat(), best.AsFloat())
		} else {
			c = v.AsTime().Compare(best.AsTime())
		}
		if c*want > 0 {
			best = v
		}
	}

	if kind == document.KindNumber {
		return document.Float(best.AsFloat()), nil
	}
	return best, nil
}

// Group is one bucket of rows sharing the same group key
type Group struct {
	Values []document.Value // decorated GROUP BY values, in GROUP BY order
	Rows   []document.Row
}

// groupHash buckets group keys. Buckets are only candidates; membership is
// decided by comparing the values themselves. Values that are Equal must hash
// alike, so numbers hash their float64 bits whatever their source form.
var groupHash = func(values []document.Value) uint64 {
	d := xxhash.New()
	var buf [9]byte
	for _, v := range values {
		buf[0] = byte(v.Kind())
		switch v.Kind() {
		case document.KindNumber:
			f := v.AsFloat()
			if f == 0 {
				f = 0 // -0 equals 0
			}
			binary.LittleEndian.PutUint64(buf[1:], math.Float64bits(f))
			_, _ = d.Write(buf[:])
		case document.KindDate, document.KindDateTime:
			binary.LittleEndian.PutUint64(buf[1:], uint64(v.AsTime().UnixNano()))
			_, _ = d.Write(buf[:])
		default:
			_, _ = d.Write(buf[:1])
			_, _ = d.WriteString(v.String())
			_, _ = d.Write([]byte{0})
		}
	}
	return d.Sum64()
}

func sameGroup(a, b []document.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// partition splits rows into groups in order of first appearance
func partition(rows []document.Row, groupBy []ColumnRef, ctx *ExecutionContext) ([]*Group, error) {
	buckets := make(map[uint64][]*Group)
	var groups []*Group

	for _, row := range rows {
		values := make([]document.Value, len(groupBy))
		for i, ref := range groupBy {
			v := row.Lookup(ref.Path)
			if ref.Decorator != nil {
				decorated, err := ref.Decorator.Apply(v, ctx)
				if err != nil {
					return nil, fmt.Errorf("GROUP BY %s: %w", ref, err)
				}
				v = decorated
			}
			values[i] = v
		}

		h := groupHash(values)
		var target *Group
		for _, g := range buckets[h] {
			if sameGroup(g.Values, values) {
				target = g
				break
			}
		}
		if target == nil {
			target = &Group{Values: values}
			buckets[h] = append(buckets[h], target)
			groups = append(groups, target)
		}
		target.Rows = append(target.Rows, row)
	}
	return groups, nil
}

// ApplyGroupByAndAggregate replaces rows with one aggregated row per group.
// Without GROUP BY all rows form a single group, so an aggregate-only SELECT
// returns exactly one row even for empty input.
func ApplyGroupByAndAggregate(rows []document.Row, stage *Stage, ctx *ExecutionContext) ([]document.Row, error) {
	var groups []*Group
	if len(stage.GroupBy) == 0 {
		groups = []*Group{{Rows: rows}}
	} else {
		var err error
		if groups, err = partition(rows, stage.GroupBy, ctx); err != nil {
			return nil, err
		}
	}

	result := make([]document.Row, 0, len(groups))
	for _, group := range groups {
		row, err := computeAggregates(group, stage, ctx)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, nil
}

// computeAggregates builds the output row of one group
func computeAggregates(group *Group, stage *Stage, ctx *ExecutionContext) (document.Row, error) {
	out := make(document.Row)

	for _, col := range stage.Columns {
		switch {
		case col.Asterisk:
			for i, ref := range stage.GroupBy {
				out.Set(ref.Path, group.Values[i])
			}
		case col.CountAll:
			out.Set(col.OutputName(), document.Int(int64(len(group.Rows))))
		case col.Aggregate != AggregateNone:
			values, err := collectFamily(group.Rows, col.Ref, ctx)
			if err != nil {
				return nil, fmt.Errorf("%s(%s): %w", col.Aggregate, col.Ref, err)
			}
			v, err := col.Aggregate.Apply(values)
			if err != nil {
				return nil, fmt.Errorf("%s(%s): %w", col.Aggregate, col.Ref, err)
			}
			out.Set(col.OutputName(), v)
		default:
			out.Set(col.OutputName(), groupValue(group, stage.GroupBy, col.Ref.Path))
		}
	}
	return out, nil
}

// groupValue returns the group's value for a GROUP BY path, or null when the
// path is not grouped on.
func groupValue(group *Group, groupBy []ColumnRef, path string) document.Value {
	for i, ref := range groupBy {
		if ref.Path == path {
			return group.Values[i]
		}
	}
	return document.Null
}

// collectFamily gathers the decorated non-null values of every key in the
// group whose family matches the column's family, so a column spans all
// elements of repeated arrays.
func collectFamily(rows []document.Row, ref ColumnRef, ctx *ExecutionContext) ([]document.Value, error) {
	family := document.FamilyOf(ref.Path)
	var values []document.Value

	for _, row := range rows {
		var keys []document.PathKey
		for key := range row {
			if key.Family == family {
				keys = append(keys, key)
			}
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i].Key < keys[j].Key })

		for _, key := range keys {
			v := row[key]
			if v.IsNull() {
				continue
			}
			if ref.Decorator != nil {
				decorated, err := ref.Decorator.Apply(v, ctx)
				if err != nil {
					return nil, err
				}
				if decorated.IsNull() {
					continue
				}
				v = decorated
			}
			values = append(values, v)
		}
	}
	return values, nil
}

// ApplyHaving filters aggregated rows
func ApplyHaving(rows []document.Row, having Condition, ctx *ExecutionContext) ([]document.Row, error) {
	return ApplyFilter(rows, having, ctx)
}
