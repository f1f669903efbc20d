package document

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind identifies the type of a scalar Value
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindDate
	KindDateTime
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Layouts used for the string form of temporal values.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05.999999999"
)

// Value is a scalar stored in a row. The zero Value is null.
type Value struct {
	kind     Kind
	b        bool
	f        float64
	i        int64
	integral bool
	s        string
	t        time.Time
}

// Null is the null value
var Null = Value{}

// Bool returns a boolean value
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Float returns a floating point number
func Float(f float64) Value {
	return Value{kind: KindNumber, f: f}
}

// Int returns an integral number
func Int(i int64) Value {
	return Value{kind: KindNumber, f: float64(i), i: i, integral: true}
}

// String returns a string value
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Date returns a calendar date. The time of day and location of t are dropped.
func Date(t time.Time) Value {
	return Value{kind: KindDate, t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// DateTime returns a local date-time holding the wall clock reading of t.
func DateTime(t time.Time) Value {
	return Value{kind: KindDateTime, t: time.Date(t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)}
}

// Kind returns the kind of v
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNumber reports whether v is a number
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsTemporal reports whether v is a date or a date-time
func (v Value) IsTemporal() bool { return v.kind == KindDate || v.kind == KindDateTime }

// IsInteger reports whether v is a number that was integral in its source
func (v Value) IsInteger() bool { return v.kind == KindNumber && v.integral }

// AsBool returns the boolean payload
func (v Value) AsBool() bool { return v.b }

// AsFloat returns the numeric payload as float64
func (v Value) AsFloat() float64 { return v.f }

// AsInt returns the numeric payload as int64
func (v Value) AsInt() int64 {
	if v.integral {
		return v.i
	}
	return int64(v.f)
}

// AsString returns the string payload. Use String for the string form of any kind.
func (v Value) AsString() string { return v.s }

// AsTime returns the temporal payload
func (v Value) AsTime() time.Time { return v.t }

// String returns the string form of v
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		if v.integral {
			return strconv.FormatInt(v.i, 10)
		}
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindDate:
		return v.t.Format(DateLayout)
	case KindDateTime:
		return v.t.Format(DateTimeLayout)
	default:
		return "null"
	}
}

// Equal reports whether v and o hold the same value. Numbers compare by
// numeric value regardless of integer or float origin.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	default:
		return v.t.Equal(o.t)
	}
}

// Native converts v back into a plain Go value: nil, bool, int64, float64 or
// string. Temporal values become their ISO-8601 string form.
func (v Value) Native() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		if v.integral {
			return v.i
		}
		return v.f
	case KindString:
		return v.s
	case KindDate, KindDateTime:
		return v.String()
	default:
		return nil
	}
}

// number is satisfied by json.Number from encoding/json and compatible decoders
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

// ValueOf converts a Go scalar into a Value
func ValueOf(x any) (Value, error) {
	switch val := x.(type) {
	case nil:
		return Null, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case []byte:
		return String(string(val)), nil
	case int:
		return Int(int64(val)), nil
	case int8:
		return Int(int64(val)), nil
	case int16:
		return Int(int64(val)), nil
	case int32:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case uint:
		return fromUint(uint64(val)), nil
	case uint8:
		return Int(int64(val)), nil
	case uint16:
		return Int(int64(val)), nil
	case uint32:
		return Int(int64(val)), nil
	case uint64:
		return fromUint(val), nil
	case float32:
		return Float(float64(val)), nil
	case float64:
		return Float(val), nil
	case time.Time:
		return DateTime(val), nil
	case number:
		if i, err := val.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return Null, fmt.Errorf("%w: malformed number %q", ErrInvalidInput, val.String())
		}
		return Float(f), nil
	default:
		return Null, fmt.Errorf("%w: unsupported scalar type %T", ErrInvalidInput, x)
	}
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}
