package query

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/vegasq/docsql/document"
)

// DecoratorFunc identifies a value decorator. The set is closed: every
// decorator is handled by the switch in Decorator.Apply.
type DecoratorFunc int

const (
	DecoratorToDate DecoratorFunc = iota + 1
	DecoratorUpper
	DecoratorLower
	DecoratorCoalesce
)

var decoratorNames = map[string]DecoratorFunc{
	"TO_DATE":  DecoratorToDate,
	"UPPER":    DecoratorUpper,
	"LOWER":    DecoratorLower,
	"COALESCE": DecoratorCoalesce,
}

// String returns the function name
func (f DecoratorFunc) String() string {
	switch f {
	case DecoratorToDate:
		return "TO_DATE"
	case DecoratorUpper:
		return "UPPER"
	case DecoratorLower:
		return "LOWER"
	case DecoratorCoalesce:
		return "COALESCE"
	default:
		return fmt.Sprintf("DecoratorFunc(%d)", int(f))
	}
}

// arity returns the accepted number of literal arguments after the value
func (f DecoratorFunc) arity() (min, max int) {
	switch f {
	case DecoratorCoalesce:
		return 1, 1
	default:
		return 0, 1
	}
}

// LookupDecorator resolves a function name (case-insensitive)
func LookupDecorator(name string) (DecoratorFunc, error) {
	upper := strings.ToUpper(name)
	if f, ok := decoratorNames[upper]; ok {
		return f, nil
	}
	if upper == "NOW" {
		return 0, fmt.Errorf("%w: NOW() is only allowed as a value", ErrUnsupportedClause)
	}
	if _, ok := LookupAggregate(upper); ok {
		return 0, fmt.Errorf("%w: aggregate %s is only allowed in the SELECT list", ErrUnsupportedClause, upper)
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
}

// Decorator is a value transform with its literal arguments bound, such as
// LOWER(name, 'tr-TR') or TO_DATE(created, 'dd/MM/yyyy').
type Decorator struct {
	Func DecoratorFunc
	Args []document.Value

	date   *datePattern
	locale *language.Tag
}

// NewDecorator resolves name and validates its literal arguments
func NewDecorator(name string, args []document.Value) (*Decorator, error) {
	fn, err := LookupDecorator(name)
	if err != nil {
		return nil, err
	}

	min, max := fn.arity()
	if len(args) < min || len(args) > max {
		return nil, fmt.Errorf("%w: %s takes %d to %d extra arguments, got %d", ErrArityMismatch, fn, min, max, len(args))
	}

	d := &Decorator{Func: fn, Args: args}
	switch fn {
	case DecoratorToDate:
		if len(args) == 1 {
			if args[0].Kind() != document.KindString {
				return nil, fmt.Errorf("%w: TO_DATE pattern must be a string", ErrInvalidArgument)
			}
			if d.date, err = compileDatePattern(args[0].AsString()); err != nil {
				return nil, err
			}
		}
	case DecoratorUpper, DecoratorLower:
		if len(args) == 1 {
			if args[0].Kind() != document.KindString {
				return nil, fmt.Errorf("%w: %s locale must be a string", ErrInvalidArgument, fn)
			}
			tag, err := language.Parse(args[0].AsString())
			if err != nil {
				return nil, fmt.Errorf("%w: %s locale %q: %v", ErrInvalidArgument, fn, args[0].AsString(), err)
			}
			d.locale = &tag
		}
	}
	return d, nil
}

// Apply transforms v
func (d *Decorator) Apply(v document.Value, ctx *ExecutionContext) (document.Value, error) {
	switch d.Func {
	case DecoratorToDate:
		return toDate(v, d.date)
	case DecoratorUpper:
		return changeCase(v, d.caseLocale(ctx), true)
	case DecoratorLower:
		return changeCase(v, d.caseLocale(ctx), false)
	case DecoratorCoalesce:
		if v.IsNull() {
			return d.Args[0], nil
		}
		return v, nil
	default:
		return document.Null, fmt.Errorf("%w: %s", ErrUnknownFunction, d.Func)
	}
}

func (d *Decorator) caseLocale(ctx *ExecutionContext) language.Tag {
	if d.locale != nil {
		return *d.locale
	}
	if ctx == nil {
		return language.Und
	}
	return ctx.Locale
}

// render writes the decorator call around inner
func (d *Decorator) render(inner string) string {
	var b strings.Builder
	b.WriteString(d.Func.String())
	b.WriteByte('(')
	b.WriteString(inner)
	for _, arg := range d.Args {
		b.WriteString(", ")
		if arg.Kind() == document.KindString {
			b.WriteString("'" + arg.AsString() + "'")
		} else {
			b.WriteString(arg.String())
		}
	}
	b.WriteByte(')')
	return b.String()
}
