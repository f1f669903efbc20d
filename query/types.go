package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vegasq/docsql/document"
)

// TokenType represents the type of a token
type TokenType int

const (
	// Keywords
	TokenSelect TokenType = iota
	TokenFrom
	TokenWhere
	TokenAnd
	TokenOr
	TokenAs
	TokenGroup
	TokenBy
	TokenHaving
	TokenOrder
	TokenAsc
	TokenDesc
	TokenLike
	TokenIs
	TokenNot
	TokenNull

	// Operators
	TokenEqual
	TokenNotEqual
	TokenLess
	TokenGreater
	TokenLessEqual
	TokenGreaterEqual

	// Literals
	TokenString
	TokenNumber
	TokenIdent
	TokenRoot
	TokenBool

	// Punctuation
	TokenComma
	TokenLeftParen
	TokenRightParen
	TokenStar
	TokenPipe

	// Special
	TokenEOF
	TokenError
)

var tokenNames = map[TokenType]string{
	TokenSelect:       "SELECT",
	TokenFrom:         "FROM",
	TokenWhere:        "WHERE",
	TokenAnd:          "AND",
	TokenOr:           "OR",
	TokenAs:           "AS",
	TokenGroup:        "GROUP",
	TokenBy:           "BY",
	TokenHaving:       "HAVING",
	TokenOrder:        "ORDER",
	TokenAsc:          "ASC",
	TokenDesc:         "DESC",
	TokenLike:         "LIKE",
	TokenIs:           "IS",
	TokenNot:          "NOT",
	TokenNull:         "NULL",
	TokenEqual:        "=",
	TokenNotEqual:     "!=",
	TokenLess:         "<",
	TokenGreater:      ">",
	TokenLessEqual:    "<=",
	TokenGreaterEqual: ">=",
	TokenString:       "string",
	TokenNumber:       "number",
	TokenIdent:        "identifier",
	TokenRoot:         "root path",
	TokenBool:         "boolean",
	TokenComma:        ",",
	TokenLeftParen:    "(",
	TokenRightParen:   ")",
	TokenStar:         "*",
	TokenPipe:         ">>>",
	TokenEOF:          "end of query",
	TokenError:        "invalid token",
}

// String returns a readable name for the token type
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// Query is a chain of stages separated by ">>>", kept in textual order.
// Stages run from the last one to the first.
type Query struct {
	Stages []*Stage
}

// Stage is one SELECT ... FROM ... [WHERE] [GROUP BY] [HAVING] [ORDER BY] segment
type Stage struct {
	Columns []Column
	Root    string // path after $r, empty for the document root
	Where   Condition
	GroupBy []ColumnRef
	Having  Condition
	OrderBy []OrderByItem
}

// SelectsAll reports whether the selection is a bare "*"
func (s *Stage) SelectsAll() bool {
	return len(s.Columns) == 1 && s.Columns[0].Asterisk
}

// HasAggregates reports whether any selected column is an aggregate
func (s *Stage) HasAggregates() bool {
	for _, col := range s.Columns {
		if col.Aggregate != AggregateNone {
			return true
		}
	}
	return false
}

// Grouped reports whether the stage replaces its rows with aggregated rows
func (s *Stage) Grouped() bool {
	return len(s.GroupBy) > 0 || s.HasAggregates()
}

// ColumnRef is a path with an optional value decorator, e.g. LOWER(name, 'tr-TR')
type ColumnRef struct {
	Path      string
	Decorator *Decorator
}

// String renders the reference the way it is written in a query
func (c ColumnRef) String() string {
	if c.Decorator == nil {
		return c.Path
	}
	return c.Decorator.render(c.Path)
}

// Column is one entry of a SELECT list
type Column struct {
	Asterisk  bool
	Ref       ColumnRef
	Aggregate Aggregate
	CountAll  bool // COUNT(*)
	Alias     string
}

// OutputName returns the key the column is written under
func (c Column) OutputName() string {
	if c.Alias != "" {
		return c.Alias
	}
	if c.CountAll {
		return c.Aggregate.String() + "(*)"
	}
	return c.Ref.Path
}

// OrderByItem represents an ORDER BY key
type OrderByItem struct {
	Ref  ColumnRef
	Desc bool
}

// Operator is a binary comparison predicate
type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
	OpLike
)

var operatorSymbols = [...]string{"=", "!=", "<", ">", "<=", ">=", "LIKE"}

// String returns the operator symbol
func (o Operator) String() string {
	if int(o) < len(operatorSymbols) {
		return operatorSymbols[o]
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// Operand is the test value on the right side of a comparison. It is either a
// literal or NOW(), optionally wrapped in a decorator such as
// TO_DATE('2023-10-23 20:00:00', 'yyyy-MM-dd HH:mm:ss').
type Operand struct {
	Literal   document.Value
	Now       bool
	Decorator *Decorator
}

// Resolve returns the operand's value for one execution
func (o Operand) Resolve(ctx *ExecutionContext) (document.Value, error) {
	v := o.Literal
	if o.Now {
		v = document.DateTime(ctx.Now)
	}
	if o.Decorator != nil {
		return o.Decorator.Apply(v, ctx)
	}
	return v, nil
}

// String renders the operand
func (o Operand) String() string {
	base := o.Literal.String()
	switch {
	case o.Now:
		base = "NOW()"
	case o.Literal.Kind() == document.KindString:
		base = "'" + strings.ReplaceAll(o.Literal.AsString(), "'", "\\'") + "'"
	}
	if o.Decorator != nil {
		return o.Decorator.render(base)
	}
	return base
}

// Condition is a compiled predicate tree evaluated against one row
type Condition interface {
	Evaluate(row document.Row, ctx *ExecutionContext) (bool, error)
	String() string
}

// AndNode is true when both children are true
type AndNode struct {
	Left, Right Condition
}

// Evaluate implements Condition
func (n *AndNode) Evaluate(row document.Row, ctx *ExecutionContext) (bool, error) {
	left, err := n.Left.Evaluate(row, ctx)
	if err != nil || !left {
		return false, err
	}
	return n.Right.Evaluate(row, ctx)
}

func (n *AndNode) String() string {
	return "(" + n.Left.String() + " AND " + n.Right.String() + ")"
}

// OrNode is true when either child is true
type OrNode struct {
	Left, Right Condition
}

// Evaluate implements Condition
func (n *OrNode) Evaluate(row document.Row, ctx *ExecutionContext) (bool, error) {
	left, err := n.Left.Evaluate(row, ctx)
	if err != nil || left {
		return left, err
	}
	return n.Right.Evaluate(row, ctx)
}

func (n *OrNode) String() string {
	return "(" + n.Left.String() + " OR " + n.Right.String() + ")"
}

// ComparisonNode tests the row value at a path against an operand
type ComparisonNode struct {
	Ref     ColumnRef
	Op      Operator
	Operand Operand
	pattern *regexp.Regexp // compiled LIKE pattern
}

// Evaluate implements Condition. The decorator is applied to the row value
// only, and only when that value is non-null.
func (n *ComparisonNode) Evaluate(row document.Row, ctx *ExecutionContext) (bool, error) {
	value := row.Lookup(n.Ref.Path)
	if n.Ref.Decorator != nil && !value.IsNull() {
		decorated, err := n.Ref.Decorator.Apply(value, ctx)
		if err != nil {
			return false, err
		}
		value = decorated
	}
	test, err := n.Operand.Resolve(ctx)
	if err != nil {
		return false, err
	}
	ok, err := compare(n.Op, value, test, n.pattern)
	if err != nil {
		return false, fmt.Errorf("%s: %w", n.String(), err)
	}
	return ok, nil
}

func (n *ComparisonNode) String() string {
	return n.Ref.String() + " " + n.Op.String() + " " + n.Operand.String()
}
