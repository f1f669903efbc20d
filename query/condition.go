package query

import (
	"fmt"

	"github.com/vegasq/docsql/document"
)

// ConditionSyntax is the parsed, not yet compiled form of a WHERE or HAVING
// clause: predicates, parenthesized groups and connectives in textual order.
type ConditionSyntax []SyntaxItem

// SyntaxItem is one element of a ConditionSyntax
type SyntaxItem interface {
	syntaxItem()
}

// PredicateSyntax is a single comparison, IS [NOT] NULL or LIKE test
type PredicateSyntax struct {
	Ref     ColumnRef
	Op      Operator
	Operand Operand
}

// GroupSyntax is a parenthesized sub-condition
type GroupSyntax struct {
	Items ConditionSyntax
}

// Connective joins two operands of a condition
type Connective int

const (
	ConnectiveAnd Connective = iota
	ConnectiveOr
)

// ConnectiveSyntax is an AND or OR between operands
type ConnectiveSyntax struct {
	Op Connective
}

func (PredicateSyntax) syntaxItem()  {}
func (GroupSyntax) syntaxItem()      {}
func (ConnectiveSyntax) syntaxItem() {}

type condTokenKind int

const (
	condLeaf condTokenKind = iota
	condOpen
	condClose
	condConnective
)

// condToken is one element of the linear token stream
type condToken struct {
	kind condTokenKind
	leaf *ComparisonNode
	conn Connective
}

// CompileCondition turns a clause into a predicate tree.
//
// AND and OR have equal precedence. Connectives are pushed onto the operator
// stack without popping, so a chain is grouped from the right:
// a AND b OR c evaluates as a AND (b OR c). Parentheses group as usual.
func CompileCondition(syntax ConditionSyntax) (Condition, error) {
	if len(syntax) == 0 {
		return nil, nil
	}

	tokens, err := tokenizeCondition(syntax, nil)
	if err != nil {
		return nil, err
	}
	postfix, err := toPostfix(tokens)
	if err != nil {
		return nil, err
	}
	return buildCondition(postfix)
}

// tokenizeCondition walks the syntax depth-first, emitting compiled leaves,
// parentheses around groups and connectives.
func tokenizeCondition(items ConditionSyntax, out []condToken) ([]condToken, error) {
	for _, item := range items {
		switch it := item.(type) {
		case PredicateSyntax:
			leaf, err := compilePredicate(it)
			if err != nil {
				return nil, err
			}
			out = append(out, condToken{kind: condLeaf, leaf: leaf})
		case GroupSyntax:
			out = append(out, condToken{kind: condOpen})
			var err error
			if out, err = tokenizeCondition(it.Items, out); err != nil {
				return nil, err
			}
			out = append(out, condToken{kind: condClose})
		case ConnectiveSyntax:
			out = append(out, condToken{kind: condConnective, conn: it.Op})
		default:
			return nil, fmt.Errorf("%w: condition element %T", ErrUnsupportedClause, item)
		}
	}
	return out, nil
}

func compilePredicate(p PredicateSyntax) (*ComparisonNode, error) {
	node := &ComparisonNode{Ref: p.Ref, Op: p.Op, Operand: p.Operand}
	if p.Op == OpLike {
		if p.Operand.Now || p.Operand.Decorator != nil || p.Operand.Literal.Kind() != document.KindString {
			return nil, fmt.Errorf("%w: LIKE needs a string pattern", ErrUnsupportedClause)
		}
		re, err := compileLike(p.Operand.Literal.AsString())
		if err != nil {
			return nil, err
		}
		node.pattern = re
	}
	return node, nil
}

// toPostfix converts the infix stream with a single operator stack
func toPostfix(tokens []condToken) ([]condToken, error) {
	var output, stack []condToken

	for _, tok := range tokens {
		switch tok.kind {
		case condLeaf:
			output = append(output, tok)
		case condOpen, condConnective:
			stack = append(stack, tok)
		case condClose:
			for {
				if len(stack) == 0 {
					return nil, fmt.Errorf("%w: unbalanced parentheses in condition", ErrParse)
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.kind == condOpen {
					break
				}
				output = append(output, top)
			}
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.kind == condOpen {
			return nil, fmt.Errorf("%w: unbalanced parentheses in condition", ErrParse)
		}
		output = append(output, top)
	}
	return output, nil
}

// buildCondition consumes postfix tokens with an operand stack. For a
// connective the first pop becomes the left child and the second the right.
func buildCondition(postfix []condToken) (Condition, error) {
	var stack []Condition

	pop := func() (Condition, error) {
		if len(stack) == 0 {
			return nil, fmt.Errorf("%w: connective without operands", ErrUnsupportedClause)
		}
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return c, nil
	}

	for _, tok := range postfix {
		if tok.kind == condLeaf {
			stack = append(stack, tok.leaf)
			continue
		}
		left, err := pop()
		if err != nil {
			return nil, err
		}
		right, err := pop()
		if err != nil {
			return nil, err
		}
		if tok.conn == ConnectiveAnd {
			stack = append(stack, &AndNode{Left: left, Right: right})
		} else {
			stack = append(stack, &OrNode{Left: left, Right: right})
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("%w: condition does not reduce to a single predicate", ErrUnsupportedClause)
	}
	return stack[0], nil
}
