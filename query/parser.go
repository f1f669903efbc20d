package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vegasq/docsql/document"
)

// Parser parses token streams into stage descriptors
type Parser struct {
	tokens       []Token
	pos          int
	depthCounter *ExpressionDepthCounter
}

// NewParser creates a new parser
func NewParser(tokens []Token) *Parser {
	return &Parser{
		tokens:       tokens,
		pos:          0,
		depthCounter: NewExpressionDepthCounter(),
	}
}

// current returns the current token
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF, Value: ""}
	}
	return p.tokens[p.pos]
}

// peek returns the next token without advancing
func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: TokenEOF, Value: ""}
	}
	return p.tokens[p.pos+1]
}

// advance moves to the next token
func (p *Parser) advance() {
	p.pos++
}

// errorf builds a parse error pointing at the current token
func (p *Parser) errorf(format string, args ...any) error {
	tok := p.current()
	msg := fmt.Sprintf(format, args...)
	if tok.Type == TokenError {
		return fmt.Errorf("%w: invalid input %q at position %d", ErrParse, tok.Value, tok.Pos)
	}
	return fmt.Errorf("%w: %s, got %q at position %d", ErrParse, msg, tok.Value, tok.Pos)
}

// expect checks if current token matches expected type and advances
func (p *Parser) expect(tokType TokenType) error {
	if p.current().Type != tokType {
		return p.errorf("expected %v", tokType)
	}
	p.advance()
	return nil
}

// Parse parses a query of one or more ">>>"-separated stages
func Parse(query string) (*Query, error) {
	if err := ValidateQuery(query); err != nil {
		return nil, err
	}

	tokens := Tokenize(query)
	if err := ValidateTokens(tokens); err != nil {
		return nil, err
	}

	parser := NewParser(tokens)
	q, err := parser.parseQuery()
	if err != nil {
		return nil, err
	}

	if parser.current().Type != TokenEOF {
		return nil, parser.errorf("unexpected trailing input")
	}
	return q, nil
}

// parseQuery parses: stage ('>>>' stage)*
func (p *Parser) parseQuery() (*Query, error) {
	q := &Query{}
	for {
		stage, err := p.parseStage()
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", len(q.Stages)+1, err)
		}
		q.Stages = append(q.Stages, stage)

		if p.current().Type != TokenPipe {
			return q, nil
		}
		p.advance()
	}
}

// parseStage parses: SELECT columns FROM $r[.path] [WHERE] [GROUP BY] [HAVING] [ORDER BY]
func (p *Parser) parseStage() (*Stage, error) {
	if err := p.expect(TokenSelect); err != nil {
		return nil, err
	}

	columns, err := p.parseColumnList()
	if err != nil {
		return nil, fmt.Errorf("failed to parse SELECT list: %w", err)
	}
	stage := &Stage{Columns: columns}

	if err := p.expect(TokenFrom); err != nil {
		return nil, err
	}
	if p.current().Type != TokenRoot {
		return nil, p.errorf("expected root path $r after FROM")
	}
	if stage.Root, err = rootPath(p.current().Value); err != nil {
		return nil, err
	}
	p.advance()

	if p.current().Type == TokenWhere {
		p.advance()
		if stage.Where, err = p.parseClauseCondition(); err != nil {
			return nil, fmt.Errorf("failed to parse WHERE: %w", err)
		}
	}

	if p.current().Type == TokenGroup {
		p.advance()
		if err := p.expect(TokenBy); err != nil {
			return nil, err
		}
		if stage.GroupBy, err = p.parseGroupBy(); err != nil {
			return nil, fmt.Errorf("failed to parse GROUP BY: %w", err)
		}
	}

	if p.current().Type == TokenHaving {
		if !stage.Grouped() {
			return nil, p.errorf("HAVING requires GROUP BY or an aggregate column")
		}
		p.advance()
		if stage.Having, err = p.parseClauseCondition(); err != nil {
			return nil, fmt.Errorf("failed to parse HAVING: %w", err)
		}
	}

	if p.current().Type == TokenOrder {
		p.advance()
		if err := p.expect(TokenBy); err != nil {
			return nil, err
		}
		if stage.OrderBy, err = p.parseOrderByList(); err != nil {
			return nil, fmt.Errorf("failed to parse ORDER BY: %w", err)
		}
	}

	return stage, nil
}

// rootPath validates "$r" or "$r.path" and returns the path part
func rootPath(value string) (string, error) {
	if len(value) < 2 || (value[1] != 'r' && value[1] != 'R') {
		return "", fmt.Errorf("%w: root path must start with $r, got %q", ErrParse, value)
	}
	rest := value[2:]
	switch {
	case rest == "":
		return "", nil
	case rest[0] == '.' && len(rest) > 1:
		return rest[1:], nil
	case rest[0] == '[':
		return rest, nil
	default:
		return "", fmt.Errorf("%w: malformed root path %q", ErrParse, value)
	}
}

// parseColumnList parses: '*' | column (',' column)*
func (p *Parser) parseColumnList() ([]Column, error) {
	var columns []Column
	for {
		col, err := p.parseColumn()
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)

		if p.current().Type != TokenComma {
			return columns, nil
		}
		p.advance()
	}
}

// parseColumn parses: ('*' | agg '(' ('*' | pathFn) ')' | pathFn) [AS alias]
func (p *Parser) parseColumn() (Column, error) {
	var col Column

	switch {
	case p.current().Type == TokenStar:
		p.advance()
		return Column{Asterisk: true}, nil

	case p.current().Type == TokenIdent && p.peek().Type == TokenLeftParen:
		if agg, ok := LookupAggregate(p.current().Value); ok {
			p.advance() // name
			p.advance() // (
			col.Aggregate = agg
			if p.current().Type == TokenStar {
				if agg != AggregateCount {
					return col, p.errorf("%s(*) is not supported", agg)
				}
				p.advance()
				col.CountAll = true
			} else {
				ref, err := p.parsePathFn()
				if err != nil {
					return col, err
				}
				col.Ref = ref
			}
			if err := p.expect(TokenRightParen); err != nil {
				return col, err
			}
			break
		}
		ref, err := p.parsePathFn()
		if err != nil {
			return col, err
		}
		col.Ref = ref

	default:
		ref, err := p.parsePathFn()
		if err != nil {
			return col, err
		}
		col.Ref = ref
	}

	if p.current().Type == TokenAs {
		p.advance()
		switch tok := p.current(); tok.Type {
		case TokenIdent, TokenString:
			if err := ValidatePath(tok.Value); err != nil {
				return col, err
			}
			col.Alias = tok.Value
			p.advance()
		default:
			return col, p.errorf("expected alias after AS")
		}
	}
	return col, nil
}

// parsePathFn parses: path | fn '(' path (',' literal)* ')'
func (p *Parser) parsePathFn() (ColumnRef, error) {
	tok := p.current()
	if tok.Type != TokenIdent {
		return ColumnRef{}, p.errorf("expected path")
	}
	p.advance()

	if p.current().Type != TokenLeftParen {
		if err := ValidatePath(tok.Value); err != nil {
			return ColumnRef{}, err
		}
		return ColumnRef{Path: tok.Value}, nil
	}
	p.advance()

	if p.current().Type != TokenIdent {
		return ColumnRef{}, p.errorf("expected path inside %s()", strings.ToUpper(tok.Value))
	}
	path := p.current().Value
	if err := ValidatePath(path); err != nil {
		return ColumnRef{}, err
	}
	p.advance()

	args, err := p.parseLiteralArgs()
	if err != nil {
		return ColumnRef{}, err
	}
	decorator, err := NewDecorator(tok.Value, args)
	if err != nil {
		return ColumnRef{}, err
	}
	return ColumnRef{Path: path, Decorator: decorator}, nil
}

// parseLiteralArgs parses (',' literal)* ')'
func (p *Parser) parseLiteralArgs() ([]document.Value, error) {
	var args []document.Value
	for p.current().Type == TokenComma {
		p.advance()
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		args = append(args, lit)
	}
	if err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}
	return args, nil
}

// parseLiteral parses a string, number, boolean or NULL
func (p *Parser) parseLiteral() (document.Value, error) {
	tok := p.current()
	var v document.Value

	switch tok.Type {
	case TokenString:
		v = document.String(tok.Value)
	case TokenNumber:
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return v, p.errorf("invalid number")
		}
		v = document.Float(f)
	case TokenBool:
		v = document.Bool(strings.EqualFold(tok.Value, "true"))
	case TokenNull:
		v = document.Null
	default:
		return v, p.errorf("expected literal")
	}
	p.advance()
	return v, nil
}

// parseClauseCondition parses a condition and compiles it into a predicate tree
func (p *Parser) parseClauseCondition() (Condition, error) {
	syntax, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	return CompileCondition(syntax)
}

// parseCondition parses: operand (('AND'|'OR') operand)*
func (p *Parser) parseCondition() (ConditionSyntax, error) {
	var items ConditionSyntax

	item, err := p.parseConditionOperand()
	if err != nil {
		return nil, err
	}
	items = append(items, item)

	for {
		var conn Connective
		switch p.current().Type {
		case TokenAnd:
			conn = ConnectiveAnd
		case TokenOr:
			conn = ConnectiveOr
		default:
			return items, nil
		}
		p.advance()
		items = append(items, ConnectiveSyntax{Op: conn})

		item, err := p.parseConditionOperand()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

// parseConditionOperand parses a parenthesized condition or a single term
func (p *Parser) parseConditionOperand() (SyntaxItem, error) {
	if p.current().Type != TokenLeftParen {
		return p.parseTerm()
	}

	if err := p.depthCounter.Enter(); err != nil {
		return nil, err
	}
	defer p.depthCounter.Exit()

	p.advance()
	inner, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}
	return GroupSyntax{Items: inner}, nil
}

// parseTerm parses: pathFn op value | pathFn IS [NOT] NULL | pathFn LIKE string
func (p *Parser) parseTerm() (SyntaxItem, error) {
	ref, err := p.parsePathFn()
	if err != nil {
		return nil, err
	}
	pred := PredicateSyntax{Ref: ref}

	switch p.current().Type {
	case TokenIs:
		p.advance()
		pred.Op = OpEqual
		if p.current().Type == TokenNot {
			p.advance()
			pred.Op = OpNotEqual
		}
		if err := p.expect(TokenNull); err != nil {
			return nil, err
		}
		return pred, nil

	case TokenLike:
		p.advance()
		if p.current().Type != TokenString {
			return nil, p.errorf("expected string pattern after LIKE")
		}
		pred.Op = OpLike
		pred.Operand = Operand{Literal: document.String(p.current().Value)}
		p.advance()
		return pred, nil

	case TokenEqual:
		pred.Op = OpEqual
	case TokenNotEqual:
		pred.Op = OpNotEqual
	case TokenLess:
		pred.Op = OpLess
	case TokenGreater:
		pred.Op = OpGreater
	case TokenLessEqual:
		pred.Op = OpLessEqual
	case TokenGreaterEqual:
		pred.Op = OpGreaterEqual
	default:
		return nil, p.errorf("expected comparison operator")
	}
	p.advance()

	if pred.Operand, err = p.parseValue(); err != nil {
		return nil, err
	}
	return pred, nil
}

// parseValue parses: literal | NOW() | fn '(' value (',' literal)* ')'
func (p *Parser) parseValue() (Operand, error) {
	tok := p.current()
	if tok.Type != TokenIdent {
		lit, err := p.parseLiteral()
		if err != nil {
			return Operand{}, err
		}
		return Operand{Literal: lit}, nil
	}

	if p.peek().Type != TokenLeftParen {
		return Operand{}, fmt.Errorf("%w: comparison against column %q, only literal values are supported", ErrUnsupportedClause, tok.Value)
	}
	p.advance() // name
	p.advance() // (

	if strings.EqualFold(tok.Value, "NOW") {
		if err := p.expect(TokenRightParen); err != nil {
			return Operand{}, fmt.Errorf("%w: NOW() takes no arguments", ErrArityMismatch)
		}
		return Operand{Now: true}, nil
	}

	inner, err := p.parseValue()
	if err != nil {
		return Operand{}, err
	}
	if inner.Decorator != nil {
		return Operand{}, fmt.Errorf("%w: nested functions in value position", ErrUnsupportedClause)
	}
	args, err := p.parseLiteralArgs()
	if err != nil {
		return Operand{}, err
	}
	decorator, err := NewDecorator(tok.Value, args)
	if err != nil {
		return Operand{}, err
	}
	inner.Decorator = decorator
	return inner, nil
}

// parseGroupBy parses: pathFn (',' pathFn)*
func (p *Parser) parseGroupBy() ([]ColumnRef, error) {
	var refs []ColumnRef
	for {
		ref, err := p.parsePathFn()
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)

		if p.current().Type != TokenComma {
			return refs, nil
		}
		p.advance()
	}
}

// parseOrderByList parses: pathFn [ASC|DESC] (',' pathFn [ASC|DESC])*
func (p *Parser) parseOrderByList() ([]OrderByItem, error) {
	var items []OrderByItem
	for {
		ref, err := p.parsePathFn()
		if err != nil {
			return nil, err
		}
		item := OrderByItem{Ref: ref}

		switch p.current().Type {
		case TokenAsc:
			p.advance()
		case TokenDesc:
			item.Desc = true
			p.advance()
		}
		items = append(items, item)

		if p.current().Type != TokenComma {
			return items, nil
		}
		p.advance()
	}
}
