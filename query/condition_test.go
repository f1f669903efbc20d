package query

import (
	"errors"
	"testing"

	"github.com/vegasq/docsql/document"
)

func TestCompileCondition_EqualPrecedence(t *testing.T) {
	stage := mustParseStage(t, "SELECT * FROM $r WHERE x = 1 AND y = 1 OR z = 1")

	// a AND b OR c groups as a AND (b OR c)
	if got, want := stage.Where.String(), "((z = 1 OR y = 1) AND x = 1)"; got != want {
		t.Errorf("tree = %q, want %q", got, want)
	}

	tests := []struct {
		name    string
		x, y, z int64
		want    bool
	}{
		{"only c true", 0, 0, 1, false},
		{"a and c true", 1, 0, 1, true},
		{"a and b true", 1, 1, 0, true},
		{"only a true", 1, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := flattenDocs(t, map[string]any{"x": tt.x, "y": tt.y, "z": tt.z})
			got, err := stage.Where.Evaluate(rows[0], testContext())
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompileCondition_OrThenAnd(t *testing.T) {
	stage := mustParseStage(t, "SELECT * FROM $r WHERE x = 1 OR y = 1 AND z = 1")

	// a OR b AND c groups as a OR (b AND c), which matches standard precedence here
	if got, want := stage.Where.String(), "((z = 1 AND y = 1) OR x = 1)"; got != want {
		t.Errorf("tree = %q, want %q", got, want)
	}
}

func TestCompileCondition_Parentheses(t *testing.T) {
	stage := mustParseStage(t, "SELECT * FROM $r WHERE (x = 1 AND y = 1) OR z = 1")

	if got, want := stage.Where.String(), "(z = 1 OR (y = 1 AND x = 1))"; got != want {
		t.Errorf("tree = %q, want %q", got, want)
	}

	rows := flattenDocs(t, map[string]any{"x": int64(0), "y": int64(0), "z": int64(1)})
	got, err := stage.Where.Evaluate(rows[0], testContext())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !got {
		t.Errorf("Evaluate() = false, want true")
	}
}

func TestTokenizeCondition_Stream(t *testing.T) {
	leaf := PredicateSyntax{Ref: ColumnRef{Path: "a"}, Op: OpEqual, Operand: Operand{Literal: document.Int(1)}}
	syntax := ConditionSyntax{
		GroupSyntax{Items: ConditionSyntax{leaf, ConnectiveSyntax{Op: ConnectiveOr}, leaf}},
		ConnectiveSyntax{Op: ConnectiveAnd},
		leaf,
	}

	tokens, err := tokenizeCondition(syntax, nil)
	if err != nil {
		t.Fatalf("tokenizeCondition() error = %v", err)
	}

	want := []condTokenKind{condOpen, condLeaf, condConnective, condLeaf, condClose, condConnective, condLeaf}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, tok := range tokens {
		if tok.kind != want[i] {
			t.Errorf("token %d kind = %d, want %d", i, tok.kind, want[i])
		}
	}

	postfix, err := toPostfix(tokens)
	if err != nil {
		t.Fatalf("toPostfix() error = %v", err)
	}
	wantPostfix := []condTokenKind{condLeaf, condLeaf, condConnective, condLeaf, condConnective}
	for i, tok := range postfix {
		if tok.kind != wantPostfix[i] {
			t.Errorf("postfix %d kind = %d, want %d", i, tok.kind, wantPostfix[i])
		}
	}
}

func TestCompileCondition_Malformed(t *testing.T) {
	if _, err := buildCondition([]condToken{{kind: condConnective}}); !errors.Is(err, ErrUnsupportedClause) {
		t.Errorf("buildCondition() error = %v, want ErrUnsupportedClause", err)
	}
	if _, err := toPostfix([]condToken{{kind: condClose}}); !errors.Is(err, ErrParse) {
		t.Errorf("toPostfix() error = %v, want ErrParse", err)
	}
	if _, err := toPostfix([]condToken{{kind: condOpen}}); !errors.Is(err, ErrParse) {
		t.Errorf("toPostfix() error = %v, want ErrParse", err)
	}

	cond, err := CompileCondition(nil)
	if err != nil || cond != nil {
		t.Errorf("CompileCondition(nil) = %v, %v; want nil, nil", cond, err)
	}
}

func TestComparisonNode_DecoratorSkipsNull(t *testing.T) {
	stage := mustParseStage(t, "SELECT * FROM $r WHERE COALESCE(name, 'x') = 'x'")
	rows := flattenDocs(t, map[string]any{"name": nil})

	got, err := stage.Where.Evaluate(rows[0], testContext())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got {
		t.Errorf("decorator ran on a null row value")
	}
}
