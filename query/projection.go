package query

import (
	"fmt"

	"github.com/vegasq/docsql/document"
)

// ApplySelectList projects every row onto the selected columns.
//
// A column whose path is a key of the row is copied, decorated and renamed to
// its alias. A path that only prefixes keys (an object or array subtree) copies
// every key below it; with an alias the prefix is replaced by the alias.
// A path matching nothing yields null. "*" copies the whole row.
func ApplySelectList(rows []document.Row, columns []Column, ctx *ExecutionContext) ([]document.Row, error) {
	result := make([]document.Row, 0, len(rows))
	for _, row := range rows {
		out, err := projectRow(row, columns, ctx)
		if err != nil {
			return nil, err
		}
		result = append(result, out)
	}
	return result, nil
}

func projectRow(row document.Row, columns []Column, ctx *ExecutionContext) (document.Row, error) {
	out := make(document.Row, len(columns))

	for _, col := range columns {
		if col.Asterisk {
			for k, v := range row {
				out[k] = v
			}
			continue
		}

		path := col.Ref.Path
		if v, ok := row.Get(path); ok {
			if err := setLeaf(out, col, v, ctx); err != nil {
				return nil, err
			}
			continue
		}

		var matched bool
		for key, v := range row {
			if !document.IsDescendant(key.Key, path) {
				continue
			}
			matched = true
			name := key.Key
			if col.Alias != "" {
				name = col.Alias + key.Key[len(path):]
			}
			out.Set(name, v)
		}
		if !matched {
			if err := setLeaf(out, col, document.Null, ctx); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// setLeaf writes a scalar column. The decorator also runs on null, so
// COALESCE can supply its fallback.
func setLeaf(out document.Row, col Column, v document.Value, ctx *ExecutionContext) error {
	if col.Ref.Decorator != nil {
		decorated, err := col.Ref.Decorator.Apply(v, ctx)
		if err != nil {
			return fmt.Errorf("column %s: %w", col.Ref, err)
		}
		v = decorated
	}
	out.Set(col.OutputName(), v)
	return nil
}
