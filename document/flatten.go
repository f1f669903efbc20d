package document

import (
	"fmt"
	"strconv"
)

// Flatten converts a document into rows. An array yields one row per element,
// an object yields a single row. Any other top-level value is ErrInvalidInput.
func Flatten(doc any) ([]Row, error) {
	switch node := doc.(type) {
	case []any:
		rows := make([]Row, 0, len(node))
		for i, elem := range node {
			row := make(Row)
			if err := flattenInto(row, "", elem); err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			rows = append(rows, row)
		}
		return rows, nil
	case []map[string]any:
		rows := make([]Row, 0, len(node))
		for i, elem := range node {
			row := make(Row)
			if err := flattenInto(row, "", elem); err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			rows = append(rows, row)
		}
		return rows, nil
	case map[string]any:
		row := make(Row)
		if err := flattenInto(row, "", node); err != nil {
			return nil, err
		}
		return []Row{row}, nil
	default:
		return nil, fmt.Errorf("%w: document root must be an object or an array, got %T", ErrInvalidInput, doc)
	}
}

// FlattenObject flattens a single node into one row
func FlattenObject(node any) (Row, error) {
	row := make(Row)
	if err := flattenInto(row, "", node); err != nil {
		return nil, err
	}
	return row, nil
}

func flattenInto(row Row, prefix string, node any) error {
	switch n := node.(type) {
	case map[string]any:
		for name, child := range n {
			path := name
			if prefix != "" {
				path = prefix + "." + name
			}
			if err := flattenInto(row, path, child); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for i, child := range n {
			if err := flattenInto(row, prefix+"["+strconv.Itoa(i)+"]", child); err != nil {
				return err
			}
		}
		return nil
	default:
		v, err := ValueOf(node)
		if err != nil {
			return fmt.Errorf("path %q: %w", prefix, err)
		}
		row[NewPathKey(prefix)] = v
		return nil
	}
}

// Peel returns the subtree of doc addressed by path. An empty path returns doc.
func Peel(doc any, path string) (any, error) {
	if path == "" {
		return doc, nil
	}
	current := doc
	for _, st := range parsePath(path) {
		if st.isIndex {
			arr, ok := current.([]any)
			if !ok || st.index >= len(arr) {
				return nil, fmt.Errorf("%w: %q has no element [%d]", ErrPathNotFound, path, st.index)
			}
			current = arr[st.index]
			continue
		}
		if st.name == "" {
			continue
		}
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q: %q is not inside an object", ErrPathNotFound, path, st.name)
		}
		child, ok := obj[st.name]
		if !ok {
			return nil, fmt.Errorf("%w: %q: no field %q", ErrPathNotFound, path, st.name)
		}
		current = child
	}
	return current, nil
}
