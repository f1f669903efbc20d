package document

type nodeKind int

const (
	nodeValue nodeKind = iota
	nodeObject
	nodeArray
)

// node is an intermediate tree used while rebuilding a document
type node struct {
	kind   nodeKind
	value  Value
	fields map[string]*node
	items  []*node
}

func newContainer(next step) *node {
	if next.isIndex {
		return &node{kind: nodeArray}
	}
	return &node{kind: nodeObject, fields: make(map[string]*node)}
}

// Unflatten rebuilds one object per row and returns them as an array.
//
// Keys are applied in sorted order. Containers are created on demand and
// arrays are padded with null up to the written index. A position that
// already holds a value is never overwritten, so a deeper path that runs into
// a scalar is dropped.
func Unflatten(rows []Row) []any {
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		root := &node{kind: nodeObject, fields: make(map[string]*node)}
		for _, key := range row.Keys() {
			insert(root, parsePath(key.Key), row[key])
		}
		out = append(out, root.native())
	}
	return out
}

func insert(root *node, steps []step, v Value) {
	cur := root
	for i, st := range steps {
		last := i == len(steps)-1
		if st.isIndex {
			if cur.kind != nodeArray {
				return
			}
			for len(cur.items) <= st.index {
				cur.items = append(cur.items, nil)
			}
			child := cur.items[st.index]
			if last {
				if child == nil {
					cur.items[st.index] = &node{value: v}
				}
				return
			}
			if child == nil {
				child = newContainer(steps[i+1])
				cur.items[st.index] = child
			}
			cur = child
			continue
		}

		if cur.kind != nodeObject {
			return
		}
		child, ok := cur.fields[st.name]
		if last {
			if !ok {
				cur.fields[st.name] = &node{value: v}
			}
			return
		}
		if !ok {
			child = newContainer(steps[i+1])
			cur.fields[st.name] = child
		}
		cur = child
	}
}

func (n *node) native() any {
	if n == nil {
		return nil
	}
	switch n.kind {
	case nodeObject:
		obj := make(map[string]any, len(n.fields))
		for name, child := range n.fields {
			obj[name] = child.native()
		}
		return obj
	case nodeArray:
		arr := make([]any, len(n.items))
		for i, child := range n.items {
			arr[i] = child.native()
		}
		return arr
	default:
		return n.value.Native()
	}
}
