package document

import (
	"sort"
	"strconv"
	"strings"
)

// PathKey addresses one scalar position inside a document.
//
// Key is the full path with literal array indices (items[2].price). Family is
// the same path with every index removed (items.price). Family is derived
// from Key, so comparing two PathKeys compares their keys.
type PathKey struct {
	Key    string
	Family string
}

// NewPathKey builds the PathKey for key
func NewPathKey(key string) PathKey {
	return PathKey{Key: key, Family: FamilyOf(key)}
}

// String returns the key
func (p PathKey) String() string { return p.Key }

// FamilyOf strips all bracketed index segments from a path
func FamilyOf(path string) string {
	if strings.IndexByte(path, '[') < 0 {
		return path
	}
	var b strings.Builder
	b.Grow(len(path))
	depth := 0
	for i := 0; i < len(path); i++ {
		switch c := path[i]; {
		case c == '[':
			depth++
		case c == ']' && depth > 0:
			depth--
		case depth == 0:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// step is one navigation move: into an object field or an array slot
type step struct {
	name    string
	index   int
	isIndex bool
}

// parsePath splits a dotted path into steps. Each dot-separated segment yields
// a field step for its name followed by one index step per [n] suffix. A
// segment whose brackets do not hold plain indices is taken as a field name.
func parsePath(path string) []step {
	segments := strings.Split(path, ".")
	steps := make([]step, 0, len(segments))
	for _, seg := range segments {
		name, indices, ok := splitIndices(seg)
		if !ok {
			steps = append(steps, step{name: seg})
			continue
		}
		steps = append(steps, step{name: name})
		for _, idx := range indices {
			steps = append(steps, step{index: idx, isIndex: true})
		}
	}
	return steps
}

// splitIndices splits "name[1][2]" into "name" and [1 2]
func splitIndices(seg string) (string, []int, bool) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return seg, nil, true
	}
	name := seg[:open]
	var indices []int
	rest := seg[open:]
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", nil, false
		}
		idx, err := strconv.Atoi(rest[1:end])
		if err != nil || idx < 0 {
			return "", nil, false
		}
		indices = append(indices, idx)
		rest = rest[end+1:]
	}
	return name, indices, true
}

// Row maps path keys to scalar values for one flattened document instance
type Row map[PathKey]Value

// Get returns the value stored under key and whether it exists
func (r Row) Get(key string) (Value, bool) {
	v, ok := r[NewPathKey(key)]
	return v, ok
}

// Lookup returns the value stored under key, or Null when the key is absent
func (r Row) Lookup(key string) Value {
	return r[NewPathKey(key)]
}

// Set stores v under key
func (r Row) Set(key string, v Value) {
	r[NewPathKey(key)] = v
}

// Keys returns the row's keys sorted by Key
func (r Row) Keys() []PathKey {
	keys := make([]PathKey, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Key < keys[j].Key })
	return keys
}

// Clone returns a shallow copy of the row
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IsDescendant reports whether key lies strictly below prefix, i.e. continues
// it with a field (".") or an index ("[") step.
func IsDescendant(key, prefix string) bool {
	if prefix == "" || len(key) <= len(prefix) || !strings.HasPrefix(key, prefix) {
		return false
	}
	next := key[len(prefix)]
	return next == '.' || next == '['
}
