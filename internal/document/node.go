package document

import (
	"sort"
	"strconv"
	"strings"
)

// Kind discriminates the closed set of node shapes a loaded document
// can contain.
type Kind int

const (
	ScalarNode Kind = iota
	MappingNode
	SequenceNode
)

// Node is one value in a loaded description document. Composite nodes
// (mappings and sequences) carry a canonical path: the slash-delimited
// pointer to the node's position in the original document, which stays
// stable even after the node has been inlined elsewhere through a
// reference. The path is a side channel: it does not show up in Keys,
// Fields, or serialization of the node.
type Node struct {
	kind   Kind
	scalar any
	fields map[string]*Node
	items  []*Node
	path   string
}

// FromValue converts a yaml/json-decoded value (map[string]any, []any,
// scalars) into a Node tree. Paths are not assigned here; Dereference
// stamps them.
func FromValue(v any) *Node {
	switch val := v.(type) {
	case map[string]any:
		n := &Node{kind: MappingNode, fields: make(map[string]*Node, len(val))}
		for k, fv := range val {
			n.fields[k] = FromValue(fv)
		}
		return n
	case map[any]any:
		// yaml.v3 produces map[string]any for string keys, but guard
		// against non-string keyed mappings anyway.
		n := &Node{kind: MappingNode, fields: make(map[string]*Node, len(val))}
		for k, fv := range val {
			if ks, ok := k.(string); ok {
				n.fields[ks] = FromValue(fv)
			}
		}
		return n
	case []any:
		n := &Node{kind: SequenceNode, items: make([]*Node, 0, len(val))}
		for _, it := range val {
			n.items = append(n.items, FromValue(it))
		}
		return n
	default:
		return &Node{kind: ScalarNode, scalar: val}
	}
}

func (n *Node) Kind() Kind { return n.kind }

// Path returns the canonical path stamped during dereferencing, or ""
// for scalars and nodes that never went through Dereference.
func (n *Node) Path() string {
	if n == nil {
		return ""
	}
	return n.path
}

// Field returns the named field of a mapping node, or nil.
func (n *Node) Field(name string) *Node {
	if n == nil || n.kind != MappingNode {
		return nil
	}
	return n.fields[name]
}

// Keys returns the mapping's field names in sorted order for
// deterministic iteration.
func (n *Node) Keys() []string {
	if n == nil || n.kind != MappingNode {
		return nil
	}
	keys := make([]string, 0, len(n.fields))
	for k := range n.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Items returns the elements of a sequence node.
func (n *Node) Items() []*Node {
	if n == nil || n.kind != SequenceNode {
		return nil
	}
	return n.items
}

// Len reports the number of fields or items of a composite node.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.kind {
	case MappingNode:
		return len(n.fields)
	case SequenceNode:
		return len(n.items)
	}
	return 0
}

// Str returns the scalar string value of the named field, or "".
func (n *Node) Str(name string) string {
	f := n.Field(name)
	if f == nil || f.kind != ScalarNode {
		return ""
	}
	s, _ := f.scalar.(string)
	return s
}

// Scalar returns the underlying scalar value, or nil for composites.
func (n *Node) Scalar() any {
	if n == nil || n.kind != ScalarNode {
		return nil
	}
	return n.scalar
}

// IsRef reports whether the mapping carries a reference marker field.
func (n *Node) IsRef() bool {
	return n.Str("$ref") != ""
}

// Ref returns the reference target, or "".
func (n *Node) Ref() string { return n.Str("$ref") }

// escapeSegment makes a field name safe for embedding into a
// slash-delimited pointer (RFC6901 style: ~ then /).
func escapeSegment(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

func unescapeSegment(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}

// Resolve evaluates a slash-delimited pointer (optionally prefixed with
// "#") against root. Numeric segments index sequences; any other
// segment indexes a mapping. A segment that is absent, or applied to a
// node of the wrong shape, yields nil rather than an error.
func Resolve(root *Node, pointer string) *Node {
	pointer = strings.TrimPrefix(pointer, "#")
	pointer = strings.TrimPrefix(pointer, "/")
	cur := root
	if pointer == "" {
		return cur
	}
	for _, raw := range strings.Split(pointer, "/") {
		if cur == nil {
			return nil
		}
		seg := unescapeSegment(raw)
		switch cur.kind {
		case SequenceNode:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(cur.items) {
				return nil
			}
			cur = cur.items[idx]
		case MappingNode:
			next, ok := cur.fields[seg]
			if !ok {
				return nil
			}
			cur = next
		default:
			return nil
		}
	}
	return cur
}
