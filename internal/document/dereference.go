package document

import "strconv"

// Dereference returns a copy of the document with every reference node
// replaced by the referenced content, and every composite node stamped
// with its canonical path. The walk is eager: it runs once, up front,
// over the whole document.
//
// The canonical path of an inlined node follows the referenced
// location, not the position the reference occurred at, so two nodes
// reached through different reference chains but pointing at the same
// place compare equal by Path.
//
// A reference chain that revisits a path already being dereferenced on
// the current stack is cut off with a stub node carrying only the path
// and the reference marker. The stub keeps the path-identity invariant
// without recursing forever.
func Dereference(root *Node) *Node {
	d := &dereferencer{root: root, inProgress: make(map[string]bool)}
	return d.walk(root, "#")
}

type dereferencer struct {
	root       *Node
	inProgress map[string]bool
}

func (d *dereferencer) walk(n *Node, path string) *Node {
	if n == nil {
		return nil
	}
	switch n.kind {
	case ScalarNode:
		return n
	case SequenceNode:
		out := &Node{kind: SequenceNode, items: make([]*Node, 0, len(n.items)), path: path}
		for i, it := range n.items {
			out.items = append(out.items, d.walk(it, path+"/"+strconv.Itoa(i)))
		}
		return out
	}

	if ref := n.Ref(); ref != "" {
		target := Resolve(d.root, ref)
		refPath := canonical(ref)
		if target == nil {
			// Unresolvable reference: keep the marker so resolvers can
			// degrade to the untyped sentinel.
			return &Node{
				kind:   MappingNode,
				fields: map[string]*Node{"$ref": {kind: ScalarNode, scalar: ref}},
				path:   refPath,
			}
		}
		if d.inProgress[refPath] {
			return &Node{
				kind:   MappingNode,
				fields: map[string]*Node{"$ref": {kind: ScalarNode, scalar: ref}},
				path:   refPath,
			}
		}
		d.inProgress[refPath] = true
		resolved := d.walk(target, refPath)
		delete(d.inProgress, refPath)

		// Merge the reference marker back in beside the resolved content.
		out := &Node{kind: resolved.kind, path: resolved.path}
		switch resolved.kind {
		case MappingNode:
			out.fields = make(map[string]*Node, len(resolved.fields)+1)
			for k, v := range resolved.fields {
				out.fields[k] = v
			}
			out.fields["$ref"] = &Node{kind: ScalarNode, scalar: ref}
		case SequenceNode:
			out.items = resolved.items
		default:
			out.scalar = resolved.scalar
		}
		return out
	}

	out := &Node{kind: MappingNode, fields: make(map[string]*Node, len(n.fields)), path: path}
	for k, v := range n.fields {
		out.fields[k] = d.walk(v, path+"/"+escapeSegment(k))
	}
	return out
}

// canonical normalizes a reference string into the "#/a/b" path form.
func canonical(ref string) string {
	if ref == "" || ref == "#" {
		return "#"
	}
	if ref[0] == '#' {
		return ref
	}
	return "#" + ref
}
