package scope

import (
	"fmt"
	"strings"
)

// EntryType discriminates symbol entries.
type EntryType string

const (
	Definition EntryType = "definition"
	Import     EntryType = "import"
)

// Entry is one named symbol recorded in a scope: either a definition
// made in that scope, or an import of a symbol defined elsewhere.
type Entry struct {
	Type      EntryType
	LocalName string
	// DefinedIn is the file path of the module the definition lives in.
	DefinedIn string
	// SpecPath is the canonical document path of the schema that
	// produced the definition; empty for non-schema symbols.
	SpecPath string
	Public   bool
	// GlobalName is the dotted path from the module down to the
	// symbol; set only on public definitions.
	GlobalName string
	// Source is the fully qualified name an import refers to.
	Source string
}

// Scope is one named node in the symbol-table tree: a synthetic root
// plus one child per output module. Entries keep insertion order so
// output stays deterministic. The parent owns and outlives its
// children; scopes are never removed or merged.
type Scope struct {
	name     string
	filePath string
	parent   *Scope
	entries  []*Entry
	byName   map[string]*Entry
}

// NewRoot creates the root scope for one generation run.
func NewRoot() *Scope {
	return &Scope{byName: make(map[string]*Entry)}
}

// Child creates a child scope under s with the given name segment and
// module file path.
func (s *Scope) Child(name, filePath string) *Scope {
	return &Scope{name: name, filePath: filePath, parent: s, byName: make(map[string]*Entry)}
}

func (s *Scope) Name() string     { return s.name }
func (s *Scope) FilePath() string { return s.filePath }

// Entries returns the scope's symbol table in insertion order.
func (s *Scope) Entries() []*Entry { return s.entries }

// Find returns the first entry matching pred, searching the local
// table in order and then delegating to the parent. The nearest match
// always wins over a more distant one.
func (s *Scope) Find(pred func(*Entry) bool) *Entry {
	for _, e := range s.entries {
		if pred(e) {
			return e
		}
	}
	if s.parent != nil {
		return s.parent.Find(pred)
	}
	return nil
}

// GetEntry looks up the exact local name, delegating to the parent
// when absent locally.
func (s *Scope) GetEntry(name string) *Entry {
	if e, ok := s.byName[name]; ok {
		return e
	}
	if s.parent != nil {
		return s.parent.GetEntry(name)
	}
	return nil
}

// Exists reports whether name is taken in this scope only; parents are
// not consulted.
func (s *Scope) Exists(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// DefineInfo carries the attributes of a new definition.
type DefineInfo struct {
	SpecPath string
	Public   bool
}

// Define records a definition in the local scope and propagates a
// prefixed copy into every ancestor up to (but not including) the
// root, so a symbol Widget defined in scope "definitions" is visible
// in the parent as "definitions.Widget". Redefining a local name
// fails.
func (s *Scope) Define(name string, info DefineInfo) error {
	if s.Exists(name) {
		return fmt.Errorf("scope %q: symbol %q already defined", s.name, name)
	}
	e := &Entry{
		Type:      Definition,
		LocalName: name,
		DefinedIn: s.filePath,
		SpecPath:  info.SpecPath,
		Public:    info.Public,
	}
	if info.Public {
		e.GlobalName = s.GlobalName(name)
	}
	s.add(e)

	// Propagated copies are what lets a lookup from a sibling module
	// find this definition through the shared ancestors.
	qualified := name
	for child, anc := s, s.parent; anc != nil; child, anc = anc, anc.parent {
		qualified = child.name + "." + qualified
		cp := *e
		cp.LocalName = qualified
		cp.GlobalName = ""
		cp.Public = false
		anc.add(&cp)
	}
	return nil
}

// Import records that source (a scope-qualified name) is available in
// this scope, returning the local name to use for it. Importing the
// same source twice, or importing a name the scope itself defines, is
// idempotent. When no explicit local name is given one is derived from
// the source's last dot segment, with a numeric suffix appended until
// it is locally free. An explicit local name that is already taken
// fails.
func (s *Scope) Import(source string, localName ...string) (string, error) {
	last := source
	if i := strings.LastIndex(source, "."); i >= 0 {
		last = source[i+1:]
	}
	for _, e := range s.entries {
		if e.Type == Import && e.Source == source {
			return e.LocalName, nil
		}
		if e.Type == Definition && e.LocalName == last {
			return e.LocalName, nil
		}
	}

	var name string
	if len(localName) > 0 && localName[0] != "" {
		name = localName[0]
		if s.Exists(name) {
			return "", fmt.Errorf("scope %q: import name %q already taken", s.name, name)
		}
	} else {
		name = last
		for n := 2; s.Exists(name); n++ {
			name = fmt.Sprintf("%s_%d", last, n)
		}
	}
	s.add(&Entry{Type: Import, LocalName: name, Source: source})
	return name, nil
}

// GlobalName computes the fully qualified dotted name that name would
// have if defined in this scope: every ancestor scope name from the
// module down (root excluded), joined with dots.
func (s *Scope) GlobalName(name string) string {
	parts := []string{name}
	for cur := s; cur != nil && cur.parent != nil; cur = cur.parent {
		parts = append([]string{cur.name}, parts...)
	}
	return strings.Join(parts, ".")
}

func (s *Scope) add(e *Entry) {
	s.entries = append(s.entries, e)
	s.byName[e.LocalName] = e
}
