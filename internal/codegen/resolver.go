package codegen

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mark3labs/openapi2client/internal/document"
	"github.com/mark3labs/openapi2client/internal/scope"
)

// fileCodegen is the per-module generation context: the module's scope
// plus the typedefs and operations collected for it so far.
type fileCodegen struct {
	scope      *scope.Scope
	typedefs   []*Typedef
	operations []*Operation
	// defs is the definitions-module context; schemas living under the
	// shared-definitions area are generated there on first touch, no
	// matter which module reached them first.
	defs *fileCodegen
}

func newFileCodegen(parent *scope.Scope, name, filePath string) *fileCodegen {
	return &fileCodegen{scope: parent.Child(name, filePath)}
}

const schemasPrefix = "#/components/schemas/"

// componentName extracts the schema name when path points directly at
// an entry of the shared-definitions area.
func componentName(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, schemasPrefix)
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

// resolveType maps a schema node onto a type expression, registering
// new typedefs and imports as a side effect. Priority order:
// sentinel for missing schemas, canonical-path dedup, allOf merges,
// arrays, named objects, inline enums, primitives.
func (fc *fileCodegen) resolveType(n *document.Node, suggested string) (string, error) {
	if n == nil {
		return "unknown", nil
	}

	// A schema already resolved anywhere up the scope chain under the
	// same canonical path is the same logical entity: import it rather
	// than regenerating.
	if path := n.Path(); path != "" {
		byPath := func(e *scope.Entry) bool {
			return e.Type == scope.Definition && e.SpecPath == path
		}
		match := fc.scope.Find(byPath)
		if match == nil && fc.defs != nil && n.Kind() == document.MappingNode {
			if name, ok := componentName(path); ok {
				if err := fc.defs.generateTypedef(name, n); err != nil {
					return "", err
				}
				match = fc.scope.Find(byPath)
			}
		}
		if match != nil {
			local, err := fc.scope.Import(match.LocalName)
			if err != nil {
				return "", &GenError{Code: NamingConflict, Message: err.Error(), Cause: err}
			}
			return local, nil
		}
	}

	if allOf := n.Field("allOf"); allOf != nil && allOf.Kind() == document.SequenceNode {
		members := make([]string, 0, allOf.Len())
		for i, m := range allOf.Items() {
			name := ""
			if suggested != "" {
				name = suggested + "UnionMember" + strconv.Itoa(i)
			}
			expr, err := fc.resolveType(m, name)
			if err != nil {
				return "", err
			}
			members = append(members, expr)
		}
		return strings.Join(members, " & "), nil
	}

	switch n.Str("type") {
	case "array":
		itemName := ""
		if suggested != "" {
			itemName = suggested + "Item"
		}
		elem, err := fc.resolveType(n.Field("items"), itemName)
		if err != nil {
			return "", err
		}
		return "Array<" + elem + ">", nil
	case "object":
		if suggested == "" {
			// Object types without a destination name are not worth
			// naming.
			return "Record<string, unknown>", nil
		}
		if err := fc.generateTypedef(suggested, n); err != nil {
			return "", err
		}
		return suggested, nil
	}

	if enum := n.Field("enum"); enum != nil && enum.Kind() == document.SequenceNode {
		return enumExpr(enum), nil
	}

	switch t := n.Str("type"); t {
	case "integer":
		return "number", nil
	case "":
		return "unknown", nil
	default:
		return t, nil
	}
}

// generateTypedef registers name in the module scope tagged with the
// schema's canonical path, then records the emittable typedef body.
// Schema kinds outside the closed object/array/enum/allOf set register
// the name (so dedup still works) but emit nothing.
func (fc *fileCodegen) generateTypedef(name string, n *document.Node) error {
	if err := fc.scope.Define(name, scope.DefineInfo{SpecPath: n.Path(), Public: true}); err != nil {
		return &GenError{Code: NamingConflict, Message: err.Error(), Cause: err}
	}

	td := &Typedef{Name: name, Doc: n.Str("description")}

	switch {
	case n.Field("allOf") != nil && n.Field("allOf").Kind() == document.SequenceNode:
		td.Kind = TypedefUnion
		for i, m := range n.Field("allOf").Items() {
			expr, err := fc.resolveType(m, name+"UnionMember"+strconv.Itoa(i))
			if err != nil {
				return err
			}
			td.Members = append(td.Members, expr)
		}
	case n.Str("type") == "object" || n.Field("properties") != nil:
		td.Kind = TypedefObject
		required := requiredSet(n)
		props := n.Field("properties")
		for _, pname := range props.Keys() {
			pn := props.Field(pname)
			expr, err := fc.resolveType(pn, "")
			if err != nil {
				return err
			}
			td.Fields = append(td.Fields, Field{
				Name:     pname,
				Type:     expr,
				Doc:      pn.Str("description"),
				Required: required[pname],
			})
		}
	case n.Str("type") == "array":
		td.Kind = TypedefArray
		elem, err := fc.resolveType(n.Field("items"), name+"Item")
		if err != nil {
			return err
		}
		td.Elem = elem
	case n.Str("type") == "string" && n.Field("enum") != nil:
		td.Kind = TypedefEnum
		for _, lit := range n.Field("enum").Items() {
			td.Literals = append(td.Literals, literal(lit))
		}
	default:
		// Scalar aliases and other kinds never get a named type of
		// their own; the registered definition exists for dedup only.
		return nil
	}

	fc.typedefs = append(fc.typedefs, td)
	return nil
}

func requiredSet(n *document.Node) map[string]bool {
	req := n.Field("required")
	if req == nil || req.Kind() != document.SequenceNode {
		return nil
	}
	out := make(map[string]bool, req.Len())
	for _, it := range req.Items() {
		if s, ok := it.Scalar().(string); ok {
			out[s] = true
		}
	}
	return out
}

// enumExpr renders an inline enumeration as a union of literals.
func enumExpr(enum *document.Node) string {
	lits := make([]string, 0, enum.Len())
	for _, it := range enum.Items() {
		lits = append(lits, literal(it))
	}
	return strings.Join(lits, " | ")
}

func literal(n *document.Node) string {
	switch v := n.Scalar().(type) {
	case string:
		return strconv.Quote(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// imports materializes the module's import entries into per-source
// statements, grouped by source module and ordered deterministically.
func (fc *fileCodegen) imports(moduleFiles map[string]string) []ImportGroup {
	byFrom := make(map[string][]ImportName)
	var order []string
	for _, e := range fc.scope.Entries() {
		if e.Type != scope.Import {
			continue
		}
		srcModule, exported := splitSource(e.Source)
		from, ok := moduleFiles[srcModule]
		if !ok {
			continue
		}
		if _, seen := byFrom[from]; !seen {
			order = append(order, from)
		}
		byFrom[from] = append(byFrom[from], ImportName{Exported: exported, Local: e.LocalName})
	}
	sort.Strings(order)
	groups := make([]ImportGroup, 0, len(order))
	for _, from := range order {
		groups = append(groups, ImportGroup{From: from, Names: byFrom[from]})
	}
	return groups
}

func splitSource(source string) (module, name string) {
	if i := strings.LastIndex(source, "."); i >= 0 {
		return source[:i], source[i+1:]
	}
	return "", source
}
