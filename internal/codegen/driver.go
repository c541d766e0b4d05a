package codegen

import (
	"fmt"
	"strings"

	"github.com/mark3labs/openapi2client/internal/document"
	"github.com/mark3labs/openapi2client/internal/scope"
)

// classAnnotation is the tag-definition extension that assigns a tag's
// operations to a generated client class.
const classAnnotation = "x-codegen-class"

// baseClassName is the runtime client base type every generated group
// class extends. It lives in the static client module.
const baseClassName = "ApiClient"

// Option configures a generation run.
type Option func(*config)

type config struct {
	defaultGroup string
	defaultClass string
	includeTags  map[string]struct{}
	excludeTags  map[string]struct{}
}

// WithDefaultGroup overrides the module name and class name used for
// operations whose tags carry no generator-class annotation.
func WithDefaultGroup(name, class string) Option {
	return func(c *config) {
		if name != "" {
			c.defaultGroup = name
		}
		if class != "" {
			c.defaultClass = class
		}
	}
}

// WithIncludeTags keeps only operations that have at least one of the
// given tags.
func WithIncludeTags(tags []string) Option {
	return func(c *config) {
		for _, t := range tags {
			if t = strings.TrimSpace(t); t != "" {
				if c.includeTags == nil {
					c.includeTags = make(map[string]struct{})
				}
				c.includeTags[t] = struct{}{}
			}
		}
	}
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) Option {
	return func(c *config) {
		for _, t := range tags {
			if t = strings.TrimSpace(t); t != "" {
				if c.excludeTags == nil {
					c.excludeTags = make(map[string]struct{})
				}
				c.excludeTags[t] = struct{}{}
			}
		}
	}
}

// methodOrder fixes the walk order over path items.
var methodOrder = []string{"get", "post", "put", "delete", "patch", "head", "options", "trace"}

// Generate runs the full pipeline over a loaded document tree:
// dereference once, build the scope tree, resolve every shared schema
// and every operation, and assemble the per-module outputs plus the
// index export list.
func Generate(raw *document.Node, opts ...Option) (*GenModel, error) {
	cfg := &config{defaultGroup: "api", defaultClass: "DefaultApi"}
	for _, opt := range opts {
		opt(cfg)
	}
	if raw == nil {
		return nil, fmt.Errorf("codegen: nil document")
	}
	doc := document.Dereference(raw)

	root := scope.NewRoot()

	// The runtime client base type is a real symbol so group modules
	// import it through the same mechanism as everything else.
	clientScope := root.Child("client", "./client")
	if err := clientScope.Define(baseClassName, scope.DefineInfo{Public: true}); err != nil {
		return nil, err
	}

	defs := newFileCodegen(root, "definitions", "./definitions")
	defs.defs = defs

	moduleFiles := map[string]string{
		"client":      "./client",
		"definitions": "./definitions",
	}

	// Shared definitions first. Schemas already generated on demand
	// (reached through an earlier schema's reference) are skipped.
	if schemas := doc.Field("components").Field("schemas"); schemas != nil {
		for _, name := range schemas.Keys() {
			node := schemas.Field(name)
			path := node.Path()
			already := defs.scope.Find(func(e *scope.Entry) bool {
				return e.Type == scope.Definition && e.SpecPath == path && path != ""
			})
			if already != nil {
				continue
			}
			if err := defs.generateTypedef(name, node); err != nil {
				return nil, err
			}
		}
	}

	groups := make(map[string]*fileCodegen)
	var groupOrder []string

	if paths := doc.Field("paths"); paths != nil {
		for _, pathTemplate := range paths.Keys() {
			item := paths.Field(pathTemplate)
			for _, method := range methodOrder {
				op := item.Field(method)
				if op == nil || op.Kind() != document.MappingNode {
					continue
				}
				tags := tagList(op)
				if !cfg.allowByTags(tags) {
					continue
				}
				groupName, className := groupFor(doc, tags, cfg)
				fc := groups[groupName]
				if fc == nil {
					filePath := "./" + groupName
					fc = newFileCodegen(root, groupName, filePath)
					fc.defs = defs
					if err := fc.scope.Define(className, scope.DefineInfo{Public: true}); err != nil {
						return nil, &GenError{Code: NamingConflict, Message: err.Error(), Cause: err}
					}
					if _, err := fc.scope.Import("client." + baseClassName); err != nil {
						return nil, &GenError{Code: NamingConflict, Message: err.Error(), Cause: err}
					}
					groups[groupName] = fc
					groupOrder = append(groupOrder, groupName)
					moduleFiles[groupName] = filePath
				}
				if err := fc.resolveOperation(method, pathTemplate, op); err != nil {
					return nil, err
				}
			}
		}
	}

	model := &GenModel{
		Title:   doc.Field("info").Str("title"),
		Version: doc.Field("info").Str("version"),
	}

	model.Modules = append(model.Modules, &Module{
		Name:     "definitions",
		FilePath: "./definitions",
		Typedefs: defs.typedefs,
		Imports:  defs.imports(moduleFiles),
	})
	for _, name := range groupOrder {
		fc := groups[name]
		model.Modules = append(model.Modules, &Module{
			Name:       name,
			FilePath:   moduleFiles[name],
			ClassName:  groupClass(fc.scope),
			Typedefs:   fc.typedefs,
			Operations: fc.operations,
			Imports:    fc.imports(moduleFiles),
		})
	}

	// Index: every public symbol, in module order, with paths relative
	// to the index module itself.
	for _, e := range clientScope.Entries() {
		if e.Type == scope.Definition && e.Public {
			model.Exports = append(model.Exports, Export{Name: e.LocalName, From: "./client"})
		}
	}
	for _, m := range model.Modules {
		sc := defs.scope
		if m.Name != "definitions" {
			sc = groups[m.Name].scope
		}
		for _, e := range sc.Entries() {
			if e.Type == scope.Definition && e.Public {
				model.Exports = append(model.Exports, Export{Name: e.LocalName, From: m.FilePath})
			}
		}
	}

	return model, nil
}

func (c *config) allowByTags(tags []string) bool {
	if len(c.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := c.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := c.excludeTags[t]; blocked {
			return false
		}
	}
	return true
}

func tagList(op *document.Node) []string {
	field := op.Field("tags")
	if field == nil {
		return nil
	}
	var tags []string
	for _, it := range field.Items() {
		if s, ok := it.Scalar().(string); ok && strings.TrimSpace(s) != "" {
			tags = append(tags, strings.TrimSpace(s))
		}
	}
	return tags
}

// groupFor picks the owning API group: the first declared tag whose
// definition in the document's tag list carries a generator-class
// annotation, else the default group.
func groupFor(doc *document.Node, tags []string, cfg *config) (module, class string) {
	tagDefs := doc.Field("tags")
	for _, t := range tags {
		for _, td := range tagDefs.Items() {
			if td.Str("name") != t {
				continue
			}
			if cls := td.Str(classAnnotation); cls != "" {
				return moduleName(t), cls
			}
		}
	}
	return cfg.defaultGroup, cfg.defaultClass
}

// moduleName turns a tag into a module/scope name segment.
func moduleName(tag string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(tag) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "api"
	}
	return b.String()
}

// groupClass recovers the class name a group module was created with:
// its first public definition.
func groupClass(sc *scope.Scope) string {
	for _, e := range sc.Entries() {
		if e.Type == scope.Definition && e.Public {
			return e.LocalName
		}
	}
	return ""
}
