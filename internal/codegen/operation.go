package codegen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mark3labs/openapi2client/internal/document"
)

// unwrapDirective is the extension field naming a dotted sub-path to
// unwrap from a response body.
const unwrapDirective = "x-codegen-unwrap"

// methodOverride is the extension field overriding the generated
// method name when no operationId is present.
const methodOverride = "x-codegen-method"

// responseVar is the identifier reserved for the response-handling
// variable in generated method bodies; argument names must not use it.
const responseVar = "response"

// resolveOperation maps one path+method pair onto an Operation
// descriptor and appends it to the owning group's list.
func (fc *fileCodegen) resolveOperation(method, pathTemplate string, op *document.Node) error {
	name := operationName(method, pathTemplate, op)
	where := method + " " + pathTemplate

	used := map[string]bool{responseVar: true}
	var params []Param
	if decl := op.Field("parameters"); decl != nil {
		for _, pn := range decl.Items() {
			pname := pn.Str("name")
			if pname == "" {
				continue
			}
			expr, err := fc.resolveType(pn.Field("schema"), pname)
			if err != nil {
				return err
			}
			arg := uniqueArg(identifier(pname), used)
			params = append(params, Param{
				Name:     pname,
				Arg:      arg,
				In:       pn.Str("in"),
				Type:     expr,
				Required: boolField(pn, "required"),
				Doc:      pn.Str("description"),
			})
		}
	}

	descriptor := &Operation{
		Name:   name,
		Method: strings.ToUpper(method),
		Path:   pathTemplate,
		Params: params,
		Doc:    operationDoc(op),
	}

	if body := jsonBodySchema(op); body != nil {
		expr, err := fc.resolveType(body, capitalize(name)+"Request")
		if err != nil {
			return err
		}
		arg := uniqueArg("body", used)
		descriptor.Params = append(descriptor.Params, Param{
			Name: arg, Arg: arg, In: "body", Type: expr, Required: true,
		})
		descriptor.BodyArg = arg
		descriptor.BodyType = expr
	}

	returns, translations, err := fc.resolveResponses(name, op, where)
	if err != nil {
		return err
	}
	descriptor.ReturnType = returns
	descriptor.Translations = translations

	pathExpr, err := pathExpression(pathTemplate, descriptor.Params)
	if err != nil {
		return &GenError{Code: PathParamError, Message: err.Error(), Where: where, Cause: err}
	}
	descriptor.PathExpr = pathExpr

	fc.operations = append(fc.operations, descriptor)
	return nil
}

// resolveResponses walks every declared status/content pair, applying
// explicit or implicit unwrap translations, and folds the resolved
// types into a deduplicated return-type union.
func (fc *fileCodegen) resolveResponses(opName string, op *document.Node, where string) (string, []ResponseTranslation, error) {
	responses := op.Field("responses")
	var candidates []string
	var translations []ResponseTranslation
	seen := map[string]bool{}

	for _, status := range responses.Keys() {
		content := responses.Field(status).Field("content")
		if content == nil {
			continue
		}
		mimes := content.Keys()
		for _, mime := range mimes {
			entry := content.Field(mime)
			schema := entry.Field("schema")
			if schema == nil {
				continue
			}

			if sub := entry.Str(unwrapDirective); sub != "" {
				target, err := followSchemaPath(schema, sub)
				if err != nil {
					return "", nil, &GenError{Code: SchemaPathError, Message: fmt.Sprintf("%s: response %s %s: %v", where, status, mime, err), Where: where, Cause: err}
				}
				segs := strings.Split(sub, ".")
				translations = append(translations, ResponseTranslation{
					Status: status, ContentType: mime, Property: segs[len(segs)-1],
				})
				schema = target
			} else if prop, pn := singleProperty(schema); prop != "" {
				translations = append(translations, ResponseTranslation{
					Status: status, ContentType: mime, Property: prop,
				})
				schema = pn
			}

			suggest := capitalize(opName) + statusLabel(status)
			if len(mimes) > 1 {
				suggest += contentTypeLabel(mime)
			}
			expr, err := fc.resolveType(schema, suggest+"Response")
			if err != nil {
				return "", nil, err
			}
			if !seen[expr] {
				seen[expr] = true
				candidates = append(candidates, expr)
			}
		}
	}

	if len(candidates) == 0 {
		return "void", translations, nil
	}
	return strings.Join(candidates, " | "), translations, nil
}

// followSchemaPath descends a dotted sub-path through a response
// schema: properties for objects, items for arrays (arrays are
// transparent: the segment applies to the element schema). Any other
// schema kind along the way is a malformed annotation.
func followSchemaPath(schema *document.Node, sub string) (*document.Node, error) {
	cur := schema
	for _, seg := range strings.Split(sub, ".") {
		for cur != nil && cur.Str("type") == "array" {
			cur = cur.Field("items")
		}
		if cur == nil {
			return nil, fmt.Errorf("unwrap path %q: missing schema at %q", sub, seg)
		}
		props := cur.Field("properties")
		if props == nil {
			return nil, fmt.Errorf("unwrap path %q: schema at %q has no properties", sub, seg)
		}
		cur = props.Field(seg)
		if cur == nil {
			return nil, fmt.Errorf("unwrap path %q: property %q not found", sub, seg)
		}
	}
	return cur, nil
}

// singleProperty reports the implicit unwrap case: an object response
// whose body is a wrapper with exactly one property.
func singleProperty(schema *document.Node) (string, *document.Node) {
	if schema.Str("type") != "object" {
		return "", nil
	}
	props := schema.Field("properties")
	if props == nil || props.Len() != 1 {
		return "", nil
	}
	name := props.Keys()[0]
	return name, props.Field(name)
}

// jsonBodySchema returns the operation's JSON request body schema, if
// declared.
func jsonBodySchema(op *document.Node) *document.Node {
	return op.Field("requestBody").Field("content").Field("application/json").Field("schema")
}

var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// pathExpression substitutes every {param} placeholder with the
// corresponding resolved argument identifier, producing a template
// literal body. A placeholder with no matching declared parameter is
// fatal.
func pathExpression(pathTemplate string, params []Param) (string, error) {
	byName := make(map[string]string, len(params))
	for _, p := range params {
		byName[p.Name] = p.Arg
	}
	var agg error
	out := placeholderRe.ReplaceAllStringFunc(pathTemplate, func(m string) string {
		name := m[1 : len(m)-1]
		arg, ok := byName[name]
		if !ok {
			if agg == nil {
				agg = fmt.Errorf("path %q references undeclared parameter %q", pathTemplate, name)
			}
			return m
		}
		return "${" + arg + "}"
	})
	if agg != nil {
		return "", agg
	}
	return out, nil
}

// operationName resolves the stable method name: explicit operationId,
// explicit override, else derived from the path template and method.
func operationName(method, pathTemplate string, op *document.Node) string {
	if id := op.Str("operationId"); id != "" {
		return identifier(id)
	}
	if ov := op.Str(methodOverride); ov != "" {
		return identifier(ov)
	}
	cleaned := strings.NewReplacer("{", "", "}", "").Replace(pathTemplate)
	var b strings.Builder
	for _, seg := range strings.FieldsFunc(cleaned, func(r rune) bool {
		return r == '/' || r == '-' || r == '_' || r == '.'
	}) {
		b.WriteString(capitalize(seg))
	}
	b.WriteString(capitalize(strings.ToLower(method)))
	return b.String()
}

func operationDoc(op *document.Node) string {
	summary := strings.TrimSpace(op.Str("summary"))
	desc := strings.TrimSpace(op.Str("description"))
	switch {
	case summary != "" && desc != "":
		return summary + "\n" + desc
	case summary != "":
		return summary
	default:
		return desc
	}
}

func uniqueArg(base string, used map[string]bool) string {
	if base == "" {
		base = "arg"
	}
	name := base
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	used[name] = true
	return name
}

// identifier sanitizes a declared name into a usable identifier.
func identifier(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_' || r == '$':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// statusLabel renders a status code for embedding into a generated
// type name: "200" -> "200", "default" -> "Default", "4XX" -> "4XX".
func statusLabel(status string) string {
	var b strings.Builder
	for _, r := range status {
		if r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return capitalize(b.String())
}

// contentTypeLabel derives a short name component from a mime type,
// e.g. "application/json" -> "Json".
func contentTypeLabel(mime string) string {
	sub := mime
	if i := strings.LastIndexAny(mime, "/+"); i >= 0 {
		sub = mime[i+1:]
	}
	var b strings.Builder
	for _, part := range strings.FieldsFunc(sub, func(r rune) bool {
		return r == '-' || r == '.'
	}) {
		b.WriteString(capitalize(part))
	}
	return b.String()
}

func boolField(n *document.Node, name string) bool {
	f := n.Field(name)
	if f == nil {
		return false
	}
	v, _ := f.Scalar().(bool)
	return v
}
