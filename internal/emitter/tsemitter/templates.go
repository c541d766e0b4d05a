package tsemitter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/mark3labs/openapi2client/internal/codegen"
)

var templateFuncs = template.FuncMap{
	"jsdoc":       jsdoc,
	"typedef":     renderTypedef,
	"methodFor":   renderMethod,
	"importNames": importNames,
	"baseClass":   baseClassLocal,
}

var moduleTmpl = template.Must(template.New("module").Funcs(templateFuncs).Parse(`// Generated by openapi2client. Do not edit.
{{range .Imports}}import { {{importNames .Names}} } from "{{.From}}";
{{end}}{{range .Typedefs}}
{{typedef .}}
{{end}}{{if .ClassName}}
export class {{.ClassName}} extends {{baseClass .Imports}} {
{{- range .Operations}}

{{methodFor .}}
{{- end}}
}
{{end}}`))

var indexTmpl = template.Must(template.New("index").Funcs(templateFuncs).Parse(`// Generated by openapi2client. Do not edit.
{{range .Exports}}export { {{.Name}} } from "{{.From}}";
{{end}}`))

func renderModule(m *codegen.Module) ([]byte, error) {
	var buf bytes.Buffer
	if err := moduleTmpl.Execute(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderIndex(gm *codegen.GenModel) ([]byte, error) {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, gm); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func importNames(names []codegen.ImportName) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if n.Local == n.Exported {
			parts = append(parts, n.Exported)
		} else {
			parts = append(parts, n.Exported+" as "+n.Local)
		}
	}
	return strings.Join(parts, ", ")
}

// baseClassLocal finds the local identifier the runtime base class was
// imported under.
func baseClassLocal(imports []codegen.ImportGroup) string {
	for _, g := range imports {
		if g.From == "./client" && len(g.Names) > 0 {
			return g.Names[0].Local
		}
	}
	return "ApiClient"
}

func jsdoc(doc, indent string) string {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return ""
	}
	lines := strings.Split(doc, "\n")
	var b strings.Builder
	b.WriteString(indent + "/**\n")
	for _, line := range lines {
		b.WriteString(indent + " * " + strings.TrimSpace(line) + "\n")
	}
	b.WriteString(indent + " */\n")
	return b.String()
}

func renderTypedef(td *codegen.Typedef) string {
	var b strings.Builder
	b.WriteString(jsdoc(td.Doc, ""))
	switch td.Kind {
	case codegen.TypedefObject:
		b.WriteString("export interface " + td.Name + " {\n")
		for _, f := range td.Fields {
			b.WriteString(jsdoc(f.Doc, "  "))
			opt := "?"
			if f.Required {
				opt = ""
			}
			b.WriteString(fmt.Sprintf("  %s%s: %s;\n", propertyName(f.Name), opt, f.Type))
		}
		b.WriteString("}")
	case codegen.TypedefArray:
		b.WriteString("export type " + td.Name + " = Array<" + td.Elem + ">;")
	case codegen.TypedefEnum:
		b.WriteString("export type " + td.Name + " = " + strings.Join(td.Literals, " | ") + ";")
	case codegen.TypedefUnion:
		b.WriteString("export type " + td.Name + " = " + strings.Join(td.Members, " & ") + ";")
	}
	return b.String()
}

// propertyName quotes property names that are not valid identifiers.
func propertyName(name string) string {
	for i, r := range name {
		ok := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_' || r == '$' || (i > 0 && r >= '0' && r <= '9')
		if !ok {
			return fmt.Sprintf("%q", name)
		}
	}
	if name == "" {
		return `""`
	}
	return name
}

func renderMethod(op *codegen.Operation) string {
	var b strings.Builder
	b.WriteString(jsdoc(op.Doc, "  "))
	b.WriteString("  async " + methodName(op.Name) + "(" + signature(op.Params) + "): Promise<" + op.ReturnType + "> {\n")

	call := "this.request({\n"
	call += fmt.Sprintf("      method: %q,\n", op.Method)
	call += "      path: `" + op.PathExpr + "`,\n"
	if q := paramLiteral(op.Params, "query"); q != "" {
		call += "      query: " + q + ",\n"
	}
	if h := paramLiteral(op.Params, "header"); h != "" {
		call += "      headers: " + h + ",\n"
	}
	if op.BodyArg != "" {
		call += "      body: " + op.BodyArg + ",\n"
	}
	call += "    })"

	switch {
	case op.ReturnType == "void":
		b.WriteString("    await " + call + ";\n")
	case len(op.Translations) > 0:
		b.WriteString("    const response = await " + call + ";\n")
		b.WriteString("    return this.unwrap(response, " + translationLiteral(op.Translations) + ") as " + op.ReturnType + ";\n")
	default:
		b.WriteString("    const response = await " + call + ";\n")
		b.WriteString("    return response.data as " + op.ReturnType + ";\n")
	}
	b.WriteString("  }")
	return b.String()
}

// methodName lower-cases the leading character so derived operation
// names read as methods.
func methodName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// signature orders required parameters before optional ones, as the
// language demands.
func signature(params []codegen.Param) string {
	var parts []string
	for _, p := range params {
		if p.Required {
			parts = append(parts, p.Arg+": "+p.Type)
		}
	}
	for _, p := range params {
		if !p.Required {
			parts = append(parts, p.Arg+"?: "+p.Type)
		}
	}
	return strings.Join(parts, ", ")
}

func paramLiteral(params []codegen.Param, in string) string {
	var parts []string
	for _, p := range params {
		if p.In == in {
			parts = append(parts, fmt.Sprintf("%q: %s", p.Name, p.Arg))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func translationLiteral(ts []codegen.ResponseTranslation) string {
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		parts = append(parts, fmt.Sprintf("%q: %q", t.Status, t.Property))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func renderPackageJSON(pkgName, version string) string {
	if version == "" {
		version = "0.1.0"
	}
	return fmt.Sprintf(`{
  "name": %q,
  "version": %q,
  "description": "Generated API client",
  "type": "module",
  "main": "dist/index.js",
  "types": "dist/index.d.ts",
  "scripts": {
    "build": "tsc -p tsconfig.json"
  },
  "devDependencies": {
    "typescript": "^5.4.0"
  }
}
`, pkgName, version)
}

func renderTSConfig() string {
	return `{
  "compilerOptions": {
    "target": "ES2020",
    "module": "ES2020",
    "moduleResolution": "bundler",
    "strict": true,
    "declaration": true,
    "outDir": "dist"
  },
  "include": ["src"]
}
`
}

func renderReadme(pkgName string, gm *codegen.GenModel) string {
	title := gm.Title
	if title == "" {
		title = pkgName
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\nTyped API client generated by openapi2client.\n\n", title)
	b.WriteString("## Modules\n\n")
	for _, m := range gm.Modules {
		if m.ClassName != "" {
			fmt.Fprintf(&b, "- `%s` — %s (%d operations)\n", m.Name, m.ClassName, len(m.Operations))
		} else {
			fmt.Fprintf(&b, "- `%s` — %d type definitions\n", m.Name, len(m.Typedefs))
		}
	}
	b.WriteString("\n```bash\nnpm install\nnpm run build\n```\n")
	return b.String()
}

// clientRuntimeTS is the thin runtime the generated group classes
// extend. It is static: generation never changes it.
const clientRuntimeTS = `// Generated by openapi2client. Do not edit.

export interface RequestOptions {
  method: string;
  path: string;
  query?: Record<string, unknown>;
  headers?: Record<string, unknown>;
  body?: unknown;
}

export interface ApiResponse {
  status: number;
  data: unknown;
}

export class ApiClient {
  constructor(
    private readonly baseUrl: string,
    private readonly fetchImpl: typeof fetch = fetch,
  ) {}

  protected async request(options: RequestOptions): Promise<ApiResponse> {
    const url = new URL(this.baseUrl + options.path);
    for (const [key, value] of Object.entries(options.query ?? {})) {
      if (value !== undefined && value !== null) {
        url.searchParams.set(key, String(value));
      }
    }
    const headers: Record<string, string> = { "content-type": "application/json" };
    for (const [key, value] of Object.entries(options.headers ?? {})) {
      if (value !== undefined && value !== null) {
        headers[key] = String(value);
      }
    }
    const response = await this.fetchImpl(url, {
      method: options.method,
      headers,
      body: options.body === undefined ? undefined : JSON.stringify(options.body),
    });
    if (!response.ok) {
      throw new Error("request failed: " + response.status + " " + options.method + " " + options.path);
    }
    const text = await response.text();
    return { status: response.status, data: text === "" ? undefined : JSON.parse(text) };
  }

  protected unwrap(response: ApiResponse, translations: Record<string, string>): unknown {
    const property = translations[String(response.status)];
    if (property === undefined || response.data === null || typeof response.data !== "object") {
      return response.data;
    }
    return (response.data as Record<string, unknown>)[property];
  }
}
`
