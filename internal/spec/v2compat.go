package spec

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// mergeV2BodyParams rewrites Swagger v2 operations that declare more
// than one body parameter, which kin-openapi refuses to convert. The
// bodies are folded into a single object-typed body parameter with one
// property per original parameter. Returns possibly-modified bytes and
// whether anything changed; on parse errors the input passes through
// untouched.
func mergeV2BodyParams(data []byte) ([]byte, bool, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return data, false, err
	}
	paths, ok := doc["paths"].(map[string]any)
	if !ok || len(paths) == 0 {
		return data, false, nil
	}

	modified := false
	for _, pathItem := range paths {
		item, ok := pathItem.(map[string]any)
		if !ok {
			continue
		}
		for method, raw := range item {
			switch strings.ToLower(method) {
			case "get", "post", "put", "delete", "patch", "options", "head":
			default:
				continue
			}
			op, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if mergeOperationBodies(op) {
				modified = true
			}
		}
	}
	if !modified {
		return data, false, nil
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return data, false, err
	}
	return out, true, nil
}

func mergeOperationBodies(op map[string]any) bool {
	params, ok := op["parameters"].([]any)
	if !ok {
		return false
	}
	var bodies []map[string]any
	var rest []any
	for _, p := range params {
		pm, _ := p.(map[string]any)
		if pm == nil {
			continue
		}
		if in, _ := pm["in"].(string); strings.EqualFold(in, "body") {
			bodies = append(bodies, pm)
		} else {
			rest = append(rest, pm)
		}
	}
	if len(bodies) < 2 {
		return false
	}

	props := map[string]any{}
	var required []any
	for _, pm := range bodies {
		name, _ := pm["name"].(string)
		if name == "" {
			name = "field"
		}
		schema, _ := pm["schema"].(map[string]any)
		if schema == nil {
			schema = map[string]any{"type": "string"}
		}
		props[name] = schema
		if req, _ := pm["required"].(bool); req {
			required = append(required, name)
		}
	}
	bodySchema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		bodySchema["required"] = required
	}
	merged := map[string]any{"in": "body", "name": "body", "schema": bodySchema}
	op["parameters"] = append([]any{merged}, rest...)
	return true
}
