package spec

import (
    "strings"
    "testing"

    "gopkg.in/yaml.v3"
)

func TestMergeV2BodyParams_MergesMultipleBodies(t *testing.T) {
    t.Parallel()
    src := strings.TrimSpace(`swagger: "2.0"
info:
  title: Merge
  version: "1.0.0"
paths:
  "/things":
    post:
      parameters:
        - in: body
          name: first
          required: true
          schema:
            type: object
        - in: body
          name: second
          schema:
            type: string
        - in: query
          name: verbose
          type: boolean
      responses:
        "200":
          description: ok
`) + "\n"

    out, changed, err := mergeV2BodyParams([]byte(src))
    if err != nil {
        t.Fatalf("merge: %v", err)
    }
    if !changed {
        t.Fatalf("expected a rewrite")
    }

    var doc map[string]any
    if err := yaml.Unmarshal(out, &doc); err != nil {
        t.Fatalf("parse rewritten doc: %v", err)
    }
    op := doc["paths"].(map[string]any)["/things"].(map[string]any)["post"].(map[string]any)
    params := op["parameters"].([]any)
    if len(params) != 2 {
        t.Fatalf("expected merged body + query param, got %d params", len(params))
    }

    body := params[0].(map[string]any)
    if body["in"] != "body" || body["name"] != "body" {
        t.Fatalf("unexpected merged param: %v", body)
    }
    schema := body["schema"].(map[string]any)
    props := schema["properties"].(map[string]any)
    if _, ok := props["first"]; !ok {
        t.Fatalf("expected property 'first', got %v", props)
    }
    if _, ok := props["second"]; !ok {
        t.Fatalf("expected property 'second', got %v", props)
    }
    required := schema["required"].([]any)
    if len(required) != 1 || required[0] != "first" {
        t.Fatalf("unexpected required list: %v", required)
    }
}

func TestMergeV2BodyParams_SingleBodyUntouched(t *testing.T) {
    t.Parallel()
    src := strings.TrimSpace(`swagger: "2.0"
paths:
  "/things":
    post:
      parameters:
        - in: body
          name: payload
          schema:
            type: object
`) + "\n"

    out, changed, err := mergeV2BodyParams([]byte(src))
    if err != nil {
        t.Fatalf("merge: %v", err)
    }
    if changed {
        t.Fatalf("expected no rewrite")
    }
    if string(out) != src {
        t.Fatalf("expected input to pass through untouched")
    }
}
