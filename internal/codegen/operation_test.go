package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/openapi2client/internal/document"
)

func soleOperation(t *testing.T, model *GenModel, group string) *Operation {
	t.Helper()
	grp := moduleByName(t, model, group)
	require.Len(t, grp.Operations, 1)
	return grp.Operations[0]
}

func TestOperationNameDerivedFromPath(t *testing.T) {
	t.Parallel()
	model := generate(t, `
openapi: 3.0.0
info:
  title: Names
  version: "1.0.0"
paths:
  /user-profiles/{id}:
    delete:
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: string
      responses:
        "204":
          description: gone
`)
	op := soleOperation(t, model, "api")
	assert.Equal(t, "UserProfilesIdDelete", op.Name)
	assert.Equal(t, "DELETE", op.Method)
	assert.Equal(t, "void", op.ReturnType)
}

func TestOperationNameOverride(t *testing.T) {
	t.Parallel()
	model := generate(t, `
openapi: 3.0.0
info:
  title: Names
  version: "1.0.0"
paths:
  /things:
    get:
      x-codegen-method: fetchEverything
      responses:
        "200":
          description: ok
`)
	assert.Equal(t, "fetchEverything", soleOperation(t, model, "api").Name)
}

func TestExplicitUnwrapThroughArray(t *testing.T) {
	t.Parallel()
	model := generate(t, `
openapi: 3.0.0
info:
  title: Unwrap
  version: "1.0.0"
paths:
  /widgets:
    get:
      operationId: listWidgets
      responses:
        "200":
          description: ok
          content:
            application/json:
              x-codegen-unwrap: data
              schema:
                type: object
                properties:
                  data:
                    type: array
                    items:
                      $ref: "#/components/schemas/Widget"
                  total:
                    type: integer
components:
  schemas:
    Widget:
      type: object
      properties:
        id:
          type: string
        name:
          type: string
`)
	op := soleOperation(t, model, "api")
	assert.Equal(t, "Array<Widget>", op.ReturnType)
	require.Len(t, op.Translations, 1)
	assert.Equal(t, ResponseTranslation{Status: "200", ContentType: "application/json", Property: "data"}, op.Translations[0])
}

func TestExplicitUnwrapDottedPathArraysTransparent(t *testing.T) {
	t.Parallel()
	model := generate(t, `
openapi: 3.0.0
info:
  title: Unwrap
  version: "1.0.0"
paths:
  /batches:
    get:
      operationId: listBatches
      responses:
        "200":
          description: ok
          content:
            application/json:
              x-codegen-unwrap: batches.id
              schema:
                type: object
                properties:
                  batches:
                    type: array
                    items:
                      type: object
                      properties:
                        id:
                          type: string
                        size:
                          type: integer
`)
	op := soleOperation(t, model, "api")
	// The dotted path descends into the array element schema.
	assert.Equal(t, "string", op.ReturnType)
	require.Len(t, op.Translations, 1)
	assert.Equal(t, "id", op.Translations[0].Property)
}

func TestExplicitUnwrapBadPath(t *testing.T) {
	t.Parallel()
	var raw map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(`
openapi: 3.0.0
info:
  title: Unwrap
  version: "1.0.0"
paths:
  /widgets:
    get:
      operationId: listWidgets
      responses:
        "200":
          description: ok
          content:
            application/json:
              x-codegen-unwrap: nope
              schema:
                type: object
                properties:
                  data:
                    type: string
`), &raw))

	_, err := Generate(document.FromValue(raw))
	require.Error(t, err)
	var ge *GenError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, SchemaPathError, ge.Code)
}

func TestImplicitSinglePropertyUnwrap(t *testing.T) {
	t.Parallel()
	model := generate(t, `
openapi: 3.0.0
info:
  title: Unwrap
  version: "1.0.0"
paths:
  /token:
    post:
      operationId: createToken
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: object
                properties:
                  token:
                    type: string
`)
	op := soleOperation(t, model, "api")
	assert.Equal(t, "string", op.ReturnType)
	require.Len(t, op.Translations, 1)
	assert.Equal(t, "token", op.Translations[0].Property)
}

func TestReturnUnionDeduplicates(t *testing.T) {
	t.Parallel()
	model := generate(t, `
openapi: 3.0.0
info:
  title: Union
  version: "1.0.0"
paths:
  /widgets/{id}:
    get:
      operationId: getWidget
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: string
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Widget"
        "201":
          description: also ok
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Widget"
        "404":
          description: missing
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Problem"
components:
  schemas:
    Widget:
      type: object
      properties:
        id:
          type: string
        name:
          type: string
    Problem:
      type: object
      properties:
        code:
          type: string
        detail:
          type: string
`)
	op := soleOperation(t, model, "api")
	// 200 and 201 collapse; 404 contributes the second member.
	assert.Equal(t, "Widget | Problem", op.ReturnType)
}

func TestContentTypeLabelOnlyWhenAmbiguous(t *testing.T) {
	t.Parallel()
	model := generate(t, `
openapi: 3.0.0
info:
  title: Mimes
  version: "1.0.0"
paths:
  /report:
    get:
      operationId: getReport
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: object
                properties:
                  rows:
                    type: integer
                  took:
                    type: integer
            application/xml:
              schema:
                type: object
                properties:
                  rows:
                    type: integer
                  cols:
                    type: integer
`)
	grp := moduleByName(t, model, "api")
	names := make([]string, 0, len(grp.Typedefs))
	for _, td := range grp.Typedefs {
		names = append(names, td.Name)
	}
	assert.Contains(t, names, "GetReport200JsonResponse")
	assert.Contains(t, names, "GetReport200XmlResponse")
}

func TestReservedResponseIdentifier(t *testing.T) {
	t.Parallel()
	model := generate(t, `
openapi: 3.0.0
info:
  title: Reserved
  version: "1.0.0"
paths:
  /search:
    get:
      operationId: search
      parameters:
        - name: response
          in: query
          schema:
            type: string
      responses:
        "200":
          description: ok
`)
	op := soleOperation(t, model, "api")
	require.Len(t, op.Params, 1)
	assert.Equal(t, "response", op.Params[0].Name)
	assert.Equal(t, "response_2", op.Params[0].Arg, "the response variable name is reserved")
}

func TestRequestBodyParameter(t *testing.T) {
	t.Parallel()
	model := generate(t, `
openapi: 3.0.0
info:
  title: Body
  version: "1.0.0"
paths:
  /widgets:
    post:
      operationId: createWidget
      requestBody:
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/Widget"
      responses:
        "201":
          description: created
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Widget"
components:
  schemas:
    Widget:
      type: object
      properties:
        id:
          type: string
        name:
          type: string
`)
	op := soleOperation(t, model, "api")
	assert.Equal(t, "body", op.BodyArg)
	assert.Equal(t, "Widget", op.BodyType)
	assert.Equal(t, "Widget", op.ReturnType)
}

func TestInlineEnumAndScalarAlias(t *testing.T) {
	t.Parallel()
	model := generate(t, `
openapi: 3.0.0
info:
  title: Enums
  version: "1.0.0"
paths: {}
components:
  schemas:
    Color:
      type: string
      enum: [red, green, blue]
    Token:
      type: string
    Widget:
      type: object
      properties:
        status:
          type: string
          enum: ["on", "off"]
        retries:
          type: integer
          enum: [1, 2, 3]
`)
	defs := moduleByName(t, model, "definitions")

	color := typedefByName(defs, "Color")
	require.NotNil(t, color)
	assert.Equal(t, TypedefEnum, color.Kind)
	assert.Equal(t, []string{`"red"`, `"green"`, `"blue"`}, color.Literals)

	// Scalar aliases register for dedup but emit no typedef.
	assert.Nil(t, typedefByName(defs, "Token"))

	widget := typedefByName(defs, "Widget")
	require.NotNil(t, widget)
	require.Len(t, widget.Fields, 2)
	assert.Equal(t, "retries", widget.Fields[0].Name)
	assert.Equal(t, "1 | 2 | 3", widget.Fields[0].Type)
	assert.Equal(t, `"on" | "off"`, widget.Fields[1].Type)
}

func TestAllOfIntersection(t *testing.T) {
	t.Parallel()
	model := generate(t, `
openapi: 3.0.0
info:
  title: AllOf
  version: "1.0.0"
paths: {}
components:
  schemas:
    Base:
      type: object
      properties:
        id:
          type: string
        kind:
          type: string
    Extended:
      allOf:
        - $ref: "#/components/schemas/Base"
        - type: object
          properties:
            extra:
              type: string
            more:
              type: string
`)
	defs := moduleByName(t, model, "definitions")
	ext := typedefByName(defs, "Extended")
	require.NotNil(t, ext)
	assert.Equal(t, TypedefUnion, ext.Kind)
	require.Len(t, ext.Members, 2)
	assert.Equal(t, "Base", ext.Members[0])
	assert.Equal(t, "ExtendedUnionMember1", ext.Members[1])
	require.NotNil(t, typedefByName(defs, "ExtendedUnionMember1"))
}
