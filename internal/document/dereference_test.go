package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDereferenceStampsPaths(t *testing.T) {
	t.Parallel()
	root := mustTree(t, `
components:
  schemas:
    Widget:
      type: object
      properties:
        name:
          type: string
`)
	doc := Dereference(root)

	widget := Resolve(doc, "#/components/schemas/Widget")
	require.NotNil(t, widget)
	assert.Equal(t, "#/components/schemas/Widget", widget.Path())

	props := widget.Field("properties")
	require.NotNil(t, props)
	assert.Equal(t, "#/components/schemas/Widget/properties", props.Path())
}

func TestDereferenceInlinesAndKeepsCanonicalPath(t *testing.T) {
	t.Parallel()
	root := mustTree(t, `
components:
  schemas:
    Widget:
      type: object
      properties:
        id:
          type: string
paths:
  /widgets:
    get:
      responses:
        "200":
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Widget"
`)
	doc := Dereference(root)

	inlined := Resolve(doc, "#/paths/~1widgets/get/responses/200/content/application~1json/schema")
	require.NotNil(t, inlined)

	// Content is inlined, the reference marker survives, and the path
	// follows the referenced location rather than the use site.
	assert.Equal(t, "object", inlined.Str("type"))
	assert.Equal(t, "#/components/schemas/Widget", inlined.Ref())
	assert.Equal(t, "#/components/schemas/Widget", inlined.Path())

	direct := Resolve(doc, "#/components/schemas/Widget")
	require.NotNil(t, direct)
	assert.Equal(t, direct.Path(), inlined.Path())
}

func TestDereferenceCycleStub(t *testing.T) {
	t.Parallel()
	root := mustTree(t, `
components:
  schemas:
    TreeNode:
      type: object
      properties:
        children:
          type: array
          items:
            $ref: "#/components/schemas/TreeNode"
`)
	doc := Dereference(root)

	node := Resolve(doc, "#/components/schemas/TreeNode")
	require.NotNil(t, node)
	assert.Equal(t, "object", node.Str("type"))

	items := node.Field("properties").Field("children").Field("items")
	require.NotNil(t, items)
	// The self-reference is cut with a stub that still carries the
	// canonical path and the marker.
	assert.Equal(t, "#/components/schemas/TreeNode", items.Path())
	assert.Equal(t, "#/components/schemas/TreeNode", items.Ref())
	assert.Nil(t, items.Field("type"), "stub carries no content")
}

func TestDereferenceUnresolvableRef(t *testing.T) {
	t.Parallel()
	root := mustTree(t, `
paths:
  /widgets:
    get:
      responses:
        "200":
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Missing"
`)
	doc := Dereference(root)

	stub := Resolve(doc, "#/paths/~1widgets/get/responses/200/content/application~1json/schema")
	require.NotNil(t, stub)
	assert.Equal(t, "#/components/schemas/Missing", stub.Ref())
	assert.Nil(t, stub.Field("type"))
}

func TestDereferenceChain(t *testing.T) {
	t.Parallel()
	root := mustTree(t, `
components:
  schemas:
    A:
      $ref: "#/components/schemas/B"
    B:
      type: string
`)
	doc := Dereference(root)

	a := Resolve(doc, "#/components/schemas/A")
	require.NotNil(t, a)
	assert.Equal(t, "string", a.Str("type"))
	// The chain bottoms out at B, so that's the canonical identity.
	assert.Equal(t, "#/components/schemas/B", a.Path())
}
