package codegen

// Language-neutral generation model produced by the resolvers and
// consumed by emitters.

// TypedefKind discriminates the closed set of emittable type shapes.
type TypedefKind string

const (
	TypedefObject TypedefKind = "object"
	TypedefArray  TypedefKind = "array"
	TypedefEnum   TypedefKind = "enum"
	TypedefUnion  TypedefKind = "union"
)

// Typedef is a named type description collected for one module. Created
// once per distinct canonical schema path per scope and never mutated
// afterwards.
type Typedef struct {
	Name string
	Kind TypedefKind
	Doc  string

	Fields   []Field  // object
	Elem     string   // array element expression
	Literals []string // enum literals, already rendered
	Members  []string // union member expressions
}

type Field struct {
	Name     string
	Type     string
	Doc      string
	Required bool
}

// Param is one resolved operation parameter. Arg is the identifier the
// generated method uses for it, which may differ from the declared
// name when sanitization or collision avoidance kicked in.
type Param struct {
	Name     string
	Arg      string
	In       string // path|query|header|cookie
	Type     string
	Required bool
	Doc      string
}

// ResponseTranslation records that a response body should be unwrapped
// to one of its properties before being returned.
type ResponseTranslation struct {
	Status      string
	ContentType string
	Property    string
}

// Operation is the resolved descriptor for one path+method pair.
type Operation struct {
	Name         string
	Method       string
	Path         string // original template
	PathExpr     string // template literal with substituted arguments
	Params       []Param
	BodyArg      string // "" when the operation takes no body
	BodyType     string
	ReturnType   string
	Translations []ResponseTranslation
	Doc          string
}

// ImportName maps an exported symbol to the local identifier it is
// bound to in the importing module.
type ImportName struct {
	Exported string
	Local    string
}

// ImportGroup is one rendered import statement: a source module plus
// the names pulled from it.
type ImportGroup struct {
	From  string
	Names []ImportName
}

// Module is one output source module with everything the emitter needs.
type Module struct {
	Name       string // scope name segment
	FilePath   string // module specifier, e.g. "./definitions"
	ClassName  string // client class name; empty for the definitions module
	Typedefs   []*Typedef
	Operations []*Operation
	Imports    []ImportGroup
}

// Export is one index re-export: a public symbol and the module it
// lives in, as a path relative to the index module.
type Export struct {
	Name string
	From string
}

// GenModel is the complete result of one generation run.
type GenModel struct {
	Title   string
	Version string
	Modules []*Module
	Exports []Export
}
