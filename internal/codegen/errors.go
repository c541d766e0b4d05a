package codegen

// ErrorCode categorizes fatal generation failures.
type ErrorCode string

const (
	// SchemaPathError: an explicit unwrap sub-path reached a schema
	// kind that cannot be descended into.
	SchemaPathError ErrorCode = "SchemaPathError"
	// NamingConflict: an explicit local name for a definition or
	// import is already taken in its scope.
	NamingConflict ErrorCode = "NamingConflict"
	// PathParamError: a path template placeholder names a parameter
	// the operation does not declare.
	PathParamError ErrorCode = "PathParamError"
)

// GenError is a structured, fatal generation error. Any GenError aborts
// the whole run; the input document or its annotations are invalid.
type GenError struct {
	Code    ErrorCode
	Message string
	// Where identifies the offending operation or schema, when known.
	Where string
	Cause error
}

func (e *GenError) Error() string { return e.Message }
func (e *GenError) Unwrap() error { return e.Cause }
