package builder

import "errors"

// ErrorCode categorizes build failures.
type ErrorCode string

const (
	ConfigError             ErrorCode = "ConfigError"
	MissingServerError      ErrorCode = "MissingServerError"
	UnresolvableSchemaError ErrorCode = "UnresolvableSchemaError"
	UnresolvedTypeError     ErrorCode = "UnresolvedTypeError"
	CanceledError           ErrorCode = "CanceledError"
)

var (
	ErrMissingServer      = errors.New("no server url found in the document")
	ErrUnresolvableSchema = errors.New("schema has no type, format or composition")
	ErrUnresolvedType     = errors.New("type reference left unresolved")
)

// BuildError is a structured build failure. Path is the URL path being built
// and Schema the reference id or inline name of the offending schema, when
// known.
type BuildError struct {
	Code    ErrorCode
	Message string
	Path    string
	Schema  string
	Cause   error
}

func (e *BuildError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg += " (path " + e.Path + ")"
	}
	if e.Schema != "" {
		msg += " (schema " + e.Schema + ")"
	}
	return msg
}

func (e *BuildError) Unwrap() error { return e.Cause }
