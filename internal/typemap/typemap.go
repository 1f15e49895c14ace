// Package typemap maps scalar OpenAPI schema shapes to canonical primitive
// type names.
package typemap

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Canonical primitive names understood by downstream refiners.
const (
	String         = "string"
	Integer        = "integer"
	Int64          = "int64"
	SByte          = "sbyte"
	Byte           = "byte"
	Double         = "double"
	Float          = "float"
	Decimal        = "decimal"
	Boolean        = "boolean"
	Base64         = "base64"
	Base64URL      = "base64url"
	Binary         = "binary"
	DateTimeOffset = "DateTimeOffset"
	DateOnly       = "DateOnly"
	TimeOnly       = "TimeOnly"
	TimeSpan       = "TimeSpan"
	GUID           = "Guid"
	UntypedNode    = "UntypedNode"
)

// Result is the outcome of a mapping. External is set only when Name is a
// primitive; otherwise Name is a naming hint for the caller (the enum or class
// name it injected) and the schema must be resolved as a model.
type Result struct {
	Name     string
	External bool
}

// Primitive reports whether the result names a primitive.
func (r Result) Primitive() bool { return r.External && r.Name != "" }

var skippedTypeNames = map[string]struct{}{
	"object": {},
	"array":  {},
	"null":   {},
}

// Map resolves the primitive type for schema. childType is the name the caller
// would give an enum or model for the schema's items; it is returned unchanged
// (non-external) when the items are an enum.
//
// Candidate type names are taken in order from items.type, childType,
// type, then the anyOf and oneOf branches, skipping object and array. The
// format comes from the schema, then its items, then the first branch that
// declares one.
func Map(schema *openapi3.Schema, childType string) Result {
	if schema == nil {
		return Result{}
	}
	var items *openapi3.Schema
	if schema.Items != nil {
		items = schema.Items.Value
	}

	candidates := make([]string, 0, 3+len(schema.AnyOf)+len(schema.OneOf))
	if items != nil {
		candidates = append(candidates, items.Type)
	}
	candidates = append(candidates, childType, schema.Type)
	candidates = append(candidates, branchValues(schema.AnyOf, func(s *openapi3.Schema) string { return s.Type })...)
	candidates = append(candidates, branchValues(schema.OneOf, func(s *openapi3.Schema) string { return s.Type })...)

	typeName := ""
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, skip := skippedTypeNames[strings.ToLower(c)]; skip {
			continue
		}
		typeName = c
		break
	}

	if items != nil && IsStringEnum(items) {
		return Result{Name: childType}
	}

	format := schema.Format
	if format == "" && items != nil {
		format = items.Format
	}
	if format == "" {
		for _, f := range branchValues(schema.AnyOf, func(s *openapi3.Schema) string { return s.Format }) {
			if f != "" {
				format = f
				break
			}
		}
	}
	if format == "" {
		for _, f := range branchValues(schema.OneOf, func(s *openapi3.Schema) string { return s.Format }) {
			if f != "" {
				format = f
				break
			}
		}
	}

	if name := Lookup(typeName, format); name != "" {
		return Result{Name: name, External: true}
	}
	return Result{Name: typeName}
}

// Lookup is the raw (type, format) table. It returns "" when the pair does not
// denote a primitive.
func Lookup(typeName, format string) string {
	t := strings.ToLower(typeName)
	f := strings.ToLower(format)
	switch {
	case t == "string" && f == "base64url":
		return Base64URL
	case t == "file":
		return Binary
	case t == "string" && f == "duration":
		return TimeSpan
	case t == "string" && f == "time":
		return TimeOnly
	case t == "string" && f == "date":
		return DateOnly
	case t == "string" && f == "date-time":
		return DateTimeOffset
	case t == "string" && f == "uuid":
		return GUID
	case t == "string" && (f == "byte" || f == "binary"):
		return byteFormat(f)
	case t == "string":
		return String
	case t == "number" && (f == "double" || f == "float" || f == "decimal"):
		return f
	case (t == "number" || t == "integer") && f == "int8":
		return SByte
	case (t == "number" || t == "integer") && f == "uint8":
		return Byte
	case (t == "number" || t == "integer") && f == "int64":
		return Int64
	case t == "number" && f == "int32":
		return Integer
	case t == "number":
		return Double
	case t == "integer":
		return Integer
	case t == "boolean":
		return Boolean
	case f == "byte" || f == "binary":
		return byteFormat(f)
	}
	return ""
}

func byteFormat(f string) string {
	if f == "byte" {
		return Base64
	}
	return Binary
}

// IsStringEnum reports whether schema enumerates at least one non-empty string.
func IsStringEnum(schema *openapi3.Schema) bool {
	if schema == nil {
		return false
	}
	for _, v := range schema.Enum {
		if s, ok := v.(string); ok && s != "" {
			return true
		}
	}
	return false
}

func branchValues(refs openapi3.SchemaRefs, pick func(*openapi3.Schema) string) []string {
	if len(refs) == 0 {
		return nil
	}
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if r == nil || r.Value == nil {
			continue
		}
		out = append(out, pick(r.Value))
	}
	return out
}
