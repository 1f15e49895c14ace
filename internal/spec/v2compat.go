package spec

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const multipartFormData = "multipart/form-data"

var v2OperationKeys = map[string]struct{}{
	"get": {}, "post": {}, "put": {}, "delete": {}, "patch": {}, "options": {}, "head": {},
}

// preprocessV2ForCompatibility rewrites Swagger 2 operations that
// openapi2conv rejects:
//
//   - body parameters mixed with formData parameters become formData
//     parameters, and the operation consumes multipart/form-data;
//   - several body parameters merge into one object body with a property
//     per parameter.
//
// It returns the original bytes and false when nothing changed or the
// document cannot be parsed.
func preprocessV2ForCompatibility(data []byte) ([]byte, bool, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return data, false, err
	}
	paths, ok := doc["paths"].(map[string]any)
	if !ok {
		return data, false, nil
	}

	modified := false
	for _, item := range paths {
		ops, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for method, raw := range ops {
			if _, isOp := v2OperationKeys[strings.ToLower(method)]; !isOp {
				continue
			}
			if op, ok := raw.(map[string]any); ok && rewriteV2Operation(op) {
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

func rewriteV2Operation(op map[string]any) bool {
	params, ok := op["parameters"].([]any)
	if !ok || len(params) == 0 {
		return false
	}
	bodies, hasFormData := 0, false
	for _, p := range params {
		switch parameterLocation(p) {
		case "body":
			bodies++
		case "formdata":
			hasFormData = true
		}
	}

	switch {
	case bodies == 0:
		return false
	case hasFormData:
		out := make([]any, 0, len(params))
		for _, p := range params {
			if pm, ok := p.(map[string]any); ok && parameterLocation(pm) == "body" {
				out = append(out, formDataFromBodyParam(pm))
				continue
			}
			out = append(out, p)
		}
		op["parameters"] = out
		consumes, _ := op["consumes"].([]any)
		if !containsString(consumes, multipartFormData) {
			op["consumes"] = append(consumes, multipartFormData)
		}
		return true
	case bodies > 1:
		op["parameters"] = mergeBodyParams(params)
		return true
	}
	return false
}

func parameterLocation(p any) string {
	pm, ok := p.(map[string]any)
	if !ok {
		return ""
	}
	return strings.ToLower(asString(pm["in"]))
}

// mergeBodyParams replaces the body parameters with a single one whose
// object schema has a property per former parameter.
func mergeBodyParams(params []any) []any {
	props := map[string]any{}
	var required []any
	rest := make([]any, 0, len(params))
	for _, p := range params {
		pm, ok := p.(map[string]any)
		if !ok || parameterLocation(pm) != "body" {
			rest = append(rest, p)
			continue
		}
		name := paramName(pm)
		schema := extractSchemaFromParam(pm)
		if schema == nil {
			schema = map[string]any{"type": "string"}
		}
		props[name] = schema
		if req, _ := pm["required"].(bool); req {
			required = append(required, name)
		}
	}
	schema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		schema["required"] = required
	}
	merged := map[string]any{"in": "body", "name": "body", "schema": schema}
	return append([]any{merged}, rest...)
}

func paramName(pm map[string]any) string {
	if name := asString(pm["name"]); name != "" {
		return name
	}
	return "field"
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func containsString(list []any, want string) bool {
	for _, v := range list {
		if s, ok := v.(string); ok && s == want {
			return true
		}
	}
	return false
}

// extractSchemaFromParam returns the schema of a body parameter, or one
// built from its type, items and format.
func extractSchemaFromParam(pm map[string]any) map[string]any {
	if sch, ok := pm["schema"].(map[string]any); ok {
		return sch
	}
	t := asString(pm["type"])
	if t == "" {
		return nil
	}
	m := map[string]any{"type": t}
	if it, ok := pm["items"].(map[string]any); ok {
		m["items"] = it
	}
	if f := asString(pm["format"]); f != "" {
		m["format"] = f
	}
	return m
}

// formDataFromBodyParam converts a body parameter to a formData one. A
// referenced schema cannot be expressed in formData and degrades to string.
func formDataFromBodyParam(pm map[string]any) map[string]any {
	out := map[string]any{"in": "formData", "name": paramName(pm)}
	if desc := asString(pm["description"]); desc != "" {
		out["description"] = desc
	}
	if req, ok := pm["required"].(bool); ok {
		out["required"] = req
	}

	source := pm
	if sch, ok := pm["schema"].(map[string]any); ok {
		source = sch
	}
	typ := asString(source["type"])
	if typ == "" {
		typ = "string"
	}
	out["type"] = typ
	if it, ok := source["items"].(map[string]any); ok {
		out["items"] = it
	}
	if f := asString(source["format"]); f != "" {
		out["format"] = f
	}
	return out
}
