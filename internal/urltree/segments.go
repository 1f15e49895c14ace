package urltree

import (
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/kiotago/internal/naming"
)

var (
	// {param}.json is still a single parameter segment.
	indexerExtensionRegex     = regexp.MustCompile(`\.(?:json|yaml|yml|csv|txt)$`)
	indexerExtensionTestRegex = regexp.MustCompile(`\{\w+\}\.(?:json|yaml|yml|csv|txt)$`)

	// {id}, name(idParam={id}), name(idParam='{id}'), name(idParam='{id}',idParam2='{id2}')
	pathParametersRegex = regexp.MustCompile(`(\w+)?(=?)'?\{(\w+)\}'?,?`)
	// fn(ids=@ids)
	atSignParameterRegex = regexp.MustCompile(`=@(\w+)`)
)

const withKeyword = "With"

// IsSingleSimpleParameter reports whether segment is exactly one {param}
// token, optionally followed by a file extension.
func IsSingleSimpleParameter(segment string) bool {
	if segment == "" {
		return false
	}
	s := indexerExtensionRegex.ReplaceAllString(segment, "")
	return strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") && strings.Count(s, "{") == 1
}

// IsComplexMultipleParameters reports whether segment carries parameters
// mixed with literal text, or several parameters.
func IsComplexMultipleParameters(segment string) bool {
	return strings.Contains(segment, "{") && !IsSingleSimpleParameter(segment)
}

// IsSingleSimpleParameter reports whether n's segment is a single {param} token.
func (n *Node) IsSingleSimpleParameter() bool { return IsSingleSimpleParameter(n.Segment) }

// IsComplexMultipleParameters reports whether n's segment needs a
// parameterized builder method.
func (n *Node) IsComplexMultipleParameters() bool { return IsComplexMultipleParameters(n.Segment) }

// BelongsToItemNamespace reports whether n's request builder lives in an
// "item" sub-namespace.
func (n *Node) BelongsToItemNamespace() bool { return n.IsSingleSimpleParameter() }

// CleanupParametersFromPath rewrites parameter tokens of a segment into
// symbol-friendly text:
//
//	"{id}"                    -> "WithId"
//	"name(key='{key}')"       -> "nameWithKey"
//	"fn(ids=@ids)"            -> "fnWithIds"
func CleanupParametersFromPath(segment string) string {
	if segment == "" {
		return segment
	}
	s := atSignParameterRegex.ReplaceAllString(segment, "={$1}")
	s = pathParametersRegex.ReplaceAllStringFunc(s, func(m string) string {
		g := pathParametersRegex.FindStringSubmatch(m)
		if g[2] == "" {
			return g[1] + withKeyword + naming.UpperFirst(g[3])
		}
		return withKeyword + naming.UpperFirst(g[3])
	})
	s = strings.ReplaceAll(s, ")", "")
	s = strings.ReplaceAll(s, "(", "")
	return s
}

// PathParametersForCurrentSegment returns the path parameters named by a
// complex segment. They are looked up on n's path item, or on the children's
// path items when n has no operations of its own.
func (n *Node) PathParametersForCurrentSegment() openapi3.Parameters {
	if !n.IsComplexMultipleParameters() {
		return nil
	}
	if n.PathItem != nil {
		return parametersInSegment(n.PathItem, n.Segment, nil)
	}
	seen := map[string]struct{}{}
	var out openapi3.Parameters
	for _, c := range n.SortedChildren() {
		if c.PathItem == nil {
			continue
		}
		out = append(out, parametersInSegment(c.PathItem, n.Segment, seen)...)
	}
	return out
}

// parametersInSegment collects the distinct path parameters of item whose
// {name} token appears in segment, path-item parameters first.
func parametersInSegment(item *openapi3.PathItem, segment string, seen map[string]struct{}) openapi3.Parameters {
	if seen == nil {
		seen = map[string]struct{}{}
	}
	var out openapi3.Parameters
	add := func(params openapi3.Parameters) {
		for _, p := range params {
			if p == nil || p.Value == nil || p.Value.In != openapi3.ParameterInPath {
				continue
			}
			if !strings.Contains(strings.ToLower(segment), "{"+strings.ToLower(p.Value.Name)+"}") {
				continue
			}
			if _, dup := seen[p.Value.Name]; dup {
				continue
			}
			seen[p.Value.Name] = struct{}{}
			out = append(out, p)
		}
	}
	add(item.Parameters)
	for _, op := range (&Node{PathItem: item}).Operations() {
		add(op.Operation.Parameters)
	}
	return out
}

// PathParameter finds the path parameter named name declared on n's path
// item. Operation-level declarations win over path-item level ones.
func (n *Node) PathParameter(name string) *openapi3.Parameter {
	if n.PathItem == nil {
		return nil
	}
	for _, op := range n.Operations() {
		for _, p := range op.Operation.Parameters {
			if p != nil && p.Value != nil && p.Value.In == openapi3.ParameterInPath && strings.EqualFold(p.Value.Name, name) {
				return p.Value
			}
		}
	}
	for _, p := range n.PathItem.Parameters {
		if p != nil && p.Value != nil && p.Value.In == openapi3.ParameterInPath && strings.EqualFold(p.Value.Name, name) {
			return p.Value
		}
	}
	return nil
}

// ParameterName returns the name inside a single {param} segment.
func ParameterName(segment string) string {
	s := indexerExtensionRegex.ReplaceAllString(segment, "")
	return strings.TrimSuffix(strings.TrimPrefix(s, "{"), "}")
}
