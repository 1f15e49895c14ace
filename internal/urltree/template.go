package urltree

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/kiotago/internal/naming"
)

// BaseURLPlaceholder is the RFC 6570 expression every URL template starts with.
const BaseURLPlaceholder = "{+baseurl}"

var (
	pathParameterTokenRegex = regexp.MustCompile(`\{[^}]+\}`)
	percentEncodedRegex     = regexp.MustCompile(`%[0-9A-F]{2}`)
)

// QueryParameters returns the distinct query parameters of n's path item and
// all of its operations, ordered by name.
func (n *Node) QueryParameters() openapi3.Parameters {
	if n.PathItem == nil {
		return nil
	}
	return queryParameters(n.PathItem.Parameters, n.Operations())
}

// OperationQueryParameters returns the distinct query parameters that apply
// to op, path-item level first, ordered by name.
func (n *Node) OperationQueryParameters(op *openapi3.Operation) openapi3.Parameters {
	if n.PathItem == nil || op == nil {
		return nil
	}
	return queryParameters(n.PathItem.Parameters, []Operation{{Operation: op}})
}

func queryParameters(base openapi3.Parameters, ops []Operation) openapi3.Parameters {
	seen := map[string]struct{}{}
	var out openapi3.Parameters
	add := func(params openapi3.Parameters) {
		for _, p := range params {
			if p == nil || p.Value == nil || p.Value.In != openapi3.ParameterInQuery {
				continue
			}
			if _, dup := seen[p.Value.Name]; dup {
				continue
			}
			seen[p.Value.Name] = struct{}{}
			out = append(out, p)
		}
	}
	add(base)
	for _, op := range ops {
		add(op.Operation.Parameters)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value.Name < out[j].Value.Name })
	return out
}

// URLTemplate renders the RFC 6570 template for n:
//
//	{+baseurl}/users/{user%2Did}?filter={filter}{&top,tags*}
func (n *Node) URLTemplate() string {
	var query string
	if params := n.QueryParameters(); len(params) > 0 {
		var required, optional []string
		for _, p := range params {
			name := SanitizeParameterNameForURLTemplate(p.Value.Name)
			if p.Value.Required {
				required = append(required, fmt.Sprintf("%s={%s}", p.Value.Name, name))
				continue
			}
			if explodes(p.Value) {
				name += "*"
			}
			optional = append(optional, name)
		}
		var sb strings.Builder
		if len(required) > 0 {
			sb.WriteString("?")
			sb.WriteString(strings.Join(required, "&"))
		}
		if len(optional) > 0 {
			if len(required) > 0 {
				sb.WriteString("{&")
			} else {
				sb.WriteString("{?")
			}
			sb.WriteString(strings.Join(optional, ","))
			sb.WriteString("}")
		}
		query = sb.String()
	}
	return BaseURLPlaceholder + sanitizePathParameterNames(n.Path) + query
}

// explodes reports whether a query parameter is rendered with the explode
// modifier. Arrays explode unless the document says otherwise.
func explodes(p *openapi3.Parameter) bool {
	if p.Explode != nil {
		return *p.Explode
	}
	return p.Schema != nil && p.Schema.Value != nil && p.Schema.Value.Type == openapi3.TypeArray
}

func sanitizePathParameterNames(path string) string {
	return pathParameterTokenRegex.ReplaceAllStringFunc(path, func(tok string) string {
		return "{" + SanitizeParameterNameForURLTemplate(tok[1:len(tok)-1]) + "}"
	})
}

// SanitizeParameterNameForURLTemplate percent-encodes a parameter name so it
// is a valid RFC 6570 variable name. '-', '.' and '~' are encoded too.
func SanitizeParameterNameForURLTemplate(name string) string {
	if name == "" {
		return name
	}
	name = indexerExtensionRegex.ReplaceAllString(name, "")
	name = strings.TrimSuffix(strings.TrimPrefix(name, "{"), "}")
	escaped := escapeDataString(name)
	r := strings.NewReplacer("-", "%2D", ".", "%2E", "~", "%7E")
	return r.Replace(escaped)
}

// SanitizeParameterNameForCodeSymbols turns a wire parameter name into a
// symbol name: "$top" -> "top", "user-id" -> "userId".
func SanitizeParameterNameForCodeSymbols(name string) string {
	if name == "" {
		return name
	}
	pieces := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '.' || r == '~' })
	camel := naming.JoinCamel(pieces)
	return percentEncodedRegex.ReplaceAllString(SanitizeParameterNameForURLTemplate(camel), "")
}

// escapeDataString encodes everything but RFC 3986 unreserved characters.
func escapeDataString(s string) string {
	const upperhex = "0123456789ABCDEF"
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[c>>4])
		sb.WriteByte(upperhex[c&15])
	}
	return sb.String()
}

func isUnreserved(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' ||
		c == '-' || c == '_' || c == '.' || c == '~'
}
