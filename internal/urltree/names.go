package urltree

import (
	"regexp"
	"strings"

	"github.com/mark3labs/kiotago/internal/naming"
)

const (
	itemSegment        = "item"
	reservedItemName   = "Item"
	escapedSuffix      = "Escaped"
	modelsSegment      = "models"
	requestsSuffix     = "Requests"
	valueIdentifier    = "$value"
	valueIdentifierFor = "Content"
)

var (
	idClassNameCleanupRegex = regexp.MustCompile(`(?i)-?id\d?}?$`)

	skippedClassNameSegments = map[string]struct{}{
		"json": {}, "xml": {}, "csv": {}, "yaml": {}, "yml": {}, "txt": {},
	}

	httpVerbs = map[string]struct{}{
		"get": {}, "post": {}, "put": {}, "patch": {}, "delete": {}, "head": {}, "options": {}, "trace": {},
	}
)

func isSkippedSegment(s string) bool {
	_, ok := skippedClassNameSegments[strings.ToLower(s)]
	return ok
}

// NamespaceFromPath returns the namespace that holds n's request builder:
// prefix followed by one namespace segment per path segment, joined by sep.
// Single parameter segments become "item".
func (n *Node) NamespaceFromPath(prefix, sep string) string {
	segments := n.Segments()
	if len(segments) == 0 {
		return prefix
	}
	parts := make([]string, 0, len(segments)+1)
	if prefix != "" {
		parts = append(parts, prefix)
	}
	for _, segment := range segments {
		parts = append(parts, namespaceSegment(segment))
	}
	return strings.Join(parts, sep)
}

func namespaceSegment(segment string) string {
	switch {
	case IsSingleSimpleParameter(segment):
		segment = itemSegment
	case strings.EqualFold(segment, reservedItemName):
		segment = reservedItemName + "_" + escapedSuffix
	}
	pieces := strings.FieldsFunc(segment, func(r rune) bool { return r == '.' || r == '-' || r == '$' })
	for i, p := range pieces {
		pieces[i] = CleanupParametersFromPath(p)
	}
	s := naming.JoinCamel(pieces)
	if isSkippedSegment(s) {
		s += escapedSuffix
	}
	s = naming.CleanupSymbol(s)
	if strings.EqualFold(s, modelsSegment) {
		s += requestsSuffix
	}
	return s
}

// ClassName names a declaration derived from n. hint, when set, is a schema
// or reference name and wins over the path segment. The result is
// prefix + name + suffix, cleaned up as a symbol and upper-cased.
func (n *Node) ClassName(hint, prefix, suffix string) string {
	return naming.UpperFirst(n.segmentName(hint, prefix, suffix, true, func(s []string) string {
		if len(s) == 0 {
			return ""
		}
		return s[len(s)-1]
	}))
}

// NavigationName names the member that navigates from the parent request
// builder to n. Names that collide with HTTP verbs get a "Path" suffix.
func (n *Node) NavigationName(suffix string) string {
	result := n.segmentName("", "", suffix, false, naming.JoinCamel)
	if _, verb := httpVerbs[strings.ToLower(result)]; verb {
		return result + "Path"
	}
	return result
}

func (n *Node) segmentName(hint, prefix, suffix string, skipExtension bool, reduce func([]string) string) string {
	raw := hint
	if raw == "" {
		raw = strings.ReplaceAll(CleanupParametersFromPath(n.Segment), valueIdentifier, valueIdentifierFor)
		if raw != "" {
			if indexerExtensionTestRegex.MatchString(n.Segment) {
				raw = indexerExtensionRegex.ReplaceAllString(raw, "")
			}
			if n.BelongsToItemNamespace() {
				if cleaned := idClassNameCleanupRegex.ReplaceAllString(raw, ""); cleaned != raw {
					raw = cleaned
					if raw == withKeyword {
						if segments := n.Segments(); len(segments) > 1 {
							raw = naming.UpperFirst(segments[len(segments)-2])
						}
					}
				}
			}
		}
	}

	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == '.' })
	if skipExtension && len(parts) > 1 {
		kept := make([]string, 0, len(parts))
		for _, p := range parts {
			if !isSkippedSegment(p) {
				kept = append(kept, p)
			}
		}
		parts = kept
	}
	return naming.CleanupSymbol(prefix + reduce(parts) + suffix)
}
