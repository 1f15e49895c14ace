package spec

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/kiotago/internal/logging"
)

// Filter selects the paths and operations to keep.
//
// A pattern is a glob over path templates with an optional method list:
//
//	/users/**            every path under /users
//	/users/*#GET,PATCH   only GET and PATCH of the direct children of /users
//
// "**" crosses segments, "*" does not. Path parameters compare by position
// only, so /users/{id} matches /users/{user-id}.
type Filter struct {
	Include []string `yaml:"includePatterns"`
	Exclude []string `yaml:"excludePatterns"`
}

// IsZero reports whether f keeps everything.
func (f Filter) IsZero() bool { return len(f.Include) == 0 && len(f.Exclude) == 0 }

type pathPattern struct {
	re      *regexp.Regexp
	methods map[string]struct{}
}

func (p pathPattern) matches(path string) bool { return p.re.MatchString(wildcardParameters(path)) }

func (p pathPattern) coversMethod(method string) bool {
	_, ok := p.methods[method]
	return ok
}

var (
	parameterSegmentRe = regexp.MustCompile(`\{[\w\d-]+\}`)
	knownMethods       = map[string]struct{}{
		http.MethodGet: {}, http.MethodPost: {}, http.MethodPut: {}, http.MethodPatch: {},
		http.MethodDelete: {}, http.MethodHead: {}, http.MethodOptions: {}, http.MethodTrace: {},
	}
)

// wildcardParameters rewrites every {param} to {*} so that parameter names do
// not take part in matching.
func wildcardParameters(path string) string {
	return parameterSegmentRe.ReplaceAllString(path, "{*}")
}

func compilePattern(pattern string) (pathPattern, error) {
	glob, methodList, _ := strings.Cut(strings.TrimSpace(pattern), "#")
	glob = wildcardParameters(glob)
	if glob == "" {
		return pathPattern{}, fmt.Errorf("empty path pattern %q", pattern)
	}

	var sb strings.Builder
	sb.WriteString("^")
	for i := 0; i < len(glob); i++ {
		switch {
		case strings.HasPrefix(glob[i:], "**"):
			sb.WriteString(".*")
			i++
		case glob[i] == '*':
			sb.WriteString("[^/]*")
		default:
			sb.WriteString(regexp.QuoteMeta(glob[i : i+1]))
		}
	}
	sb.WriteString("$")
	re, err := regexp.Compile(sb.String())
	if err != nil {
		return pathPattern{}, fmt.Errorf("path pattern %q: %w", pattern, err)
	}

	p := pathPattern{re: re, methods: map[string]struct{}{}}
	for _, m := range strings.Split(methodList, ",") {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m == "" {
			continue
		}
		if _, ok := knownMethods[m]; !ok {
			return pathPattern{}, fmt.Errorf("path pattern %q: unknown method %q", pattern, m)
		}
		p.methods[m] = struct{}{}
	}
	return p, nil
}

func compilePatterns(patterns []string) (pathOnly, withMethods []pathPattern, err error) {
	for _, raw := range patterns {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		p, err := compilePattern(raw)
		if err != nil {
			return nil, nil, &SpecError{Code: InputError, Message: err.Error(), Cause: err}
		}
		if len(p.methods) == 0 {
			pathOnly = append(pathOnly, p)
		} else {
			withMethods = append(withMethods, p)
		}
	}
	return pathOnly, withMethods, nil
}

func anyMatches(patterns []pathPattern, path string) bool {
	for _, p := range patterns {
		if p.matches(path) {
			return true
		}
	}
	return false
}

// FilterPaths removes from doc the paths and operations f does not keep.
//
// Path-only include patterns keep whole paths and path-only exclude patterns
// drop them. Patterns with methods then keep (include) or drop (exclude)
// single operations; a path left without operations is removed.
func FilterPaths(doc *openapi3.T, f Filter, log logging.Logger) error {
	if doc == nil || f.IsZero() {
		return nil
	}
	log = logging.OrNop(log)
	includePaths, includeOps, err := compilePatterns(f.Include)
	if err != nil {
		return err
	}
	excludePaths, excludeOps, err := compilePatterns(f.Exclude)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	if len(includePaths) > 0 || len(excludePaths) > 0 {
		for _, path := range paths {
			dropped := (len(includePaths) > 0 && !anyMatches(includePaths, path)) ||
				(len(excludePaths) > 0 && anyMatches(excludePaths, path))
			// Paths an operation pattern includes are trimmed per operation below.
			if dropped && !anyMatches(includeOps, path) {
				log.Debug("path filtered out", "path", path)
				delete(doc.Paths, path)
			}
		}
	}

	if len(includeOps) > 0 || len(excludeOps) > 0 {
		for _, path := range paths {
			item, ok := doc.Paths[path]
			if !ok || item == nil || anyMatches(includePaths, path) {
				continue
			}
			for method := range item.Operations() {
				if !keepOperation(path, method, includeOps, excludeOps) {
					log.Debug("operation filtered out", "path", path, "method", method)
					item.SetOperation(method, nil)
				}
			}
			if len(item.Operations()) == 0 {
				delete(doc.Paths, path)
			}
		}
	}

	if len(doc.Paths) == 0 {
		log.Warn("no paths were found matching the provided patterns")
	}
	return nil
}

func keepOperation(path, method string, includeOps, excludeOps []pathPattern) bool {
	method = strings.ToUpper(method)
	if len(includeOps) > 0 {
		included := false
		for _, p := range includeOps {
			if p.coversMethod(method) && p.matches(path) {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}
	for _, p := range excludeOps {
		if p.coversMethod(method) && p.matches(path) {
			return false
		}
	}
	return true
}
