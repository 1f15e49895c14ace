// Package urltree turns the document's path templates into a trie keyed by
// path segment. Every node of the trie becomes one request builder.
package urltree

import (
	"errors"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrNilPaths is returned by Build when the document has no paths object.
var ErrNilPaths = errors.New("urltree: paths must not be nil")

// Node is one segment of the URL space. Nodes are built once by Build and are
// read-only afterwards, so they may be shared between goroutines.
type Node struct {
	// Segment is the literal path segment or a {param} token. Empty for the root.
	Segment string
	// Path is the accumulated path from the root, "/" separated.
	Path string
	// Children are keyed by segment text.
	Children map[string]*Node
	// PathItem is the path item bound to this node, if any. A node may have
	// both children and a path item.
	PathItem *openapi3.PathItem
}

// Build creates the trie for paths. Path keys are inserted in sorted order so
// the tree is the same for every run.
func Build(paths openapi3.Paths) (*Node, error) {
	if paths == nil {
		return nil, ErrNilPaths
	}
	root := newNode("", "")

	keys := make([]string, 0, len(paths))
	for k := range paths {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, template := range keys {
		root.attach(template, paths[template])
	}
	return root, nil
}

func newNode(segment, path string) *Node {
	return &Node{Segment: segment, Path: path, Children: map[string]*Node{}}
}

func (n *Node) attach(template string, item *openapi3.PathItem) {
	current := n
	for _, segment := range strings.Split(template, "/") {
		if segment == "" {
			continue
		}
		child, ok := current.Children[segment]
		if !ok {
			child = newNode(segment, current.Path+"/"+segment)
			current.Children[segment] = child
		}
		current = child
	}
	current.PathItem = mergePathItems(current.PathItem, item)
}

// mergePathItems binds item to a node that may already carry one, which
// happens when two templates differ only by empty segments ("/a" and "/a/").
// The first template wins for every method both declare.
func mergePathItems(existing, item *openapi3.PathItem) *openapi3.PathItem {
	if item == nil {
		return existing
	}
	if existing == nil {
		return item
	}
	merged := *existing
	for method, op := range item.Operations() {
		if merged.GetOperation(method) == nil {
			merged.SetOperation(method, op)
		}
	}
	for _, p := range item.Parameters {
		if p == nil || p.Value == nil {
			continue
		}
		if merged.Parameters.GetByInAndName(p.Value.In, p.Value.Name) == nil {
			merged.Parameters = append(merged.Parameters, p)
		}
	}
	return &merged
}

// IsRoot reports whether n is the root of the tree.
func (n *Node) IsRoot() bool { return n.Segment == "" }

// SortedChildren returns the children ordered by segment text.
func (n *Node) SortedChildren() []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Segment < out[j].Segment })
	return out
}

// Segments returns the path segments from the root to n.
func (n *Node) Segments() []string {
	if n.Path == "" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(n.Path, "/"), "/")
}

// Operation is one HTTP operation bound to a node.
type Operation struct {
	Method    string
	Operation *openapi3.Operation
}

// methodOrder is the order operations are visited in.
var methodOrder = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS", "TRACE"}

// Operations returns the bound operations in a stable method order.
func (n *Node) Operations() []Operation {
	if n.PathItem == nil {
		return nil
	}
	var out []Operation
	for _, m := range methodOrder {
		if op := n.PathItem.GetOperation(m); op != nil {
			out = append(out, Operation{Method: m, Operation: op})
		}
	}
	return out
}

// HasOperations reports whether any operation is bound to n.
func (n *Node) HasOperations() bool { return len(n.Operations()) > 0 }

// Walk visits n and its descendants depth-first, children in segment order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.SortedChildren() {
		c.Walk(fn)
	}
}
