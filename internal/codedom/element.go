// Package codedom is the language-agnostic SDK model: namespaces holding
// classes, enums and composed types, and classes holding properties,
// methods, indexers and inner classes.
//
// The node set is closed. Every node implements Element and can be told
// apart with Kind or a type switch:
//
//	switch e := el.(type) {
//	case *codedom.Class:
//	case *codedom.Method:
//	}
//
// Namespaces and classes guard their children, so the model may be built
// from several goroutines. Once building is done it is read-only.
package codedom

import "strings"

// Element is implemented by every IR node.
type Element interface {
	// Kind returns the element kind for type switching.
	Kind() ElementKind

	// SymbolName returns the element's name.
	SymbolName() string

	// Parent returns the owning element, or nil for the root namespace.
	Parent() Element

	// Ensure only types in this package can implement Element.
	sealed()
}

// Declaration is an element that can be the definition of a TypeRef and lives
// in a namespace (or, for inner classes, in a class).
type Declaration interface {
	Element
	declaration()
}

// Node carries the fields shared by all elements.
type Node struct {
	Name        string
	Description string

	parent Element
}

func (n *Node) SymbolName() string { return n.Name }
func (n *Node) Parent() Element    { return n.parent }
func (*Node) sealed()              {}

func (n *Node) setParent(p Element) { n.parent = p }

// OwnerNamespace returns the closest namespace above e.
func OwnerNamespace(e Element) *Namespace {
	for cur := e; cur != nil; cur = cur.Parent() {
		if ns, ok := cur.(*Namespace); ok {
			return ns
		}
	}
	return nil
}

// OwnerClass returns the closest class above e, excluding e itself.
func OwnerClass(e Element) *Class {
	if e == nil {
		return nil
	}
	for cur := e.Parent(); cur != nil; cur = cur.Parent() {
		if c, ok := cur.(*Class); ok {
			return c
		}
	}
	return nil
}

// QualifiedName returns the namespace-qualified name of d.
func QualifiedName(d Declaration) string {
	ns := OwnerNamespace(d)
	if ns == nil || ns.FullName() == "" {
		return d.SymbolName()
	}
	return ns.FullName() + ns.separator + d.SymbolName()
}

func key(name string) string { return strings.ToLower(name) }
