package codedom

import (
	"sort"
	"strings"
	"sync"
)

// Class is a request builder, a model, or one of the helper classes of an
// operation.
type Class struct {
	Node

	ClassKind ClassKind
	// BaseType is the single base class, nil when the class inherits nothing.
	BaseType *TypeRef

	mu           sync.RWMutex
	interfaces   []*TypeRef
	errorType    bool
	properties   map[string]*Property
	methods      []*Method
	indexers     []*Indexer
	innerClasses map[string]*Class
}

// NewClass returns an empty class of the given kind.
func NewClass(name string, kind ClassKind) *Class {
	return &Class{
		Node:         Node{Name: name},
		ClassKind:    kind,
		properties:   map[string]*Property{},
		innerClasses: map[string]*Class{},
	}
}

// Kind returns KindClass.
func (*Class) Kind() ElementKind { return KindClass }
func (*Class) declaration()      {}

// IsOfKind reports whether the class has one of kinds.
func (c *Class) IsOfKind(kinds ...ClassKind) bool {
	for _, k := range kinds {
		if c.ClassKind == k {
			return true
		}
	}
	return false
}

// BaseClass returns the resolved base class, or nil.
func (c *Class) BaseClass() *Class {
	if c.BaseType == nil {
		return nil
	}
	base, _ := c.BaseType.Definition().(*Class)
	return base
}

// InheritanceChain returns the ancestors of c, closest first. Cycles in a
// malformed hierarchy stop the walk.
func (c *Class) InheritanceChain() []*Class {
	var out []*Class
	seen := map[*Class]struct{}{c: {}}
	for cur := c.BaseClass(); cur != nil; cur = cur.BaseClass() {
		if _, ok := seen[cur]; ok {
			break
		}
		seen[cur] = struct{}{}
		out = append(out, cur)
	}
	return out
}

// DerivesFrom reports whether c is ancestor or inherits from it.
func (c *Class) DerivesFrom(ancestor *Class) bool {
	if c == ancestor {
		return true
	}
	for _, a := range c.InheritanceChain() {
		if a == ancestor {
			return true
		}
	}
	return false
}

// MarkErrorType flags the class as an error payload.
func (c *Class) MarkErrorType() {
	c.mu.Lock()
	c.errorType = true
	c.mu.Unlock()
}

// IsErrorType reports whether the class describes an error payload.
func (c *Class) IsErrorType() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errorType
}

// AddInterface records an implemented interface once per name.
func (c *Class) AddInterface(t *TypeRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.interfaces {
		if strings.EqualFold(existing.Name, t.Name) {
			return
		}
	}
	t.setOwner(c)
	c.interfaces = append(c.interfaces, t)
}

// Interfaces returns the implemented interfaces ordered by name.
func (c *Class) Interfaces() []*TypeRef {
	c.mu.RLock()
	out := append([]*TypeRef(nil), c.interfaces...)
	c.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return compareNames(out[i].Name, out[j].Name) < 0 })
	return out
}

// AddProperty adds p unless a member with the same name exists. The first
// property with a name wins.
func (c *Class) AddProperty(p *Property) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(p.Name)
	if _, ok := c.properties[k]; ok {
		return false
	}
	p.setParent(c)
	c.properties[k] = p
	return true
}

// FindProperty looks a property up by name.
func (c *Class) FindProperty(name string) *Property {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.properties[key(name)]
}

// FindPropertyOfKind returns the first property of the given kind.
func (c *Class) FindPropertyOfKind(kind PropertyKind) *Property {
	for _, p := range c.Properties() {
		if p.PropertyKind == kind {
			return p
		}
	}
	return nil
}

// ContainsMember reports whether c has a property, method or inner class
// named name.
func (c *Class) ContainsMember(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	k := key(name)
	if _, ok := c.properties[k]; ok {
		return true
	}
	if _, ok := c.innerClasses[k]; ok {
		return true
	}
	for _, m := range c.methods {
		if key(m.Name) == k {
			return true
		}
	}
	return false
}

// AddMethod adds m. Methods may share a name (constructor overloads).
func (c *Class) AddMethod(m *Method) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m.setParent(c)
	c.methods = append(c.methods, m)
}

// MethodsOfKind returns the methods of the given kinds in element order.
func (c *Class) MethodsOfKind(kinds ...MethodKind) []*Method {
	var out []*Method
	for _, m := range c.Methods() {
		if m.IsOfKind(kinds...) {
			out = append(out, m)
		}
	}
	return out
}

// AddIndexer adds an indexer.
func (c *Class) AddIndexer(ix *Indexer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ix.setParent(c)
	c.indexers = append(c.indexers, ix)
}

// AddInnerClass inserts (or gets) an inner class.
func (c *Class) AddInnerClass(inner *Class) (*Class, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(inner.Name)
	if existing, ok := c.innerClasses[k]; ok {
		return existing, false
	}
	inner.setParent(c)
	c.innerClasses[k] = inner
	return inner, true
}

// FindInnerClass looks an inner class up by name.
func (c *Class) FindInnerClass(name string) *Class {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.innerClasses[key(name)]
}

func (c *Class) findInnerByName(name string) []Declaration {
	var out []Declaration
	for _, inner := range c.InnerClasses() {
		if strings.EqualFold(inner.Name, name) {
			out = append(out, inner)
		}
		out = append(out, inner.findInnerByName(name)...)
	}
	return out
}

// Properties returns the properties in element order.
func (c *Class) Properties() []*Property {
	c.mu.RLock()
	out := make([]*Property, 0, len(c.properties))
	for _, p := range c.properties {
		out = append(out, p)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return CompareElements(out[i], out[j]) < 0 })
	return out
}

// Methods returns the methods in element order.
func (c *Class) Methods() []*Method {
	c.mu.RLock()
	out := append([]*Method(nil), c.methods...)
	c.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return CompareElements(out[i], out[j]) < 0 })
	return out
}

// Indexers returns the indexers in element order.
func (c *Class) Indexers() []*Indexer {
	c.mu.RLock()
	out := append([]*Indexer(nil), c.indexers...)
	c.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return CompareElements(out[i], out[j]) < 0 })
	return out
}

// InnerClasses returns the inner classes in element order.
func (c *Class) InnerClasses() []*Class {
	c.mu.RLock()
	out := make([]*Class, 0, len(c.innerClasses))
	for _, inner := range c.innerClasses {
		out = append(out, inner)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return CompareElements(out[i], out[j]) < 0 })
	return out
}

// Members returns every child element in element order.
func (c *Class) Members() []Element {
	var out []Element
	for _, p := range c.Properties() {
		out = append(out, p)
	}
	for _, ix := range c.Indexers() {
		out = append(out, ix)
	}
	for _, m := range c.Methods() {
		out = append(out, m)
	}
	for _, inner := range c.InnerClasses() {
		out = append(out, inner)
	}
	sort.SliceStable(out, func(i, j int) bool { return CompareElements(out[i], out[j]) < 0 })
	return out
}
