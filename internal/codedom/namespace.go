package codedom

import (
	"sort"
	"strings"
	"sync"
)

// Namespace is a node of the dot-separated namespace tree. Names are unique
// per namespace, compared case-insensitively; adding a namespace or a
// declaration that already exists returns the existing one.
type Namespace struct {
	Node

	separator string

	mu           sync.RWMutex
	namespaces   map[string]*Namespace
	declarations map[string]Declaration
}

// NewRootNamespace returns an empty, unnamed root. separator joins segments
// in full names.
func NewRootNamespace(separator string) *Namespace {
	if separator == "" {
		separator = "."
	}
	return newNamespace("", separator, nil)
}

func newNamespace(name, separator string, parent *Namespace) *Namespace {
	ns := &Namespace{
		Node:         Node{Name: name},
		separator:    separator,
		namespaces:   map[string]*Namespace{},
		declarations: map[string]Declaration{},
	}
	if parent != nil {
		ns.setParent(parent)
	}
	return ns
}

// Kind returns KindNamespace.
func (*Namespace) Kind() ElementKind { return KindNamespace }

// Separator returns the string joining namespace segments.
func (ns *Namespace) Separator() string { return ns.separator }

// ParentNamespace returns the enclosing namespace, nil at the root.
func (ns *Namespace) ParentNamespace() *Namespace {
	p, _ := ns.parent.(*Namespace)
	return p
}

// Root returns the root of the tree ns belongs to.
func (ns *Namespace) Root() *Namespace {
	cur := ns
	for p := cur.ParentNamespace(); p != nil; p = cur.ParentNamespace() {
		cur = p
	}
	return cur
}

// FullName joins the names of ns and its ancestors, root excluded.
func (ns *Namespace) FullName() string {
	var segments []string
	for cur := ns; cur != nil && cur.Name != ""; cur = cur.ParentNamespace() {
		segments = append(segments, cur.Name)
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, ns.separator)
}

// Depth is the number of segments in FullName.
func (ns *Namespace) Depth() int {
	d := 0
	for cur := ns; cur != nil && cur.Name != ""; cur = cur.ParentNamespace() {
		d++
	}
	return d
}

// AddNamespace inserts (or gets) the namespace with the given full name,
// creating intermediate namespaces from the root down.
func (ns *Namespace) AddNamespace(fullName string) *Namespace {
	cur := ns.Root()
	for _, segment := range strings.Split(fullName, ns.separator) {
		if segment == "" {
			continue
		}
		cur = cur.child(segment)
	}
	return cur
}

func (ns *Namespace) child(segment string) *Namespace {
	k := key(segment)
	ns.mu.RLock()
	existing, ok := ns.namespaces[k]
	ns.mu.RUnlock()
	if ok {
		return existing
	}
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if existing, ok := ns.namespaces[k]; ok {
		return existing
	}
	child := newNamespace(segment, ns.separator, ns)
	ns.namespaces[k] = child
	return child
}

// FindNamespace returns the namespace with the given full name, or nil.
func (ns *Namespace) FindNamespace(fullName string) *Namespace {
	cur := ns.Root()
	for _, segment := range strings.Split(fullName, ns.separator) {
		if segment == "" {
			continue
		}
		cur.mu.RLock()
		next, ok := cur.namespaces[key(segment)]
		cur.mu.RUnlock()
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// AddDeclaration inserts d unless a declaration with the same name exists.
// It returns the declaration that is in the namespace afterwards and whether
// it is d.
func (ns *Namespace) AddDeclaration(d Declaration) (Declaration, bool) {
	k := key(d.SymbolName())
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if existing, ok := ns.declarations[k]; ok {
		return existing, false
	}
	setParent(d, ns)
	ns.declarations[k] = d
	return d, true
}

// AddClass inserts (or gets) a class. The existing declaration may be of
// another kind.
func (ns *Namespace) AddClass(c *Class) (Declaration, bool) { return ns.AddDeclaration(c) }

// AddEnum inserts (or gets) an enum.
func (ns *Namespace) AddEnum(e *Enum) (Declaration, bool) { return ns.AddDeclaration(e) }

// AddComposedType inserts (or gets) a composed type.
func (ns *Namespace) AddComposedType(c *ComposedType) (Declaration, bool) {
	return ns.AddDeclaration(c)
}

// FindDeclaration looks name up in ns only.
func (ns *Namespace) FindDeclaration(name string) Declaration {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return ns.declarations[key(name)]
}

// FindClass looks a class up in ns only.
func (ns *Namespace) FindClass(name string) *Class {
	c, _ := ns.FindDeclaration(name).(*Class)
	return c
}

// FindDeclarationsByName searches ns and its descendants, inner classes
// included, for declarations named name. Results are ordered from the
// shallowest namespace down.
func (ns *Namespace) FindDeclarationsByName(name string) []Declaration {
	var out []Declaration
	var visit func(*Namespace)
	visit = func(cur *Namespace) {
		for _, d := range cur.Declarations() {
			if strings.EqualFold(d.SymbolName(), name) {
				out = append(out, d)
			}
			if c, ok := d.(*Class); ok {
				out = append(out, c.findInnerByName(name)...)
			}
		}
		for _, child := range cur.Namespaces() {
			visit(child)
		}
	}
	visit(ns)
	sort.SliceStable(out, func(i, j int) bool {
		return depthOf(out[i]) < depthOf(out[j])
	})
	return out
}

func depthOf(d Declaration) int {
	if ns := OwnerNamespace(d); ns != nil {
		return ns.Depth()
	}
	return 0
}

// Namespaces returns the child namespaces ordered by name.
func (ns *Namespace) Namespaces() []*Namespace {
	ns.mu.RLock()
	out := make([]*Namespace, 0, len(ns.namespaces))
	for _, c := range ns.namespaces {
		out = append(out, c)
	}
	ns.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return compareNames(out[i].Name, out[j].Name) < 0 })
	return out
}

// Declarations returns the declarations of ns in element order.
func (ns *Namespace) Declarations() []Declaration {
	ns.mu.RLock()
	out := make([]Declaration, 0, len(ns.declarations))
	for _, d := range ns.declarations {
		out = append(out, d)
	}
	ns.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return CompareElements(out[i], out[j]) < 0 })
	return out
}

// Classes returns the classes of ns in name order.
func (ns *Namespace) Classes() []*Class {
	var out []*Class
	for _, d := range ns.Declarations() {
		if c, ok := d.(*Class); ok {
			out = append(out, c)
		}
	}
	return out
}

func setParent(e Element, p Element) {
	switch v := e.(type) {
	case *Class:
		v.setParent(p)
	case *Enum:
		v.setParent(p)
	case *ComposedType:
		v.setParent(p)
	}
}
