package codedom

import (
	"sort"
	"strings"
	"sync"
)

// Property is a field of a class.
type Property struct {
	Node

	PropertyKind      PropertyKind
	Type              *TypeRef
	Access            Access
	DefaultValue      string
	ReadOnly          bool
	SerializationName string
}

// NewProperty returns a public property of the given kind and type.
func NewProperty(name string, kind PropertyKind, t *TypeRef) *Property {
	p := &Property{Node: Node{Name: name}, PropertyKind: kind}
	p.SetType(t)
	return p
}

// Kind returns KindProperty.
func (*Property) Kind() ElementKind { return KindProperty }

// SetType replaces the property type.
func (p *Property) SetType(t *TypeRef) {
	if t != nil {
		t.setOwner(p)
	}
	p.Type = t
}

// WireName is the name used on the wire.
func (p *Property) WireName() string {
	if p.SerializationName != "" {
		return p.SerializationName
	}
	return p.Name
}

// Parameter is a parameter of a method or an indexer.
type Parameter struct {
	Node

	ParameterKind     ParameterKind
	Type              *TypeRef
	Optional          bool
	SerializationName string
	DefaultValue      string
}

// NewParameter returns a required parameter of the given kind and type.
func NewParameter(name string, kind ParameterKind, t *TypeRef) *Parameter {
	p := &Parameter{Node: Node{Name: name}, ParameterKind: kind}
	p.SetType(t)
	return p
}

// Kind returns KindParameter.
func (*Parameter) Kind() ElementKind { return KindParameter }

// SetType replaces the parameter type.
func (p *Parameter) SetType(t *TypeRef) {
	if t != nil {
		t.setOwner(p)
	}
	p.Type = t
}

// Clone returns a detached copy of p with a copied type.
func (p *Parameter) Clone() *Parameter {
	cp := &Parameter{
		Node:              Node{Name: p.Name, Description: p.Description},
		ParameterKind:     p.ParameterKind,
		Optional:          p.Optional,
		SerializationName: p.SerializationName,
		DefaultValue:      p.DefaultValue,
	}
	cp.SetType(p.Type.Clone())
	return cp
}

// Method is an operation of a class.
type Method struct {
	Node

	MethodKind MethodKind
	Access     Access
	IsStatic   bool
	ReturnType *TypeRef
	// HTTPMethod is set on request executors and generators.
	HTTPMethod string
	// BaseURL is set on the client constructor.
	BaseURL string
	// AcceptedResponseTypes are the response media types an executor or
	// generator accepts, in preference order.
	AcceptedResponseTypes []string
	// RequestBodyContentType is the media type of the request body.
	RequestBodyContentType string
	// Discriminator is set on factories.
	Discriminator *Discriminator

	mu            sync.Mutex
	parameters    []*Parameter
	errorMappings map[string]*TypeRef
}

// NewMethod returns a public method of the given kind.
func NewMethod(name string, kind MethodKind, returnType *TypeRef) *Method {
	m := &Method{Node: Node{Name: name}, MethodKind: kind, errorMappings: map[string]*TypeRef{}}
	m.SetReturnType(returnType)
	return m
}

// Kind returns KindMethod.
func (*Method) Kind() ElementKind { return KindMethod }

// IsOfKind reports whether the method has one of kinds.
func (m *Method) IsOfKind(kinds ...MethodKind) bool {
	for _, k := range kinds {
		if m.MethodKind == k {
			return true
		}
	}
	return false
}

// SetReturnType replaces the return type.
func (m *Method) SetReturnType(t *TypeRef) {
	if t != nil {
		t.setOwner(m)
	}
	m.ReturnType = t
}

// AddParameter adds p unless a parameter with the same name exists.
func (m *Method) AddParameter(p *Parameter) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.parameters {
		if strings.EqualFold(existing.Name, p.Name) {
			return false
		}
	}
	p.setParent(m)
	m.parameters = append(m.parameters, p)
	return true
}

// RemoveParametersOfKind drops every parameter of the given kinds.
func (m *Method) RemoveParametersOfKind(kinds ...ParameterKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.parameters[:0]
	for _, p := range m.parameters {
		drop := false
		for _, k := range kinds {
			if p.ParameterKind == k {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, p)
		}
	}
	m.parameters = kept
}

// Parameters returns the parameters in parameter order.
func (m *Method) Parameters() []*Parameter {
	m.mu.Lock()
	out := append([]*Parameter(nil), m.parameters...)
	m.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return CompareParameters(out[i], out[j]) < 0 })
	return out
}

// ParametersOfKind returns the parameters of the given kinds in parameter order.
func (m *Method) ParametersOfKind(kinds ...ParameterKind) []*Parameter {
	var out []*Parameter
	for _, p := range m.Parameters() {
		for _, k := range kinds {
			if p.ParameterKind == k {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// AddErrorMapping maps a status code ("404", "4XX") to an error type. The
// first mapping of a code wins.
func (m *Method) AddErrorMapping(code string, t *TypeRef) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := strings.ToUpper(code)
	if _, ok := m.errorMappings[k]; ok {
		return false
	}
	t.setOwner(m)
	m.errorMappings[k] = t
	return true
}

// HasErrorMapping reports whether code is mapped.
func (m *Method) HasErrorMapping(code string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.errorMappings[strings.ToUpper(code)]
	return ok
}

// ErrorMapping is one status code to error type entry.
type ErrorMapping struct {
	Code string
	Type *TypeRef
}

// ErrorMappings returns the mappings ordered by status code.
func (m *Method) ErrorMappings() []ErrorMapping {
	m.mu.Lock()
	out := make([]ErrorMapping, 0, len(m.errorMappings))
	for code, t := range m.errorMappings {
		out = append(out, ErrorMapping{Code: code, Type: t})
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Clone returns a detached copy of m with copied parameters.
func (m *Method) Clone() *Method {
	cp := NewMethod(m.Name, m.MethodKind, m.ReturnType.Clone())
	cp.Description = m.Description
	cp.Access = m.Access
	cp.IsStatic = m.IsStatic
	cp.HTTPMethod = m.HTTPMethod
	cp.BaseURL = m.BaseURL
	cp.AcceptedResponseTypes = append([]string(nil), m.AcceptedResponseTypes...)
	cp.RequestBodyContentType = m.RequestBodyContentType
	for _, p := range m.Parameters() {
		cp.AddParameter(p.Clone())
	}
	for _, em := range m.ErrorMappings() {
		cp.AddErrorMapping(em.Code, em.Type.Clone())
	}
	return cp
}

// Indexer navigates from a request builder to the item request builder of a
// single {param} child segment.
type Indexer struct {
	Node

	ReturnType *TypeRef
	Parameter  *Parameter
}

// NewIndexer returns an indexer returning t, keyed by param.
func NewIndexer(name string, t *TypeRef, param *Parameter) *Indexer {
	ix := &Indexer{Node: Node{Name: name}}
	if t != nil {
		t.setOwner(ix)
	}
	ix.ReturnType = t
	if param != nil {
		param.setParent(ix)
	}
	ix.Parameter = param
	return ix
}

// Kind returns KindIndexer.
func (*Indexer) Kind() ElementKind { return KindIndexer }

// EnumOption is one value of an enum.
type EnumOption struct {
	Name              string
	SerializationName string
	Description       string
}

// Enum is a closed set of string values.
type Enum struct {
	Node

	mu      sync.Mutex
	options []EnumOption
}

// NewEnum returns an enum without options.
func NewEnum(name string) *Enum { return &Enum{Node: Node{Name: name}} }

// Kind returns KindEnum.
func (*Enum) Kind() ElementKind { return KindEnum }
func (*Enum) declaration()      {}

// AddOption appends o unless an option with the same serialization name
// exists, compared case-insensitively.
func (e *Enum) AddOption(o EnumOption) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, existing := range e.options {
		if strings.EqualFold(existing.SerializationName, o.SerializationName) {
			return false
		}
	}
	e.options = append(e.options, o)
	return true
}

// Options returns the options in document order.
func (e *Enum) Options() []EnumOption {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]EnumOption(nil), e.options...)
}

// ComposedType is a union or an intersection of types.
type ComposedType struct {
	Node

	Variant       ComposedVariant
	Discriminator *Discriminator

	mu      sync.Mutex
	members []*TypeRef
}

// NewComposedType returns a composed type without members.
func NewComposedType(name string, variant ComposedVariant) *ComposedType {
	return &ComposedType{Node: Node{Name: name}, Variant: variant}
}

// Kind returns KindComposedType.
func (*ComposedType) Kind() ElementKind { return KindComposedType }
func (*ComposedType) declaration()      {}

// AddMember appends t unless a member with the same name and collection
// kind exists.
func (c *ComposedType) AddMember(t *TypeRef) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.members {
		if strings.EqualFold(existing.Name, t.Name) && existing.CollectionKind == t.CollectionKind {
			return false
		}
	}
	t.setOwner(c)
	c.members = append(c.members, t)
	return true
}

// Members returns the members in document order.
func (c *ComposedType) Members() []*TypeRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*TypeRef(nil), c.members...)
}

// Discriminator selects a concrete type from the value of a wire property.
type Discriminator struct {
	PropertyName string

	mu       sync.Mutex
	mappings map[string]*TypeRef
	owner    Element
}

// NewDiscriminator returns a discriminator without mappings, owned by owner.
func NewDiscriminator(propertyName string, owner Element) *Discriminator {
	return &Discriminator{PropertyName: propertyName, mappings: map[string]*TypeRef{}, owner: owner}
}

// AddMapping maps a wire value to a type. The first mapping of a value wins.
func (d *Discriminator) AddMapping(value string, t *TypeRef) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.mappings[value]; ok {
		return false
	}
	if d.owner != nil {
		t.setOwner(d.owner)
	}
	d.mappings[value] = t
	return true
}

// RemoveMappingsTo drops every mapping whose definition is target.
func (d *Discriminator) RemoveMappingsTo(target Declaration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for value, t := range d.mappings {
		if t.Definition() == target {
			delete(d.mappings, value)
		}
	}
}

// DiscriminatorMapping is one wire value to type entry.
type DiscriminatorMapping struct {
	Value string
	Type  *TypeRef
}

// Mappings returns the entries ordered by wire value.
func (d *Discriminator) Mappings() []DiscriminatorMapping {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	out := make([]DiscriminatorMapping, 0, len(d.mappings))
	for v, t := range d.mappings {
		out = append(out, DiscriminatorMapping{Value: v, Type: t})
	}
	d.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}
