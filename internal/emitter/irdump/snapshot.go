package irdump

import (
	"github.com/mark3labs/kiotago/internal/codedom"
)

// The snapshot types mirror the codedom tree with plain values so that both
// encoders see the same field order and names.

type index struct {
	Client     string     `yaml:"client" json:"client"`
	BaseURL    string     `yaml:"baseUrl,omitempty" json:"baseUrl,omitempty"`
	Namespaces []string   `yaml:"namespaces" json:"namespaces"`
	Unresolved []typeInfo `yaml:"unresolved,omitempty" json:"unresolved,omitempty"`
}

type namespaceInfo struct {
	Namespace     string         `yaml:"namespace" json:"namespace"`
	Classes       []classInfo    `yaml:"classes,omitempty" json:"classes,omitempty"`
	Enums         []enumInfo     `yaml:"enums,omitempty" json:"enums,omitempty"`
	ComposedTypes []composedInfo `yaml:"composedTypes,omitempty" json:"composedTypes,omitempty"`
}

type typeInfo struct {
	Name       string `yaml:"name" json:"name"`
	Target     string `yaml:"target,omitempty" json:"target,omitempty"`
	Collection string `yaml:"collection,omitempty" json:"collection,omitempty"`
	External   bool   `yaml:"external,omitempty" json:"external,omitzero"`
	Nullable   bool   `yaml:"nullable,omitempty" json:"nullable,omitzero"`
	State      string `yaml:"state,omitempty" json:"state,omitempty"`
	// Owner is only filled in the unresolved list of the index.
	Owner string `yaml:"owner,omitempty" json:"owner,omitempty"`
}

type classInfo struct {
	Name         string         `yaml:"name" json:"name"`
	Kind         string         `yaml:"kind" json:"kind"`
	Description  string         `yaml:"description,omitempty" json:"description,omitempty"`
	ErrorType    bool           `yaml:"errorType,omitempty" json:"errorType,omitzero"`
	Base         *typeInfo      `yaml:"base,omitempty" json:"base,omitempty"`
	Interfaces   []typeInfo     `yaml:"interfaces,omitempty" json:"interfaces,omitempty"`
	Properties   []propertyInfo `yaml:"properties,omitempty" json:"properties,omitempty"`
	Indexers     []indexerInfo  `yaml:"indexers,omitempty" json:"indexers,omitempty"`
	Methods      []methodInfo   `yaml:"methods,omitempty" json:"methods,omitempty"`
	InnerClasses []classInfo    `yaml:"innerClasses,omitempty" json:"innerClasses,omitempty"`
}

type propertyInfo struct {
	Name              string    `yaml:"name" json:"name"`
	Kind              string    `yaml:"kind" json:"kind"`
	Type              *typeInfo `yaml:"type,omitempty" json:"type,omitempty"`
	Access            string    `yaml:"access,omitempty" json:"access,omitempty"`
	SerializationName string    `yaml:"serializationName,omitempty" json:"serializationName,omitempty"`
	DefaultValue      string    `yaml:"defaultValue,omitempty" json:"defaultValue,omitempty"`
	ReadOnly          bool      `yaml:"readOnly,omitempty" json:"readOnly,omitzero"`
	Description       string    `yaml:"description,omitempty" json:"description,omitempty"`
}

type parameterInfo struct {
	Name              string    `yaml:"name" json:"name"`
	Kind              string    `yaml:"kind" json:"kind"`
	Type              *typeInfo `yaml:"type,omitempty" json:"type,omitempty"`
	Optional          bool      `yaml:"optional,omitempty" json:"optional,omitzero"`
	SerializationName string    `yaml:"serializationName,omitempty" json:"serializationName,omitempty"`
	DefaultValue      string    `yaml:"defaultValue,omitempty" json:"defaultValue,omitempty"`
}

type indexerInfo struct {
	Name       string         `yaml:"name" json:"name"`
	ReturnType *typeInfo      `yaml:"returnType,omitempty" json:"returnType,omitempty"`
	Parameter  *parameterInfo `yaml:"parameter,omitempty" json:"parameter,omitempty"`
}

type errorMappingInfo struct {
	Code string   `yaml:"code" json:"code"`
	Type typeInfo `yaml:"type" json:"type"`
}

type discriminatorInfo struct {
	PropertyName string            `yaml:"propertyName" json:"propertyName"`
	Mappings     []discriminantMap `yaml:"mappings,omitempty" json:"mappings,omitempty"`
}

type discriminantMap struct {
	Value string   `yaml:"value" json:"value"`
	Type  typeInfo `yaml:"type" json:"type"`
}

type methodInfo struct {
	Name                   string             `yaml:"name" json:"name"`
	Kind                   string             `yaml:"kind" json:"kind"`
	Access                 string             `yaml:"access,omitempty" json:"access,omitempty"`
	Static                 bool               `yaml:"static,omitempty" json:"static,omitzero"`
	HTTPMethod             string             `yaml:"httpMethod,omitempty" json:"httpMethod,omitempty"`
	BaseURL                string             `yaml:"baseUrl,omitempty" json:"baseUrl,omitempty"`
	ReturnType             *typeInfo          `yaml:"returnType,omitempty" json:"returnType,omitempty"`
	Parameters             []parameterInfo    `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	AcceptedResponseTypes  []string           `yaml:"acceptedResponseTypes,omitempty" json:"acceptedResponseTypes,omitempty"`
	RequestBodyContentType string             `yaml:"requestBodyContentType,omitempty" json:"requestBodyContentType,omitempty"`
	ErrorMappings          []errorMappingInfo `yaml:"errorMappings,omitempty" json:"errorMappings,omitempty"`
	Discriminator          *discriminatorInfo `yaml:"discriminator,omitempty" json:"discriminator,omitempty"`
	Description            string             `yaml:"description,omitempty" json:"description,omitempty"`
}

type enumOptionInfo struct {
	Name              string `yaml:"name" json:"name"`
	SerializationName string `yaml:"serializationName" json:"serializationName"`
	Description       string `yaml:"description,omitempty" json:"description,omitempty"`
}

type enumInfo struct {
	Name        string           `yaml:"name" json:"name"`
	Description string           `yaml:"description,omitempty" json:"description,omitempty"`
	Options     []enumOptionInfo `yaml:"options" json:"options"`
}

type composedInfo struct {
	Name          string             `yaml:"name" json:"name"`
	Variant       string             `yaml:"variant" json:"variant"`
	Description   string             `yaml:"description,omitempty" json:"description,omitempty"`
	Members       []typeInfo         `yaml:"members" json:"members"`
	Discriminator *discriminatorInfo `yaml:"discriminator,omitempty" json:"discriminator,omitempty"`
}

func describeType(t *codedom.TypeRef) *typeInfo {
	if t == nil {
		return nil
	}
	info := &typeInfo{Name: t.Name, External: t.IsExternal, Nullable: t.IsNullable}
	if t.CollectionKind != codedom.CollectionNone {
		info.Collection = t.CollectionKind.String()
	}
	if d := t.Definition(); d != nil {
		info.Target = codedom.QualifiedName(d)
	}
	if st := t.State(); st != codedom.TypeResolved {
		info.State = st.String()
	}
	return info
}

func accessName(a codedom.Access) string {
	if a == codedom.AccessPublic {
		return ""
	}
	return a.String()
}

func describeParameter(p *codedom.Parameter) *parameterInfo {
	if p == nil {
		return nil
	}
	return &parameterInfo{
		Name:              p.Name,
		Kind:              p.ParameterKind.String(),
		Type:              describeType(p.Type),
		Optional:          p.Optional,
		SerializationName: p.SerializationName,
		DefaultValue:      p.DefaultValue,
	}
}

func describeDiscriminator(d *codedom.Discriminator) *discriminatorInfo {
	if d == nil {
		return nil
	}
	info := &discriminatorInfo{PropertyName: d.PropertyName}
	for _, m := range d.Mappings() {
		info.Mappings = append(info.Mappings, discriminantMap{Value: m.Value, Type: *describeType(m.Type)})
	}
	return info
}

func describeMethod(m *codedom.Method) methodInfo {
	info := methodInfo{
		Name:                   m.Name,
		Kind:                   m.MethodKind.String(),
		Access:                 accessName(m.Access),
		Static:                 m.IsStatic,
		HTTPMethod:             m.HTTPMethod,
		BaseURL:                m.BaseURL,
		ReturnType:             describeType(m.ReturnType),
		AcceptedResponseTypes:  m.AcceptedResponseTypes,
		RequestBodyContentType: m.RequestBodyContentType,
		Discriminator:          describeDiscriminator(m.Discriminator),
		Description:            m.Description,
	}
	for _, p := range m.Parameters() {
		info.Parameters = append(info.Parameters, *describeParameter(p))
	}
	for _, em := range m.ErrorMappings() {
		info.ErrorMappings = append(info.ErrorMappings, errorMappingInfo{Code: em.Code, Type: *describeType(em.Type)})
	}
	return info
}

func describeClass(c *codedom.Class) classInfo {
	info := classInfo{
		Name:        c.Name,
		Kind:        c.ClassKind.String(),
		Description: c.Description,
		ErrorType:   c.IsErrorType(),
		Base:        describeType(c.BaseType),
	}
	for _, t := range c.Interfaces() {
		info.Interfaces = append(info.Interfaces, *describeType(t))
	}
	for _, member := range c.Members() {
		switch v := member.(type) {
		case *codedom.Property:
			info.Properties = append(info.Properties, propertyInfo{
				Name:              v.Name,
				Kind:              v.PropertyKind.String(),
				Type:              describeType(v.Type),
				Access:            accessName(v.Access),
				SerializationName: v.SerializationName,
				DefaultValue:      v.DefaultValue,
				ReadOnly:          v.ReadOnly,
				Description:       v.Description,
			})
		case *codedom.Indexer:
			info.Indexers = append(info.Indexers, indexerInfo{
				Name:       v.Name,
				ReturnType: describeType(v.ReturnType),
				Parameter:  describeParameter(v.Parameter),
			})
		case *codedom.Method:
			info.Methods = append(info.Methods, describeMethod(v))
		case *codedom.Class:
			info.InnerClasses = append(info.InnerClasses, describeClass(v))
		}
	}
	return info
}

func describeNamespace(ns *codedom.Namespace) namespaceInfo {
	info := namespaceInfo{Namespace: ns.FullName()}
	for _, d := range ns.Declarations() {
		switch v := d.(type) {
		case *codedom.Class:
			info.Classes = append(info.Classes, describeClass(v))
		case *codedom.Enum:
			e := enumInfo{Name: v.Name, Description: v.Description}
			for _, o := range v.Options() {
				e.Options = append(e.Options, enumOptionInfo(o))
			}
			info.Enums = append(info.Enums, e)
		case *codedom.ComposedType:
			ct := composedInfo{
				Name:          v.Name,
				Variant:       v.Variant.String(),
				Description:   v.Description,
				Discriminator: describeDiscriminator(v.Discriminator),
			}
			for _, t := range v.Members() {
				ct.Members = append(ct.Members, *describeType(t))
			}
			info.ComposedTypes = append(info.ComposedTypes, ct)
		}
	}
	return info
}

// ownerPath names the element holding a type reference, for the index.
func ownerPath(e codedom.Element) string {
	if e == nil {
		return ""
	}
	if d, ok := e.(codedom.Declaration); ok {
		return codedom.QualifiedName(d)
	}
	if c := codedom.OwnerClass(e); c != nil {
		return codedom.QualifiedName(c) + "#" + e.SymbolName()
	}
	return e.SymbolName()
}
