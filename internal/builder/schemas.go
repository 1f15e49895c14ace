package builder

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/kiotago/internal/codedom"
	"github.com/mark3labs/kiotago/internal/naming"
	"github.com/mark3labs/kiotago/internal/typemap"
	"github.com/mark3labs/kiotago/internal/urltree"
)

// site is where a schema is referenced from. Inline declarations are named
// after it and placed in its namespace; referenced ones go to the models
// namespace whatever the site.
type site struct {
	node *urltree.Node
	ns   *codedom.Namespace
	name string
	path string
	// bases are the reference ids whose inheritance is being resolved
	// above this call, to stop allOf cycles.
	bases []string
}

func (s site) with(ns *codedom.Namespace, name string) site {
	s.ns, s.name = ns, name
	return s
}

// nested is the site of a schema owned by the one at s, such as a property
// or a composition member. It starts a new inheritance walk.
func (s site) nested(ns *codedom.Namespace, name string) site {
	s = s.with(ns, name)
	s.bases = nil
	return s
}

// resolveSchema returns the type of ref, creating the declarations it needs.
// Declarations are looked up before they are created, which makes repeated
// and cyclic references converge on one declaration.
func (r *run) resolveSchema(ctx context.Context, ref *openapi3.SchemaRef, s site) (*codedom.TypeRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ref == nil || ref.Value == nil {
		return nil, r.unresolvable(s, ref)
	}
	schema := ref.Value

	if id := referenceID(ref); id != "" {
		s = s.with(r.modelsNamespaceFor(id), modelName(id))
	}

	switch {
	case len(schema.AllOf) > 0:
		return r.addModelClass(ctx, ref, s)
	case (len(schema.AnyOf) > 0 || len(schema.OneOf) > 0) && schema.Format == "":
		return r.addComposedType(ctx, ref, s)
	case typemap.IsStringEnum(schema):
		return r.addEnum(s.ns, s.name, schema), nil
	case isObjectLike(schema):
		return r.addModelClass(ctx, ref, s)
	case schema.Type == openapi3.TypeArray:
		return r.collectionOf(ctx, schema, s)
	case schema.Type != "" || schema.Format != "":
		res := typemap.Map(schema, "")
		name := typemap.UntypedNode
		if res.Primitive() {
			name = res.Name
		}
		t := codedom.External(name)
		t.IsNullable = schema.Nullable
		return t, nil
	}
	return nil, r.unresolvable(s, ref)
}

func (r *run) unresolvable(s site, ref *openapi3.SchemaRef) error {
	name := s.name
	if id := referenceID(ref); id != "" {
		name = id
	}
	return &BuildError{
		Code:    UnresolvableSchemaError,
		Message: ErrUnresolvableSchema.Error(),
		Path:    s.path,
		Schema:  name,
		Cause:   ErrUnresolvableSchema,
	}
}

// isObjectLike reports whether schema becomes a model class.
func isObjectLike(schema *openapi3.Schema) bool {
	return schema.Type == openapi3.TypeObject ||
		len(schema.Properties) > 0 ||
		(schema.AdditionalProperties.Schema != nil && schema.AdditionalProperties.Schema.Value != nil && schema.AdditionalProperties.Schema.Value.Type != "")
}

// isEmptySchema reports whether ref carries no shape at all.
func isEmptySchema(ref *openapi3.SchemaRef) bool {
	if ref == nil || ref.Value == nil {
		return true
	}
	s := ref.Value
	return s.Type == "" && s.Format == "" && len(s.Properties) == 0 && len(s.AllOf) == 0 &&
		len(s.AnyOf) == 0 && len(s.OneOf) == 0 && s.Items == nil && len(s.Enum) == 0 &&
		s.AdditionalProperties.Schema == nil
}

// isNullMarker reports whether ref only says "null is allowed", the way a
// nullable branch of an anyOf is usually written.
func isNullMarker(ref *openapi3.SchemaRef) bool {
	if ref == nil || ref.Value == nil || ref.Ref != "" {
		return false
	}
	s := ref.Value
	if len(s.Properties) > 0 || len(s.AllOf) > 0 || len(s.AnyOf) > 0 || len(s.OneOf) > 0 || s.Items != nil {
		return false
	}
	return s.Type == "null" || (s.Nullable && s.Type == "")
}

// modelName is the class name for a component id: its last dotted segment.
func modelName(id string) string {
	if i := strings.LastIndex(id, "."); i >= 0 && i < len(id)-1 {
		id = id[i+1:]
	}
	return naming.UpperFirst(naming.CleanupSymbol(id))
}

// modelsNamespaceFor returns the namespace of the component id: the models
// namespace followed by the id's namespace segments, minus the prefix shared
// by every component and a leading client class name.
func (r *run) modelsNamespaceFor(id string) *codedom.Namespace {
	segments := strings.Split(id, ".")
	segments = segments[:len(segments)-1]
	if len(r.modelsPrefix) > 0 && len(segments) >= len(r.modelsPrefix) {
		shared := true
		for i, p := range r.modelsPrefix {
			if !strings.EqualFold(segments[i], p) {
				shared = false
				break
			}
		}
		if shared {
			segments = segments[len(r.modelsPrefix):]
		}
	}
	if len(segments) > 0 && strings.EqualFold(segments[0], r.cfg.ClientClassName) {
		segments = segments[1:]
	}
	if len(segments) == 0 {
		return r.modelsNS
	}
	parts := []string{r.modelsNS.FullName()}
	for _, seg := range segments {
		if cleaned := naming.CleanupSymbol(seg); cleaned != "" {
			parts = append(parts, cleaned)
		}
	}
	return r.root.AddNamespace(strings.Join(parts, r.cfg.NamespaceSeparator))
}

// collectionOf resolves the items of an array schema. Items of a model type
// make a complex collection, primitive items an array.
func (r *run) collectionOf(ctx context.Context, schema *openapi3.Schema, s site) (*codedom.TypeRef, error) {
	if schema.Items == nil || schema.Items.Value == nil {
		t := codedom.External(typemap.UntypedNode)
		t.CollectionKind = codedom.CollectionArray
		return t, nil
	}
	item, err := r.resolveSchema(ctx, schema.Items, s)
	if err != nil {
		return nil, err
	}
	t := item.Clone()
	if t.IsExternal {
		t.CollectionKind = codedom.CollectionArray
	} else {
		t.CollectionKind = codedom.CollectionComplex
	}
	t.IsNullable = schema.Nullable
	return t, nil
}

// addEnum inserts (or gets) the enum of a string enum schema.
func (r *run) addEnum(ns *codedom.Namespace, name string, schema *openapi3.Schema) *codedom.TypeRef {
	if existing := ns.FindDeclaration(name); existing != nil {
		return nullable(codedom.Ref(existing), schema.Nullable)
	}
	enum := codedom.NewEnum(name)
	enum.Description = schema.Description
	for _, v := range schema.Enum {
		value, ok := v.(string)
		if !ok || value == "" || strings.EqualFold(value, "null") {
			continue
		}
		enum.AddOption(codedom.EnumOption{Name: naming.CleanupSymbol(value), SerializationName: value})
	}
	d, _ := ns.AddEnum(enum)
	return nullable(codedom.Ref(d), schema.Nullable)
}

func nullable(t *codedom.TypeRef, isNullable bool) *codedom.TypeRef {
	t.IsNullable = t.IsNullable || isNullable
	return t
}

// addComposedType resolves anyOf (intersection) and oneOf (union) schemas.
// anyOf maps to Intersection because any subset of its branches may be
// present in a payload, unlike the exactly-one of oneOf.
// A composition of one real branch and a null marker collapses to that
// branch, nullable.
func (r *run) addComposedType(ctx context.Context, ref *openapi3.SchemaRef, s site) (*codedom.TypeRef, error) {
	schema := ref.Value
	members, variant := schema.OneOf, codedom.Union
	if len(schema.AnyOf) > 0 {
		members, variant = schema.AnyOf, codedom.Intersection
	}

	var real openapi3.SchemaRefs
	hasNull := false
	for _, m := range members {
		if isNullMarker(m) {
			hasNull = true
			continue
		}
		real = append(real, m)
	}
	if len(real) == 1 && (hasNull || len(members) == 1) {
		t, err := r.resolveSchema(ctx, real[0], s)
		if err != nil {
			return nil, err
		}
		t = t.Clone()
		t.IsNullable = hasNull || schema.Nullable || t.IsNullable
		return t, nil
	}
	if len(real) == 0 {
		return nil, r.unresolvable(s, ref)
	}

	if existing := s.ns.FindDeclaration(s.name); existing != nil {
		return nullable(codedom.Ref(existing), hasNull || schema.Nullable), nil
	}
	composed := codedom.NewComposedType(s.name, variant)
	composed.Description = schema.Description
	d, added := s.ns.AddComposedType(composed)
	if !added {
		return nullable(codedom.Ref(d), hasNull || schema.Nullable), nil
	}

	for i, m := range real {
		var t *codedom.TypeRef
		var err error
		switch {
		case m.Ref == "" && m.Value != nil && isPrimitiveBranch(m.Value):
			t, err = r.resolveSchema(ctx, m, s)
		default:
			t, err = r.resolveSchema(ctx, m, s.nested(s.ns, s.name+"Member"+strconv.Itoa(i+1)))
		}
		if err != nil {
			return nil, err
		}
		composed.AddMember(t.Clone())
	}

	if prop := discriminatorPropertyName(schema); prop != "" {
		composed.Discriminator = codedom.NewDiscriminator(prop, composed)
		if err := r.addDiscriminatorMappings(ctx, composed.Discriminator, nil, ref, s); err != nil {
			return nil, err
		}
	}
	return nullable(codedom.Ref(composed), hasNull || schema.Nullable), nil
}

// isPrimitiveBranch reports whether a composition member maps to a
// primitive and needs no declaration of its own.
func isPrimitiveBranch(schema *openapi3.Schema) bool {
	if isObjectLike(schema) || typemap.IsStringEnum(schema) || len(schema.AllOf) > 0 || len(schema.AnyOf) > 0 || len(schema.OneOf) > 0 {
		return false
	}
	if schema.Type == openapi3.TypeArray {
		return schema.Items != nil && schema.Items.Value != nil && isPrimitiveBranch(schema.Items.Value)
	}
	return typemap.Map(schema, "").Primitive()
}

// addModelClass inserts (or gets) the model class of an object or allOf
// schema. The first referenced allOf member is the base class; the
// properties of the other members, referenced or inline, are merged into
// the class.
func (r *run) addModelClass(ctx context.Context, ref *openapi3.SchemaRef, s site) (*codedom.TypeRef, error) {
	schema := ref.Value
	if existing := s.ns.FindDeclaration(s.name); existing != nil {
		return nullable(codedom.Ref(existing), schema.Nullable), nil
	}
	id := referenceID(ref)

	var base *codedom.Class
	var baseMember *openapi3.SchemaRef
	for _, member := range schema.AllOf {
		memberID := referenceID(member)
		if memberID == "" {
			continue
		}
		baseMember = member
		if memberID == id || contains(s.bases, memberID) {
			r.log.Warn("ignoring circular inheritance", "schema", id, "base", memberID)
			break
		}
		inner := s
		inner.bases = append(append([]string(nil), s.bases...), id)
		t, err := r.resolveSchema(ctx, member, inner)
		if err != nil {
			return nil, err
		}
		if c, ok := t.Definition().(*codedom.Class); ok {
			base = c
		}
		break
	}
	// Resolving the base may have created this class already.
	if existing := s.ns.FindDeclaration(s.name); existing != nil {
		return nullable(codedom.Ref(existing), schema.Nullable), nil
	}

	class := codedom.NewClass(s.name, codedom.ClassKindModel)
	class.Description = schema.Description
	if class.Description == "" {
		class.Description = schema.Title
	}
	if base != nil {
		class.BaseType = codedom.Ref(base)
	}
	r.addSerializationMembers(class, schema)

	d, added := s.ns.AddClass(class)
	if !added {
		return nullable(codedom.Ref(d), schema.Nullable), nil
	}

	for _, member := range schema.AllOf {
		if memberID := referenceID(member); memberID != "" && member != baseMember {
			r.log.Warn("merging properties of additional allOf reference", "schema", class.Name, "member", memberID)
		}
	}
	props := collectAllProperties(schema, baseMember)
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, wire := range names {
		propRef := props[wire]
		t, err := r.resolveSchema(ctx, propRef, s.nested(s.ns, class.Name+"_"+naming.CleanupSymbol(wire)))
		if err != nil {
			return nil, err
		}
		t = t.Clone()
		name := naming.CleanupSymbol(wire)
		prop := codedom.NewProperty(name, codedom.PropertyKindCustom, t)
		if name != wire {
			prop.SerializationName = wire
		}
		if propRef.Value != nil {
			prop.Description = propRef.Value.Description
			prop.ReadOnly = propRef.Value.ReadOnly
			prop.DefaultValue = defaultValue(propRef.Value.Default)
		}
		if !class.AddProperty(prop) {
			r.log.Warn("ignoring duplicate property", "schema", class.Name, "name", name)
		}
	}

	if prop := discriminatorPropertyName(schema); prop != "" {
		factory := class.MethodsOfKind(codedom.MethodKindFactory)[0]
		factory.Discriminator = codedom.NewDiscriminator(prop, factory)
		if err := r.addDiscriminatorMappings(ctx, factory.Discriminator, class, ref, s); err != nil {
			return nil, err
		}
	}
	return nullable(codedom.Ref(class), schema.Nullable), nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func defaultValue(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return strconv.Quote(d)
	default:
		return fmt.Sprint(d)
	}
}

// collectAllProperties returns the properties of schema and of its allOf
// members, skipping base and everything it inherits. The schema's own
// properties come first, then the members in declaration order; the first
// declaration of a name wins.
func collectAllProperties(schema *openapi3.Schema, base *openapi3.SchemaRef) map[string]*openapi3.SchemaRef {
	out := map[string]*openapi3.SchemaRef{}
	seen := map[*openapi3.Schema]bool{}
	var inherited func(*openapi3.SchemaRef)
	inherited = func(ref *openapi3.SchemaRef) {
		if ref == nil || ref.Value == nil || ref.Value == schema || seen[ref.Value] {
			return
		}
		seen[ref.Value] = true
		for _, member := range ref.Value.AllOf {
			inherited(member)
		}
	}
	inherited(base)
	var collect func(*openapi3.Schema)
	collect = func(s *openapi3.Schema) {
		if seen[s] {
			return
		}
		seen[s] = true
		for name, p := range s.Properties {
			if _, ok := out[name]; !ok {
				out[name] = p
			}
		}
		for _, member := range s.AllOf {
			if member == nil || member.Value == nil {
				continue
			}
			collect(member.Value)
		}
	}
	collect(schema)
	return out
}

// additionalPropertiesAllowed follows the OpenAPI default: allowed unless
// additionalProperties is false.
func additionalPropertiesAllowed(schema *openapi3.Schema) bool {
	ap := schema.AdditionalProperties
	return ap.Has == nil || *ap.Has || ap.Schema != nil
}

// addSerializationMembers adds the factory, the (de)serializer and the
// additional data and backing store members. It runs before the class is
// inserted so that a class found in a namespace always has them.
func (r *run) addSerializationMembers(class *codedom.Class, schema *openapi3.Schema) {
	factory := codedom.NewMethod("CreateFromDiscriminatorValue", codedom.MethodKindFactory, codedom.Ref(class))
	factory.IsStatic = true
	factory.Description = "Creates a new instance of the appropriate class based on discriminator value"
	parseNode := codedom.NewParameter("parseNode", codedom.ParameterKindParseNode, codedom.External(parseNodeType))
	parseNode.Description = "The parse node to use to read the discriminator value and create the object"
	factory.AddParameter(parseNode)
	class.AddMethod(factory)

	deserializer := codedom.NewMethod("GetFieldDeserializers", codedom.MethodKindDeserializer, codedom.External(fieldDeserializersType))
	deserializer.Description = "The deserialization information for the current model"
	class.AddMethod(deserializer)

	serializer := codedom.NewMethod("Serialize", codedom.MethodKindSerializer, codedom.External(voidType))
	serializer.Description = "Serializes information the current object"
	writer := codedom.NewParameter("writer", codedom.ParameterKindSerializer, codedom.External(serializationWriterType))
	writer.Description = "Serialization writer to use to serialize this model"
	serializer.AddParameter(writer)
	class.AddMethod(serializer)

	ancestors := class.InheritanceChain()
	if r.cfg.IncludeAdditionalData && additionalPropertiesAllowed(schema) && !anyHasProperty(ancestors, codedom.PropertyKindAdditionalData) {
		data := codedom.NewProperty("AdditionalData", codedom.PropertyKindAdditionalData, codedom.External(additionalDataType))
		data.DefaultValue = "new Dictionary<string, object>()"
		data.Description = "Stores additional data not described in the OpenAPI description found when deserializing. Can be used for serialization as well."
		class.AddProperty(data)
		class.AddInterface(codedom.External(additionalDataHolderType))
	}
	if r.cfg.UsesBackingStore && !anyHasProperty(ancestors, codedom.PropertyKindBackingStore) {
		store := codedom.NewProperty("BackingStore", codedom.PropertyKindBackingStore, codedom.External(backingStoreType))
		store.ReadOnly = true
		store.Description = "Stores model information."
		class.AddProperty(store)
		class.AddInterface(codedom.External(backedModelType))
	}
}

func anyHasProperty(classes []*codedom.Class, kind codedom.PropertyKind) bool {
	for _, c := range classes {
		if c.FindPropertyOfKind(kind) != nil {
			return true
		}
	}
	return false
}
