package builder

import (
	"context"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/yosida95/uritemplate/v3"
	"golang.org/x/sync/errgroup"

	"github.com/mark3labs/kiotago/internal/codedom"
	"github.com/mark3labs/kiotago/internal/naming"
	"github.com/mark3labs/kiotago/internal/typemap"
	"github.com/mark3labs/kiotago/internal/urltree"
)

// createRequestBuilderClass builds the request builder of node in ns, then
// the request builders of its children, siblings concurrently.
func (r *run) createRequestBuilderClass(ctx context.Context, ns *codedom.Namespace, node *urltree.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	class := r.requestBuilderClass(ns, node)

	indexerAssigned := false
	for _, child := range node.SortedChildren() {
		childClass := requestBuilderName(child)
		switch {
		case child.IsSingleSimpleParameter() && !indexerAssigned:
			indexerAssigned = true
			class.AddIndexer(r.indexer(child, childClass))
		case child.IsSingleSimpleParameter() || child.IsComplexMultipleParameters():
			class.AddMethod(r.builderWithParameters(child, childClass))
		default:
			prop := codedom.NewProperty(child.NavigationName(""), codedom.PropertyKindRequestBuilder, codedom.Forward(childClass))
			prop.ReadOnly = true
			prop.Description = "The " + child.Segment + " property"
			if !class.AddProperty(prop) {
				r.log.Warn("ignoring duplicate navigation property", "path", child.Path, "name", prop.Name)
			}
		}
	}

	for _, op := range node.Operations() {
		if err := r.createOperationMethods(ctx, node, op, class); err != nil {
			return err
		}
	}
	r.createURLManagement(class, node)

	g, gctx := errgroup.WithContext(ctx)
	for _, group := range r.childGroups(node) {
		g.Go(func() error {
			for _, child := range group.nodes {
				if err := r.createRequestBuilderClass(gctx, group.ns, child); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// builderGroup holds the children of a node that produce the same request
// builder class.
type builderGroup struct {
	ns    *codedom.Namespace
	nodes []*urltree.Node
}

// childGroups gathers the children of node by target namespace and class
// name. Segments differing only in case or punctuation share a group and are
// built one after the other in segment order, so the first template wins.
func (r *run) childGroups(node *urltree.Node) []*builderGroup {
	var groups []*builderGroup
	byKey := map[string]*builderGroup{}
	for _, child := range node.SortedChildren() {
		ns := r.root.AddNamespace(child.NamespaceFromPath(r.cfg.ClientNamespaceName, r.cfg.NamespaceSeparator))
		k := strings.ToLower(ns.FullName() + "#" + requestBuilderName(child))
		group, ok := byKey[k]
		if !ok {
			group = &builderGroup{ns: ns}
			byKey[k] = group
			groups = append(groups, group)
		}
		group.nodes = append(group.nodes, child)
	}
	return groups
}

func requestBuilderName(node *urltree.Node) string {
	if node.IsSingleSimpleParameter() {
		return node.ClassName("", "", itemRequestBuilderSuffix)
	}
	return node.ClassName("", "", requestBuilderSuffix)
}

// requestBuilderClass inserts (or gets) the request builder of node. Two
// templates may map to the same class, in which case their members merge.
func (r *run) requestBuilderClass(ns *codedom.Namespace, node *urltree.Node) *codedom.Class {
	name := r.cfg.ClientClassName
	if !node.IsRoot() {
		name = requestBuilderName(node)
	}
	class := codedom.NewClass(name, codedom.ClassKindRequestBuilder)
	if node.PathItem != nil {
		class.Description = node.PathItem.Description
		if class.Description == "" {
			class.Description = node.PathItem.Summary
		}
	}
	if class.Description == "" {
		class.Description = "Builds and executes requests for operations under " + displayPath(node)
	}
	d, added := ns.AddClass(class)
	if existing, ok := d.(*codedom.Class); ok && !added {
		r.log.Debug("merging request builder", "path", node.Path, "name", name)
		return existing
	}
	if !added {
		r.log.Warn("request builder name taken by another declaration", "path", node.Path, "name", name)
		class.Name += "Builder"
		ns.AddClass(class)
	}
	return class
}

func displayPath(node *urltree.Node) string {
	if node.Path == "" {
		return "/"
	}
	return node.Path
}

func (r *run) indexer(child *urltree.Node, childClass string) *codedom.Indexer {
	name := urltree.ParameterName(child.Segment)
	param := r.pathParameter(child, name, findPathParameter(child, name))
	ix := codedom.NewIndexer("By"+naming.UpperFirst(urltree.SanitizeParameterNameForCodeSymbols(name)), codedom.Forward(childClass), param)
	ix.Description = "Gets an item from the " + child.Path + " collection"
	return ix
}

func (r *run) builderWithParameters(child *urltree.Node, childClass string) *codedom.Method {
	m := codedom.NewMethod(child.NavigationName(""), codedom.MethodKindRequestBuilderWithParameters, codedom.Forward(childClass))
	m.Description = "Provides operations to call the " + child.Segment + " segment"
	for _, p := range segmentParameters(child) {
		m.AddParameter(r.pathParameter(child, p.Name, p))
	}
	return m
}

// segmentParameters returns the path parameters named by node's own segment.
func segmentParameters(node *urltree.Node) []*openapi3.Parameter {
	if node.IsSingleSimpleParameter() {
		name := urltree.ParameterName(node.Segment)
		return []*openapi3.Parameter{findPathParameter(node, name)}
	}
	var out []*openapi3.Parameter
	for _, p := range node.PathParametersForCurrentSegment() {
		out = append(out, p.Value)
	}
	return out
}

// findPathParameter looks the path parameter up on node and, when node binds
// no path item, on its descendants. It returns a string parameter named name
// when nothing declares it.
func findPathParameter(node *urltree.Node, name string) *openapi3.Parameter {
	var found *openapi3.Parameter
	node.Walk(func(n *urltree.Node) {
		if found == nil {
			found = n.PathParameter(name)
		}
	})
	if found == nil {
		found = &openapi3.Parameter{Name: name, In: openapi3.ParameterInPath, Required: true, Schema: openapi3.NewStringSchema().NewRef()}
	}
	return found
}

func (r *run) pathParameter(node *urltree.Node, fallbackName string, p *openapi3.Parameter) *codedom.Parameter {
	wire := fallbackName
	if p != nil && p.Name != "" {
		wire = p.Name
	}
	param := codedom.NewParameter(urltree.SanitizeParameterNameForCodeSymbols(wire), codedom.ParameterKindPath, r.parameterType(p))
	param.SerializationName = urltree.SanitizeParameterNameForURLTemplate(wire)
	if p != nil {
		param.Description = p.Description
	}
	if param.Description == "" {
		param.Description = "Unique identifier of the item"
	}
	return param
}

// parameterType maps a parameter schema to a primitive, string when it has
// none.
func (r *run) parameterType(p *openapi3.Parameter) *codedom.TypeRef {
	if p == nil || p.Schema == nil || p.Schema.Value == nil {
		return codedom.External(typemap.String)
	}
	schema := p.Schema.Value
	res := typemap.Map(schema, "")
	if !res.Primitive() {
		return codedom.External(typemap.String)
	}
	t := codedom.External(res.Name)
	if schema.Type == openapi3.TypeArray {
		t.CollectionKind = codedom.CollectionArray
	}
	return t
}

// createURLManagement adds the members every request builder carries: the
// URL template, the request adapter, the path parameters and constructors.
func (r *run) createURLManagement(class *codedom.Class, node *urltree.Node) {
	template := node.URLTemplate()
	if _, err := uritemplate.New(template); err != nil {
		r.log.Warn("invalid url template", "path", node.Path, "template", template, "error", err)
	}
	urlTemplate := codedom.NewProperty("urlTemplate", codedom.PropertyKindURLTemplate, codedom.External(typemap.String))
	urlTemplate.Access = codedom.AccessPrivate
	urlTemplate.ReadOnly = true
	urlTemplate.DefaultValue = strconv.Quote(template)
	urlTemplate.Description = "Url template to use to build the URL for the current request builder"
	class.AddProperty(urlTemplate)

	adapter := codedom.NewProperty("requestAdapter", codedom.PropertyKindRequestAdapter, codedom.External(requestAdapterType))
	adapter.Access = codedom.AccessPrivate
	adapter.ReadOnly = true
	adapter.Description = "The request adapter to use to execute the requests."
	class.AddProperty(adapter)

	pathParams := codedom.NewProperty("pathParameters", codedom.PropertyKindPathParameters, codedom.External(pathParametersType))
	pathParams.Access = codedom.AccessPrivate
	pathParams.ReadOnly = true
	pathParams.DefaultValue = "new " + pathParametersType + "()"
	pathParams.Description = "Path parameters for the request"
	class.AddProperty(pathParams)

	if len(class.MethodsOfKind(codedom.MethodKindConstructor, codedom.MethodKindClientConstructor)) > 0 {
		return
	}

	if node.IsRoot() {
		ctor := codedom.NewMethod("constructor", codedom.MethodKindClientConstructor, codedom.External(voidType))
		ctor.BaseURL = r.baseURL
		ctor.Description = "Instantiates a new " + class.Name + " and sets the default values."
		adapterParam := codedom.NewParameter("requestAdapter", codedom.ParameterKindRequestAdapter, codedom.External(requestAdapterType))
		adapterParam.Description = "The request adapter to use to execute the requests."
		ctor.AddParameter(adapterParam)
		if r.cfg.UsesBackingStore {
			store := codedom.NewParameter("backingStore", codedom.ParameterKindBackingStore, codedom.External(backingStoreFactoryType))
			store.Optional = true
			store.Description = "The backing store to use for the models."
			ctor.AddParameter(store)
		}
		class.AddMethod(ctor)
		return
	}

	ctor := codedom.NewMethod("constructor", codedom.MethodKindConstructor, codedom.External(voidType))
	ctor.Description = "Instantiates a new " + class.Name + " and sets the default values."
	pp := codedom.NewParameter("pathParameters", codedom.ParameterKindPathParameters, codedom.External(pathParametersType))
	pp.Description = "Path parameters for the request"
	ctor.AddParameter(pp)
	adapterParam := codedom.NewParameter("requestAdapter", codedom.ParameterKindRequestAdapter, codedom.External(requestAdapterType))
	adapterParam.Description = "The request adapter to use to execute the requests."
	ctor.AddParameter(adapterParam)
	for _, p := range segmentParameters(node) {
		param := r.pathParameter(node, "", p)
		param.Optional = true
		ctor.AddParameter(param)
	}
	class.AddMethod(ctor)

	raw := ctor.Clone()
	raw.MethodKind = codedom.MethodKindRawURLConstructor
	raw.RemoveParametersOfKind(codedom.ParameterKindPathParameters, codedom.ParameterKindPath)
	rawURL := codedom.NewParameter("rawUrl", codedom.ParameterKindRawURL, codedom.External(typemap.String))
	rawURL.Description = "The raw URL to use for the request builder."
	raw.AddParameter(rawURL)
	class.AddMethod(raw)

	if node.HasOperations() {
		with := codedom.NewMethod("WithUrl", codedom.MethodKindRawURLBuilder, codedom.Ref(class))
		with.Description = "Returns a request builder with the provided arbitrary URL. Using this method means any other path or query parameters are ignored."
		withParam := codedom.NewParameter("rawUrl", codedom.ParameterKindRawURL, codedom.External(typemap.String))
		withParam.Description = "The raw URL to use for the request builder."
		with.AddParameter(withParam)
		class.AddMethod(with)
	}
}
