package builder

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/kiotago/internal/codedom"
	"github.com/mark3labs/kiotago/internal/naming"
	"github.com/mark3labs/kiotago/internal/typemap"
	"github.com/mark3labs/kiotago/internal/urltree"
)

var (
	successCodes   = []string{"200", "201", "202", "203", "206", "2XX"}
	noContentCodes = []string{"201", "202", "204", "205"}
)

const (
	plainTextMimeType   = "text/plain"
	octetStreamMimeType = "application/octet-stream"
)

// createOperationMethods adds the executor, the generator and their helper
// classes for one operation bound to node.
func (r *run) createOperationMethods(ctx context.Context, node *urltree.Node, op urltree.Operation, parent *codedom.Class) error {
	for _, existing := range parent.MethodsOfKind(codedom.MethodKindRequestExecutor) {
		if existing.HTTPMethod == op.Method {
			r.log.Warn("ignoring operation already built by an equivalent path", "path", node.Path, "method", op.Method, "class", parent.Name)
			return nil
		}
	}

	ns := codedom.OwnerNamespace(parent)
	opName := naming.UpperFirst(strings.ToLower(op.Method))
	operation := op.Operation

	queryClass, err := r.createQueryParametersClass(ctx, node, op, parent, ns, opName)
	if err != nil {
		return err
	}
	config := r.createRequestConfigurationClass(parent, opName, queryClass)

	returnType, accepted, err := r.responseType(ctx, node, operation, ns, opName)
	if err != nil {
		return err
	}
	body, contentType, err := r.requestBody(ctx, node, operation, ns, opName)
	if err != nil {
		return err
	}
	headers := r.headerParameters(node, operation)

	exec := codedom.NewMethod(opName, codedom.MethodKindRequestExecutor, returnType)
	exec.HTTPMethod = op.Method
	exec.Description = operationDescription(operation, op.Method, node)
	exec.AcceptedResponseTypes = accepted
	gen := codedom.NewMethod("To"+opName+"RequestInformation", codedom.MethodKindRequestGenerator, codedom.External(requestInformationType))
	gen.HTTPMethod = op.Method
	gen.Description = exec.Description
	gen.AcceptedResponseTypes = accepted

	for _, m := range []*codedom.Method{exec, gen} {
		if body != nil {
			m.RequestBodyContentType = body.contentType
			m.AddParameter(body.param.Clone())
		}
		if contentType != nil {
			m.AddParameter(contentType.Clone())
		}
		cfg := codedom.NewParameter("requestConfiguration", codedom.ParameterKindRequestConfiguration, codedom.Ref(config))
		cfg.Optional = true
		cfg.Description = "Configuration for the request such as headers, query parameters, and middleware options."
		m.AddParameter(cfg)
		for _, h := range headers {
			m.AddParameter(h.Clone())
		}
	}

	cancel := codedom.NewParameter("cancellationToken", codedom.ParameterKindCancellation, codedom.External(cancellationType))
	cancel.Optional = true
	cancel.Description = "Cancellation token to use when cancelling requests"
	exec.AddParameter(cancel)

	if err := r.addErrorMappings(ctx, node, operation, exec, ns, opName); err != nil {
		return err
	}

	parent.AddMethod(exec)
	parent.AddMethod(gen)
	return nil
}

func operationDescription(op *openapi3.Operation, method string, node *urltree.Node) string {
	if op.Summary != "" {
		return op.Summary
	}
	if op.Description != "" {
		return op.Description
	}
	return method + " " + displayPath(node)
}

// createQueryParametersClass builds the <Class><Method>QueryParameters inner
// class. It returns nil when the operation takes no query parameters.
func (r *run) createQueryParametersClass(ctx context.Context, node *urltree.Node, op urltree.Operation, parent *codedom.Class, ns *codedom.Namespace, opName string) (*codedom.Class, error) {
	params := node.OperationQueryParameters(op.Operation)
	if len(params) == 0 {
		return nil, nil
	}
	qc := codedom.NewClass(parent.Name+opName+"QueryParameters", codedom.ClassKindQueryParameters)
	qc.Description = operationDescription(op.Operation, op.Method, node)
	for _, p := range params {
		wire := p.Value.Name
		name := urltree.SanitizeParameterNameForCodeSymbols(wire)
		t, err := r.queryParameterType(ctx, node, ns, opName, p.Value)
		if err != nil {
			return nil, err
		}
		prop := codedom.NewProperty(name, codedom.PropertyKindQueryParameter, t)
		prop.Description = p.Value.Description
		if escaped := urltree.SanitizeParameterNameForURLTemplate(wire); escaped != name {
			prop.SerializationName = escaped
		}
		if !qc.AddProperty(prop) {
			r.log.Warn("ignoring duplicate parameter", "path", node.Path, "class", qc.Name, "name", name)
		}
	}
	got, _ := parent.AddInnerClass(qc)
	return got, nil
}

func (r *run) queryParameterType(ctx context.Context, node *urltree.Node, ns *codedom.Namespace, opName string, p *openapi3.Parameter) (*codedom.TypeRef, error) {
	if p.Schema == nil || p.Schema.Value == nil {
		return codedom.External(typemap.String), nil
	}
	target := p.Schema
	collection := codedom.CollectionNone
	if target.Value.Type == openapi3.TypeArray && target.Value.Items != nil && target.Value.Items.Value != nil {
		target = target.Value.Items
		collection = codedom.CollectionArray
	}

	var t *codedom.TypeRef
	switch {
	case target.Ref != "":
		resolved, err := r.resolveSchema(ctx, target, site{node: node, ns: ns, name: naming.UpperFirst(urltree.SanitizeParameterNameForCodeSymbols(p.Name)), path: node.Path})
		if err != nil {
			return nil, err
		}
		t = resolved.Clone()
	case typemap.IsStringEnum(target.Value):
		name := opName + naming.UpperFirst(urltree.SanitizeParameterNameForCodeSymbols(p.Name)) + "QueryParameterType"
		t = r.addEnum(ns, name, target.Value)
	default:
		res := typemap.Map(target.Value, "")
		name := typemap.String
		if res.Primitive() {
			name = res.Name
		}
		t = codedom.External(name)
	}
	if collection != codedom.CollectionNone {
		t.CollectionKind = collection
	}
	return t, nil
}

// createRequestConfigurationClass builds the <Class><Method>RequestConfiguration
// inner class carrying headers, options and the query parameters.
func (r *run) createRequestConfigurationClass(parent *codedom.Class, opName string, queryClass *codedom.Class) *codedom.Class {
	config := codedom.NewClass(parent.Name+opName+"RequestConfiguration", codedom.ClassKindRequestConfiguration)
	config.Description = "Configuration for the request such as headers, query parameters, and middleware options."

	headers := codedom.NewProperty("Headers", codedom.PropertyKindHeaders, codedom.External(requestHeadersType))
	headers.Description = "Request headers"
	headers.DefaultValue = "new " + requestHeadersType + "()"
	config.AddProperty(headers)

	options := codedom.NewProperty("Options", codedom.PropertyKindOptions, codedom.External(requestOptionsType))
	options.Description = "Request options"
	config.AddProperty(options)

	if queryClass != nil {
		query := codedom.NewProperty("QueryParameters", codedom.PropertyKindQueryParameters, codedom.Ref(queryClass))
		query.Description = "Request query parameters"
		query.DefaultValue = "new " + queryClass.Name + "()"
		config.AddProperty(query)
	}
	got, _ := parent.AddInnerClass(config)
	return got
}

// headerParameters returns the header parameters of the operation,
// operation-level declarations first.
func (r *run) headerParameters(node *urltree.Node, op *openapi3.Operation) []*codedom.Parameter {
	var out []*codedom.Parameter
	seen := map[string]struct{}{}
	add := func(params openapi3.Parameters) {
		for _, p := range params {
			if p == nil || p.Value == nil || p.Value.In != openapi3.ParameterInHeader {
				continue
			}
			name := urltree.SanitizeParameterNameForCodeSymbols(p.Value.Name)
			if _, dup := seen[strings.ToLower(name)]; dup {
				r.log.Warn("ignoring duplicate parameter", "path", node.Path, "name", p.Value.Name)
				continue
			}
			seen[strings.ToLower(name)] = struct{}{}
			param := codedom.NewParameter(name, codedom.ParameterKindHeader, r.parameterType(p.Value))
			param.Optional = !p.Value.Required
			param.SerializationName = p.Value.Name
			param.Description = p.Value.Description
			out = append(out, param)
		}
	}
	add(op.Parameters)
	if node.PathItem != nil {
		add(node.PathItem.Parameters)
	}
	return out
}

// structuredContent picks the media type of content to model, following the
// configured preference order. It returns nil when none is structured.
func (r *run) structuredContent(content openapi3.Content) (string, *openapi3.MediaType) {
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, preferred := range r.cfg.StructuredMimeTypes {
		for _, k := range keys {
			if mt := content[k]; mt != nil && mt.Schema != nil && mediaTypeMatches(k, preferred) {
				return k, mt
			}
		}
	}
	return "", nil
}

// mediaTypeMatches compares a declared media type, parameters ignored, with a
// preferred one. Structured syntax suffixes match their base type:
// application/vnd.api+json matches application/json.
func mediaTypeMatches(declared, preferred string) bool {
	base := strings.ToLower(strings.TrimSpace(strings.SplitN(declared, ";", 2)[0]))
	want := strings.ToLower(preferred)
	if base == want {
		return true
	}
	plus := strings.LastIndex(base, "+")
	slash := strings.Index(want, "/")
	if plus < 0 || slash < 0 {
		return false
	}
	return strings.HasPrefix(base, want[:slash+1]) && base[plus+1:] == want[slash+1:]
}

func response(responses openapi3.Responses, code string) *openapi3.Response {
	for k, v := range responses {
		if strings.EqualFold(k, code) && v != nil {
			return v.Value
		}
	}
	return nil
}

// responseType resolves the executor return type from the first success
// response with a structured schema.
func (r *run) responseType(ctx context.Context, node *urltree.Node, op *openapi3.Operation, ns *codedom.Namespace, opName string) (*codedom.TypeRef, []string, error) {
	var accepted []string
	for _, preferred := range r.cfg.StructuredMimeTypes {
		for _, code := range successCodes {
			resp := response(op.Responses, code)
			if resp == nil {
				continue
			}
			if hasMediaType(resp.Content, preferred) {
				accepted = append(accepted, preferred)
				break
			}
		}
	}

	for _, code := range successCodes {
		resp := response(op.Responses, code)
		if resp == nil {
			continue
		}
		_, mt := r.structuredContent(resp.Content)
		if mt == nil || isEmptySchema(mt.Schema) {
			continue
		}
		t, err := r.resolveSchema(ctx, mt.Schema, site{node: node, ns: ns, name: node.ClassName("", "", opName+"Response"), path: node.Path})
		return t, accepted, err
	}

	for _, code := range noContentCodes {
		if response(op.Responses, code) != nil {
			return codedom.External(voidType), accepted, nil
		}
	}
	for _, code := range successCodes {
		if resp := response(op.Responses, code); resp != nil && hasMediaType(resp.Content, plainTextMimeType) {
			return codedom.External(typemap.String), accepted, nil
		}
	}
	return codedom.External(typemap.Binary), accepted, nil
}

func hasMediaType(content openapi3.Content, mime string) bool {
	for k := range content {
		if mediaTypeMatches(k, mime) {
			return true
		}
	}
	return false
}

type requestBody struct {
	param       *codedom.Parameter
	contentType string
}

// requestBody resolves the body parameter. Bodies without a structured schema
// are binary; when several media types are offered the caller passes the
// content type explicitly.
func (r *run) requestBody(ctx context.Context, node *urltree.Node, op *openapi3.Operation, ns *codedom.Namespace, opName string) (*requestBody, *codedom.Parameter, error) {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, nil, nil
	}
	rb := op.RequestBody.Value

	var t *codedom.TypeRef
	var contentType string
	var contentTypeParam *codedom.Parameter
	if mime, mt := r.structuredContent(rb.Content); mt != nil && !isEmptySchema(mt.Schema) {
		resolved, err := r.resolveSchema(ctx, mt.Schema, site{node: node, ns: ns, name: node.ClassName("", "", opName+"RequestBody"), path: node.Path})
		if err != nil {
			return nil, nil, err
		}
		t = resolved
		contentType = mime
	} else {
		t = codedom.External(typemap.Binary)
		keys := make([]string, 0, len(rb.Content))
		for k := range rb.Content {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		switch len(keys) {
		case 0:
			contentType = octetStreamMimeType
		case 1:
			contentType = keys[0]
		default:
			contentTypeParam = codedom.NewParameter("contentType", codedom.ParameterKindRequestBodyContentType, codedom.External(typemap.String))
			contentTypeParam.Description = "The request body content type."
		}
	}

	param := codedom.NewParameter("body", codedom.ParameterKindRequestBody, t)
	param.Optional = !rb.Required
	param.Description = rb.Description
	if param.Description == "" {
		param.Description = "The request body"
	}
	return &requestBody{param: param, contentType: contentType}, contentTypeParam, nil
}

// isErrorStatusCode reports whether code is 400-599 or a 4XX/5XX wildcard.
func isErrorStatusCode(code string) bool {
	if strings.EqualFold(code, "4XX") || strings.EqualFold(code, "5XX") {
		return true
	}
	n, err := strconv.Atoi(code)
	return err == nil && n >= 400 && n < 600
}

// addErrorMappings maps the declared error responses to error classes. The
// default response covers 4XX and 5XX when those are not declared.
func (r *run) addErrorMappings(ctx context.Context, node *urltree.Node, op *openapi3.Operation, exec *codedom.Method, ns *codedom.Namespace, opName string) error {
	codes := make([]string, 0, len(op.Responses))
	for code := range op.Responses {
		if isErrorStatusCode(code) {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)

	mapCode := func(code string, resp *openapi3.Response, targets ...string) error {
		if resp == nil {
			return nil
		}
		_, mt := r.structuredContent(resp.Content)
		if mt == nil || isEmptySchema(mt.Schema) {
			return nil
		}
		suffix := strings.ToUpper(code)
		if code == "default" {
			suffix = "Default"
		}
		t, err := r.resolveSchema(ctx, mt.Schema, site{node: node, ns: ns, name: node.ClassName("", "", opName+suffix+"Error"), path: node.Path})
		if err != nil {
			return err
		}
		class, ok := t.Definition().(*codedom.Class)
		if !ok || t.CollectionKind != codedom.CollectionNone {
			r.log.Debug("error response is not a model class", "path", node.Path, "code", code, "type", t.Name)
			return nil
		}
		class.MarkErrorType()
		for _, target := range targets {
			if exec.HasErrorMapping(target) {
				continue
			}
			exec.AddErrorMapping(target, codedom.Ref(class))
		}
		return nil
	}

	for _, code := range codes {
		if err := mapCode(code, response(op.Responses, code), code); err != nil {
			return err
		}
	}
	if def := op.Responses.Default(); def != nil {
		if err := mapCode("default", def.Value, "4XX", "5XX"); err != nil {
			return err
		}
	}
	return nil
}
