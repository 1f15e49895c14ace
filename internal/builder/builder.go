// Package builder turns an OpenAPI document into the codedom model: one
// request builder per URL tree node, model classes, enums and composed types
// for the schemas the operations reference, and a final sweep binding the
// forward references between request builders.
//
// A Builder is safe to reuse; every call to Build works on fresh state.
package builder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/kiotago/internal/codedom"
	"github.com/mark3labs/kiotago/internal/logging"
	"github.com/mark3labs/kiotago/internal/urltree"
)

const (
	modelsNamespaceSegment = "models"
	componentSchemaPrefix  = "#/components/schemas/"

	requestBuilderSuffix     = "RequestBuilder"
	itemRequestBuilderSuffix = "ItemRequestBuilder"
)

// Names of the runtime abstractions the model refers to. They are external
// types: the emitters map them to the target language's runtime library.
const (
	requestAdapterType       = "IRequestAdapter"
	pathParametersType       = "Dictionary<string, object>"
	requestInformationType   = "RequestInformation"
	requestHeadersType       = "RequestHeaders"
	requestOptionsType       = "IList<IRequestOption>"
	cancellationType         = "CancellationToken"
	parseNodeType            = "IParseNode"
	serializationWriterType  = "ISerializationWriter"
	fieldDeserializersType   = "IDictionary<string, Action<IParseNode>>"
	additionalDataType       = "IDictionary<string, object>"
	additionalDataHolderType = "IAdditionalDataHolder"
	backingStoreType         = "IBackingStore"
	backedModelType          = "IBackedModel"
	backingStoreFactoryType  = "IBackingStoreFactory"
	voidType                 = "void"
)

// Builder builds the codedom model of a document.
type Builder struct {
	cfg Config
	log logging.Logger
}

// New validates cfg and returns a Builder.
func New(cfg Config, opts ...Option) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Builder{cfg: cfg, log: logging.NopLogger{}}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Config returns the configuration the builder was created with.
func (b *Builder) Config() Config { return b.cfg }

// Result is the outcome of a successful Build.
type Result struct {
	// Root is the unnamed root namespace.
	Root *codedom.Namespace
	// Client is the root request builder.
	Client *codedom.Class
	// Unresolved lists the type references neither resolver sweep could
	// bind. It is always empty in strict mode.
	Unresolved []*codedom.TypeRef
}

// run holds the state of one Build call.
type run struct {
	cfg Config
	log logging.Logger
	doc *openapi3.T

	baseURL  string
	root     *codedom.Namespace
	clientNS *codedom.Namespace
	modelsNS *codedom.Namespace

	// modelsPrefix is the deepest namespace prefix shared by every
	// dotted component schema id.
	modelsPrefix []string
	// derived maps a component name to the components whose allOf
	// references it.
	derived map[string][]string
}

// Build creates the model for doc. A fatal error discards everything built so
// far: the result is nil whenever err is not.
func (b *Builder) Build(ctx context.Context, doc *openapi3.T) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	if err := ctx.Err(); err != nil {
		return nil, canceled(err)
	}
	baseURL, err := serverURL(doc)
	if err != nil {
		return nil, err
	}
	tree, err := urltree.Build(doc.Paths)
	if err != nil {
		return nil, &BuildError{Code: ConfigError, Message: err.Error(), Cause: err}
	}

	r := &run{
		cfg:     b.cfg,
		log:     b.log,
		doc:     doc,
		baseURL: baseURL,
		root:    codedom.NewRootNamespace(b.cfg.NamespaceSeparator),
	}
	r.clientNS = r.root.AddNamespace(b.cfg.ClientNamespaceName)
	r.modelsNS = r.root.AddNamespace(b.cfg.ClientNamespaceName + b.cfg.NamespaceSeparator + modelsNamespaceSegment)
	r.modelsPrefix = deepestCommonNamespace(componentNames(doc))
	r.derived = inheritanceIndex(doc)

	r.log.Debug("building request builders", "paths", len(doc.Paths), "schemas", len(componentNames(doc)))
	if err := r.createRequestBuilderClass(ctx, r.clientNS, tree); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, canceled(err)
		}
		return nil, err
	}

	unresolved, err := r.resolveTypes()
	if err != nil {
		return nil, err
	}
	return &Result{
		Root:       r.root,
		Client:     r.clientNS.FindClass(b.cfg.ClientClassName),
		Unresolved: unresolved,
	}, nil
}

func canceled(err error) error {
	return &BuildError{Code: CanceledError, Message: "build canceled", Cause: err}
}

// serverURL returns the first server URL without a trailing slash.
func serverURL(doc *openapi3.T) (string, error) {
	for _, s := range doc.Servers {
		if s == nil || strings.TrimSpace(s.URL) == "" {
			continue
		}
		return strings.TrimRight(s.URL, "/"), nil
	}
	return "", &BuildError{Code: MissingServerError, Message: ErrMissingServer.Error(), Cause: ErrMissingServer}
}

func componentNames(doc *openapi3.T) []string {
	if doc.Components == nil {
		return nil
	}
	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// deepestCommonNamespace returns the longest segment-wise prefix, compared
// case-insensitively, shared by the namespaces of every dotted id. The
// namespace of an id is the id without its last segment.
func deepestCommonNamespace(ids []string) []string {
	seen := map[string]struct{}{}
	var namespaces [][]string
	for _, id := range ids {
		i := strings.LastIndex(id, ".")
		if i <= 0 {
			continue
		}
		ns := id[:i]
		if _, dup := seen[strings.ToLower(ns)]; dup {
			continue
		}
		seen[strings.ToLower(ns)] = struct{}{}
		namespaces = append(namespaces, strings.Split(ns, "."))
	}
	if len(namespaces) == 0 {
		return nil
	}
	sort.SliceStable(namespaces, func(i, j int) bool { return len(namespaces[i]) > len(namespaces[j]) })

	prefix := namespaces[0]
	for _, ns := range namespaces[1:] {
		n := 0
		for n < len(prefix) && n < len(ns) && strings.EqualFold(prefix[n], ns[n]) {
			n++
		}
		prefix = prefix[:n]
	}
	return prefix
}

// inheritanceIndex maps each component to the components that reference it
// from their allOf.
func inheritanceIndex(doc *openapi3.T) map[string][]string {
	out := map[string][]string{}
	if doc.Components == nil {
		return out
	}
	for _, name := range componentNames(doc) {
		s := doc.Components.Schemas[name]
		if s == nil || s.Value == nil {
			continue
		}
		for _, member := range s.Value.AllOf {
			if id := referenceID(member); id != "" && id != name {
				out[id] = append(out[id], name)
			}
		}
	}
	return out
}

// referenceID returns the component name a schema reference points to, or ""
// for inline schemas.
func referenceID(ref *openapi3.SchemaRef) string {
	if ref == nil || ref.Ref == "" {
		return ""
	}
	if i := strings.Index(ref.Ref, componentSchemaPrefix); i >= 0 {
		return ref.Ref[i+len(componentSchemaPrefix):]
	}
	return ref.Ref[strings.LastIndex(ref.Ref, "/")+1:]
}

// componentRef returns the component schema named id as a reference, nil
// when the document does not declare it.
func (r *run) componentRef(id string) *openapi3.SchemaRef {
	if r.doc.Components == nil {
		return nil
	}
	s, ok := r.doc.Components.Schemas[id]
	if !ok || s == nil || s.Value == nil {
		return nil
	}
	return &openapi3.SchemaRef{Ref: componentSchemaPrefix + id, Value: s.Value}
}
