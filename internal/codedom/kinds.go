package codedom

// ElementKind identifies the category of an IR node.
type ElementKind int

const (
	KindNamespace ElementKind = iota
	KindClass
	KindEnum
	KindComposedType
	KindProperty
	KindIndexer
	KindMethod
	KindParameter
)

// String returns the string representation of the element kind.
func (k ElementKind) String() string {
	switch k {
	case KindNamespace:
		return "Namespace"
	case KindClass:
		return "Class"
	case KindEnum:
		return "Enum"
	case KindComposedType:
		return "ComposedType"
	case KindProperty:
		return "Property"
	case KindIndexer:
		return "Indexer"
	case KindMethod:
		return "Method"
	case KindParameter:
		return "Parameter"
	default:
		return "Unknown"
	}
}

// ClassKind is the role a class plays in the SDK.
type ClassKind int

const (
	ClassKindRequestBuilder ClassKind = iota
	ClassKindModel
	ClassKindQueryParameters
	ClassKindRequestConfiguration
)

func (k ClassKind) String() string {
	switch k {
	case ClassKindRequestBuilder:
		return "RequestBuilder"
	case ClassKindModel:
		return "Model"
	case ClassKindQueryParameters:
		return "QueryParameters"
	case ClassKindRequestConfiguration:
		return "RequestConfiguration"
	default:
		return "Unknown"
	}
}

// PropertyKind is the role a property plays.
type PropertyKind int

const (
	PropertyKindCustom PropertyKind = iota
	PropertyKindRequestBuilder
	PropertyKindPathParameters
	PropertyKindQueryParameter
	PropertyKindQueryParameters
	PropertyKindHeaders
	PropertyKindOptions
	PropertyKindURLTemplate
	PropertyKindRequestAdapter
	PropertyKindAdditionalData
	PropertyKindBackingStore
)

func (k PropertyKind) String() string {
	switch k {
	case PropertyKindCustom:
		return "Custom"
	case PropertyKindRequestBuilder:
		return "RequestBuilder"
	case PropertyKindPathParameters:
		return "PathParameters"
	case PropertyKindQueryParameter:
		return "QueryParameter"
	case PropertyKindQueryParameters:
		return "QueryParameters"
	case PropertyKindHeaders:
		return "Headers"
	case PropertyKindOptions:
		return "Options"
	case PropertyKindURLTemplate:
		return "UrlTemplate"
	case PropertyKindRequestAdapter:
		return "RequestAdapter"
	case PropertyKindAdditionalData:
		return "AdditionalData"
	case PropertyKindBackingStore:
		return "BackingStore"
	default:
		return "Unknown"
	}
}

// MethodKind is the role a method plays. The declaration order is the
// method-kind rank used when ordering siblings that share a name.
type MethodKind int

const (
	MethodKindClientConstructor MethodKind = iota
	MethodKindConstructor
	MethodKindRawURLConstructor
	MethodKindFactory
	MethodKindDeserializer
	MethodKindSerializer
	MethodKindRequestExecutor
	MethodKindRequestGenerator
	MethodKindRequestBuilderWithParameters
	MethodKindRawURLBuilder
	MethodKindCustom
)

func (k MethodKind) String() string {
	switch k {
	case MethodKindClientConstructor:
		return "ClientConstructor"
	case MethodKindConstructor:
		return "Constructor"
	case MethodKindRawURLConstructor:
		return "RawUrlConstructor"
	case MethodKindFactory:
		return "Factory"
	case MethodKindDeserializer:
		return "Deserializer"
	case MethodKindSerializer:
		return "Serializer"
	case MethodKindRequestExecutor:
		return "RequestExecutor"
	case MethodKindRequestGenerator:
		return "RequestGenerator"
	case MethodKindRequestBuilderWithParameters:
		return "RequestBuilderWithParameters"
	case MethodKindRawURLBuilder:
		return "RawUrlBuilder"
	case MethodKindCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// ParameterKind is the role a parameter plays. The declaration order is the
// parameter-kind rank.
type ParameterKind int

const (
	ParameterKindPathParameters ParameterKind = iota
	ParameterKindRawURL
	ParameterKindRequestAdapter
	ParameterKindPath
	ParameterKindQuery
	ParameterKindHeader
	ParameterKindRequestConfiguration
	ParameterKindRequestBody
	ParameterKindRequestBodyContentType
	ParameterKindSerializer
	ParameterKindBackingStore
	ParameterKindParseNode
	ParameterKindCancellation
	ParameterKindCustom
)

func (k ParameterKind) String() string {
	switch k {
	case ParameterKindPathParameters:
		return "PathParameters"
	case ParameterKindRawURL:
		return "RawUrl"
	case ParameterKindRequestAdapter:
		return "RequestAdapter"
	case ParameterKindPath:
		return "Path"
	case ParameterKindQuery:
		return "Query"
	case ParameterKindHeader:
		return "Header"
	case ParameterKindRequestConfiguration:
		return "RequestConfiguration"
	case ParameterKindRequestBody:
		return "RequestBody"
	case ParameterKindRequestBodyContentType:
		return "RequestBodyContentType"
	case ParameterKindSerializer:
		return "Serializer"
	case ParameterKindBackingStore:
		return "BackingStore"
	case ParameterKindParseNode:
		return "ParseNode"
	case ParameterKindCancellation:
		return "Cancellation"
	case ParameterKindCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// CollectionKind tells whether a type reference is a collection.
type CollectionKind int

const (
	CollectionNone CollectionKind = iota
	// CollectionArray is a collection of primitives.
	CollectionArray
	// CollectionComplex is a collection of models.
	CollectionComplex
)

func (k CollectionKind) String() string {
	switch k {
	case CollectionNone:
		return "None"
	case CollectionArray:
		return "Array"
	case CollectionComplex:
		return "Complex"
	default:
		return "Unknown"
	}
}

// ComposedVariant distinguishes the two composition semantics.
type ComposedVariant int

const (
	// Union is exclusive: a value matches exactly one member (oneOf).
	Union ComposedVariant = iota
	// Intersection is inclusive: a value matches one or more members (anyOf).
	Intersection
)

func (v ComposedVariant) String() string {
	switch v {
	case Union:
		return "Union"
	case Intersection:
		return "Intersection"
	default:
		return "Unknown"
	}
}

// Access is the visibility of a member.
type Access int

const (
	AccessPublic Access = iota
	AccessProtected
	AccessPrivate
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "Public"
	case AccessProtected:
		return "Protected"
	case AccessPrivate:
		return "Private"
	default:
		return "Unknown"
	}
}
