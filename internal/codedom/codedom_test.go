package codedom

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNamespaceIsIdempotent(t *testing.T) {
	root := NewRootNamespace(".")
	a := root.AddNamespace("ApiSdk.users.item")
	b := root.AddNamespace("apisdk.Users.ITEM")
	assert.Same(t, a, b)
	assert.Equal(t, "ApiSdk.users.item", a.FullName())
	assert.Equal(t, 3, a.Depth())
	assert.Same(t, a, root.FindNamespace("ApiSdk.users.item"))
	assert.Nil(t, root.FindNamespace("ApiSdk.groups"))
}

func TestAddNamespaceFromChildStartsAtRoot(t *testing.T) {
	root := NewRootNamespace(".")
	users := root.AddNamespace("ApiSdk.users")
	nested := users.AddNamespace("ApiSdk.users.item")
	assert.Same(t, root, nested.Root())
	assert.Equal(t, "ApiSdk.users.item", nested.FullName())
}

func TestAddDeclarationReturnsExisting(t *testing.T) {
	ns := NewRootNamespace(".").AddNamespace("ApiSdk.models")
	first := NewClass("User", ClassKindModel)
	got, added := ns.AddClass(first)
	require.True(t, added)
	assert.Same(t, first, got)

	got, added = ns.AddClass(NewClass("user", ClassKindModel))
	assert.False(t, added)
	assert.Same(t, first, got)

	got, added = ns.AddEnum(NewEnum("USER"))
	assert.False(t, added)
	assert.Same(t, first, got)

	assert.Same(t, ns, first.Parent())
	assert.Equal(t, "ApiSdk.models.User", QualifiedName(first))
}

func TestConcurrentInsertsKeepOneDeclaration(t *testing.T) {
	root := NewRootNamespace(".")
	var wg sync.WaitGroup
	results := make([]Declaration, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ns := root.AddNamespace("ApiSdk.models")
			results[i], _ = ns.AddClass(NewClass("Pet", ClassKindModel))
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
	assert.Len(t, root.FindNamespace("ApiSdk.models").Declarations(), 1)
}

func TestFindDeclarationsByNameShallowestFirst(t *testing.T) {
	root := NewRootNamespace(".")
	deep := root.AddNamespace("ApiSdk.users.item.messages")
	shallow := root.AddNamespace("ApiSdk.users")
	deep.AddClass(NewClass("MessagesRequestBuilder", ClassKindRequestBuilder))
	shallow.AddClass(NewClass("MessagesRequestBuilder", ClassKindRequestBuilder))
	outer := NewClass("Holder", ClassKindModel)
	outer.AddInnerClass(NewClass("MessagesRequestBuilder", ClassKindModel))
	root.AddNamespace("ApiSdk.users.item.messages.deeper").AddClass(outer)

	found := root.FindNamespace("ApiSdk").FindDeclarationsByName("messagesrequestbuilder")
	require.Len(t, found, 3)
	assert.Same(t, shallow, OwnerNamespace(found[0]))
	assert.Same(t, deep, OwnerNamespace(found[1]))
	assert.Same(t, outer, OwnerClass(found[2]))
}

func TestClassPropertyFirstWins(t *testing.T) {
	c := NewClass("User", ClassKindModel)
	p := NewProperty("displayName", PropertyKindCustom, External("string"))
	assert.True(t, c.AddProperty(p))
	assert.False(t, c.AddProperty(NewProperty("DisplayName", PropertyKindCustom, External("integer"))))
	assert.Same(t, p, c.FindProperty("DISPLAYNAME"))
	assert.Same(t, c, p.Parent())
	assert.Same(t, p, p.Type.Owner())
	assert.True(t, c.ContainsMember("displayname"))
}

func TestInheritanceChain(t *testing.T) {
	entity := NewClass("Entity", ClassKindModel)
	user := NewClass("User", ClassKindModel)
	user.BaseType = Ref(entity)
	admin := NewClass("Admin", ClassKindModel)
	admin.BaseType = Ref(user)

	assert.Equal(t, []*Class{user, entity}, admin.InheritanceChain())
	assert.True(t, admin.DerivesFrom(entity))
	assert.True(t, admin.DerivesFrom(admin))
	assert.False(t, entity.DerivesFrom(admin))

	entity.BaseType = Ref(admin)
	assert.Len(t, admin.InheritanceChain(), 2)
}

func TestMethodParametersOrder(t *testing.T) {
	m := NewMethod("constructor", MethodKindConstructor, nil)
	m.AddParameter(&Parameter{Node: Node{Name: "requestAdapter"}, ParameterKind: ParameterKindRequestAdapter, Type: External("IRequestAdapter")})
	m.AddParameter(&Parameter{Node: Node{Name: "userId"}, ParameterKind: ParameterKindPath, Type: External("string"), Optional: true})
	m.AddParameter(&Parameter{Node: Node{Name: "pathParameters"}, ParameterKind: ParameterKindPathParameters, Type: External("Dictionary<string, object>")})
	assert.False(t, m.AddParameter(NewParameter("PathParameters", ParameterKindCustom, External("string"))))

	var names []string
	for _, p := range m.Parameters() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"pathParameters", "requestAdapter", "userId"}, names)

	m.RemoveParametersOfKind(ParameterKindPath, ParameterKindPathParameters)
	require.Len(t, m.Parameters(), 1)
	assert.Equal(t, "requestAdapter", m.Parameters()[0].Name)
}

func TestMethodCloneIsDetached(t *testing.T) {
	m := NewMethod("constructor", MethodKindConstructor, nil)
	m.AddParameter(NewParameter("pathParameters", ParameterKindPathParameters, External("Dictionary<string, object>")))
	m.AddErrorMapping("4xx", External("ODataError"))

	cp := m.Clone()
	cp.RemoveParametersOfKind(ParameterKindPathParameters)
	assert.Len(t, m.Parameters(), 1)
	assert.Empty(t, cp.Parameters())
	assert.True(t, cp.HasErrorMapping("4XX"))
	assert.Nil(t, cp.ReturnType)
}

func TestErrorMappingFirstWins(t *testing.T) {
	m := NewMethod("get", MethodKindRequestExecutor, External("string"))
	assert.True(t, m.AddErrorMapping("404", External("NotFound")))
	assert.False(t, m.AddErrorMapping("404", External("Other")))
	assert.True(t, m.AddErrorMapping("5XX", External("ServerError")))
	mappings := m.ErrorMappings()
	require.Len(t, mappings, 2)
	assert.Equal(t, "404", mappings[0].Code)
	assert.Equal(t, "NotFound", mappings[0].Type.Name)
}

func TestEnumOptionsDedupCaseInsensitive(t *testing.T) {
	e := NewEnum("Status")
	assert.True(t, e.AddOption(EnumOption{Name: "Active", SerializationName: "active"}))
	assert.False(t, e.AddOption(EnumOption{Name: "ACTIVE", SerializationName: "ACTIVE"}))
	assert.True(t, e.AddOption(EnumOption{Name: "Disabled", SerializationName: "disabled"}))
	assert.Len(t, e.Options(), 2)
}

func TestComposedTypeMembers(t *testing.T) {
	ct := NewComposedType("PetOrError", Union)
	assert.True(t, ct.AddMember(External("string")))
	assert.False(t, ct.AddMember(External("String")))
	arr := External("string")
	arr.CollectionKind = CollectionArray
	assert.True(t, ct.AddMember(arr))
	assert.Len(t, ct.Members(), 2)
	assert.Same(t, ct, arr.Owner())
}

func TestCompareElementsOrder(t *testing.T) {
	c := NewClass("UsersRequestBuilder", ClassKindRequestBuilder)
	c.AddMethod(NewMethod("get", MethodKindRequestExecutor, nil))
	ctor := NewMethod("constructor", MethodKindConstructor, nil)
	ctor.AddParameter(NewParameter("pathParameters", ParameterKindPathParameters, External("Dictionary<string, object>")))
	raw := NewMethod("constructor", MethodKindRawURLConstructor, nil)
	c.AddMethod(raw)
	c.AddMethod(ctor)
	c.AddProperty(NewProperty("urlTemplate", PropertyKindURLTemplate, External("string")))
	c.AddIndexer(NewIndexer("ById", External("UserItemRequestBuilder"), nil))
	c.AddInnerClass(NewClass("UsersRequestBuilderGetQueryParameters", ClassKindQueryParameters))

	var got []string
	for _, m := range c.Members() {
		got = append(got, m.Kind().String()+":"+m.SymbolName())
	}
	assert.Equal(t, []string{
		"Property:urlTemplate",
		"Indexer:ById",
		"Method:constructor",
		"Method:constructor",
		"Method:get",
		"Class:UsersRequestBuilderGetQueryParameters",
	}, got)
	methods := c.MethodsOfKind(MethodKindConstructor, MethodKindRawURLConstructor)
	assert.Same(t, ctor, methods[0])
	assert.Same(t, raw, methods[1])
}

func TestTypeRefStates(t *testing.T) {
	fwd := Forward("User")
	assert.Equal(t, TypePending, fwd.State())
	assert.True(t, fwd.NeedsResolution())

	c := NewClass("User", ClassKindModel)
	fwd.Resolve(c)
	assert.Equal(t, TypeResolved, fwd.State())
	assert.False(t, fwd.NeedsResolution())
	assert.Same(t, c, fwd.Definition())

	lost := Forward("Ghost")
	lost.MarkUnresolved()
	assert.Equal(t, "Unresolved", lost.State().String())
	assert.True(t, lost.NeedsResolution())

	assert.False(t, External("string").NeedsResolution())
	var nilRef *TypeRef
	assert.Nil(t, nilRef.Clone())
	assert.Nil(t, nilRef.Definition())
}

func TestWalkCollectsTypeRefs(t *testing.T) {
	root := NewRootNamespace(".")
	ns := root.AddNamespace("ApiSdk")
	c := NewClass("ApiClient", ClassKindRequestBuilder)
	ns.AddClass(c)
	c.AddProperty(NewProperty("users", PropertyKindRequestBuilder, Forward("UsersRequestBuilder")))
	m := NewMethod("get", MethodKindRequestExecutor, External("string"))
	m.AddParameter(NewParameter("requestConfiguration", ParameterKindRequestConfiguration, Forward("Config")))
	c.AddMethod(m)

	refs := AllTypeRefs(root)
	var names []string
	for _, r := range refs {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"UsersRequestBuilder", "string", "Config"}, names)

	visited := 0
	Walk(root, func(e Element) bool {
		visited++
		return e.Kind() != KindClass
	})
	assert.Equal(t, 3, visited)
}
