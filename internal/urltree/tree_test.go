package urltree

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const treeSpec = `openapi: 3.0.3
info: {title: t, version: "1"}
servers: [{url: "https://api.example.com"}]
paths:
  /users:
    get:
      parameters:
        - {name: $top, in: query, schema: {type: integer}}
        - {name: filter, in: query, required: true, schema: {type: string}}
        - {name: tags, in: query, schema: {type: array, items: {type: string}}}
      responses: {"200": {description: ok}}
    post:
      responses: {"201": {description: created}}
  /users/{user-id}:
    parameters:
      - {name: user-id, in: path, required: true, schema: {type: string}}
    get:
      responses: {"200": {description: ok}}
  /users/{user-id}/messages/{id}:
    get:
      parameters:
        - {name: user-id, in: path, required: true, schema: {type: string}}
        - {name: id, in: path, required: true, schema: {type: integer}}
      responses: {"200": {description: ok}}
  /reports/getReport(period='{period}'):
    get:
      parameters:
        - {name: period, in: path, required: true, schema: {type: string}}
      responses: {"200": {description: ok}}
  /files/{id}.json:
    get:
      parameters:
        - {name: id, in: path, required: true, schema: {type: string}}
      responses: {"200": {description: ok}}
  /models:
    get:
      responses: {"200": {description: ok}}
  /get:
    get:
      responses: {"200": {description: ok}}
`

func loadTree(t *testing.T) *Node {
	t.Helper()
	doc, err := openapi3.NewLoader().LoadFromData([]byte(treeSpec))
	require.NoError(t, err)
	root, err := Build(doc.Paths)
	require.NoError(t, err)
	return root
}

func find(t *testing.T, root *Node, segments ...string) *Node {
	t.Helper()
	n := root
	for _, s := range segments {
		child, ok := n.Children[s]
		require.True(t, ok, "missing segment %q under %q", s, n.Path)
		n = child
	}
	return n
}

func TestBuild_NilPaths(t *testing.T) {
	t.Parallel()

	root, err := Build(nil)
	assert.Nil(t, root)
	assert.ErrorIs(t, err, ErrNilPaths)
}

func TestBuild_SharesPrefixes(t *testing.T) {
	t.Parallel()

	root := loadTree(t)
	assert.True(t, root.IsRoot())
	assert.Empty(t, root.Path)
	assert.Nil(t, root.PathItem)

	users := find(t, root, "users")
	assert.Equal(t, "/users", users.Path)
	require.Len(t, users.Children, 1)

	item := find(t, root, "users", "{user-id}")
	assert.Equal(t, "/users/{user-id}", item.Path)
	assert.True(t, item.HasOperations(), "a node can be both an endpoint and a prefix")
	assert.Len(t, item.Children, 1)

	messages := find(t, root, "users", "{user-id}", "messages")
	assert.False(t, messages.HasOperations())
}

func TestBuild_MergesEquivalentTemplates(t *testing.T) {
	t.Parallel()

	paths := openapi3.Paths{
		"/a":  &openapi3.PathItem{Get: &openapi3.Operation{OperationID: "first"}},
		"/a/": &openapi3.PathItem{Get: &openapi3.Operation{OperationID: "second"}, Post: &openapi3.Operation{}},
	}
	root, err := Build(paths)
	require.NoError(t, err)

	a := find(t, root, "a")
	ops := a.Operations()
	require.Len(t, ops, 2)
	assert.Equal(t, "GET", ops[0].Method)
	assert.Equal(t, "first", ops[0].Operation.OperationID)
	assert.Equal(t, "POST", ops[1].Method)
}

func TestOperations_StableOrder(t *testing.T) {
	t.Parallel()

	users := find(t, loadTree(t), "users")
	ops := users.Operations()
	require.Len(t, ops, 2)
	assert.Equal(t, []string{"GET", "POST"}, []string{ops[0].Method, ops[1].Method})
}

func TestSegmentPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, IsSingleSimpleParameter("{id}"))
	assert.True(t, IsSingleSimpleParameter("{id}.json"))
	assert.False(t, IsSingleSimpleParameter("users"))
	assert.False(t, IsSingleSimpleParameter("{a}{b}"))
	assert.False(t, IsSingleSimpleParameter("getReport(period='{period}')"))

	assert.True(t, IsComplexMultipleParameters("getReport(period='{period}')"))
	assert.True(t, IsComplexMultipleParameters("{a}-{b}"))
	assert.False(t, IsComplexMultipleParameters("{id}"))
	assert.False(t, IsComplexMultipleParameters("users"))
}

func TestCleanupParametersFromPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "WithId", CleanupParametersFromPath("{id}"))
	assert.Equal(t, "getReportWithPeriod", CleanupParametersFromPath("getReport(period='{period}')"))
	assert.Equal(t, "fnWithIds", CleanupParametersFromPath("fn(ids=@ids)"))
	assert.Equal(t, "users", CleanupParametersFromPath("users"))
}

func TestNamespaceFromPath(t *testing.T) {
	t.Parallel()

	root := loadTree(t)
	assert.Equal(t, "ApiSdk", root.NamespaceFromPath("ApiSdk", "."))
	assert.Equal(t, "ApiSdk.users", find(t, root, "users").NamespaceFromPath("ApiSdk", "."))
	assert.Equal(t, "ApiSdk.users.item", find(t, root, "users", "{user-id}").NamespaceFromPath("ApiSdk", "."))
	assert.Equal(t, "ApiSdk.users.item.messages.item",
		find(t, root, "users", "{user-id}", "messages", "{id}").NamespaceFromPath("ApiSdk", "."))
	assert.Equal(t, "ApiSdk.modelsRequests", find(t, root, "models").NamespaceFromPath("ApiSdk", "."))
	assert.Equal(t, "ApiSdk.reports.getReportWithPeriod",
		find(t, root, "reports", "getReport(period='{period}')").NamespaceFromPath("ApiSdk", "."))
}

func TestNames(t *testing.T) {
	t.Parallel()

	root := loadTree(t)
	users := find(t, root, "users")
	assert.Equal(t, "UsersRequestBuilder", users.ClassName("", "", "RequestBuilder"))
	assert.Equal(t, "users", users.NavigationName(""))

	item := find(t, root, "users", "{user-id}")
	assert.Equal(t, "UserItemRequestBuilder", item.ClassName("", "", "ItemRequestBuilder"))

	msg := find(t, root, "users", "{user-id}", "messages", "{id}")
	assert.Equal(t, "MessagesItemRequestBuilder", msg.ClassName("", "", "ItemRequestBuilder"))

	file := find(t, root, "files", "{id}.json")
	assert.True(t, file.IsSingleSimpleParameter())
	assert.Equal(t, "FilesItemRequestBuilder", file.ClassName("", "", "ItemRequestBuilder"))

	assert.Equal(t, "getPath", find(t, root, "get").NavigationName(""))
	assert.Equal(t, "Pet", users.ClassName("Pet", "", ""))
	assert.Equal(t, "UsersGetResponse", users.ClassName("", "", "GetResponse"))
}

func TestURLTemplate(t *testing.T) {
	t.Parallel()

	root := loadTree(t)
	assert.Equal(t, "{+baseurl}", root.URLTemplate())
	assert.Equal(t, "{+baseurl}/users?filter={filter}{&%24top,tags*}", find(t, root, "users").URLTemplate())
	assert.Equal(t, "{+baseurl}/users/{user%2Did}", find(t, root, "users", "{user-id}").URLTemplate())
}

func TestSanitizeParameterNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "user%2Did", SanitizeParameterNameForURLTemplate("user-id"))
	assert.Equal(t, "a%2Eb%7Ec", SanitizeParameterNameForURLTemplate("a.b~c"))
	assert.Equal(t, "%24top", SanitizeParameterNameForURLTemplate("$top"))
	assert.Equal(t, "id", SanitizeParameterNameForURLTemplate("{id}.json"))

	assert.Equal(t, "top", SanitizeParameterNameForCodeSymbols("$top"))
	assert.Equal(t, "userId", SanitizeParameterNameForCodeSymbols("user-id"))
}

func TestPathParametersForCurrentSegment(t *testing.T) {
	t.Parallel()

	root := loadTree(t)
	fn := find(t, root, "reports", "getReport(period='{period}')")
	params := fn.PathParametersForCurrentSegment()
	require.Len(t, params, 1)
	assert.Equal(t, "period", params[0].Value.Name)

	assert.Empty(t, find(t, root, "users", "{user-id}").PathParametersForCurrentSegment())

	p := find(t, root, "users", "{user-id}").PathParameter("user-id")
	require.NotNil(t, p)
	assert.Equal(t, "string", p.Schema.Value.Type)
}
