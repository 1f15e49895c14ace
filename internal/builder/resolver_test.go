package builder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/kiotago/internal/codedom"
)

func newTestRun(cfg Config, log *recordingLogger) *run {
	r := &run{cfg: cfg, log: log, root: codedom.NewRootNamespace(cfg.NamespaceSeparator)}
	r.clientNS = r.root.AddNamespace(cfg.ClientNamespaceName)
	r.modelsNS = r.root.AddNamespace(cfg.ClientNamespaceName + cfg.NamespaceSeparator + modelsNamespaceSegment)
	return r
}

func addRequestBuilder(ns *codedom.Namespace, name string) *codedom.Class {
	c := codedom.NewClass(name, codedom.ClassKindRequestBuilder)
	ns.AddClass(c)
	return c
}

func TestResolveTypes_SiblingNamespace(t *testing.T) {
	r := newTestRun(DefaultConfig(), &recordingLogger{})
	a := addRequestBuilder(r.root.AddNamespace("ApiSdk.a"), "ARequestBuilder")
	b := addRequestBuilder(r.root.AddNamespace("ApiSdk.b"), "BRequestBuilder")
	a.AddProperty(codedom.NewProperty("b", codedom.PropertyKindRequestBuilder, codedom.Forward("BRequestBuilder")))

	unresolved, err := r.resolveTypes()
	require.NoError(t, err)
	assert.Empty(t, unresolved)
	assert.Same(t, b, a.FindProperty("b").Type.Definition())
}

func TestResolveTypes_ChildNamespaceWins(t *testing.T) {
	r := newTestRun(DefaultConfig(), &recordingLogger{})
	outer := addRequestBuilder(r.root.AddNamespace("ApiSdk.a"), "ARequestBuilder")
	inner := addRequestBuilder(r.root.AddNamespace("ApiSdk.a.a"), "ARequestBuilder")
	outer.AddProperty(codedom.NewProperty("a", codedom.PropertyKindRequestBuilder, codedom.Forward("ARequestBuilder")))

	_, err := r.resolveTypes()
	require.NoError(t, err)
	assert.Same(t, inner, outer.FindProperty("a").Type.Definition())
}

func TestResolveTypes_Fallback(t *testing.T) {
	log := &recordingLogger{}
	r := newTestRun(DefaultConfig(), log)
	other := codedom.NewClass("Other", codedom.ClassKindModel)
	r.modelsNS.AddClass(other)
	thing := codedom.NewClass("Thing", codedom.ClassKindModel)
	thing.AddProperty(codedom.NewProperty("other", codedom.PropertyKindCustom, codedom.Forward("Other")))
	r.root.AddNamespace("ApiSdk.elsewhere").AddClass(thing)

	unresolved, err := r.resolveTypes()
	require.NoError(t, err)
	assert.Empty(t, unresolved)
	assert.Same(t, other, thing.FindProperty("other").Type.Definition())
	assert.True(t, log.contains("mapped type using the fallback approach"))
}

func TestResolveTypes_Unresolved(t *testing.T) {
	setup := func(cfg Config, log *recordingLogger) (*run, *codedom.TypeRef) {
		r := newTestRun(cfg, log)
		thing := codedom.NewClass("Thing", codedom.ClassKindModel)
		ref := codedom.Forward("Missing")
		thing.AddProperty(codedom.NewProperty("missing", codedom.PropertyKindCustom, ref))
		r.clientNS.AddClass(thing)
		return r, ref
	}

	t.Run("lenient", func(t *testing.T) {
		log := &recordingLogger{}
		r, ref := setup(DefaultConfig(), log)
		unresolved, err := r.resolveTypes()
		require.NoError(t, err)
		require.Len(t, unresolved, 1)
		assert.Same(t, ref, unresolved[0])
		assert.Equal(t, codedom.TypeUnresolved, ref.State())
		assert.Nil(t, ref.Definition())
		assert.True(t, log.contains("type reference left unresolved"))
	})

	t.Run("strict", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Strict = true
		r, _ := setup(cfg, &recordingLogger{})
		unresolved, err := r.resolveTypes()
		require.Error(t, err)
		assert.Nil(t, unresolved)
		assert.True(t, errors.Is(err, ErrUnresolvedType))
		var be *BuildError
		require.True(t, errors.As(err, &be))
		assert.Equal(t, UnresolvedTypeError, be.Code)
		assert.Equal(t, "Missing", be.Schema)
	})
}
