package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_VerboseControlsDebug(t *testing.T) {
	t.Parallel()

	var quiet bytes.Buffer
	New(&quiet, false).Debug("hidden", "k", "v")
	assert.Empty(t, quiet.String())

	var loud bytes.Buffer
	New(&loud, true).Debug("shown", "k", "v")
	assert.Contains(t, loud.String(), "shown")
	assert.Contains(t, loud.String(), "k=v")
}

func TestSlogAdapter_WithPrependsAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, false).With("component", "builder")
	l.Warn("type reference left unresolved", "type", "FooRequestBuilder")

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "component=builder")
	assert.Contains(t, out, "type=FooRequestBuilder")
}

func TestOrNop(t *testing.T) {
	t.Parallel()

	assert.Equal(t, NopLogger{}, OrNop(nil))
	l := New(&bytes.Buffer{}, false)
	assert.Same(t, l, OrNop(l))
}
