package cli

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestShow_PrintsTree(t *testing.T) {
	t.Parallel()
	_, specPath := writeMinimalSpec(t)

	var stdout bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"show", "--openapi", specPath})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	want := "/\n" +
		"└─ hello [GET]\n" +
		"   └─ {name} [DELETE]\n"
	if got := stdout.String(); got != want {
		t.Fatalf("unexpected tree:\n%s\nwant:\n%s", got, want)
	}
}

func TestShow_Filtered(t *testing.T) {
	t.Parallel()
	_, specPath := writeMinimalSpec(t)

	var stdout bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"show", "-d", specPath, "--include-path", "/hello#GET"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := stdout.String(); strings.Contains(got, "{name}") {
		t.Fatalf("expected /hello/{name} to be filtered out, got:\n%s", got)
	}
}

func TestShow_RequiresOpenAPI(t *testing.T) {
	t.Parallel()
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"show"})
	if err := root.Execute(); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}
