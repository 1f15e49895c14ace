package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimalSpecYAML = "" +
	"openapi: 3.0.0\n" +
	"info:\n" +
	"  title: Test API\n" +
	"  version: '1.0.0'\n" +
	"servers:\n" +
	"  - url: https://api.example.com\n" +
	"paths:\n" +
	"  /hello:\n" +
	"    get:\n" +
	"      summary: Hello\n" +
	"      responses:\n" +
	"        '200':\n" +
	"          description: ok\n" +
	"          content:\n" +
	"            application/json:\n" +
	"              schema:\n" +
	"                $ref: '#/components/schemas/Greeting'\n" +
	"  /hello/{name}:\n" +
	"    parameters:\n" +
	"      - { name: name, in: path, required: true, schema: { type: string } }\n" +
	"    delete:\n" +
	"      responses:\n" +
	"        '204':\n" +
	"          description: gone\n" +
	"components:\n" +
	"  schemas:\n" +
	"    Greeting:\n" +
	"      type: object\n" +
	"      properties:\n" +
	"        message:\n" +
	"          type: string\n"

func writeMinimalSpec(t *testing.T) (dir, specPath string) {
	t.Helper()
	dir = t.TempDir()
	specPath = filepath.Join(dir, "spec.yaml")
	if err := os.WriteFile(specPath, []byte(minimalSpecYAML), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	return dir, specPath
}

func TestGeneratePipeline_DryRun(t *testing.T) {
	t.Parallel()
	dir, specPath := writeMinimalSpec(t)
	outDir := filepath.Join(dir, "out")

	var stdout bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "--openapi", specPath, "--output", outDir, "--dry-run"})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "Planned writes to") {
		t.Fatalf("expected dry-run plan output, got: %s", out)
	}
	if !strings.Contains(out, "- index.yaml") || !strings.Contains(out, "- apisdk/models.yaml") {
		t.Fatalf("expected index and models snapshot in plan, got: %s", out)
	}
	// Dry-run should not create the directory
	if _, err := os.Stat(outDir); err == nil {
		t.Fatalf("expected no writes on dry-run")
	}
}

func TestGeneratePipeline_WritesJSONSnapshot(t *testing.T) {
	t.Parallel()
	dir, specPath := writeMinimalSpec(t)
	outDir := filepath.Join(dir, "out")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "-d", specPath, "-o", outDir, "--format", "json", "--exclude-path", "/hello/*"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "index.json"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if !strings.Contains(string(data), `"ApiSdk.ApiClient"`) {
		t.Fatalf("expected client in index, got: %s", data)
	}
	if _, err := os.Stat(filepath.Join(outDir, "apisdk", "hello", "item.json")); err == nil {
		t.Fatalf("expected excluded /hello/{name} to produce no item namespace")
	}
}

func TestGeneratePipeline_ExistingOutputNeedsForce(t *testing.T) {
	t.Parallel()
	dir, specPath := writeMinimalSpec(t)
	outDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "keep.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	run := func(extra ...string) error {
		root := NewRootCmd()
		root.SetOut(io.Discard)
		root.SetErr(io.Discard)
		root.SetArgs(append([]string{"generate", "-d", specPath, "-o", outDir}, extra...))
		return root.Execute()
	}
	if err := run(); !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "--force") {
		t.Fatalf("expected usage error hinting at --force, got %v", err)
	}
	if err := run("--force"); err != nil {
		t.Fatalf("execute with --force: %v", err)
	}
}

func TestGeneratePipeline_SpecErrorIsFriendly(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	specPath := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(specPath, []byte("openapi: 3.0.0\ninfo: {title: x, version: '1'}\npaths:\n  /x:\n    get:\n      responses: {}\n"), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "-d", specPath, "-o", filepath.Join(dir, "out")})
	err := root.Execute()
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Location: "+specPath) {
		t.Fatalf("expected location in message, got %v", err)
	}
}

func TestGeneratePipeline_MissingServerIsFriendly(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	specPath := filepath.Join(dir, "noserver.yaml")
	noServer := strings.Replace(minimalSpecYAML, "servers:\n  - url: https://api.example.com\n", "", 1)
	if err := os.WriteFile(specPath, []byte(noServer), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "-d", specPath, "-o", filepath.Join(dir, "out")})
	err := root.Execute()
	if !errors.Is(err, ErrUsage) || !strings.HasPrefix(err.Error(), "build: ") {
		t.Fatalf("expected build usage error, got %v", err)
	}
}
