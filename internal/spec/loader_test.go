package spec

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const minimalV3 = `openapi: 3.0.3
info:
  title: Hello
  version: "1.0.0"
servers:
  - url: https://example.com
paths:
  "/hello":
    get:
      responses:
        "200":
          description: ok
`

func writeSpec(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoad_BlocksFileURL(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "file:///etc/hosts")
	if err == nil {
		t.Fatalf("expected error for file:// URL")
	}
	var se *SpecError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecError, got %T", err)
	}
	if se.Code != InputError {
		t.Fatalf("expected InputError, got %v", se.Code)
	}
}

func TestLoad_EmptyInput(t *testing.T) {
	t.Parallel()
	var se *SpecError
	if _, err := Load(context.Background(), "  "); !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v", err)
	}
}

func TestLoad_UnsupportedScheme(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "ftp://example.com/spec.yaml")
	if err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v (%T)", err, err)
	}
}

func TestLoad_NetworkError(t *testing.T) {
	t.Parallel()
	// Unused port to provoke a quick network failure.
	url := "http://127.0.0.1:1/spec.yaml"
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Load(ctx, url, WithHTTPTimeout(200*time.Millisecond), WithMaxRetries(2), WithBackoffBase(10*time.Millisecond))
	if err == nil {
		t.Fatalf("expected network error")
	}
	var se *SpecError
	if !errors.As(err, &se) || se.Code != NetworkError {
		t.Fatalf("expected NetworkError, got %v (%T)", err, err)
	}
}

func TestLoad_RetriesTransientFailures(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(minimalV3))
	}))
	defer srv.Close()

	doc, err := Load(context.Background(), srv.URL+"/openapi.yaml", WithBackoffBase(time.Millisecond))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Paths.Find("/hello") == nil {
		t.Fatalf("expected /hello path")
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 requests, got %d", got)
	}
}

func TestLoad_ClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), srv.URL+"/missing.yaml", WithBackoffBase(time.Millisecond))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != NetworkError {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single request, got %d", got)
	}
}

func TestLoad_V3_InvalidSpec(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "bad.yaml", `openapi: 3.0.0
info:
  title: Bad
  version: "1.0.0"
paths:
  "/pet":
    get:
      responses: {}
`)
	_, err := Load(context.Background(), path)
	if err == nil {
		t.Fatalf("expected validation error for incomplete responses")
	}
	var se *SpecError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecError, got %T", err)
	}
	if se.Code != ValidationError {
		t.Fatalf("expected ValidationError, got %v", se.Code)
	}
	if se.Location != path {
		t.Fatalf("expected location %q, got %q", path, se.Location)
	}
}

func TestLoad_V3_File(t *testing.T) {
	t.Parallel()
	doc, err := Load(context.Background(), writeSpec(t, "ok.yaml", minimalV3))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !strings.HasPrefix(doc.OpenAPI, "3.") {
		t.Fatalf("expected OpenAPI v3, got %q", doc.OpenAPI)
	}
	if len(doc.Servers) != 1 || doc.Servers[0].URL != "https://example.com" {
		t.Fatalf("expected the declared server, got %+v", doc.Servers)
	}
}

func TestLoadData_V2(t *testing.T) {
	t.Parallel()
	doc, err := LoadData(context.Background(), []byte(`swagger: "2.0"
info: { title: t, version: "1.0.0" }
host: api.example.com
basePath: /v1
schemes: [https]
paths:
  /pets:
    get:
      produces: [application/json]
      responses:
        '200':
          description: ok
          schema:
            type: array
            items: { $ref: '#/definitions/Pet' }
definitions:
  Pet:
    type: object
    properties:
      name: { type: string }
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !strings.HasPrefix(doc.OpenAPI, "3.") {
		t.Fatalf("expected converted v3 document, got %q", doc.OpenAPI)
	}
	if len(doc.Servers) == 0 || doc.Servers[0].URL != "https://api.example.com/v1" {
		t.Fatalf("expected server from host and basePath, got %+v", doc.Servers)
	}
	if doc.Components.Schemas["Pet"] == nil {
		t.Fatalf("expected Pet schema")
	}
}

func TestLoad_V2_Conversion_Failure(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "swagger-bad.yaml", `swagger: "2.0"
paths: {}
`)
	_, err := Load(context.Background(), path)
	if err == nil {
		t.Fatalf("expected conversion error")
	}
	var se *SpecError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecError, got %T", err)
	}
	if se.Code != ConversionError && se.Code != ValidationError && se.Code != ParseError {
		t.Fatalf("expected ConversionError/ValidationError/ParseError, got %v", se.Code)
	}
}

func TestDetectSpecVersion(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "openapi: 3.0.3", want: 3},
		{in: "openapi: '3.1.0'", want: 3},
		{in: "openapi: 3.1", want: 3},
		{in: `swagger: "2.0"`, want: 2},
		{in: "swagger: 2.0", want: 2},
		{in: "openapi: 4.0.0", wantErr: true},
		{in: "openapi: banana", wantErr: true},
		{in: "info: {}", wantErr: true},
	}
	for _, c := range cases {
		got, err := detectSpecVersion([]byte(c.in))
		if c.wantErr {
			if err == nil {
				t.Errorf("%q: expected error, got %d", c.in, got)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Errorf("%q: got %d, %v; want %d", c.in, got, err, c.want)
		}
	}
}
