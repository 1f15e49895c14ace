package e2e

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"testing"

	"github.com/zeebo/xxh3"

	"github.com/mark3labs/kiotago/internal/cli"
)

// A document exercising navigation, composition, inheritance and cycles.
const zooSpec = `openapi: 3.0.3
info:
  title: Zoo
  version: "1.0.0"
servers:
  - url: https://zoo.example.com/api
paths:
  /animals:
    get:
      parameters:
        - { name: kind, in: query, schema: { type: string, enum: [cat, dog] } }
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items: { $ref: '#/components/schemas/Animal' }
        "4XX":
          description: client error
          content:
            application/json:
              schema: { $ref: '#/components/schemas/Problem' }
    post:
      requestBody:
        content:
          application/json:
            schema:
              oneOf:
                - { $ref: '#/components/schemas/Cat' }
                - { $ref: '#/components/schemas/Dog' }
      responses:
        "201": { description: created }
  /animals/{animalId}:
    parameters:
      - { name: animalId, in: path, required: true, schema: { type: string, format: uuid } }
    get:
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema: { $ref: '#/components/schemas/Animal' }
  /animals/{animalId}/family:
    parameters:
      - { name: animalId, in: path, required: true, schema: { type: string, format: uuid } }
    get:
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema: { $ref: '#/components/schemas/Family' }
  /keepers/{keeperId}/animals:
    get:
      parameters:
        - { name: keeperId, in: path, required: true, schema: { type: integer, format: int64 } }
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items: { $ref: '#/components/schemas/Animal' }
components:
  schemas:
    Animal:
      type: object
      required: [kind]
      properties:
        kind: { type: string }
        name: { type: string }
        born: { type: string, format: date-time }
      discriminator:
        propertyName: kind
        mapping:
          cat: '#/components/schemas/Cat'
          dog: '#/components/schemas/Dog'
    Cat:
      allOf:
        - { $ref: '#/components/schemas/Animal' }
        - type: object
          properties:
            lives: { type: integer, format: int32 }
    Dog:
      allOf:
        - { $ref: '#/components/schemas/Animal' }
        - type: object
          properties:
            goodBoy: { type: boolean }
    Family:
      type: object
      properties:
        parent: { $ref: '#/components/schemas/Family' }
        children:
          type: array
          items: { $ref: '#/components/schemas/Family' }
        member:
          anyOf:
            - { $ref: '#/components/schemas/Animal' }
            - { nullable: true }
    Problem:
      type: object
      properties:
        code: { type: integer }
        message: { type: string }
`

const swaggerSpec = `swagger: "2.0"
info: { title: Legacy, version: "1.0" }
host: legacy.example.com
basePath: /v2
schemes: [https]
paths:
  /orders/{id}:
    get:
      produces: [application/json]
      parameters:
        - { name: id, in: path, required: true, type: integer, format: int64 }
      responses:
        "200":
          description: ok
          schema: { $ref: '#/definitions/Order' }
definitions:
  Order:
    type: object
    properties:
      id: { type: integer, format: int64 }
      note: { type: string }
`

func writeTempSpec(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	return p
}

func runCLI(t *testing.T, args ...string) {
	t.Helper()
	root := cli.NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("cli execute %v: %v", args, err)
	}
}

func digestDir(t *testing.T, dir string) (files []string, sum string) {
	t.Helper()
	var list []string
	h := xxh3.New()
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, rerr := filepath.Rel(dir, path)
		if rerr != nil {
			return rerr
		}
		rel = filepath.ToSlash(rel)
		list = append(list, rel)
		// hash path + contents to be robust
		_, _ = h.Write([]byte(rel))
		b, rerr := os.ReadFile(path)
		if rerr != nil {
			return rerr
		}
		_, _ = h.Write(b)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
	sort.Strings(list)
	return list, fmt.Sprintf("%016x", h.Sum64())
}

func assertDeterministic(t *testing.T, args ...string) (dir string, files []string) {
	t.Helper()
	dir1 := t.TempDir()
	dir2 := t.TempDir()

	runCLI(t, append(slices.Clone(args), "--output", dir1, "--force")...)
	runCLI(t, append(slices.Clone(args), "--output", dir2, "--force")...)

	files1, sum1 := digestDir(t, dir1)
	files2, sum2 := digestDir(t, dir2)
	if !slices.Equal(files1, files2) || sum1 != sum2 {
		t.Fatalf("generated outputs differ between runs\nfiles1=%v\nfiles2=%v\nsum1=%s\nsum2=%s", files1, files2, sum1, sum2)
	}
	return dir1, files1
}

func mustContain(t *testing.T, path string, want ...string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	for _, w := range want {
		if !strings.Contains(string(data), w) {
			t.Fatalf("%s: expected %q in:\n%s", path, w, data)
		}
	}
}

func TestE2E_Generate_YAML_Deterministic(t *testing.T) {
	t.Parallel()
	spec := writeTempSpec(t, "zoo.yaml", zooSpec)

	dir, files := assertDeterministic(t, "generate", "--openapi", spec)

	for _, want := range []string{"index.yaml", "apisdk.yaml", "apisdk/animals.yaml", "apisdk/models.yaml"} {
		if !slices.Contains(files, want) {
			t.Fatalf("expected %s among %v", want, files)
		}
	}
	mustContain(t, filepath.Join(dir, "index.yaml"), "client: ApiSdk.ApiClient", "baseUrl: https://zoo.example.com/api")
	mustContain(t, filepath.Join(dir, "apisdk", "models.yaml"), "name: Animal", "name: Cat", "name: Family", "propertyName: kind")
}

func TestE2E_Generate_JSON_Deterministic(t *testing.T) {
	t.Parallel()
	spec := writeTempSpec(t, "zoo.yaml", zooSpec)

	dir, files := assertDeterministic(t, "generate", "-d", spec, "--format", "json", "--backing-store", "--class-name", "ZooClient")
	if !slices.Contains(files, "index.json") {
		t.Fatalf("expected index.json among %v", files)
	}
	mustContain(t, filepath.Join(dir, "index.json"), `"ApiSdk.ZooClient"`)
}

func TestE2E_Generate_Swagger2(t *testing.T) {
	t.Parallel()
	spec := writeTempSpec(t, "legacy.yaml", swaggerSpec)

	dir, _ := assertDeterministic(t, "generate", "-d", spec)
	mustContain(t, filepath.Join(dir, "index.yaml"), "baseUrl: https://legacy.example.com/v2")
	mustContain(t, filepath.Join(dir, "apisdk", "models.yaml"), "name: Order")
}
