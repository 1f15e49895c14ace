// Package irdump writes a deterministic snapshot of a built SDK model: an
// index file plus one file per namespace holding declarations.
package irdump

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/kiotago/internal/builder"
	"github.com/mark3labs/kiotago/internal/codedom"
	"github.com/mark3labs/kiotago/internal/logging"
)

// Format selects the snapshot encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts yaml, yml and json in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format %q (allowed: yaml, json)", s)
	}
}

// ErrOutputNotEmpty is returned when the output directory holds files and
// Force is not set.
var ErrOutputNotEmpty = errors.New("output directory is not empty")

// Options controls how a snapshot is written.
type Options struct {
	OutDir string // required
	Format Format
	Force  bool // overwrite a non-empty output directory
	DryRun bool // plan only
	Logger logging.Logger
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result lists the planned files in path order.
type Result struct {
	Planned []PlannedFile
}

// IndexFile is the name of the index file, without extension.
const IndexFile = "index"

// Emit renders res and, unless DryRun is set, writes it under OutDir.
func Emit(ctx context.Context, res *builder.Result, opts Options) (*Result, error) {
	if res == nil || res.Root == nil {
		return nil, fmt.Errorf("irdump: nil build result")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("irdump: OutDir is required")
	}
	if opts.Format == "" {
		opts.Format = FormatYAML
	}
	log := logging.OrNop(opts.Logger)

	files, err := Render(ctx, res, opts.Format)
	if err != nil {
		return nil, err
	}

	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, p)
	}
	sort.Strings(rels)
	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644})
	}

	if !opts.DryRun {
		if err := writeFiles(opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
		log.Info("snapshot written", "dir", opts.OutDir, "files", len(planned), "format", string(opts.Format))
	}
	return &Result{Planned: planned}, nil
}

// Render encodes res into file contents keyed by slash-separated relative
// path. The output depends only on the model.
func Render(ctx context.Context, res *builder.Result, format Format) (map[string][]byte, error) {
	encode, ext, err := encoderFor(format)
	if err != nil {
		return nil, err
	}

	files := map[string][]byte{}
	idx := index{Namespaces: []string{}}
	if res.Client != nil {
		idx.Client = codedom.QualifiedName(res.Client)
		for _, m := range res.Client.MethodsOfKind(codedom.MethodKindClientConstructor) {
			idx.BaseURL = m.BaseURL
		}
	}

	var visit func(ns *codedom.Namespace) error
	visit = func(ns *codedom.Namespace) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(ns.Declarations()) > 0 {
			rel := namespacePath(ns) + ext
			data, err := encode(describeNamespace(ns))
			if err != nil {
				return fmt.Errorf("encode %s: %w", ns.FullName(), err)
			}
			files[rel] = data
			idx.Namespaces = append(idx.Namespaces, ns.FullName())
		}
		for _, child := range ns.Namespaces() {
			if err := visit(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(res.Root); err != nil {
		return nil, err
	}

	for _, t := range res.Unresolved {
		info := describeType(t)
		info.Owner = ownerPath(t.Owner())
		idx.Unresolved = append(idx.Unresolved, *info)
	}
	sort.SliceStable(idx.Unresolved, func(i, j int) bool {
		if idx.Unresolved[i].Owner != idx.Unresolved[j].Owner {
			return idx.Unresolved[i].Owner < idx.Unresolved[j].Owner
		}
		return idx.Unresolved[i].Name < idx.Unresolved[j].Name
	})

	data, err := encode(idx)
	if err != nil {
		return nil, fmt.Errorf("encode index: %w", err)
	}
	files[IndexFile+ext] = data
	return files, nil
}

// namespacePath maps a namespace to a relative path, one directory per
// segment. Names are compared case-insensitively by the registry, so the
// segments are lowered to keep the layout stable on case-insensitive file
// systems.
func namespacePath(ns *codedom.Namespace) string {
	var segs []string
	for cur := ns; cur != nil && cur.ParentNamespace() != nil; cur = cur.ParentNamespace() {
		segs = append(segs, strings.ToLower(cur.Name))
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, "/")
}

func encoderFor(format Format) (func(any) ([]byte, error), string, error) {
	switch format {
	case FormatYAML, "":
		return encodeYAML, ".yaml", nil
	case FormatJSON:
		return encodeJSON, ".json", nil
	default:
		return nil, "", fmt.Errorf("irdump: unsupported format %q", format)
	}
}

func encodeYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v, json.Deterministic(true), jsontext.WithIndent("  "))
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func writeFiles(outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("irdump: %w: %q (use --force to overwrite)", ErrOutputNotEmpty, abs)
		}
	}
	for rel, content := range files {
		p := filepath.Join(abs, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}
