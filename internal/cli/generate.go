package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/kiotago/internal/builder"
	"github.com/mark3labs/kiotago/internal/emitter/irdump"
	"github.com/mark3labs/kiotago/internal/logging"
	"github.com/mark3labs/kiotago/internal/spec"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	OpenAPI        string
	Output         string
	Format         string
	IncludePaths   []string
	ExcludePaths   []string
	ClassName      string
	NamespaceName  string
	Language       string
	BackingStore   bool
	AdditionalData bool
	Strict         bool
	ConfigPath     string
	DryRun         bool
	Force          bool
	Verbose        bool
}

func defaultGenerateConfig() GenerateConfig {
	d := builder.DefaultConfig()
	return GenerateConfig{
		Output:         "output",
		Format:         string(irdump.FormatYAML),
		ClassName:      d.ClientClassName,
		NamespaceName:  d.ClientNamespaceName,
		Language:       d.Language,
		AdditionalData: d.IncludeAdditionalData,
	}
}

// builderConfig returns the model builder configuration for c.
func (c *GenerateConfig) builderConfig() builder.Config {
	cfg := builder.DefaultConfig()
	cfg.ClientClassName = c.ClassName
	cfg.ClientNamespaceName = c.NamespaceName
	cfg.Language = c.Language
	cfg.UsesBackingStore = c.BackingStore
	cfg.IncludeAdditionalData = c.AdditionalData
	cfg.Strict = c.Strict
	return cfg
}

func (c *GenerateConfig) filter() spec.Filter {
	return spec.Filter{Include: c.IncludePaths, Exclude: c.ExcludePaths}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build the SDK model of an OpenAPI document and write its snapshot",
		Long: "Build the SDK model of an OpenAPI or Swagger 2 document and write a deterministic snapshot of it. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  kiotago generate --openapi openapi.yaml --output ./sdk
  kiotago generate -d https://example.com/openapi.json --include-path '/users/**' --format json
  kiotago --config kiotago.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringP("openapi", "d", "", "Path or URL to the OpenAPI/Swagger document")
	flags.StringP("output", "o", "", "Output directory for the snapshot (default \"output\")")
	flags.String("format", "", "Snapshot format (yaml|json); defaults to yaml")
	flags.StringSliceP("include-path", "i", nil, "Glob patterns of the paths to include, optionally suffixed with #METHOD,...")
	flags.StringSliceP("exclude-path", "e", nil, "Glob patterns of the paths to exclude, optionally suffixed with #METHOD,...")
	flags.String("class-name", "", "Name of the root client class (default \"ApiClient\")")
	flags.StringP("namespace-name", "n", "", "Namespace of the client class (default \"ApiSdk\")")
	flags.StringP("language", "l", "", "Target language carried with the model (default \"csharp\")")
	flags.BoolP("backing-store", "b", false, "Add backing store members to models and the client")
	flags.Bool("additional-data", true, "Add an additional data member to models accepting additional properties")
	flags.Bool("strict", false, "Fail when a type reference cannot be resolved")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	stringFlags := map[string]*string{
		"openapi":        &cfg.OpenAPI,
		"output":         &cfg.Output,
		"format":         &cfg.Format,
		"class-name":     &cfg.ClassName,
		"namespace-name": &cfg.NamespaceName,
		"language":       &cfg.Language,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}

	sliceFlags := map[string]*[]string{
		"include-path": &cfg.IncludePaths,
		"exclude-path": &cfg.ExcludePaths,
	}
	for name, dst := range sliceFlags {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = sanitizePatterns(value)
	}

	boolFlags := map[string]*bool{
		"backing-store":   &cfg.BackingStore,
		"additional-data": &cfg.AdditionalData,
		"strict":          &cfg.Strict,
		"dry-run":         &cfg.DryRun,
		"force":           &cfg.Force,
		"verbose":         &cfg.Verbose,
	}
	for name, dst := range boolFlags {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.OpenAPI = strings.TrimSpace(c.OpenAPI)
	c.Output = strings.TrimSpace(c.Output)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.ClassName = strings.TrimSpace(c.ClassName)
	c.NamespaceName = strings.TrimSpace(c.NamespaceName)
	c.Language = strings.ToLower(strings.TrimSpace(c.Language))
	c.IncludePaths = sanitizePatterns(c.IncludePaths)
	c.ExcludePaths = sanitizePatterns(c.ExcludePaths)
	if c.Output == "" {
		c.Output = "output"
	}
}

func (c *GenerateConfig) validate() error {
	if c.OpenAPI == "" {
		return newUsageError("generate: --openapi is required (set via flag or config file)")
	}

	format, err := irdump.ParseFormat(c.Format)
	if err != nil {
		return newUsageError("generate: " + err.Error())
	}
	c.Format = string(format)

	overlap := intersect(c.IncludePaths, c.ExcludePaths)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude patterns overlap: %s", strings.Join(overlap, ", ")))
	}

	if err := c.builderConfig().Validate(); err != nil {
		return newUsageError("generate: " + err.Error())
	}
	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig, stdout, stderr io.Writer) error {
	log := logging.New(stderr, cfg.Verbose)

	doc, err := spec.Load(ctx, cfg.OpenAPI, spec.WithLogger(log))
	if err != nil {
		return friendlyError(err)
	}
	if err := spec.FilterPaths(doc, cfg.filter(), log); err != nil {
		return friendlyError(err)
	}

	b, err := builder.New(cfg.builderConfig(), builder.WithLogger(log))
	if err != nil {
		return friendlyError(err)
	}
	res, err := b.Build(ctx, doc)
	if err != nil {
		return friendlyError(err)
	}
	if n := len(res.Unresolved); n > 0 {
		log.Warn("model has unresolved type references", "count", n)
	}

	absOut := cfg.Output
	if ap, err := filepath.Abs(cfg.Output); err == nil {
		absOut = ap
	}

	out, err := irdump.Emit(ctx, res, irdump.Options{
		OutDir: cfg.Output,
		Format: irdump.Format(cfg.Format),
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
		Logger: log,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}
	if cfg.DryRun {
		paths := make([]string, 0, len(out.Planned))
		for _, p := range out.Planned {
			paths = append(paths, p.RelPath)
		}
		printPlan(stdout, absOut, paths)
	}
	return nil
}

func printPlan(w io.Writer, outDir string, relPaths []string) {
	fmt.Fprintf(w, "Planned writes to %s (%d files):\n", outDir, len(relPaths))
	for _, p := range relPaths {
		fmt.Fprintf(w, "- %s\n", p)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	if errors.Is(err, irdump.ErrOutputNotEmpty) || errors.Is(err, os.ErrPermission) {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --output or use --force when appropriate.", outDir, err))
	}
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --output.", outDir, err))
	}
	return err
}

func sanitizePatterns(patterns []string) []string {
	if len(patterns) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, p := range patterns {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		if err := applyConfigField(cfg, normalizeKey(key), value); err != nil {
			if errors.Is(err, errUnknownField) {
				return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
			}
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
	}

	return nil
}

var errUnknownField = errors.New("unknown field")

func applyConfigField(cfg *GenerateConfig, key string, value any) error {
	setString := func(dst *string) error {
		str, err := valueAsString(value)
		if err != nil {
			return err
		}
		*dst = str
		return nil
	}
	setBool := func(dst *bool) error {
		b, err := valueAsBool(value)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
	setList := func(dst *[]string) error {
		list, err := valueAsStringSlice(value)
		if err != nil {
			return err
		}
		*dst = sanitizePatterns(list)
		return nil
	}

	switch key {
	case "openapi", "input":
		return setString(&cfg.OpenAPI)
	case "output", "out":
		return setString(&cfg.Output)
	case "format":
		return setString(&cfg.Format)
	case "includepath", "includepaths", "includepatterns":
		return setList(&cfg.IncludePaths)
	case "excludepath", "excludepaths", "excludepatterns":
		return setList(&cfg.ExcludePaths)
	case "classname", "clientclassname":
		return setString(&cfg.ClassName)
	case "namespacename", "clientnamespacename":
		return setString(&cfg.NamespaceName)
	case "language":
		return setString(&cfg.Language)
	case "backingstore", "usesbackingstore":
		return setBool(&cfg.BackingStore)
	case "additionaldata", "includeadditionaldata":
		return setBool(&cfg.AdditionalData)
	case "strict":
		return setBool(&cfg.Strict)
	case "dryrun":
		return setBool(&cfg.DryRun)
	case "force":
		return setBool(&cfg.Force)
	case "verbose":
		return setBool(&cfg.Verbose)
	default:
		return errUnknownField
	}
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
