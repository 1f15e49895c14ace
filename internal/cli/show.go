package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/kiotago/internal/logging"
	"github.com/mark3labs/kiotago/internal/spec"
	"github.com/mark3labs/kiotago/internal/urltree"
)

// ShowConfig captures the options for the show command.
type ShowConfig struct {
	OpenAPI      string
	IncludePaths []string
	ExcludePaths []string
	Verbose      bool
}

var showRunner = runShow

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the URL tree of an OpenAPI document",
		Long:  "Print the URL tree the request builders are derived from, with the HTTP operations bound to each segment.",
		Example: strings.TrimSpace(`  kiotago show --openapi openapi.yaml
  kiotago show -d openapi.yaml --include-path '/users/**'`),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			cfg := &ShowConfig{}
			var err error
			if cfg.OpenAPI, err = flags.GetString("openapi"); err != nil {
				return err
			}
			if cfg.IncludePaths, err = flags.GetStringSlice("include-path"); err != nil {
				return err
			}
			if cfg.ExcludePaths, err = flags.GetStringSlice("exclude-path"); err != nil {
				return err
			}
			if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
				return err
			}
			cfg.OpenAPI = strings.TrimSpace(cfg.OpenAPI)
			if cfg.OpenAPI == "" {
				return newUsageError("show: --openapi is required")
			}
			cfg.IncludePaths = sanitizePatterns(cfg.IncludePaths)
			cfg.ExcludePaths = sanitizePatterns(cfg.ExcludePaths)
			return showRunner(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringP("openapi", "d", "", "Path or URL to the OpenAPI/Swagger document")
	flags.StringSliceP("include-path", "i", nil, "Glob patterns of the paths to include")
	flags.StringSliceP("exclude-path", "e", nil, "Glob patterns of the paths to exclude")

	return cmd
}

func runShow(ctx context.Context, cfg *ShowConfig, stdout, stderr io.Writer) error {
	log := logging.New(stderr, cfg.Verbose)
	doc, err := spec.Load(ctx, cfg.OpenAPI, spec.WithLogger(log))
	if err != nil {
		return friendlyError(err)
	}
	if err := spec.FilterPaths(doc, spec.Filter{Include: cfg.IncludePaths, Exclude: cfg.ExcludePaths}, log); err != nil {
		return friendlyError(err)
	}
	tree, err := urltree.Build(doc.Paths)
	if err != nil {
		return newUsageError("show: " + err.Error())
	}
	printTree(stdout, tree)
	return nil
}

// printTree writes one line per node:
//
//	/
//	└─ pets [GET, POST]
//	   └─ {id} [GET]
func printTree(w io.Writer, root *urltree.Node) {
	fmt.Fprintln(w, "/"+operationsLabel(root))
	var visit func(n *urltree.Node, prefix string)
	visit = func(n *urltree.Node, prefix string) {
		children := n.SortedChildren()
		for i, child := range children {
			branch, indent := "├─ ", "│  "
			if i == len(children)-1 {
				branch, indent = "└─ ", "   "
			}
			fmt.Fprintln(w, prefix+branch+child.Segment+operationsLabel(child))
			visit(child, prefix+indent)
		}
	}
	visit(root, "")
}

func operationsLabel(n *urltree.Node) string {
	ops := n.Operations()
	if len(ops) == 0 {
		return ""
	}
	methods := make([]string, 0, len(ops))
	for _, op := range ops {
		methods = append(methods, op.Method)
	}
	return " [" + strings.Join(methods, ", ") + "]"
}
