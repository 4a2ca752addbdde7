package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spruce/pkg/render/dot"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var q queryFlags
	var output string
	var format string
	var highlight bool
	var detailed bool

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the package graph for Graphviz",
		Long: `Export the package graph. The format follows the output file's extension
(.dot, .svg or .png) unless --format is given. Without -o, DOT source is
written to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := c.options(cmd, &q)
			if err != nil {
				return err
			}
			if format == "" {
				format = dot.FormatDOT
				if ext := strings.TrimPrefix(filepath.Ext(output), "."); ext != "" {
					format = strings.ToLower(ext)
				}
			}
			if output == "" && format != dot.FormatDOT {
				return fmt.Errorf("format %s needs an output file (-o)", format)
			}

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			st, err := runner.Load(ctx, opts)
			if err != nil {
				return err
			}
			dotOpts := dot.Options{Detailed: detailed}
			if highlight {
				if dotOpts.Highlight, err = runner.Used(ctx, st, opts); err != nil {
					return err
				}
			}

			prog := newProgress(c.Logger)
			data, err := dot.Render(ctx, dot.ToDOT(st.Graph, dotOpts), format)
			if err != nil {
				return err
			}
			prog.done("rendered graph", "format", format)

			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess(cmd.OutOrStdout(), "Wrote %s graph", format)
			printFile(cmd.OutOrStdout(), output)
			return nil
		},
	}
	q.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: dot, svg, png")
	cmd.Flags().BoolVar(&highlight, "highlight-used", true, "fill the versions in use")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add OS range and catalogs to labels")
	return cmd
}
