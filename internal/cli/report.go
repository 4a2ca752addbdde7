package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spruce/pkg/errors"
	"github.com/matzehuels/spruce/pkg/pipeline"
	"github.com/matzehuels/spruce/pkg/pkginfo"
	"github.com/matzehuels/spruce/pkg/report"
)

// reportCommand creates the report command.
func (c *CLI) reportCommand() *cobra.Command {
	var q queryFlags
	var noHistory bool

	names := make([]string, 0, len(report.Names()))
	for _, n := range report.Names() {
		names = append(names, string(n))
	}

	cmd := &cobra.Command{
		Use:   "report [name...]",
		Short: "Print repository reports",
		Long: `Print one or more reports. With no name every report is printed.

Available reports: ` + strings.Join(names, ", "),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &q)
			if err != nil {
				return err
			}
			for _, a := range args {
				n, err := report.ParseName(a)
				if err != nil {
					return err
				}
				opts.Reports = append(opts.Reports, n)
			}
			return c.runReports(cmd, opts, !noHistory)
		},
	}
	q.register(cmd)
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not save this run to the history store")
	return cmd
}

func (c *CLI) runReports(cmd *cobra.Command, opts pipeline.Options, saveHistory bool) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, err := runner.Run(ctx, opts)
	if err != nil {
		return err
	}
	prog.done("reports ready", "cached", res.CacheHit)

	if saveHistory {
		c.saveRun(cmd, res, opts)
	}

	out := cmd.OutOrStdout()
	if c.jsonOutput {
		return printJSON(out, res)
	}
	printStats(out, res.Stats.Groups, res.Stats.Versions, res.CacheHit)
	fmt.Fprintln(out)
	for _, r := range res.Reports {
		printReport(out, r)
	}
	if n := len(res.Diagnostics); n > 0 {
		printWarning(out, "%d diagnostics, see `%s diagnostics`", n, appName)
	}
	return nil
}

// saveRun records res in the history store. Failures are logged only.
func (c *CLI) saveRun(cmd *cobra.Command, res *pipeline.Result, opts pipeline.Options) {
	ctx := cmd.Context()
	st, err := c.newStore(ctx)
	if err != nil {
		c.Logger.Warn("history disabled", "err", err)
		return
	}
	defer st.Close()
	if opts.ValidateAndSetDefaults() != nil {
		return
	}
	run := res.HistoryRun(cmd.Name(), opts)
	if err := st.Save(ctx, run); err != nil {
		c.Logger.Warn("saving run failed", "err", err)
		return
	}
	c.Logger.Debug("saved run", "id", run.ID)
}

// usedCommand creates the used command.
func (c *CLI) usedCommand() *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "used",
		Short: "List the package versions reachable from the manifests",
		Long: `List every package version that some manifest entry point can still reach,
following requires and update_for edges, for every simulated OS release.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := c.options(cmd, &q)
			if err != nil {
				return err
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
			used, err := runner.Used(ctx, st, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if c.jsonOutput {
				return printJSON(out, used.Strings())
			}
			items := make([]report.Item, 0, used.Len())
			for _, v := range used.Sorted() {
				items = append(items, report.Item{
					Name:     v.Name(),
					Version:  v.Version(),
					Path:     v.MetadataPath(),
					Artifact: v.ArtifactPath(),
					Size:     v.ArtifactSize(),
				})
			}
			printReport(out, report.Report{
				Title:     fmt.Sprintf("Used items (keep %d)", opts.Keep),
				Items:     items,
				TotalSize: report.DiskUsage(used),
			})
			return nil
		},
	}
	q.register(cmd)
	return cmd
}

// diagnosticsCommand creates the diagnostics command.
func (c *CLI) diagnosticsCommand() *cobra.Command {
	var q queryFlags
	var strict bool

	cmd := &cobra.Command{
		Use:   "diagnostics",
		Short: "List dangling, malformed and unreachable references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := c.options(cmd, &q)
			if err != nil {
				return err
			}
			// The unused report resolves every entry point unfiltered.
			opts.Reports = []report.Name{report.NameUnused, report.NameLoadErrors}
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := runner.Run(ctx, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if c.jsonOutput {
				if err := printJSON(out, res.Diagnostics); err != nil {
					return err
				}
			} else {
				for _, d := range res.Diagnostics {
					printWarning(out, "%s", d.Message)
					printDetail(out, "%s", d.Kind)
				}
				for _, r := range res.Reports {
					if r.Name == report.NameLoadErrors {
						for _, it := range r.Items {
							printError(out, "%s: %s", it.Path, it.Detail)
						}
					}
				}
				if len(res.Diagnostics) == 0 {
					printSuccess(out, "no diagnostics")
				}
			}
			if strict && len(res.Diagnostics) > 0 {
				return errors.New(errors.ErrCodeInvalidInput, "%d diagnostics", len(res.Diagnostics))
			}
			return nil
		},
	}
	q.register(cmd)
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any diagnostic is found")
	return cmd
}

// planCommand creates the plan command.
func (c *CLI) planCommand() *cobra.Command {
	var q queryFlags
	var planOpts report.PlanOptions
	var from string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Propose package versions to remove",
		Long: `Propose a removal. --auto N removes every version reachable only beyond the
newest N per entry point; --name and --category remove whole packages; --from
reads a plist or YAML file whose "removals" array lists paths. Paths that are
not pkginfo files are listed as artifacts. The selections combine. Nothing is
deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := c.options(cmd, &q)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			sel := planOpts
			if from != "" {
				paths, err := pkginfo.LoadRemovals(from)
				if err != nil {
					return err
				}
				sel.Paths = append(slices.Clone(sel.Paths), paths...)
			}

			plan, cached, err := runner.Plan(ctx, opts, sel)
			if err != nil {
				return err
			}
			c.Logger.Debug("plan ready", "cached", cached)

			out := cmd.OutOrStdout()
			if c.jsonOutput {
				return printJSON(out, plan)
			}
			printReport(out, plan.Removals)
			if len(plan.ManifestRemovals) > 0 {
				fmt.Fprintln(out, styleTitle.Render("Remove from manifests"))
				for _, name := range plan.ManifestRemovals {
					printInfo(out, "%s", name)
				}
				fmt.Fprintln(out)
			}
			if len(plan.Artifacts) > 0 {
				fmt.Fprintln(out, styleTitle.Render("Other paths"))
				for _, p := range plan.Artifacts {
					printInfo(out, "%s", p)
				}
				fmt.Fprintln(out)
			}
			for _, w := range plan.Warnings {
				printWarning(out, "%s", w)
			}
			return nil
		},
	}
	q.register(cmd)
	cmd.Flags().IntVar(&planOpts.Level, "auto", 0, "remove versions beyond the newest N per entry point")
	cmd.Flags().StringSliceVar(&planOpts.Names, "name", nil, "remove every version of these packages")
	cmd.Flags().StringSliceVar(&planOpts.Categories, "category", nil, "remove every version in these categories")
	cmd.Flags().StringVar(&from, "from", "", "remove the paths listed in a plist or YAML removals file")
	return cmd
}

// namesCommand creates the names command.
func (c *CLI) namesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "names [filter]",
		Short: "List package names and versions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := c.options(cmd, nil)
			if err != nil {
				return err
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
			filter := ""
			if len(args) == 1 {
				filter = args[0]
			}
			products := report.Products(st.Graph, filter)

			out := cmd.OutOrStdout()
			if c.jsonOutput {
				return printJSON(out, products)
			}
			t := newTable("Name", "Versions")
			for _, p := range products {
				t.Row(p.Name, strings.Join(p.Versions, ", "))
			}
			fmt.Fprintln(out, t.Render())
			printDetail(out, "%d packages", len(products))
			return nil
		},
	}
	return cmd
}
