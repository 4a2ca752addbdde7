package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spruce/pkg/report"
	"github.com/matzehuels/spruce/pkg/store"
)

// historyCommand creates the history command.
func (c *CLI) historyCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved report runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.List(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if c.jsonOutput {
				return printJSON(out, runs)
			}
			if len(runs) == 0 {
				printInfo(out, "No saved runs")
				return nil
			}
			t := newTable("ID", "When", "Command", "Keep", "Reports")
			for _, r := range runs {
				var parts []string
				for _, s := range r.Summaries {
					parts = append(parts, fmt.Sprintf("%s=%d", s.Report, s.Items))
				}
				t.Row(r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Command,
					strconv.Itoa(r.Options.Keep), strings.Join(parts, " "))
			}
			fmt.Fprintln(out, t.Render())
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to list, 0 for all")
	cmd.AddCommand(c.historyShowCommand())
	cmd.AddCommand(c.historyDeleteCommand())
	return cmd
}

func (c *CLI) historyShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := store.ValidateID(args[0]); err != nil {
				return err
			}
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			run, err := st.Get(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if c.jsonOutput {
				return printJSON(out, run)
			}
			printKeyValue(out, "ID", run.ID)
			printKeyValue(out, "Created", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			printKeyValue(out, "Command", run.Command)
			printKeyValue(out, "Repository", run.RepoPath)
			printKeyValue(out, "Keep", strconv.Itoa(run.Options.Keep))
			printKeyValue(out, "Channels", strings.Join(run.Options.Channels, ", "))
			fmt.Fprintln(out)
			t := newTable("Report", "Items", "Size")
			for _, s := range run.Summaries {
				t.Row(s.Report, strconv.Itoa(s.Items), report.HumanSize(s.TotalSize))
			}
			fmt.Fprintln(out, t.Render())
			for _, d := range run.Diagnostics {
				printWarning(out, "%s", d)
			}
			return nil
		},
	}
}

func (c *CLI) historyDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := store.ValidateID(args[0]); err != nil {
				return err
			}
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Deleted run %s", args[0])
			return nil
		},
	}
}
