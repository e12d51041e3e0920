package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"splitcast/internal/runstore"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect run history",
	}
	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	return runsCmd
}

func (c *commandContext) withStore(fn func(*runstore.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := runstore.Open(cfg.Paths.WorkDir)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *runstore.Store) error {
				items, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, run := range items {
					rows = append(rows, []string{
						run.RunID,
						run.Status,
						run.StartedAt.Local().Format(time.RFC3339),
						fmt.Sprintf("%d", run.SegmentCount),
						fmt.Sprintf("%d", run.FailedSlices),
						run.SourcePath,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Run", "Status", "Started", "Segments", "Failed", "Source"},
					rows,
					3, 4,
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run and its artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *runstore.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:      %s\n", run.RunID)
				fmt.Fprintf(out, "Source:   %s\n", run.SourcePath)
				fmt.Fprintf(out, "Status:   %s\n", run.Status)
				fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format(time.RFC3339))
				if !run.FinishedAt.IsZero() {
					fmt.Fprintf(out, "Finished: %s\n", run.FinishedAt.Local().Format(time.RFC3339))
				}
				fmt.Fprintf(out, "Segments: %d (%d failed slices)\n", run.SegmentCount, run.FailedSlices)
				if run.Error != "" {
					fmt.Fprintf(out, "Error:    %s\n", run.Error)
				}

				artifacts, err := store.Artifacts(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if len(artifacts) == 0 {
					fmt.Fprintln(out, "No artifacts recorded")
					return nil
				}
				rows := make([][]string, 0, len(artifacts))
				for _, artifact := range artifacts {
					rows = append(rows, []string{artifact.Label, artifact.Kind, artifact.Path})
				}
				fmt.Fprintln(out, renderTable([]string{"Label", "Kind", "Path"}, rows))
				return nil
			})
		},
	}
}
