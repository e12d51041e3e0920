package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"splitcast/internal/segment"
	"splitcast/internal/segmenter"
)

func newSegmentCommand(ctx *commandContext) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "segment <recording>",
		Short: "Run speaker segmentation only and keep the CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			dest := outDir
			if dest == "" {
				dest = cfg.Paths.OutputDir
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc := segmenter.NewService(segmenter.Config{
				Command:   cfg.Segmenter.Command,
				ExtraArgs: cfg.Segmenter.ExtraArgs,
				Timeout:   time.Duration(cfg.Segmenter.TimeoutSeconds) * time.Second,
			})
			list, csvPath, err := svc.Segment(runCtx, args[0], dest)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Segmentation written to %s\n", csvPath)
			fmt.Fprintf(out, "%d segments across %.3fs of labeled audio\n", len(list), list.TotalDuration())

			totals := map[segment.Label]float64{}
			counts := map[segment.Label]int{}
			for _, seg := range list {
				totals[seg.Label] += seg.Duration()
				counts[seg.Label]++
			}

			labels := list.Labels()
			rows := make([][]string, 0, len(labels))
			for _, label := range labels {
				rows = append(rows, []string{
					labelTitle(label),
					fmt.Sprintf("%d", counts[label]),
					fmt.Sprintf("%.3fs", totals[label]),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Label", "Segments", "Total"}, rows, 1, 2))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory for the segmentation CSV (defaults to the output dir)")
	return cmd
}
