package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"splitcast/internal/config"
	"splitcast/internal/runs"
	"splitcast/internal/runstore"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var (
		segmentsCSV  string
		concatenated bool
		synchronized bool
		stereo       bool
		archives     bool
	)

	cmd := &cobra.Command{
		Use:   "process <recording>",
		Short: "Run the full separation pipeline on a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			outputs := resolveOutputs(cmd, cfg.Outputs, concatenated, synchronized, stereo, archives)

			store, err := runstore.Open(cfg.Paths.WorkDir)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "run history unavailable: %v\n", err)
				store = nil
			}
			if store != nil {
				defer store.Close()
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner := runs.NewRunner(cfg, logger, store)
			report, runErr := runner.Run(runCtx, runs.Options{
				Source:      args[0],
				SegmentsCSV: segmentsCSV,
				Outputs:     outputs,
			})
			if report != nil {
				renderReport(cmd.OutOrStdout(), report)
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&segmentsCSV, "segments", "", "Reuse an existing segmentation export (CSV or JSON) instead of running the segmenter")
	cmd.Flags().BoolVar(&concatenated, "concatenated", true, "Produce concatenated per-speaker tracks")
	cmd.Flags().BoolVar(&synchronized, "synchronized", true, "Produce duration-preserving synchronized tracks")
	cmd.Flags().BoolVar(&stereo, "stereo", true, "Produce a stereo mix of the synchronized tracks")
	cmd.Flags().BoolVar(&archives, "archives", false, "Archive the individual segment clips per speaker")

	return cmd
}

// resolveOutputs starts from the configured defaults and applies only the
// flags the user actually set.
func resolveOutputs(cmd *cobra.Command, defaults config.Outputs, concatenated, synchronized, stereo, archives bool) config.Outputs {
	outputs := defaults
	if cmd.Flags().Changed("concatenated") {
		outputs.Concatenated = concatenated
	}
	if cmd.Flags().Changed("synchronized") {
		outputs.Synchronized = synchronized
	}
	if cmd.Flags().Changed("stereo") {
		outputs.Stereo = stereo
	}
	if cmd.Flags().Changed("archives") {
		outputs.Archives = archives
	}
	return outputs
}
