package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"splitcast/internal/deps"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that required external tools are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, sectionHeader("External tools", colorize))

			missing := 0
			for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
				if status.Available {
					fmt.Fprintf(out, "  %-18s %s (%s)\n", status.Name+":", colorText("OK", ansiGreen, colorize), status.Command)
					continue
				}
				missing++
				fmt.Fprintf(out, "  %-18s %s %s\n", status.Name+":", colorText("MISSING", ansiRed, colorize), status.Detail)
				if status.Description != "" {
					fmt.Fprintf(out, "  %-18s %s\n", "", status.Description)
				}
			}
			if missing > 0 {
				return errors.New("missing required tools; install them or point the config at their locations")
			}
			fmt.Fprintln(out, "All required tools found")
			return nil
		},
	}
}
