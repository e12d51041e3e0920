package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"splitcast/internal/media/ffprobe"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <recording>",
		Short: "Show audio stream details for a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			info, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Container: %s\n", info.Format.FormatName)
			fmt.Fprintf(out, "Duration:  %.3fs\n", info.DurationSeconds())
			fmt.Fprintf(out, "Audio streams: %d\n", info.AudioStreamCount())
			if stream, ok := info.AudioStream(); ok {
				fmt.Fprintf(out, "Codec:     %s\n", stream.CodecName)
				fmt.Fprintf(out, "Rate:      %d Hz\n", info.SampleRate())
				fmt.Fprintf(out, "Channels:  %d\n", info.ChannelCount())
			} else {
				fmt.Fprintln(out, "No audio stream found; splitcast cannot process this file")
			}
			return nil
		},
	}
}
