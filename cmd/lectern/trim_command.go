package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lectern/internal/audio"
)

func newTrimCommand(ctx *commandContext) *cobra.Command {
	var (
		threshold float64
		tailMs    int
		strict    bool
	)

	cmd := &cobra.Command{
		Use:   "trim <input-dir> <output-dir>",
		Short: "Remove trailing silence from WAV files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.componentLogger("trim")
			if err != nil {
				return err
			}

			if threshold == 0 {
				threshold = cfg.Audio.SilenceThreshold
			}
			if tailMs == 0 {
				tailMs = cfg.Audio.SilenceTailMs
			}

			summary, err := audio.TrimSilence(cmd.Context(), audio.TrimOptions{
				InputDir:  args[0],
				OutputDir: args[1],
				Threshold: threshold,
				TailMs:    tailMs,
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Total", "Trimmed", "Skipped", "Failed"},
				[][]string{{
					strconv.Itoa(summary.Total),
					strconv.Itoa(summary.Converted),
					strconv.Itoa(summary.Skipped),
					strconv.Itoa(summary.Failed),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
			))
			fmt.Fprintf(out, "Processed %d files into %s\n", summary.Processed(), summary.OutputDir)

			if strict && summary.Failed > 0 {
				return fmt.Errorf("%d of %d files failed to trim", summary.Failed, summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Silence amplitude threshold in (0,1) (defaults to config)")
	cmd.Flags().IntVar(&tailMs, "tail-ms", 0, "Audio to keep after the last audible sample (defaults to config)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any file fails to trim")
	return cmd
}
