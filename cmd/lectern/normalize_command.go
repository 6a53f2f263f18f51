package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lectern/internal/audio"
	"lectern/internal/services/ffmpeg"
)

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	var (
		sampleRate int
		channels   int
		extensions []string
		strict     bool
	)

	cmd := &cobra.Command{
		Use:   "normalize <input-dir> <output-dir>",
		Short: "Convert raw audio files to uniform WAV output",
		Long: `Normalize converts every supported audio file in the input directory
into a WAV file in the output directory with a fixed sample rate and
channel count. Files whose output already exists are skipped, so an
interrupted run can be re-invoked safely. A file that fails to convert
is reported and counted without stopping the rest of the batch.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.componentLogger("normalize")
			if err != nil {
				return err
			}

			if sampleRate == 0 {
				sampleRate = cfg.Audio.SampleRate
			}
			if channels == 0 {
				channels = cfg.Audio.Channels
			}
			if len(extensions) == 0 {
				extensions = cfg.Audio.Extensions
			}

			summary, err := audio.Normalize(cmd.Context(), audio.NormalizeOptions{
				InputDir:   args[0],
				OutputDir:  args[1],
				SampleRate: sampleRate,
				Channels:   channels,
				Extensions: extensions,
				Transcoder: ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.FFmpegBinary())),
				Logger:     logger,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Total", "Converted", "Skipped", "Failed"},
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
				return fmt.Errorf("%d of %d files failed to convert", summary.Failed, summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&sampleRate, "sample-rate", 0, "Output sample rate in Hz (defaults to config)")
	cmd.Flags().IntVar(&channels, "channels", 0, "Output channel count (defaults to config)")
	cmd.Flags().StringSliceVar(&extensions, "ext", nil, "Source extensions to accept (defaults to config)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any file fails to convert")
	return cmd
}
