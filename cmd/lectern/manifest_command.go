package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"lectern/internal/manifest"
	"lectern/internal/media/ffprobe"
	"lectern/internal/notifications"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Build or inspect the training manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifestBuild(cmd, ctx)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "build",
		Short: "Build the manifest from processed audio and transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifestBuild(cmd, ctx)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check that every manifest line parses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			entries, err := manifest.Read(cfg.Paths.ManifestPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Manifest OK: %d entries in %s\n", len(entries), cfg.Paths.ManifestPath)
			return nil
		},
	})
	return cmd
}

func runManifestBuild(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.componentLogger("manifest")
	if err != nil {
		return err
	}

	summary, err := manifest.Build(cmd.Context(), manifest.BuildOptions{
		AudioDir:      cfg.Paths.FinalAudioDir,
		TranscriptDir: cfg.Paths.TranscriptDir,
		ManifestPath:  cfg.Paths.ManifestPath,
		FallbackDuration: func(ctx context.Context, path string) (float64, error) {
			result, err := ffprobe.Inspect(ctx, cfg.FFprobeBinary(), path)
			if err != nil {
				return 0, err
			}
			return result.DurationSeconds(), nil
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	notifier := notifications.NewService(cfg)
	if err := notifier.NotifyManifestBuilt(cmd.Context(), summary.Written, summary.ManifestPath); err != nil {
		logger.Warn("failed to send manifest notification", "error", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d entries to %s (%d without transcripts, %d failed)\n",
		summary.Written, summary.ManifestPath, summary.SkippedNoTx, summary.Failed)
	return nil
}
