package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lectern/internal/catalog"
	"lectern/internal/deps"
	"lectern/internal/notifications"
	"lectern/internal/pipeline"
	"lectern/internal/preflight"
	"lectern/internal/services/ffmpeg"
	"lectern/internal/services/ytdlp"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipManifest bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process every queued lecture through all pipeline stages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.componentLogger("pipeline")
			if err != nil {
				return err
			}

			statuses := preflight.CheckSystemDeps(cfg)
			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required tools: %v", missing)
			}
			for _, result := range preflight.CheckDirectories(cfg) {
				if !result.Passed {
					return fmt.Errorf("%s check failed: %s", result.Name, result.Detail)
				}
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			// Pick up any lectures published since the last fetch. A
			// discovery failure should not block processing what is
			// already queued.
			if url := strings.TrimSpace(cfg.Course.URL); url != "" {
				ids, err := catalog.NewClient().FetchVideoIDs(cmd.Context(), url)
				if err != nil {
					logger.Warn("course discovery failed, continuing with queued items", "error", err)
				} else {
					added, err := enqueueLectures(cmd.Context(), store, ids)
					if err != nil {
						return err
					}
					logger.Info("discovered lectures", "count", len(ids), "added", added)
				}
			}

			downloader := ytdlp.NewCLI(ytdlp.WithBinary(cfg.YtDlpBinary()))
			transcoder := ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.FFmpegBinary()))
			notifier := notifications.NewService(cfg)

			runner, err := pipeline.NewRunner(
				cfg,
				store,
				pipeline.Stages(cfg, downloader, transcoder),
				pipeline.WithLogger(logger),
				pipeline.WithNotifier(notifier),
			)
			if err != nil {
				return err
			}

			report, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s finished in %s: %d lectures completed, %d failed\n",
				report.SessionID, report.Duration.Round(time.Second), report.Processed, report.Failed)

			if skipManifest {
				return nil
			}
			return runManifestBuild(cmd, ctx)
		},
	}

	cmd.Flags().BoolVar(&skipManifest, "skip-manifest", false, "Do not rebuild the manifest after the run")
	return cmd
}
