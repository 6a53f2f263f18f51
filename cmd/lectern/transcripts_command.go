package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lectern/internal/subtitles"
	"lectern/internal/textnorm"
)

func newTranscriptsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcripts <srt-dir> <output-dir>",
		Short: "Convert SRT captions into cleaned transcript text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.componentLogger("transcripts")
			if err != nil {
				return err
			}

			inputDir, outputDir := args[0], args[1]
			entries, err := os.ReadDir(inputDir)
			if err != nil {
				return fmt.Errorf("read srt directory: %w", err)
			}
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			var sources []string
			for _, entry := range entries {
				if entry.IsDir() || filepath.Ext(entry.Name()) != ".srt" {
					continue
				}
				sources = append(sources, entry.Name())
			}

			written, skipped, failed := 0, 0, 0
			for index, name := range sources {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				position := fmt.Sprintf("[%d/%d]", index+1, len(sources))

				// yt-dlp subtitle names carry a language tag; strip every
				// extension so lec1.en.srt becomes lec1.txt.
				base := name
				for ext := filepath.Ext(base); ext != ""; ext = filepath.Ext(base) {
					base = strings.TrimSuffix(base, ext)
				}
				target := filepath.Join(outputDir, base+".txt")
				if _, err := os.Stat(target); err == nil {
					skipped++
					logger.Info(fmt.Sprintf("%s skipping %s, transcript exists", position, name))
					continue
				}

				logger.Info(fmt.Sprintf("%s cleaning %s", position, name))
				if err := cleanTranscript(filepath.Join(inputDir, name), target); err != nil {
					failed++
					logger.Error(fmt.Sprintf("%s failed to clean %s", position, name), "error", err)
					continue
				}
				written++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d transcripts to %s (%d skipped, %d failed)\n",
				written, outputDir, skipped, failed)
			return nil
		},
	}
	return cmd
}

func cleanTranscript(sourcePath, targetPath string) error {
	source, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("open srt: %w", err)
	}
	defer source.Close()

	raw, err := subtitles.ExtractText(source)
	if err != nil {
		return err
	}
	cleaned := textnorm.Clean(raw)
	if cleaned == "" {
		return fmt.Errorf("captions produced an empty transcript")
	}
	if err := os.WriteFile(targetPath, []byte(cleaned+"\n"), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}
