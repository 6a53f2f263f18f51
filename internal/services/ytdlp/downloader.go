package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// commandContext is swapped in tests to observe invocations.
var commandContext = exec.CommandContext

// AudioOptions controls an audio download.
type AudioOptions struct {
	// OutputDir receives the extracted audio file named <video id>.wav.
	OutputDir string
	// CookiesFile, when set, is passed through for authenticated courses.
	CookiesFile string
}

// SubtitleOptions controls a subtitle-only download.
type SubtitleOptions struct {
	// OutputDir receives the converted .srt file.
	OutputDir string
	// Language selects the subtitle track, e.g. "en".
	Language string
	// CookiesFile, when set, is passed through for authenticated courses.
	CookiesFile string
}

// Downloader fetches lecture media for a single video ID.
type Downloader interface {
	Available() error
	DownloadAudio(ctx context.Context, videoID string, opts AudioOptions) error
	DownloadSubtitles(ctx context.Context, videoID string, opts SubtitleOptions) error
}

// Option customizes the CLI downloader.
type Option func(*CLI)

// WithBinary overrides the yt-dlp executable path.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		trimmed := strings.TrimSpace(binary)
		if trimmed != "" {
			c.binary = trimmed
		}
	}
}

// CLI shells out to the yt-dlp binary.
type CLI struct {
	binary string
}

// NewCLI constructs a downloader backed by the yt-dlp executable.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "yt-dlp"}
	for _, opt := range opts {
		if opt != nil {
			opt(cli)
		}
	}
	return cli
}

// Available reports whether the yt-dlp binary can be located.
func (c *CLI) Available() error {
	if _, err := exec.LookPath(c.binary); err != nil {
		return fmt.Errorf("yt-dlp not found: %w", err)
	}
	return nil
}

// DownloadAudio extracts a WAV audio track for the given video ID into
// opts.OutputDir. The output is named after the video ID so retries and
// queue recovery can locate it deterministically.
func (c *CLI) DownloadAudio(ctx context.Context, videoID string, opts AudioOptions) error {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return errors.New("ytdlp download: empty video id")
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		return errors.New("ytdlp download: empty output dir")
	}

	args := []string{
		"--extract-audio",
		"--audio-format", "wav",
		"--no-playlist",
		"--output", filepath.Join(opts.OutputDir, "%(id)s.%(ext)s"),
	}
	if cookies := strings.TrimSpace(opts.CookiesFile); cookies != "" {
		args = append(args, "--cookies", cookies)
	}
	args = append(args, "--", videoID)

	return c.run(ctx, args)
}

// DownloadSubtitles fetches the manual or auto-generated subtitle track
// for the given video ID, converted to SRT, without downloading media.
func (c *CLI) DownloadSubtitles(ctx context.Context, videoID string, opts SubtitleOptions) error {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return errors.New("ytdlp subtitles: empty video id")
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		return errors.New("ytdlp subtitles: empty output dir")
	}
	language := strings.TrimSpace(opts.Language)
	if language == "" {
		language = "en"
	}

	args := []string{
		"--skip-download",
		"--write-sub",
		"--write-auto-sub",
		"--sub-lang", language,
		"--sub-format", "vtt",
		"--convert-subs", "srt",
		"--no-playlist",
		"--output", filepath.Join(opts.OutputDir, "%(id)s.%(ext)s"),
	}
	if cookies := strings.TrimSpace(opts.CookiesFile); cookies != "" {
		args = append(args, "--cookies", cookies)
	}
	args = append(args, "--", videoID)

	return c.run(ctx, args)
}

func (c *CLI) run(ctx context.Context, args []string) error {
	cmd := commandContext(ctx, c.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail != "" {
			return fmt.Errorf("yt-dlp failed: %w: %s", err, detail)
		}
		return fmt.Errorf("yt-dlp failed: %w", err)
	}
	return nil
}
