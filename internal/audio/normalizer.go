package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"lectern/internal/services/ffmpeg"
)

// Pre-flight failures abort a run before any file is touched.
var (
	// ErrInvalidArguments indicates an empty input or output directory path.
	ErrInvalidArguments = errors.New("input and output directories are required")
	// ErrMissingInputDirectory indicates the input path does not exist or is not a directory.
	ErrMissingInputDirectory = errors.New("input directory does not exist")
	// ErrMissingDependency indicates the transcoder backend is unavailable.
	ErrMissingDependency = errors.New("transcoder is not available")
)

// NormalizeOptions configures a batch normalization run.
type NormalizeOptions struct {
	InputDir  string
	OutputDir string
	// SampleRate and Channels define the output profile. Zero values fall
	// back to 16 kHz mono, the profile speech models are trained against.
	SampleRate int
	Channels   int
	// Extensions is the whitelist of source extensions, matched
	// case-sensitively against the file name. Empty selects the defaults.
	Extensions []string
	Transcoder ffmpeg.Transcoder
	Logger     *slog.Logger
}

// RunSummary reports the outcome of a normalization run.
type RunSummary struct {
	OutputDir string
	Total     int
	Converted int
	Skipped   int
	Failed    int
}

// Processed counts files that ended the run with a usable output.
func (s RunSummary) Processed() int {
	return s.Converted + s.Skipped
}

func defaultExtensions() []string {
	return []string{".mp3", ".wav", ".m4a"}
}

// Normalize converts every whitelisted audio file in opts.InputDir into a
// WAV file in opts.OutputDir with the configured sample rate and channel
// count. Files whose target already exists are skipped without invoking
// the transcoder, so interrupted runs resume where they stopped. A failed
// conversion is logged and counted but does not stop the run.
func Normalize(ctx context.Context, opts NormalizeOptions) (RunSummary, error) {
	inputDir := strings.TrimSpace(opts.InputDir)
	outputDir := strings.TrimSpace(opts.OutputDir)
	if inputDir == "" || outputDir == "" {
		return RunSummary{}, ErrInvalidArguments
	}

	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		return RunSummary{}, fmt.Errorf("%w: %s", ErrMissingInputDirectory, inputDir)
	}

	if opts.Transcoder == nil {
		return RunSummary{}, ErrMissingDependency
	}
	if err := opts.Transcoder.Available(); err != nil {
		return RunSummary{}, fmt.Errorf("%w: %v", ErrMissingDependency, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sources, err := discoverSources(inputDir, opts.Extensions)
	if err != nil {
		return RunSummary{}, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return RunSummary{}, fmt.Errorf("create output directory: %w", err)
	}

	profile := ffmpeg.Options{SampleRate: opts.SampleRate, Channels: opts.Channels}
	if profile.SampleRate <= 0 {
		profile.SampleRate = 16000
	}
	if profile.Channels <= 0 {
		profile.Channels = 1
	}

	logger.Info("found audio files", "count", len(sources), "input_dir", inputDir)

	summary := RunSummary{OutputDir: outputDir, Total: len(sources)}
	for index, source := range sources {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		name := filepath.Base(source)
		target := filepath.Join(outputDir, targetName(name))
		position := fmt.Sprintf("[%d/%d]", index+1, summary.Total)

		if info, err := os.Stat(target); err == nil && info.Mode().IsRegular() {
			summary.Skipped++
			logger.Info(fmt.Sprintf("%s skipping %s, output exists", position, name))
			continue
		}

		logger.Info(fmt.Sprintf("%s converting %s", position, name))
		if err := opts.Transcoder.Transcode(ctx, source, target, profile); err != nil {
			summary.Failed++
			logger.Error(fmt.Sprintf("%s failed to convert %s", position, name), "error", err)
			continue
		}
		summary.Converted++
	}

	logger.Info("normalization complete",
		"processed", summary.Processed(),
		"converted", summary.Converted,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"output_dir", outputDir)
	return summary, nil
}

// discoverSources lists whitelisted audio files directly inside dir.
// Subdirectories are not descended into and extension matching is
// case-sensitive, so "LECTURE.MP3" is ignored by the default whitelist.
func discoverSources(dir string, extensions []string) ([]string, error) {
	if len(extensions) == 0 {
		extensions = defaultExtensions()
	}
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[ext] = struct{}{}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var sources []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := allowed[filepath.Ext(entry.Name())]; !ok {
			continue
		}
		sources = append(sources, filepath.Join(dir, entry.Name()))
	}
	return sources, nil
}

func targetName(sourceName string) string {
	base := strings.TrimSuffix(sourceName, filepath.Ext(sourceName))
	return base + ".wav"
}
