package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// TrimOptions configures a trailing-silence removal pass.
type TrimOptions struct {
	InputDir  string
	OutputDir string
	// Threshold is the normalized amplitude at or below which a sample
	// counts as silence, in (0, 1). Zero selects 0.01.
	Threshold float64
	// TailMs is how much audio to keep after the last audible sample so
	// words are not clipped mid-decay. Zero selects 500ms.
	TailMs int
	Logger *slog.Logger
}

// TrimSilence removes trailing silence from every WAV file in
// opts.InputDir, writing trimmed copies into opts.OutputDir. Existing
// targets are skipped and per-file failures do not stop the run.
func TrimSilence(ctx context.Context, opts TrimOptions) (RunSummary, error) {
	inputDir := strings.TrimSpace(opts.InputDir)
	outputDir := strings.TrimSpace(opts.OutputDir)
	if inputDir == "" || outputDir == "" {
		return RunSummary{}, ErrInvalidArguments
	}

	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		return RunSummary{}, fmt.Errorf("%w: %s", ErrMissingInputDirectory, inputDir)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = 0.01
	}
	tailMs := opts.TailMs
	if tailMs <= 0 {
		tailMs = 500
	}

	sources, err := discoverSources(inputDir, []string{".wav"})
	if err != nil {
		return RunSummary{}, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return RunSummary{}, fmt.Errorf("create output directory: %w", err)
	}

	summary := RunSummary{OutputDir: outputDir, Total: len(sources)}
	for index, source := range sources {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		name := filepath.Base(source)
		target := filepath.Join(outputDir, name)
		position := fmt.Sprintf("[%d/%d]", index+1, summary.Total)

		if _, err := os.Stat(target); err == nil {
			summary.Skipped++
			logger.Info(fmt.Sprintf("%s skipping %s, output exists", position, name))
			continue
		}

		logger.Info(fmt.Sprintf("%s trimming %s", position, name))
		if err := TrimFile(source, target, threshold, tailMs); err != nil {
			summary.Failed++
			logger.Error(fmt.Sprintf("%s failed to trim %s", position, name), "error", err)
			continue
		}
		summary.Converted++
	}

	logger.Info("silence trimming complete",
		"processed", summary.Processed(),
		"trimmed", summary.Converted,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"output_dir", outputDir)
	return summary, nil
}

// TrimFile rewrites sourcePath into targetPath with trailing silence
// removed. Silence is any run of samples whose normalized amplitude stays
// at or below threshold; tailMs of audio after the last audible sample is
// kept. A file with no audible sample at all is copied unchanged.
func TrimFile(sourcePath, targetPath string, threshold float64, tailMs int) error {
	source, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer source.Close()

	decoder := wav.NewDecoder(source)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("decode wav: %w", err)
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return errors.New("decode wav: empty audio data")
	}

	end := lastAudibleFrame(buf, decoder.BitDepth, threshold)
	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	tailFrames := buf.Format.SampleRate * tailMs / 1000
	frames := len(buf.Data) / channels
	keep := end + 1 + tailFrames
	if end < 0 {
		// No audible sample anywhere: copy the file unchanged rather
		// than reducing it to the tail buffer.
		keep = frames
	}
	if keep > frames {
		keep = frames
	}

	trimmed := &audio.IntBuffer{
		Format:         buf.Format,
		Data:           buf.Data[:keep*channels],
		SourceBitDepth: buf.SourceBitDepth,
	}

	target, err := os.Create(targetPath)
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}

	encoder := wav.NewEncoder(target, buf.Format.SampleRate, int(decoder.BitDepth), channels, int(decoder.WavAudioFormat))
	if err := encoder.Write(trimmed); err != nil {
		target.Close()
		os.Remove(targetPath)
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := encoder.Close(); err != nil {
		target.Close()
		os.Remove(targetPath)
		return fmt.Errorf("finalize wav: %w", err)
	}
	return target.Close()
}

// lastAudibleFrame scans backwards for the final frame containing a
// sample above the threshold. Returns -1 when the whole file is silent.
func lastAudibleFrame(buf *audio.IntBuffer, bitDepth uint16, threshold float64) int {
	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	maxAmp := float64(int(1) << (bitDepth - 1))
	if maxAmp <= 0 {
		maxAmp = 1 << 15
	}

	frames := len(buf.Data) / channels
	for frame := frames - 1; frame >= 0; frame-- {
		for ch := 0; ch < channels; ch++ {
			sample := buf.Data[frame*channels+ch]
			if sample < 0 {
				sample = -sample
			}
			if float64(sample)/maxAmp > threshold {
				return frame
			}
		}
	}
	return -1
}
