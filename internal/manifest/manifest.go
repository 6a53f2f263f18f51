// Package manifest builds and reads the training manifest: one JSON
// object per line pairing an audio file with its duration and cleaned
// transcript text.
package manifest

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
)

// Entry is a single manifest line.
type Entry struct {
	AudioFilepath string  `json:"audio_filepath"`
	Duration      float64 `json:"duration"`
	Text          string  `json:"text"`
}

// BuildSummary reports how a manifest build went.
type BuildSummary struct {
	ManifestPath string
	Written      int
	SkippedNoTx  int
	Failed       int
}

// DurationFunc resolves an audio file's duration in seconds. It exists so
// builds can fall back to ffprobe for containers the WAV reader cannot
// parse, and so tests can avoid real audio files.
type DurationFunc func(ctx context.Context, path string) (float64, error)

// BuildOptions configures a manifest build.
type BuildOptions struct {
	// AudioDir holds the final processed WAV files.
	AudioDir string
	// TranscriptDir holds cleaned transcripts named <basename>.txt.
	TranscriptDir string
	// ManifestPath is the JSONL output file. Its contents are replaced.
	ManifestPath string
	// FallbackDuration, when set, is consulted if the WAV header cannot
	// be read.
	FallbackDuration DurationFunc
	Logger           *slog.Logger
}

// Build scans AudioDir for WAV files, pairs each with its transcript, and
// writes the manifest. Files without a non-empty transcript are skipped
// with a warning so partial pipelines still produce a usable manifest.
func Build(ctx context.Context, opts BuildOptions) (BuildSummary, error) {
	audioDir := strings.TrimSpace(opts.AudioDir)
	transcriptDir := strings.TrimSpace(opts.TranscriptDir)
	manifestPath := strings.TrimSpace(opts.ManifestPath)
	if audioDir == "" || transcriptDir == "" || manifestPath == "" {
		return BuildSummary{}, errors.New("manifest build: audio dir, transcript dir, and manifest path are required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(audioDir)
	if err != nil {
		return BuildSummary{}, fmt.Errorf("manifest build: read audio dir: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(manifestPath), 0o755); err != nil {
		return BuildSummary{}, fmt.Errorf("manifest build: create manifest dir: %w", err)
	}
	out, err := os.Create(manifestPath)
	if err != nil {
		return BuildSummary{}, fmt.Errorf("manifest build: create manifest: %w", err)
	}
	defer out.Close()

	writer := bufio.NewWriter(out)
	encoder := json.NewEncoder(writer)

	summary := BuildSummary{ManifestPath: manifestPath}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".wav" {
			continue
		}

		audioPath := filepath.Join(audioDir, entry.Name())
		base := strings.TrimSuffix(entry.Name(), ".wav")
		text, ok := readTranscript(filepath.Join(transcriptDir, base+".txt"))
		if !ok {
			summary.SkippedNoTx++
			logger.Warn("skipping audio without transcript", "file", entry.Name())
			continue
		}

		duration, err := resolveDuration(ctx, audioPath, opts.FallbackDuration)
		if err != nil {
			summary.Failed++
			logger.Error("failed to read audio duration", "file", entry.Name(), "error", err)
			continue
		}

		if err := encoder.Encode(Entry{
			AudioFilepath: audioPath,
			Duration:      round2(duration),
			Text:          text,
		}); err != nil {
			return summary, fmt.Errorf("manifest build: write entry: %w", err)
		}
		summary.Written++
	}

	if err := writer.Flush(); err != nil {
		return summary, fmt.Errorf("manifest build: flush manifest: %w", err)
	}

	logger.Info("manifest build complete",
		"written", summary.Written,
		"skipped_no_transcript", summary.SkippedNoTx,
		"failed", summary.Failed,
		"manifest", manifestPath)
	return summary, nil
}

// Read parses a JSONL manifest. Blank lines are ignored; a malformed line
// aborts with its line number so corrupted manifests are caught early.
func Read(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse decodes manifest entries from r.
func Parse(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var entries []Entry
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("manifest line %d: %w", lineNo, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}
	return entries, nil
}

func readTranscript(path string) (string, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	text := strings.TrimSpace(string(content))
	if text == "" {
		return "", false
	}
	return text, true
}

func resolveDuration(ctx context.Context, path string, fallback DurationFunc) (float64, error) {
	duration, err := WavDuration(path)
	if err == nil {
		return duration, nil
	}
	if fallback != nil {
		if seconds, ferr := fallback(ctx, path); ferr == nil {
			return seconds, nil
		}
	}
	return 0, err
}

// WavDuration reads the duration in seconds from a WAV file's header.
func WavDuration(path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open wav: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return 0, errors.New("not a valid wav file")
	}
	duration, err := decoder.Duration()
	if err != nil {
		return 0, fmt.Errorf("wav duration: %w", err)
	}
	return duration.Seconds(), nil
}

func round2(seconds float64) float64 {
	return math.Round(seconds*100) / 100
}
