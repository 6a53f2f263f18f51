package audio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"lectern/internal/services/ffmpeg"
)

type transcodeCall struct {
	source string
	target string
	opts   ffmpeg.Options
}

type fakeTranscoder struct {
	availableErr error
	failSources  map[string]error
	calls        []transcodeCall
}

func (f *fakeTranscoder) Available() error {
	return f.availableErr
}

func (f *fakeTranscoder) Transcode(_ context.Context, sourcePath, targetPath string, opts ffmpeg.Options) error {
	f.calls = append(f.calls, transcodeCall{source: sourcePath, target: targetPath, opts: opts})
	if err, ok := f.failSources[filepath.Base(sourcePath)]; ok {
		return err
	}
	return os.WriteFile(targetPath, []byte("wav"), 0o644)
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("audio"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNormalizeConvertsWhitelistedFiles(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeFiles(t, inputDir, "lec1.mp3", "lec2.m4a", "lec3.wav", "notes.txt", "LOUD.MP3")
	if err := os.Mkdir(filepath.Join(inputDir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFiles(t, filepath.Join(inputDir, "nested"), "hidden.mp3")

	tc := &fakeTranscoder{}
	summary, err := Normalize(context.Background(), NormalizeOptions{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		Transcoder: tc,
		Logger:     quietLogger(),
	})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	if summary.Total != 3 || summary.Converted != 3 || summary.Skipped != 0 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Processed() != 3 {
		t.Fatalf("Processed() = %d, want 3", summary.Processed())
	}

	var targets []string
	for _, call := range tc.calls {
		targets = append(targets, filepath.Base(call.target))
		if call.opts.SampleRate != 16000 || call.opts.Channels != 1 {
			t.Fatalf("unexpected profile: %+v", call.opts)
		}
	}
	sort.Strings(targets)
	want := []string{"lec1.wav", "lec2.wav", "lec3.wav"}
	for i, name := range want {
		if targets[i] != name {
			t.Fatalf("targets = %v, want %v", targets, want)
		}
	}
}

func TestNormalizeEmptyInputSucceeds(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeFiles(t, inputDir, "notes.txt", "slides.pdf")

	tc := &fakeTranscoder{}
	summary, err := Normalize(context.Background(), NormalizeOptions{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		Transcoder: tc,
		Logger:     quietLogger(),
	})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	if summary.Total != 0 || summary.Processed() != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(tc.calls) != 0 {
		t.Fatal("transcoder must not run with no matching files")
	}
	if _, err := os.Stat(outputDir); err != nil {
		t.Fatalf("output dir missing after empty run: %v", err)
	}
}

func TestNormalizeSkipsExistingTargets(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeFiles(t, inputDir, "lec1.mp3", "lec2.mp3")
	writeFiles(t, outputDir, "lec1.wav")

	tc := &fakeTranscoder{}
	summary, err := Normalize(context.Background(), NormalizeOptions{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		Transcoder: tc,
		Logger:     quietLogger(),
	})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	if summary.Skipped != 1 || summary.Converted != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(tc.calls) != 1 {
		t.Fatalf("transcoder invoked %d times, want 1", len(tc.calls))
	}
	if filepath.Base(tc.calls[0].source) != "lec2.mp3" {
		t.Fatalf("transcoded %s, want lec2.mp3", tc.calls[0].source)
	}
}

func TestNormalizeContinuesAfterFailure(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeFiles(t, inputDir, "bad.mp3", "good.mp3")

	tc := &fakeTranscoder{failSources: map[string]error{"bad.mp3": errors.New("corrupt stream")}}
	summary, err := Normalize(context.Background(), NormalizeOptions{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		Transcoder: tc,
		Logger:     quietLogger(),
	})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	if summary.Failed != 1 || summary.Converted != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(tc.calls) != 2 {
		t.Fatalf("transcoder invoked %d times, want 2", len(tc.calls))
	}
}

func TestNormalizePreflightErrors(t *testing.T) {
	outputDir := t.TempDir()
	inputDir := t.TempDir()
	writeFiles(t, inputDir, "lec1.mp3")

	_, err := Normalize(context.Background(), NormalizeOptions{OutputDir: outputDir, Transcoder: &fakeTranscoder{}})
	if !errors.Is(err, ErrInvalidArguments) {
		t.Fatalf("empty input dir: got %v, want ErrInvalidArguments", err)
	}

	_, err = Normalize(context.Background(), NormalizeOptions{
		InputDir:   filepath.Join(inputDir, "missing"),
		OutputDir:  outputDir,
		Transcoder: &fakeTranscoder{},
	})
	if !errors.Is(err, ErrMissingInputDirectory) {
		t.Fatalf("missing input dir: got %v, want ErrMissingInputDirectory", err)
	}

	tc := &fakeTranscoder{availableErr: errors.New("ffmpeg not on PATH")}
	_, err = Normalize(context.Background(), NormalizeOptions{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		Transcoder: tc,
	})
	if !errors.Is(err, ErrMissingDependency) {
		t.Fatalf("unavailable transcoder: got %v, want ErrMissingDependency", err)
	}
	if len(tc.calls) != 0 {
		t.Fatal("transcoder must not be invoked when unavailable")
	}
}

func TestNormalizeCustomExtensions(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeFiles(t, inputDir, "lec1.flac", "lec2.mp3")

	tc := &fakeTranscoder{}
	summary, err := Normalize(context.Background(), NormalizeOptions{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		Extensions: []string{".flac"},
		Transcoder: tc,
		Logger:     quietLogger(),
	})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if summary.Total != 1 {
		t.Fatalf("Total = %d, want 1", summary.Total)
	}
	if filepath.Base(tc.calls[0].source) != "lec1.flac" {
		t.Fatalf("transcoded %s, want lec1.flac", tc.calls[0].source)
	}
}

func TestNormalizeHonorsContextCancellation(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeFiles(t, inputDir, "lec1.mp3")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tc := &fakeTranscoder{}
	_, err := Normalize(ctx, NormalizeOptions{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		Transcoder: tc,
		Logger:     quietLogger(),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if len(tc.calls) != 0 {
		t.Fatal("transcoder must not run after cancellation")
	}
}
