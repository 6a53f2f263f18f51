package manifest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeWav(t *testing.T, path string, frames int) {
	t.Helper()
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer out.Close()

	encoder := wav.NewEncoder(out, 8000, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: 8000},
		Data:           make([]int, frames),
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildWritesEntries(t *testing.T) {
	audioDir := t.TempDir()
	transcriptDir := t.TempDir()
	manifestPath := filepath.Join(t.TempDir(), "manifest.jsonl")

	// 12000 frames at 8kHz is 1.5 seconds.
	writeWav(t, filepath.Join(audioDir, "lec1.wav"), 12000)
	writeWav(t, filepath.Join(audioDir, "lec2.wav"), 8000)
	if err := os.WriteFile(filepath.Join(transcriptDir, "lec1.txt"), []byte("hello world\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// lec2 has an empty transcript and must be skipped.
	if err := os.WriteFile(filepath.Join(transcriptDir, "lec2.txt"), []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	summary, err := Build(context.Background(), BuildOptions{
		AudioDir:      audioDir,
		TranscriptDir: transcriptDir,
		ManifestPath:  manifestPath,
		Logger:        quietLogger(),
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if summary.Written != 1 || summary.SkippedNoTx != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	entries, err := Read(manifestPath)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Text != "hello world" {
		t.Fatalf("text = %q, want %q", entry.Text, "hello world")
	}
	if entry.Duration != 1.5 {
		t.Fatalf("duration = %v, want 1.5", entry.Duration)
	}
	if filepath.Base(entry.AudioFilepath) != "lec1.wav" {
		t.Fatalf("audio_filepath = %q", entry.AudioFilepath)
	}
}

func TestBuildFallbackDuration(t *testing.T) {
	audioDir := t.TempDir()
	transcriptDir := t.TempDir()
	manifestPath := filepath.Join(t.TempDir(), "manifest.jsonl")

	// Invalid WAV content forces the fallback prober.
	if err := os.WriteFile(filepath.Join(audioDir, "lec1.wav"), []byte("not a wav"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(transcriptDir, "lec1.txt"), []byte("fallback text"), 0o644); err != nil {
		t.Fatal(err)
	}

	summary, err := Build(context.Background(), BuildOptions{
		AudioDir:      audioDir,
		TranscriptDir: transcriptDir,
		ManifestPath:  manifestPath,
		FallbackDuration: func(_ context.Context, _ string) (float64, error) {
			return 3.14159, nil
		},
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if summary.Written != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	entries, err := Read(manifestPath)
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Duration != 3.14 {
		t.Fatalf("duration = %v, want 3.14", entries[0].Duration)
	}
}

func TestParseRejectsMalformedLines(t *testing.T) {
	input := `{"audio_filepath":"a.wav","duration":1.0,"text":"ok"}

not json at all`
	_, err := Parse(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected error for malformed line")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("error should name the line: %v", err)
	}
}
