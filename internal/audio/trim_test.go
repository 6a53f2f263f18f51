package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const testSampleRate = 8000

// writeTestWav produces a mono 16-bit file with loudFrames of full-scale
// tone followed by silentFrames of zeros.
func writeTestWav(t *testing.T, path string, loudFrames, silentFrames int) {
	t.Helper()

	data := make([]int, 0, loudFrames+silentFrames)
	for i := 0; i < loudFrames; i++ {
		data = append(data, 20000)
	}
	for i := 0; i < silentFrames; i++ {
		data = append(data, 0)
	}
	writeWavSamples(t, path, data)
}

func writeWavSamples(t *testing.T, path string, data []int) {
	t.Helper()

	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer out.Close()

	encoder := wav.NewEncoder(out, testSampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: testSampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
}

func decodeFrameCount(t *testing.T, path string) int {
	t.Helper()
	in, err := os.Open(path)
	if err != nil {
		t.Fatalf("open wav: %v", err)
	}
	defer in.Close()

	buf, err := wav.NewDecoder(in).FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode wav: %v", err)
	}
	return len(buf.Data) / buf.Format.NumChannels
}

func TestTrimFileRemovesTrailingSilence(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "lecture.wav")
	target := filepath.Join(dir, "trimmed.wav")

	// 1s of tone followed by 4s of silence at 8kHz.
	writeTestWav(t, source, testSampleRate, 4*testSampleRate)

	if err := TrimFile(source, target, 0.01, 500); err != nil {
		t.Fatalf("TrimFile returned error: %v", err)
	}

	got := decodeFrameCount(t, target)
	// Tone plus the 500ms tail buffer.
	want := testSampleRate + testSampleRate/2
	if got != want {
		t.Fatalf("trimmed length = %d frames, want %d", got, want)
	}
}

func TestTrimFileKeepsShortTail(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "lecture.wav")
	target := filepath.Join(dir, "trimmed.wav")

	// Silence shorter than the tail buffer must be left untouched.
	writeTestWav(t, source, testSampleRate, testSampleRate/10)

	if err := TrimFile(source, target, 0.01, 500); err != nil {
		t.Fatalf("TrimFile returned error: %v", err)
	}

	got := decodeFrameCount(t, target)
	want := testSampleRate + testSampleRate/10
	if got != want {
		t.Fatalf("trimmed length = %d frames, want %d", got, want)
	}
}

func TestTrimFileKeepsAllSilentFileWhole(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "lecture.wav")
	target := filepath.Join(dir, "trimmed.wav")

	// 2s of pure silence: nothing is audible, so nothing is cut.
	writeTestWav(t, source, 0, 2*testSampleRate)

	if err := TrimFile(source, target, 0.01, 500); err != nil {
		t.Fatalf("TrimFile returned error: %v", err)
	}

	got := decodeFrameCount(t, target)
	if want := 2 * testSampleRate; got != want {
		t.Fatalf("all-silent length = %d frames, want %d", got, want)
	}
}

func TestTrimFileSampleAtThresholdIsSilence(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "lecture.wav")
	target := filepath.Join(dir, "trimmed.wav")

	// 1s of tone, then 1s of samples sitting exactly at half scale.
	// With threshold 0.5 those must be trimmed, not kept as audio.
	data := make([]int, 0, 2*testSampleRate)
	for i := 0; i < testSampleRate; i++ {
		data = append(data, 20000)
	}
	for i := 0; i < testSampleRate; i++ {
		data = append(data, 1<<14)
	}
	writeWavSamples(t, source, data)

	if err := TrimFile(source, target, 0.5, 500); err != nil {
		t.Fatalf("TrimFile returned error: %v", err)
	}

	got := decodeFrameCount(t, target)
	if want := testSampleRate + testSampleRate/2; got != want {
		t.Fatalf("trimmed length = %d frames, want %d", got, want)
	}
}

func TestTrimSilenceRun(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()

	writeTestWav(t, filepath.Join(inputDir, "lec1.wav"), testSampleRate, 2*testSampleRate)
	writeTestWav(t, filepath.Join(inputDir, "lec2.wav"), testSampleRate, 0)
	// Pre-existing output must be skipped.
	writeTestWav(t, filepath.Join(outputDir, "lec2.wav"), testSampleRate, 0)

	summary, err := TrimSilence(context.Background(), TrimOptions{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Logger:    quietLogger(),
	})
	if err != nil {
		t.Fatalf("TrimSilence returned error: %v", err)
	}

	if summary.Total != 2 || summary.Converted != 1 || summary.Skipped != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "lec1.wav")); err != nil {
		t.Fatalf("expected trimmed lec1.wav: %v", err)
	}
}

func TestTrimSilenceCorruptFileNonFatal(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(inputDir, "broken.wav"), []byte("not a wav"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeTestWav(t, filepath.Join(inputDir, "ok.wav"), testSampleRate, testSampleRate)

	summary, err := TrimSilence(context.Background(), TrimOptions{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Logger:    quietLogger(),
	})
	if err != nil {
		t.Fatalf("TrimSilence returned error: %v", err)
	}
	if summary.Failed != 1 || summary.Converted != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
