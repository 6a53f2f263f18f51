package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"lectern/internal/queue"
	"lectern/internal/services/ffmpeg"
	"lectern/internal/services/ytdlp"
	"lectern/internal/testsupport"
)

type fakeDownloader struct {
	audioCalls    int
	subtitleCalls int
}

func (f *fakeDownloader) Available() error { return nil }

func (f *fakeDownloader) DownloadAudio(_ context.Context, videoID string, opts ytdlp.AudioOptions) error {
	f.audioCalls++
	return os.WriteFile(filepath.Join(opts.OutputDir, videoID+".wav"), []byte("audio"), 0o644)
}

func (f *fakeDownloader) DownloadSubtitles(_ context.Context, videoID string, opts ytdlp.SubtitleOptions) error {
	f.subtitleCalls++
	srt := "1\n00:00:00,000 --> 00:00:02,000\nHello from lecture " + videoID + "\n"
	return os.WriteFile(filepath.Join(opts.OutputDir, videoID+".en.srt"), []byte(srt), 0o644)
}

type copyTranscoder struct{ calls int }

func (c *copyTranscoder) Available() error { return nil }

func (c *copyTranscoder) Transcode(_ context.Context, sourcePath, targetPath string, _ ffmpeg.Options) error {
	c.calls++
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return err
	}
	return os.WriteFile(targetPath, data, 0o644)
}

func TestDownloadHandlerReusesExistingFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	downloader := &fakeDownloader{}
	handler := DownloadHandler(cfg, downloader)
	item := &queue.Item{VideoID: "AAAABBBBCC1"}

	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if downloader.audioCalls != 1 || downloader.subtitleCalls != 1 {
		t.Fatalf("unexpected call counts: %+v", downloader)
	}
	if item.RawAudioPath == "" || item.SubtitlePath == "" {
		t.Fatalf("paths not recorded: %+v", item)
	}

	// A second execution must reuse the files on disk.
	second := &queue.Item{VideoID: "AAAABBBBCC1"}
	if err := handler.Execute(context.Background(), second); err != nil {
		t.Fatalf("second Execute returned error: %v", err)
	}
	if downloader.audioCalls != 1 || downloader.subtitleCalls != 1 {
		t.Fatalf("downloader invoked again: %+v", downloader)
	}
}

func TestConvertHandlerSkipsExistingTarget(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	transcoder := &copyTranscoder{}
	handler := ConvertHandler(cfg, transcoder)

	raw := filepath.Join(cfg.Paths.RawAudioDir, "AAAABBBBCC1.wav")
	if err := os.WriteFile(raw, []byte("raw"), 0o644); err != nil {
		t.Fatal(err)
	}

	item := &queue.Item{VideoID: "AAAABBBBCC1", RawAudioPath: raw}
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if transcoder.calls != 1 {
		t.Fatalf("transcoder calls = %d, want 1", transcoder.calls)
	}
	if item.AudioPath != filepath.Join(cfg.Paths.AudioDir, "AAAABBBBCC1.wav") {
		t.Fatalf("unexpected audio path: %s", item.AudioPath)
	}

	second := &queue.Item{VideoID: "AAAABBBBCC1", RawAudioPath: raw}
	if err := handler.Execute(context.Background(), second); err != nil {
		t.Fatalf("second Execute returned error: %v", err)
	}
	if transcoder.calls != 1 {
		t.Fatal("existing target must not be transcoded again")
	}
}

func TestTrimAndCleanHandlers(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	// Converted audio: 1s tone plus 2s silence at 8kHz mono.
	audioPath := filepath.Join(cfg.Paths.AudioDir, "AAAABBBBCC1.wav")
	writeToneWav(t, audioPath, 8000, 16000)

	srtPath := filepath.Join(cfg.Paths.RawAudioDir, "AAAABBBBCC1.en.srt")
	srt := "1\n00:00:00,000 --> 00:00:02,000\nChapter 2, welcome!\n"
	if err := os.WriteFile(srtPath, []byte(srt), 0o644); err != nil {
		t.Fatal(err)
	}

	item := &queue.Item{VideoID: "AAAABBBBCC1", AudioPath: audioPath, SubtitlePath: srtPath}

	if err := TrimHandler(cfg).Execute(context.Background(), item); err != nil {
		t.Fatalf("trim Execute returned error: %v", err)
	}
	if _, err := os.Stat(item.FinalAudioPath); err != nil {
		t.Fatalf("trimmed file missing: %v", err)
	}

	if err := CleanHandler(cfg).Execute(context.Background(), item); err != nil {
		t.Fatalf("clean Execute returned error: %v", err)
	}
	content, err := os.ReadFile(item.TranscriptPath)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(content)); got != "chapter two welcome" {
		t.Fatalf("transcript = %q, want %q", got, "chapter two welcome")
	}
}

func writeToneWav(t *testing.T, path string, toneFrames, silentFrames int) {
	t.Helper()
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	data := make([]int, toneFrames+silentFrames)
	for i := 0; i < toneFrames; i++ {
		data[i] = 18000
	}
	encoder := wav.NewEncoder(out, 8000, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: 8000},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatal(err)
	}
}
