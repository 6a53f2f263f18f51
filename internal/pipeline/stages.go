package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"lectern/internal/audio"
	"lectern/internal/config"
	"lectern/internal/media/ffprobe"
	"lectern/internal/queue"
	"lectern/internal/services/ffmpeg"
	"lectern/internal/services/ytdlp"
	"lectern/internal/subtitles"
	"lectern/internal/textnorm"
)

// Stages assembles the standard stage sequence for a configuration.
func Stages(cfg *config.Config, downloader ytdlp.Downloader, transcoder ffmpeg.Transcoder) []Stage {
	return []Stage{
		{
			Name:     "download",
			Ready:    queue.StatusPending,
			InFlight: queue.StatusDownloading,
			Done:     queue.StatusDownloaded,
			Handler:  DownloadHandler(cfg, downloader),
		},
		{
			Name:     "convert",
			Ready:    queue.StatusDownloaded,
			InFlight: queue.StatusConverting,
			Done:     queue.StatusConverted,
			Handler:  ConvertHandler(cfg, transcoder),
		},
		{
			Name:     "trim",
			Ready:    queue.StatusConverted,
			InFlight: queue.StatusTrimming,
			Done:     queue.StatusTrimmed,
			Handler:  TrimHandler(cfg),
		},
		{
			Name:     "clean",
			Ready:    queue.StatusTrimmed,
			InFlight: queue.StatusCleaning,
			Done:     queue.StatusCompleted,
			Handler:  CleanHandler(cfg),
		},
	}
}

// DownloadHandler fetches a lecture's audio and subtitle track. Existing
// files are reused so interrupted runs do not re-download.
func DownloadHandler(cfg *config.Config, downloader ytdlp.Downloader) Handler {
	return HandlerFunc(func(ctx context.Context, item *queue.Item) error {
		rawDir := cfg.Paths.RawAudioDir
		audioPath := filepath.Join(rawDir, item.VideoID+".wav")
		if _, err := os.Stat(audioPath); err != nil {
			if err := downloader.DownloadAudio(ctx, item.VideoID, ytdlp.AudioOptions{
				OutputDir:   rawDir,
				CookiesFile: cfg.Course.CookiesFile,
			}); err != nil {
				return fmt.Errorf("download audio: %w", err)
			}
			if _, err := os.Stat(audioPath); err != nil {
				return fmt.Errorf("download audio: expected %s after download: %w", audioPath, err)
			}
		}
		item.RawAudioPath = audioPath

		subtitlePath, err := findSubtitle(rawDir, item.VideoID)
		if err != nil {
			if err := downloader.DownloadSubtitles(ctx, item.VideoID, ytdlp.SubtitleOptions{
				OutputDir:   rawDir,
				Language:    cfg.Course.SubtitleLanguage,
				CookiesFile: cfg.Course.CookiesFile,
			}); err != nil {
				return fmt.Errorf("download subtitles: %w", err)
			}
			subtitlePath, err = findSubtitle(rawDir, item.VideoID)
			if err != nil {
				return fmt.Errorf("download subtitles: %w", err)
			}
		}
		item.SubtitlePath = subtitlePath
		return nil
	})
}

// findSubtitle locates the downloaded SRT for a video. yt-dlp names
// subtitle files <id>.<lang>.srt, so match on the prefix.
func findSubtitle(dir, videoID string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, videoID+"*.srt"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no subtitle file for %s in %s", videoID, dir)
	}
	return matches[0], nil
}

// ConvertHandler transcodes raw audio to the configured sample rate and
// channel profile. With audio.verify_outputs enabled, each converted file
// is probed and rejected when it does not match the target profile.
func ConvertHandler(cfg *config.Config, transcoder ffmpeg.Transcoder) Handler {
	return HandlerFunc(func(ctx context.Context, item *queue.Item) error {
		if item.RawAudioPath == "" {
			return errors.New("convert: item has no raw audio path")
		}
		target := filepath.Join(cfg.Paths.AudioDir, item.VideoID+".wav")
		if _, err := os.Stat(target); err != nil {
			if err := transcoder.Transcode(ctx, item.RawAudioPath, target, ffmpeg.Options{
				SampleRate: cfg.Audio.SampleRate,
				Channels:   cfg.Audio.Channels,
			}); err != nil {
				return fmt.Errorf("convert: %w", err)
			}
		}
		if cfg.Audio.VerifyOutputs {
			if err := verifyProfile(ctx, cfg, target); err != nil {
				return fmt.Errorf("convert: %w", err)
			}
		}
		item.AudioPath = target
		return nil
	})
}

func verifyProfile(ctx context.Context, cfg *config.Config, path string) error {
	result, err := ffprobe.Inspect(ctx, cfg.FFprobeBinary(), path)
	if err != nil {
		return fmt.Errorf("verify output: %w", err)
	}
	if got := result.SampleRate(); got != cfg.Audio.SampleRate {
		return fmt.Errorf("verify output: %s has sample rate %d, want %d", path, got, cfg.Audio.SampleRate)
	}
	if got := result.Channels(); got != cfg.Audio.Channels {
		return fmt.Errorf("verify output: %s has %d channels, want %d", path, got, cfg.Audio.Channels)
	}
	return nil
}

// TrimHandler removes trailing silence from the converted audio.
func TrimHandler(cfg *config.Config) Handler {
	return HandlerFunc(func(_ context.Context, item *queue.Item) error {
		if item.AudioPath == "" {
			return errors.New("trim: item has no converted audio path")
		}
		target := filepath.Join(cfg.Paths.FinalAudioDir, item.VideoID+".wav")
		if _, err := os.Stat(target); err != nil {
			if err := audio.TrimFile(item.AudioPath, target, cfg.Audio.SilenceThreshold, cfg.Audio.SilenceTailMs); err != nil {
				return fmt.Errorf("trim: %w", err)
			}
		}
		item.FinalAudioPath = target
		return nil
	})
}

// CleanHandler extracts subtitle text and writes the normalized
// transcript used by the manifest builder.
func CleanHandler(cfg *config.Config) Handler {
	return HandlerFunc(func(_ context.Context, item *queue.Item) error {
		if item.SubtitlePath == "" {
			return errors.New("clean: item has no subtitle path")
		}
		target := filepath.Join(cfg.Paths.TranscriptDir, item.VideoID+".txt")

		source, err := os.Open(item.SubtitlePath)
		if err != nil {
			return fmt.Errorf("clean: open subtitles: %w", err)
		}
		defer source.Close()

		raw, err := subtitles.ExtractText(source)
		if err != nil {
			return fmt.Errorf("clean: %w", err)
		}
		cleaned := textnorm.Clean(raw)
		if cleaned == "" {
			return errors.New("clean: subtitles produced an empty transcript")
		}

		if err := os.WriteFile(target, []byte(cleaned+"\n"), 0o644); err != nil {
			return fmt.Errorf("clean: write transcript: %w", err)
		}
		item.TranscriptPath = target
		return nil
	})
}
