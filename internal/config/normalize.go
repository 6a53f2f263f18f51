package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCourse(); err != nil {
		return err
	}
	c.normalizeAudio()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.RawAudioDir) == "" {
		c.Paths.RawAudioDir = defaultRawAudioDir
	}
	if c.Paths.RawAudioDir, err = expandPath(c.Paths.RawAudioDir); err != nil {
		return fmt.Errorf("paths.raw_audio_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.AudioDir) == "" {
		c.Paths.AudioDir = defaultAudioDir
	}
	if c.Paths.AudioDir, err = expandPath(c.Paths.AudioDir); err != nil {
		return fmt.Errorf("paths.audio_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.FinalAudioDir) == "" {
		c.Paths.FinalAudioDir = defaultFinalAudioDir
	}
	if c.Paths.FinalAudioDir, err = expandPath(c.Paths.FinalAudioDir); err != nil {
		return fmt.Errorf("paths.final_audio_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TranscriptDir) == "" {
		c.Paths.TranscriptDir = defaultTranscriptDir
	}
	if c.Paths.TranscriptDir, err = expandPath(c.Paths.TranscriptDir); err != nil {
		return fmt.Errorf("paths.transcript_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ManifestPath) == "" {
		c.Paths.ManifestPath = defaultManifestPath
	}
	if c.Paths.ManifestPath, err = expandPath(c.Paths.ManifestPath); err != nil {
		return fmt.Errorf("paths.manifest_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.DashboardBind = strings.TrimSpace(c.Paths.DashboardBind)
	if c.Paths.DashboardBind == "" {
		c.Paths.DashboardBind = defaultDashboardBind
	}
	return nil
}

func (c *Config) normalizeCourse() error {
	c.Course.URL = strings.TrimSpace(c.Course.URL)
	if c.Course.URL == "" {
		if value, ok := os.LookupEnv("LECTERN_COURSE_URL"); ok {
			c.Course.URL = strings.TrimSpace(value)
		}
	}
	c.Course.CookiesFile = strings.TrimSpace(c.Course.CookiesFile)
	if c.Course.CookiesFile == "" {
		if value, ok := os.LookupEnv("LECTERN_COOKIES_FILE"); ok {
			c.Course.CookiesFile = strings.TrimSpace(value)
		}
	}
	if c.Course.CookiesFile != "" {
		expanded, err := expandPath(c.Course.CookiesFile)
		if err != nil {
			return fmt.Errorf("course.cookies_file: %w", err)
		}
		c.Course.CookiesFile = expanded
	}
	c.Course.SubtitleLanguage = strings.ToLower(strings.TrimSpace(c.Course.SubtitleLanguage))
	if c.Course.SubtitleLanguage == "" {
		c.Course.SubtitleLanguage = defaultSubtitleLanguage
	}
	return nil
}

func (c *Config) normalizeAudio() {
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = defaultSampleRate
	}
	if c.Audio.Channels <= 0 {
		c.Audio.Channels = defaultChannels
	}
	if len(c.Audio.Extensions) == 0 {
		c.Audio.Extensions = defaultExtensions()
	} else {
		// Whitelist entries are matched literally; only normalize the dot.
		exts := make([]string, 0, len(c.Audio.Extensions))
		for _, ext := range c.Audio.Extensions {
			trimmed := strings.TrimSpace(ext)
			if trimmed == "" {
				continue
			}
			if !strings.HasPrefix(trimmed, ".") {
				trimmed = "." + trimmed
			}
			exts = append(exts, trimmed)
		}
		if len(exts) == 0 {
			exts = defaultExtensions()
		}
		c.Audio.Extensions = exts
	}
	if c.Audio.SilenceThreshold <= 0 {
		c.Audio.SilenceThreshold = defaultSilenceThreshold
	}
	if c.Audio.SilenceTailMs < 0 {
		c.Audio.SilenceTailMs = defaultSilenceTailMs
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
