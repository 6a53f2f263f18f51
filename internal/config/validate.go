package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validatePaths()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.ManifestPath) == "" {
		return errors.New("paths.manifest_path must be set")
	}
	if c.Paths.RawAudioDir == c.Paths.AudioDir {
		return errors.New("paths.raw_audio_dir and paths.audio_dir must differ")
	}
	if c.Paths.AudioDir == c.Paths.FinalAudioDir {
		return errors.New("paths.audio_dir and paths.final_audio_dir must differ")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if c.Audio.Channels <= 0 {
		return errors.New("audio.channels must be positive")
	}
	if len(c.Audio.Extensions) == 0 {
		return errors.New("audio.extensions must include at least one extension")
	}
	for _, ext := range c.Audio.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("audio.extensions entry %q is not a valid extension", ext)
		}
	}
	if c.Audio.SilenceThreshold <= 0 || c.Audio.SilenceThreshold >= 1 {
		return errors.New("audio.silence_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}
