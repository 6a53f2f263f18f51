package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	RawAudioDir   string `toml:"raw_audio_dir"`
	AudioDir      string `toml:"audio_dir"`
	FinalAudioDir string `toml:"final_audio_dir"`
	TranscriptDir string `toml:"transcript_dir"`
	ManifestPath  string `toml:"manifest_path"`
	LogDir        string `toml:"log_dir"`
	DashboardBind string `toml:"dashboard_bind"`
}

// Course contains configuration for the lecture source being mirrored.
type Course struct {
	URL              string `toml:"url"`
	CookiesFile      string `toml:"cookies_file"`
	SubtitleLanguage string `toml:"subtitle_language"`
}

// Audio contains configuration for the normalization and trim passes.
type Audio struct {
	SampleRate int `toml:"sample_rate"`
	Channels   int `toml:"channels"`
	// Extensions is the discovery whitelist for the normalizer. Matching is
	// case-sensitive on these literal spellings.
	Extensions []string `toml:"extensions"`
	// SilenceThreshold is the amplitude (fraction of full scale) below which
	// a trailing sample counts as silence.
	SilenceThreshold float64 `toml:"silence_threshold"`
	// SilenceTailMs is the buffer of audio kept after the last audible sample.
	SilenceTailMs int `toml:"silence_tail_ms"`
	// VerifyOutputs probes each converted file with ffprobe and rejects
	// outputs that do not match the target sample rate and channel count.
	VerifyOutputs bool `toml:"verify_outputs"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	RunEvents      bool   `toml:"run_events"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for lectern.
//
// Configuration sections by subsystem:
//   - Paths: data directories, manifest location, and dashboard bind address
//   - Course: lecture source URL, cookies, and subtitle language
//   - Audio: target sample rate/channels, discovery whitelist, silence trim
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Course        Course        `toml:"course"`
	Audio         Audio         `toml:"audio"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lectern/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. A `.env` file in the working
// directory is applied first so LECTERN_* overrides are visible to normalize.
func Load(path string) (*Config, string, bool, error) {
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lectern.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes into.
// The manifest parent directory is included so a first run can write the
// manifest without extra setup.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.RawAudioDir,
		c.Paths.AudioDir,
		c.Paths.FinalAudioDir,
		c.Paths.TranscriptDir,
		c.Paths.LogDir,
	}
	if strings.TrimSpace(c.Paths.ManifestPath) != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.ManifestPath))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for transcoding.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// YtDlpBinary returns the yt-dlp executable name used for lecture downloads.
func (c *Config) YtDlpBinary() string {
	return "yt-dlp"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
