package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"lectern/internal/config"
)

func TestLoadDefaultConfigExpandsPathsAndAppliesEnv(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("LECTERN_COURSE_URL", "https://example.org/courses/42")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantRaw := filepath.Join(tempHome, ".local", "share", "lectern", "data", "raw_audio")
	if cfg.Paths.RawAudioDir != wantRaw {
		t.Fatalf("unexpected raw audio dir: got %q want %q", cfg.Paths.RawAudioDir, wantRaw)
	}
	if cfg.Paths.DashboardBind != "127.0.0.1:8050" {
		t.Fatalf("unexpected dashboard bind: %q", cfg.Paths.DashboardBind)
	}
	if cfg.Course.URL != "https://example.org/courses/42" {
		t.Fatalf("expected course URL from env, got %q", cfg.Course.URL)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.Channels != 1 {
		t.Fatalf("unexpected audio defaults: %d Hz, %d ch", cfg.Audio.SampleRate, cfg.Audio.Channels)
	}
	if got := cfg.Audio.Extensions; len(got) != 3 || got[0] != ".mp3" || got[1] != ".wav" || got[2] != ".m4a" {
		t.Fatalf("unexpected extension whitelist: %v", got)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.RawAudioDir, cfg.Paths.AudioDir, cfg.Paths.FinalAudioDir, cfg.Paths.TranscriptDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadExplicitFileOverridesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "lectern.toml")
	body := `
[paths]
raw_audio_dir = "~/data/in"
audio_dir = "~/data/out"

[audio]
sample_rate = 22050
extensions = ["wav", ".MP3"]

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected explicit config to resolve, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.RawAudioDir != filepath.Join(tempHome, "data", "in") {
		t.Fatalf("tilde not expanded: %q", cfg.Paths.RawAudioDir)
	}
	if cfg.Audio.SampleRate != 22050 {
		t.Fatalf("sample rate override lost: %d", cfg.Audio.SampleRate)
	}
	// Only the dot is normalized; the whitelist case is preserved literally.
	if got := cfg.Audio.Extensions; len(got) != 2 || got[0] != ".wav" || got[1] != ".MP3" {
		t.Fatalf("unexpected extensions: %v", got)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
}

func TestValidateRejectsBadAudioSettings(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero sample rate", func(c *config.Config) { c.Audio.SampleRate = -1; c.Audio.Channels = 1 }},
		{"threshold too high", func(c *config.Config) { c.Audio.SilenceThreshold = 1.5 }},
		{"same in/out dir", func(c *config.Config) { c.Paths.AudioDir = c.Paths.RawAudioDir }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected sample config content")
	}
}
