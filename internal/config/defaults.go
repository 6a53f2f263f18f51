package config

const (
	defaultRawAudioDir      = "~/.local/share/lectern/data/raw_audio"
	defaultAudioDir         = "~/.local/share/lectern/data/audio"
	defaultFinalAudioDir    = "~/.local/share/lectern/data/final_audio"
	defaultTranscriptDir    = "~/.local/share/lectern/data/transcripts"
	defaultManifestPath     = "~/.local/share/lectern/output/train_manifest.jsonl"
	defaultLogDir           = "~/.local/share/lectern/logs"
	defaultDashboardBind    = "127.0.0.1:8050"
	defaultSubtitleLanguage = "en"
	defaultSampleRate       = 16000
	defaultChannels         = 1
	defaultSilenceThreshold = 0.01
	defaultSilenceTailMs    = 500
	defaultNotifyTimeout    = 10
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

func defaultExtensions() []string {
	return []string{".mp3", ".wav", ".m4a"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			RawAudioDir:   defaultRawAudioDir,
			AudioDir:      defaultAudioDir,
			FinalAudioDir: defaultFinalAudioDir,
			TranscriptDir: defaultTranscriptDir,
			ManifestPath:  defaultManifestPath,
			LogDir:        defaultLogDir,
			DashboardBind: defaultDashboardBind,
		},
		Course: Course{
			SubtitleLanguage: defaultSubtitleLanguage,
		},
		Audio: Audio{
			SampleRate:       defaultSampleRate,
			Channels:         defaultChannels,
			Extensions:       defaultExtensions(),
			SilenceThreshold: defaultSilenceThreshold,
			SilenceTailMs:    defaultSilenceTailMs,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			RunEvents:      true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
