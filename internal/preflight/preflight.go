// Package preflight runs the checks that must pass before a pipeline run
// starts: external binaries on PATH and data directories accessible.
package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"lectern/internal/config"
	"lectern/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDirectories verifies access to every directory the pipeline writes into.
func CheckDirectories(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckDirectoryAccess("Raw audio directory", cfg.Paths.RawAudioDir),
		CheckDirectoryAccess("Audio directory", cfg.Paths.AudioDir),
		CheckDirectoryAccess("Final audio directory", cfg.Paths.FinalAudioDir),
		CheckDirectoryAccess("Transcript directory", cfg.Paths.TranscriptDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
}

// CheckSystemDeps evaluates all external binary dependencies for the given
// config. Both `lectern status` and the pipeline runner use this so the
// requirements list lives in one place.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for audio normalization",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for media inspection",
			Optional:    !cfg.Audio.VerifyOutputs,
		},
		{
			Name:        "yt-dlp",
			Command:     cfg.YtDlpBinary(),
			Description: "Required for lecture downloads",
			Optional:    cfg.Course.URL == "",
		},
	}
	return deps.CheckBinaries(requirements)
}
