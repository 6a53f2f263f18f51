// Package ffmpeg wraps the ffmpeg command-line tool behind the Transcoder
// interface the audio normalizer consumes. Tests substitute a fake
// implementation so no external process runs.
package ffmpeg
