// Package ytdlp wraps the yt-dlp command line tool for fetching lecture
// audio and subtitle tracks. The Downloader interface keeps the pipeline
// testable without a network or the binary installed.
package ytdlp
