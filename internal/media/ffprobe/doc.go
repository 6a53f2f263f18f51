// Package ffprobe shells out to ffprobe and decodes its JSON report.
// The normalizer uses it to verify converted outputs and the manifest
// builder uses it as a duration fallback for non-WAV sources.
package ffprobe
