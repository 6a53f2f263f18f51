package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// Options describe a single transcode request.
type Options struct {
	SampleRate int
	Channels   int
}

// Transcoder converts one audio file into the canonical output format.
type Transcoder interface {
	// Available reports whether the transcode capability can run on this host.
	Available() error
	// Transcode decodes sourcePath and writes targetPath with the requested
	// sample rate and channel count, overwriting any partial output. A nil
	// error means the encoder exited zero.
	Transcode(ctx context.Context, sourcePath, targetPath string, opts Options) error
}

// CLI wraps the ffmpeg command-line encoder.
type CLI struct {
	binary string
}

// Option configures the CLI transcoder.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// NewCLI constructs a CLI transcoder using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Available checks that the ffmpeg binary can be resolved on PATH.
func (c *CLI) Available() error {
	if _, err := exec.LookPath(c.binary); err != nil {
		return fmt.Errorf("ffmpeg binary %q not found: %w", c.binary, err)
	}
	return nil
}

// Transcode runs ffmpeg with overwrite enabled and diagnostics suppressed,
// matching `ffmpeg -y -loglevel error -i src -ac N -ar N dst`.
func (c *CLI) Transcode(ctx context.Context, sourcePath, targetPath string, opts Options) error {
	if strings.TrimSpace(sourcePath) == "" {
		return errors.New("source path required")
	}
	if strings.TrimSpace(targetPath) == "" {
		return errors.New("target path required")
	}
	if opts.SampleRate <= 0 || opts.Channels <= 0 {
		return fmt.Errorf("invalid transcode options: %d Hz, %d ch", opts.SampleRate, opts.Channels)
	}

	args := []string{
		"-y",
		"-loglevel", "error",
		"-i", sourcePath,
		"-ac", strconv.Itoa(opts.Channels),
		"-ar", strconv.Itoa(opts.SampleRate),
		targetPath,
	}

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("ffmpeg transcode failed: %w: %s", err, detail)
		}
		return fmt.Errorf("ffmpeg transcode failed: %w", err)
	}
	return nil
}

var _ Transcoder = (*CLI)(nil)
