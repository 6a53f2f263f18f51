// Package subtitles converts downloaded SRT caption files into plain
// transcript text suitable for the cleaning pass.
package subtitles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var (
	timestampPattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}[,.]\d{3}\s+-->\s+\d{2}:\d{2}:\d{2}[,.]\d{3}`)
	cueIndexPattern  = regexp.MustCompile(`^\d+$`)
	tagPattern       = regexp.MustCompile(`<[^>]+>|\{[^}]+\}`)
)

// ExtractText reads SRT content and returns the caption text with cue
// indices, timestamps, and markup stripped. Consecutive duplicate lines,
// common in auto-generated captions, are collapsed.
func ExtractText(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	var previous string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimPrefix(line, "\uFEFF")
		if line == "" {
			continue
		}
		if cueIndexPattern.MatchString(line) || timestampPattern.MatchString(line) {
			continue
		}
		line = tagPattern.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line == "" || line == previous {
			continue
		}
		lines = append(lines, line)
		previous = line
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan srt: %w", err)
	}
	return strings.Join(lines, " "), nil
}

// ExtractFile converts the SRT file at sourcePath into a plain text
// transcript written to targetPath.
func ExtractFile(sourcePath, targetPath string) error {
	source, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("open srt: %w", err)
	}
	defer source.Close()

	text, err := ExtractText(source)
	if err != nil {
		return err
	}
	if err := os.WriteFile(targetPath, []byte(text+"\n"), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}
