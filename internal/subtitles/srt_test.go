package subtitles

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:04,000
Welcome to the course.

2
00:00:04,000 --> 00:00:08,500
<i>Today we cover</i> signal processing.

3
00:00:08,500 --> 00:00:12,000
Today we cover signal processing.
`

func TestExtractText(t *testing.T) {
	got, err := ExtractText(strings.NewReader(sampleSRT))
	if err != nil {
		t.Fatalf("ExtractText returned error: %v", err)
	}
	want := "Welcome to the course. Today we cover signal processing."
	if got != want {
		t.Fatalf("ExtractText = %q, want %q", got, want)
	}
}

func TestExtractTextEmptyInput(t *testing.T) {
	got, err := ExtractText(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ExtractText returned error: %v", err)
	}
	if got != "" {
		t.Fatalf("ExtractText = %q, want empty", got)
	}
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "lec1.srt")
	target := filepath.Join(dir, "lec1.txt")
	if err := os.WriteFile(source, []byte(sampleSRT), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ExtractFile(source, target); err != nil {
		t.Fatalf("ExtractFile returned error: %v", err)
	}
	content, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "Welcome to the course.") {
		t.Fatalf("unexpected transcript content: %q", content)
	}
}
