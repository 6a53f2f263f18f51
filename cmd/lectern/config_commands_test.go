package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	isolateHome(t)
	target := filepath.Join(t.TempDir(), "config.toml")

	output, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init returned error: %v", err)
	}
	if !strings.Contains(output, "Wrote sample configuration to "+target) {
		t.Fatalf("unexpected output:\n%s", output)
	}

	content, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("sample config not written: %v", err)
	}
	if !strings.Contains(string(content), "sample_rate") {
		t.Fatalf("sample config missing expected keys:\n%s", content)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	isolateHome(t)
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error without --overwrite")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite returned error: %v", err)
	}
}

func TestConfigValidateDefaults(t *testing.T) {
	isolateHome(t)

	output, err := runCommand(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate returned error: %v", err)
	}
	if !strings.Contains(output, "Configuration valid") {
		t.Fatalf("unexpected output:\n%s", output)
	}
}
