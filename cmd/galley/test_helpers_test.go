package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir       string
	configPath    string
	manuscriptDir string
	stateDir      string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	manuscript := filepath.Join(base, "manuscript")
	if err := os.MkdirAll(manuscript, 0o755); err != nil {
		t.Fatalf("mkdir manuscript: %v", err)
	}

	configPath := filepath.Join(base, "galley.toml")
	content := "manuscript_dir = \"" + manuscript + "\"\n" +
		"log_dir = \"" + filepath.Join(base, "logs") + "\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		baseDir:       base,
		configPath:    configPath,
		manuscriptDir: manuscript,
		stateDir:      filepath.Join(manuscript, ".state"),
	}
}

func (e *cliTestEnv) writeChapter(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.manuscriptDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write chapter %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
