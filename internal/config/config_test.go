package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"galley/internal/config"
)

// chdir changes the working directory for the duration of the test,
// standing in for t.Chdir which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("GALLEY_CONFIG", "")
	chdir(t, t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if !filepath.IsAbs(cfg.ManuscriptDir) {
		t.Fatalf("manuscript dir should be absolute, got %q", cfg.ManuscriptDir)
	}
	if cfg.StateDir != filepath.Join(cfg.ManuscriptDir, ".state") {
		t.Fatalf("state dir should default under manuscript dir, got %q", cfg.StateDir)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "console" {
		t.Fatalf("unexpected logging defaults: %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
	wantLogs := filepath.Join(tempHome, ".local", "share", "galley", "logs")
	if cfg.LogDir != wantLogs {
		t.Fatalf("log dir = %q, want %q", cfg.LogDir, wantLogs)
	}
}

func TestLoadReadsExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "galley.toml")
	content := "manuscript_dir = \"" + filepath.Join(dir, "book") + "\"\nlog_level = \"debug\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected explicit path to be used: exists=%v resolved=%q", exists, resolved)
	}
	if cfg.ManuscriptDir != filepath.Join(dir, "book") {
		t.Fatalf("unexpected manuscript dir: %q", cfg.ManuscriptDir)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel)
	}
}

func TestLoadRejectsMissingExplicitPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	_, _, _, err := config.Load(missing)
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected missing-file error for explicit path, got %v", err)
	}

	t.Setenv("GALLEY_CONFIG", missing)
	_, _, _, err = config.Load("")
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected missing-file error for GALLEY_CONFIG path, got %v", err)
	}
}

func TestLoadHonorsEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte("manuscript_dir = \"book\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GALLEY_CONFIG", path)

	_, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected env config path, got exists=%v resolved=%q", exists, resolved)
	}
}

func TestLoadPrefersProjectFileOverDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GALLEY_CONFIG", "")
	workDir := t.TempDir()
	chdir(t, workDir)
	if err := os.WriteFile(filepath.Join(workDir, "galley.toml"), []byte("manuscript_dir = \"chapters\"\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(resolved) != "galley.toml" {
		t.Fatalf("expected project galley.toml, got exists=%v resolved=%q", exists, resolved)
	}
	if filepath.Base(cfg.ManuscriptDir) != "chapters" {
		t.Fatalf("unexpected manuscript dir: %q", cfg.ManuscriptDir)
	}
}

func TestLoadRejectsBadEnums(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "galley.toml")
	if err := os.WriteFile(path, []byte("manuscript_dir = \"book\"\nlog_level = \"loud\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "log_level") {
		t.Fatalf("expected log_level error, got %v", err)
	}
}

func TestCreateSampleParsesBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.ManuscriptDir == "" {
		t.Fatal("sample config should set manuscript_dir")
	}
}

func TestLogFilePath(t *testing.T) {
	cfg := config.Default()
	cfg.LogDir = "/tmp/galley-logs"
	if got := cfg.LogFilePath(); got != filepath.Join("/tmp/galley-logs", "galley.log") {
		t.Fatalf("unexpected log file path: %q", got)
	}
	cfg.LogDir = ""
	if got := cfg.LogFilePath(); got != "" {
		t.Fatalf("empty log dir should disable file logging, got %q", got)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := config.ExpandPath("~/books")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "books") {
		t.Fatalf("unexpected expansion: %q", got)
	}
}
