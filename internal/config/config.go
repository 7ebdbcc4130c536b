package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Config encapsulates tool-level configuration for galley. Everything the
// manuscript itself defines (book type, review types, workflows) lives in
// the state directory's documents, not here.
type Config struct {
	// ManuscriptDir holds the chapter markdown files.
	ManuscriptDir string `toml:"manuscript_dir"`
	// StateDir holds the persisted state documents. Defaults to
	// <manuscript_dir>/.state when empty.
	StateDir string `toml:"state_dir"`
	// LogDir receives galley.log. Empty disables file logging.
	LogDir    string `toml:"log_dir"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/galley/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The returned string
// is the path that was consulted and the bool reports whether it existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GALLEY_CONFIG"))
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			// An explicitly named file is an operator decision; falling
			// back to defaults would silently mask a typo.
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s does not exist", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("galley.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	manuscript, err := expandPath(c.ManuscriptDir)
	if err != nil {
		return err
	}
	c.ManuscriptDir = manuscript

	if strings.TrimSpace(c.StateDir) == "" {
		c.StateDir = filepath.Join(c.ManuscriptDir, ".state")
	} else {
		state, err := expandPath(c.StateDir)
		if err != nil {
			return err
		}
		c.StateDir = state
	}

	if strings.TrimSpace(c.LogDir) != "" {
		logDir, err := expandPath(c.LogDir)
		if err != nil {
			return err
		}
		c.LogDir = logDir
	}

	return nil
}

// EnsureDirectories creates the directories galley needs to run. The
// manuscript directory is user content and is never created here; the
// state manager owns the state directory tree.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.LogDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.LogDir, err)
	}
	return nil
}

// LogFilePath returns the log file destination, or "" when file logging
// is disabled.
func (c *Config) LogFilePath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.LogDir, "galley.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
