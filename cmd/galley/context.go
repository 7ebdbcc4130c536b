package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"galley/internal/config"
	"galley/internal/logging"
	"galley/internal/state"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the shared file-backed logger, tagging every record
// from this process with a unique run id.
func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.New(logging.Options{
			Level:    cfg.LogLevel,
			Format:   cfg.LogFormat,
			Output:   io.Discard,
			FilePath: cfg.LogFilePath(),
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger.With(logging.String("run_id", uuid.NewString()))
	})
	return c.logger
}

// newManager returns an initialized state manager for the configured
// state directory.
func (c *commandContext) newManager() (*state.Manager, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	manager := state.NewManager(cfg.StateDir, c.ensureLogger())
	if err := manager.Initialize(); err != nil {
		return nil, err
	}
	return manager, nil
}

// withManager runs fn against an initialized manager without locking.
// Read-only commands use this path.
func (c *commandContext) withManager(fn func(*state.Manager) error) error {
	manager, err := c.newManager()
	if err != nil {
		return err
	}
	return fn(manager)
}

// withLockedManager serializes mutating commands across processes with a
// lock file in the state directory.
func (c *commandContext) withLockedManager(fn func(*state.Manager) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	lock := flock.New(filepath.Join(cfg.StateDir, "galley.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire state lock: %w", err)
	}
	if !ok {
		return errors.New("another galley command is already running against this project")
	}
	defer func() {
		_ = lock.Unlock()
	}()
	return c.withManager(fn)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
