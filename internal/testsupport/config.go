package testsupport

import (
	"path/filepath"
	"testing"

	"galley/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.ManuscriptDir = filepath.Join(base, "manuscript")
	cfgVal.StateDir = filepath.Join(base, "manuscript", ".state")
	cfgVal.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLogLevel overrides the log level on the test config.
func WithLogLevel(level string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LogLevel = level
	}
}
