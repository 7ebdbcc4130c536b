package config

const (
	defaultManuscriptDir = "manuscript"
	defaultLogDir        = "~/.local/share/galley/logs"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		ManuscriptDir: defaultManuscriptDir,
		LogDir:        defaultLogDir,
		LogLevel:      defaultLogLevel,
		LogFormat:     defaultLogFormat,
	}
}
