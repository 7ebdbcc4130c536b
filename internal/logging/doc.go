// Package logging constructs the application's slog loggers and provides
// small attribute helpers so call sites stay terse. Two output formats are
// supported: a human console format and JSON.
package logging
