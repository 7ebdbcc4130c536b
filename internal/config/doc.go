// Package config loads and validates galley's tool-level TOML
// configuration: where the manuscript and its state directory live and
// how logging behaves. Configuration is resolved from an explicit path,
// the GALLEY_CONFIG environment variable, a project-local galley.toml, or
// ~/.config/galley/config.toml, in that order.
package config
