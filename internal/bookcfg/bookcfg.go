// Package bookcfg owns the lifecycle of the book configuration document:
// loading and validating book-config.json, typed access to its fields,
// and merge-and-revalidate updates. The configuration defines which
// review types, content flags, detection patterns, and workflows the rest
// of the tooling may use.
package bookcfg

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"galley/internal/book"
	"galley/internal/statefile"
)

var (
	// ErrNotFound indicates book-config.json does not exist yet.
	ErrNotFound = errors.New("book configuration not found")
	// ErrNotLoaded indicates an accessor was called before Load succeeded.
	ErrNotLoaded = errors.New("book configuration not loaded")
)

// Config provides validated access to the book configuration document.
type Config struct {
	path  string
	store *statefile.Store

	cfg *book.Config
	raw map[string]any
}

// New returns an unloaded configuration handle for the given path.
func New(path string, store *statefile.Store) *Config {
	return &Config{path: path, store: store}
}

// Load reads and validates the configuration document, caching it in
// memory. A missing document is an error directing the operator to
// initialize the project.
func (c *Config) Load() error {
	data, err := c.store.Read(c.path)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("%w at %s (run 'galley init' to create it)", ErrNotFound, c.path)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode book configuration %s: %w", c.path, err)
	}
	if violations := book.ValidateBookConfig(doc); len(violations) > 0 {
		return &book.ValidationError{Kind: "book configuration", Path: c.path, Violations: violations}
	}

	var cfg book.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("decode book configuration %s: %w", c.path, err)
	}

	c.cfg = &cfg
	c.raw = doc
	return nil
}

// Path returns the configuration file location.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) ensureLoaded() error {
	if c.cfg == nil {
		return fmt.Errorf("%w: call Load first", ErrNotLoaded)
	}
	return nil
}

// All returns a copy of the complete configuration.
func (c *Config) All() (*book.Config, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	return c.cfg.Clone(), nil
}

// Get navigates the configuration by a dot-separated key path, e.g.
// "contentTypes.hasRecipes". Any missing segment is an error.
func (c *Config) Get(key string) (any, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	var value any = c.raw
	for _, segment := range strings.Split(key, ".") {
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("configuration key not found: %s", key)
		}
		value, ok = obj[segment]
		if !ok {
			return nil, fmt.Errorf("configuration key not found: %s", key)
		}
	}
	return value, nil
}

// ContentTypes returns the content flag map.
func (c *Config) ContentTypes() (map[string]bool, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	return c.cfg.Clone().ContentTypes, nil
}

// ReviewTypes returns the review types permitted for this book.
func (c *Config) ReviewTypes() ([]string, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	return c.cfg.Clone().ReviewTypes, nil
}

// DetectionPatterns returns the content detection pattern map.
func (c *Config) DetectionPatterns() (map[string]book.Detection, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	return c.cfg.Clone().CustomDetection, nil
}

// Workflows returns the named review workflows.
func (c *Config) Workflows() (map[string][]string, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	return c.cfg.Clone().CustomWorkflows, nil
}

// Type returns the book type.
func (c *Config) Type() (book.Type, error) {
	if err := c.ensureLoaded(); err != nil {
		return "", err
	}
	return c.cfg.Type, nil
}

// Genre returns the genre.
func (c *Config) Genre() (string, error) {
	if err := c.ensureLoaded(); err != nil {
		return "", err
	}
	return c.cfg.Genre, nil
}

// Subgenre returns the subgenre, which may be empty.
func (c *Config) Subgenre() (string, error) {
	if err := c.ensureLoaded(); err != nil {
		return "", err
	}
	return c.cfg.Subgenre, nil
}

// Title returns the book title.
func (c *Config) Title() (string, error) {
	if err := c.ensureLoaded(); err != nil {
		return "", err
	}
	if c.cfg.Title == "" {
		return "Untitled Book", nil
	}
	return c.cfg.Title, nil
}

// TargetAudience returns the target audience description.
func (c *Config) TargetAudience() (string, error) {
	if err := c.ensureLoaded(); err != nil {
		return "", err
	}
	if c.cfg.TargetAudience == "" {
		return "general", nil
	}
	return c.cfg.TargetAudience, nil
}

// Voice returns the voice/tone description.
func (c *Config) Voice() (string, error) {
	if err := c.ensureLoaded(); err != nil {
		return "", err
	}
	if c.cfg.Voice == "" {
		return "conversational", nil
	}
	return c.cfg.Voice, nil
}

// HasContentType reports whether the given content flag is enabled.
func (c *Config) HasContentType(flag string) (bool, error) {
	if err := c.ensureLoaded(); err != nil {
		return false, err
	}
	return c.cfg.ContentTypes[flag], nil
}

// HasReviewType reports whether the given review type is permitted.
func (c *Config) HasReviewType(reviewType string) (bool, error) {
	if err := c.ensureLoaded(); err != nil {
		return false, err
	}
	for _, known := range c.cfg.ReviewTypes {
		if known == reviewType {
			return true, nil
		}
	}
	return false, nil
}

// PatternsFor returns the detection patterns for a content flag key. A
// missing key yields an empty list, not an error.
func (c *Config) PatternsFor(flagKey string) ([]string, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	det, ok := c.cfg.CustomDetection[flagKey]
	if !ok {
		return []string{}, nil
	}
	out := make([]string, len(det.Patterns))
	copy(out, det.Patterns)
	return out, nil
}

// Workflow returns the review type sequence for a named workflow. A
// missing workflow yields an empty list, not an error.
func (c *Config) Workflow(name string) ([]string, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	steps, ok := c.cfg.CustomWorkflows[name]
	if !ok {
		return []string{}, nil
	}
	out := make([]string, len(steps))
	copy(out, steps)
	return out, nil
}

// Update merges the partial update over the current configuration,
// validates the merged result, and persists it only when valid. On a
// validation failure the stored document and the in-memory copy are left
// untouched.
func (c *Config) Update(update book.ConfigUpdate) (*book.Config, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}

	merged := c.cfg.Clone()
	if update.Type != nil {
		merged.Type = *update.Type
	}
	if update.Genre != nil {
		merged.Genre = *update.Genre
	}
	if update.Subgenre != nil {
		merged.Subgenre = *update.Subgenre
	}
	if update.Title != nil {
		merged.Title = *update.Title
	}
	if update.TargetAudience != nil {
		merged.TargetAudience = *update.TargetAudience
	}
	if update.Voice != nil {
		merged.Voice = *update.Voice
	}
	if update.ReviewTypes != nil {
		merged.ReviewTypes = append([]string{}, update.ReviewTypes...)
	}
	for flag, enabled := range update.ContentTypes {
		merged.ContentTypes[flag] = enabled
	}
	for key, det := range update.CustomDetection {
		merged.CustomDetection[key] = book.Detection{Patterns: append([]string{}, det.Patterns...)}
	}
	for name, steps := range update.CustomWorkflows {
		merged.CustomWorkflows[name] = append([]string{}, steps...)
	}

	doc, err := book.Document(merged)
	if err != nil {
		return nil, err
	}
	if violations := book.ValidateBookConfig(doc); len(violations) > 0 {
		return nil, &book.ValidationError{Kind: "book configuration update", Path: c.path, Violations: violations}
	}

	if err := c.store.Write(c.path, merged); err != nil {
		return nil, err
	}
	c.cfg = merged
	c.raw = doc
	return merged.Clone(), nil
}

// CreateDefault persists a default configuration for the given type and
// genre at path. The document is validated before anything is written, so
// an unrecognized type can never produce a config Load would reject.
// Used only during project initialization.
func CreateDefault(t book.Type, genre, title, path string, store *statefile.Store) (*book.Config, error) {
	cfg := book.DefaultConfig(t, genre)
	if strings.TrimSpace(title) != "" {
		cfg.Title = title
	}

	doc, err := book.Document(cfg)
	if err != nil {
		return nil, err
	}
	if violations := book.ValidateBookConfig(doc); len(violations) > 0 {
		return nil, &book.ValidationError{Kind: "book configuration", Path: path, Violations: violations}
	}

	if err := store.Write(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
