package testsupport

import (
	"path/filepath"
	"testing"

	"galley/internal/book"
	"galley/internal/bookcfg"
	"galley/internal/config"
	"galley/internal/logging"
	"galley/internal/state"
	"galley/internal/statefile"
)

// MustInitManager creates a default cookbook book configuration under the
// config's state directory and returns an initialized state manager.
func MustInitManager(t testing.TB, cfg *config.Config) *state.Manager {
	t.Helper()

	store := statefile.NewStore(logging.NewNop())
	configPath := filepath.Join(cfg.StateDir, "book-config.json")
	if _, err := bookcfg.CreateDefault(book.TypeNonFiction, "cookbook", "Test Book", configPath, store); err != nil {
		t.Fatalf("bookcfg.CreateDefault: %v", err)
	}

	manager := state.NewManager(cfg.StateDir, logging.NewNop())
	if err := manager.Initialize(); err != nil {
		t.Fatalf("manager.Initialize: %v", err)
	}
	return manager
}

// NewChapter creates a chapter state document for tests.
func NewChapter(t testing.TB, manager *state.Manager, name string) *book.ChapterState {
	t.Helper()

	chapter, err := manager.CreateChapterState(name, name+".md")
	if err != nil {
		t.Fatalf("manager.CreateChapterState: %v", err)
	}
	return chapter
}
