package state_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"galley/internal/book"
	"galley/internal/logging"
	"galley/internal/state"
	"galley/internal/testsupport"
)

func newManager(t *testing.T) *state.Manager {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return testsupport.MustInitManager(t, cfg)
}

func TestInitializeRequiresBookConfig(t *testing.T) {
	manager := state.NewManager(t.TempDir(), logging.NewNop())
	if err := manager.Initialize(); err == nil {
		t.Fatal("expected Initialize to fail without a book configuration")
	}
}

func TestMethodsBeforeInitializeFail(t *testing.T) {
	manager := state.NewManager(t.TempDir(), logging.NewNop())

	if _, err := manager.GetChapterState("chapter-01"); !errors.Is(err, state.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if _, err := manager.ProjectState(); !errors.Is(err, state.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestInitializeCreatesProjectAndPreferences(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	manager := testsupport.MustInitManager(t, cfg)

	project, err := manager.ProjectState()
	if err != nil {
		t.Fatalf("ProjectState: %v", err)
	}
	if project.Name != "Test Book" {
		t.Fatalf("project name should come from the book config, got %q", project.Name)
	}
	if project.Type != book.TypeNonFiction || project.Genre != "cookbook" {
		t.Fatalf("unexpected project type/genre: %s/%s", project.Type, project.Genre)
	}
	if project.TotalChapters != 0 || len(project.Chapters) != 0 {
		t.Fatalf("fresh project should have no chapters: %+v", project)
	}
	for _, status := range book.AllStatuses() {
		if count, ok := project.StatusBreakdown[status]; !ok || count != 0 {
			t.Fatalf("status breakdown should list %s at zero, got %v", status, project.StatusBreakdown)
		}
	}

	prefs, err := manager.Preferences()
	if err != nil {
		t.Fatalf("Preferences: %v", err)
	}
	if prefs.DefaultModel != "gpt-4o-mini" {
		t.Fatalf("unexpected default model: %q", prefs.DefaultModel)
	}

	for _, name := range []string{"project.json", "preferences.json"} {
		if _, err := os.Stat(filepath.Join(cfg.StateDir, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}
}

func TestInitializeIsIdempotentAcrossInstances(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := testsupport.MustInitManager(t, cfg)
	testsupport.NewChapter(t, first, "chapter-01")

	second := state.NewManager(cfg.StateDir, logging.NewNop())
	if err := second.Initialize(); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	chapter, err := second.GetChapterState("chapter-01")
	if err != nil {
		t.Fatalf("GetChapterState: %v", err)
	}
	if chapter == nil {
		t.Fatal("second instance should see persisted chapter state")
	}
}

func TestCreateChapterStateDefaults(t *testing.T) {
	manager := newManager(t)

	chapter, err := manager.CreateChapterState("chapter-01-history", "chapter-01-history.md")
	if err != nil {
		t.Fatalf("CreateChapterState: %v", err)
	}
	if chapter.Status != book.StatusDraft {
		t.Fatalf("new chapters start in draft, got %s", chapter.Status)
	}
	if chapter.WordCount != 0 {
		t.Fatalf("unexpected word count: %d", chapter.WordCount)
	}
	if chapter.Characteristics["complexity"] != "unknown" {
		t.Fatalf("unexpected complexity: %v", chapter.Characteristics["complexity"])
	}
	if len(chapter.Reviews) != 0 || len(chapter.PendingActions) != 0 || len(chapter.Transitions) != 0 {
		t.Fatalf("new chapter should have empty collections: %+v", chapter)
	}
	if chapter.CreatedAt.IsZero() || chapter.LastModified.IsZero() {
		t.Fatal("timestamps should be set on creation")
	}

	if _, err := manager.CreateChapterState("chapter-01-history", "chapter-01-history.md"); !errors.Is(err, state.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetChapterStateAbsentReturnsNil(t *testing.T) {
	manager := newManager(t)

	chapter, err := manager.GetChapterState("missing")
	if err != nil {
		t.Fatalf("GetChapterState: %v", err)
	}
	if chapter != nil {
		t.Fatalf("expected nil for absent chapter, got %+v", chapter)
	}
}

func TestGetChapterStateReturnsCopies(t *testing.T) {
	manager := newManager(t)
	testsupport.NewChapter(t, manager, "chapter-01")

	first, err := manager.GetChapterState("chapter-01")
	if err != nil {
		t.Fatalf("GetChapterState: %v", err)
	}
	first.Characteristics["complexity"] = "tampered"

	second, err := manager.GetChapterState("chapter-01")
	if err != nil {
		t.Fatalf("GetChapterState: %v", err)
	}
	if second.Characteristics["complexity"] == "tampered" {
		t.Fatal("caller mutation leaked into cached state")
	}
}

func TestUpdateChapterStatePartialMerge(t *testing.T) {
	manager := newManager(t)
	testsupport.NewChapter(t, manager, "chapter-01")

	words := 1200
	updated, err := manager.UpdateChapterState("chapter-01", state.ChapterUpdate{
		WordCount:       &words,
		Characteristics: map[string]any{"complexity": "medium"},
	})
	if err != nil {
		t.Fatalf("UpdateChapterState: %v", err)
	}
	if updated.WordCount != 1200 {
		t.Fatalf("unexpected word count: %d", updated.WordCount)
	}
	if updated.Characteristics["complexity"] != "medium" {
		t.Fatalf("unexpected complexity: %v", updated.Characteristics["complexity"])
	}
	if _, ok := updated.Characteristics["estimatedReadingTime"]; !ok {
		t.Fatal("characteristics merge should keep existing keys")
	}
	if updated.Status != book.StatusDraft {
		t.Fatalf("untouched fields must survive, got status %s", updated.Status)
	}

	if _, err := manager.UpdateChapterState("missing", state.ChapterUpdate{WordCount: &words}); !errors.Is(err, state.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateChapterStateRejectsInvalidResult(t *testing.T) {
	manager := newManager(t)
	testsupport.NewChapter(t, manager, "chapter-01")

	negative := -5
	if _, err := manager.UpdateChapterState("chapter-01", state.ChapterUpdate{WordCount: &negative}); err == nil {
		t.Fatal("expected validation error for negative word count")
	}

	chapter, err := manager.GetChapterState("chapter-01")
	if err != nil {
		t.Fatalf("GetChapterState: %v", err)
	}
	if chapter.WordCount != 0 {
		t.Fatalf("rejected update must not change stored state, got %d", chapter.WordCount)
	}
}

func TestDeleteChapterStateZeroesAggregates(t *testing.T) {
	manager := newManager(t)
	testsupport.NewChapter(t, manager, "chapter-01")
	words := 900
	if _, err := manager.UpdateChapterState("chapter-01", state.ChapterUpdate{WordCount: &words}); err != nil {
		t.Fatalf("UpdateChapterState: %v", err)
	}

	if err := manager.DeleteChapterState("chapter-01"); err != nil {
		t.Fatalf("DeleteChapterState: %v", err)
	}

	chapter, err := manager.GetChapterState("chapter-01")
	if err != nil || chapter != nil {
		t.Fatalf("expected chapter gone, got %+v, %v", chapter, err)
	}

	project, err := manager.ProjectState()
	if err != nil {
		t.Fatalf("ProjectState: %v", err)
	}
	if project.TotalChapters != 0 || project.TotalWords != 0 || len(project.Chapters) != 0 {
		t.Fatalf("aggregates should be zeroed after delete: %+v", project)
	}

	// Deleting again is a no-op.
	if err := manager.DeleteChapterState("chapter-01"); err != nil {
		t.Fatalf("repeat delete should be a no-op: %v", err)
	}
}

func TestAllChapterStatesSortedByName(t *testing.T) {
	manager := newManager(t)
	for _, name := range []string{"chapter-03", "chapter-01", "chapter-02"} {
		testsupport.NewChapter(t, manager, name)
	}

	chapters, err := manager.AllChapterStates()
	if err != nil {
		t.Fatalf("AllChapterStates: %v", err)
	}
	if len(chapters) != 3 {
		t.Fatalf("expected 3 chapters, got %d", len(chapters))
	}
	for i, want := range []string{"chapter-01", "chapter-02", "chapter-03"} {
		if chapters[i].Name != want {
			t.Fatalf("chapters out of order: %d = %s, want %s", i, chapters[i].Name, want)
		}
	}
}

func TestChapterName(t *testing.T) {
	cases := map[string]string{
		"chapter-01.md":          "chapter-01",
		"chapters/chapter-02.md": "chapter-02",
		"chapter-03":             "chapter-03",
	}
	for input, want := range cases {
		if got := state.ChapterName(input); got != want {
			t.Errorf("ChapterName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestUpdatePreferences(t *testing.T) {
	manager := newManager(t)

	model := "gpt-4o"
	limit := 25.0
	prefs, err := manager.UpdatePreferences(state.PreferencesUpdate{
		DefaultModel: &model,
		CostLimit:    &limit,
	})
	if err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}
	if prefs.DefaultModel != "gpt-4o" || prefs.CostLimit != 25.0 {
		t.Fatalf("unexpected preferences: %+v", prefs)
	}
	if !prefs.AutoSuggest {
		t.Fatal("untouched preference fields must survive")
	}

	bad := -1.0
	if _, err := manager.UpdatePreferences(state.PreferencesUpdate{CostLimit: &bad}); err == nil {
		t.Fatal("expected validation error for negative cost limit")
	}
}
