package state_test

import (
	"errors"
	"testing"

	"galley/internal/book"
	"galley/internal/state"
	"galley/internal/testsupport"
)

func TestTransitionChapterStatusAppendsExactlyOneEntry(t *testing.T) {
	manager := newManager(t)
	testsupport.NewChapter(t, manager, "chapter-01")

	chapter, err := manager.TransitionChapterStatus("chapter-01", book.StatusReadyForReview, nil)
	if err != nil {
		t.Fatalf("TransitionChapterStatus: %v", err)
	}
	if chapter.Status != book.StatusReadyForReview {
		t.Fatalf("unexpected status: %s", chapter.Status)
	}
	if len(chapter.Transitions) != 1 {
		t.Fatalf("expected exactly one transition entry, got %d", len(chapter.Transitions))
	}
	entry := chapter.Transitions[0]
	if entry.From != book.StatusDraft || entry.To != book.StatusReadyForReview {
		t.Fatalf("unexpected transition entry: %+v", entry)
	}
	if entry.Timestamp.IsZero() {
		t.Fatal("transition timestamp must be set")
	}
}

func TestTransitionChapterStatusRejectsIllegalMove(t *testing.T) {
	manager := newManager(t)
	testsupport.NewChapter(t, manager, "chapter-01")

	_, err := manager.TransitionChapterStatus("chapter-01", book.StatusReadyForPublication, nil)
	var terr *state.TransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if terr.From != book.StatusDraft || terr.To != book.StatusReadyForPublication {
		t.Fatalf("unexpected error detail: %+v", terr)
	}
	if len(terr.Allowed) != 1 || terr.Allowed[0] != book.StatusReadyForReview {
		t.Fatalf("unexpected allowed list: %v", terr.Allowed)
	}

	// Rejected transitions must leave the chapter untouched.
	chapter, err := manager.GetChapterState("chapter-01")
	if err != nil {
		t.Fatalf("GetChapterState: %v", err)
	}
	if chapter.Status != book.StatusDraft || len(chapter.Transitions) != 0 {
		t.Fatalf("chapter changed after rejected transition: %+v", chapter)
	}
}

func TestTransitionChapterStatusMissingChapter(t *testing.T) {
	manager := newManager(t)

	if _, err := manager.TransitionChapterStatus("missing", book.StatusReadyForReview, nil); !errors.Is(err, state.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransitionLogAccumulatesRoundTrip(t *testing.T) {
	manager := newManager(t)
	testsupport.NewChapter(t, manager, "chapter-01")

	path := []book.Status{
		book.StatusReadyForReview,
		book.StatusInRevision,
		book.StatusPendingVerification,
		book.StatusReadyForPublication,
		book.StatusInRevision,
	}
	for _, status := range path {
		if _, err := manager.TransitionChapterStatus("chapter-01", status, nil); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	chapter, err := manager.GetChapterState("chapter-01")
	if err != nil {
		t.Fatalf("GetChapterState: %v", err)
	}
	if len(chapter.Transitions) != len(path) {
		t.Fatalf("expected %d transition entries, got %d", len(path), len(chapter.Transitions))
	}
	for i, entry := range chapter.Transitions {
		if entry.To != path[i] {
			t.Fatalf("transition %d targets %s, want %s", i, entry.To, path[i])
		}
		if i > 0 && entry.From != path[i-1] {
			t.Fatalf("transition %d starts from %s, want %s", i, entry.From, path[i-1])
		}
	}
}

func TestTransitionMetadataIsRecorded(t *testing.T) {
	manager := newManager(t)
	testsupport.NewChapter(t, manager, "chapter-01")

	chapter, err := manager.TransitionChapterStatus("chapter-01", book.StatusReadyForReview, map[string]string{"note": "first pass done"})
	if err != nil {
		t.Fatalf("TransitionChapterStatus: %v", err)
	}
	if chapter.Transitions[0].Metadata["note"] != "first pass done" {
		t.Fatalf("metadata missing: %+v", chapter.Transitions[0])
	}
}

func TestTransitionUpdatesStatusBreakdown(t *testing.T) {
	manager := newManager(t)
	testsupport.NewChapter(t, manager, "chapter-01")
	testsupport.NewChapter(t, manager, "chapter-02")

	if _, err := manager.TransitionChapterStatus("chapter-01", book.StatusReadyForReview, nil); err != nil {
		t.Fatalf("TransitionChapterStatus: %v", err)
	}

	project, err := manager.ProjectState()
	if err != nil {
		t.Fatalf("ProjectState: %v", err)
	}
	if project.StatusBreakdown[book.StatusDraft] != 1 {
		t.Fatalf("expected 1 draft chapter, got %d", project.StatusBreakdown[book.StatusDraft])
	}
	if project.StatusBreakdown[book.StatusReadyForReview] != 1 {
		t.Fatalf("expected 1 ready-for-review chapter, got %d", project.StatusBreakdown[book.StatusReadyForReview])
	}
}
