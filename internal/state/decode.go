package state

import (
	"encoding/json"
	"fmt"
	"time"

	"galley/internal/book"
)

func (m *Manager) now() time.Time {
	return time.Now().UTC()
}

func decodeProject(data []byte, path string) (*book.ProjectState, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode project state %s: %w", path, err)
	}
	if violations := book.ValidateProjectState(doc); len(violations) > 0 {
		return nil, &book.ValidationError{Kind: "project state", Path: path, Violations: violations}
	}
	var project book.ProjectState
	if err := json.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("decode project state %s: %w", path, err)
	}
	if project.StatusBreakdown == nil {
		project.StatusBreakdown = book.ZeroStatusBreakdown()
	}
	if project.Chapters == nil {
		project.Chapters = []string{}
	}
	return &project, nil
}

func decodePreferences(data []byte, path string) (*book.Preferences, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode preferences %s: %w", path, err)
	}
	if violations := book.ValidatePreferences(doc); len(violations) > 0 {
		return nil, &book.ValidationError{Kind: "preferences", Path: path, Violations: violations}
	}
	prefs := book.DefaultPreferences()
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("decode preferences %s: %w", path, err)
	}
	return &prefs, nil
}

func decodeChapter(data []byte, name, path string) (*book.ChapterState, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode chapter state %s: %w", path, err)
	}
	if violations := book.ValidateChapterState(doc); len(violations) > 0 {
		return nil, &book.ValidationError{Kind: "chapter state", Path: path, Violations: violations}
	}
	var chapter book.ChapterState
	if err := json.Unmarshal(data, &chapter); err != nil {
		return nil, fmt.Errorf("decode chapter state %s: %w", path, err)
	}
	chapter.Name = name
	normalizeChapter(&chapter)
	return &chapter, nil
}

// normalizeChapter replaces nil collections so callers never need nil
// checks on a loaded document.
func normalizeChapter(chapter *book.ChapterState) {
	if chapter.Reviews == nil {
		chapter.Reviews = []book.Review{}
	}
	if chapter.CompletedReviews == nil {
		chapter.CompletedReviews = map[string]time.Time{}
	}
	if chapter.PendingActions == nil {
		chapter.PendingActions = []book.PendingAction{}
	}
	if chapter.Characteristics == nil {
		chapter.Characteristics = map[string]any{}
	}
	if chapter.Transitions == nil {
		chapter.Transitions = []book.Transition{}
	}
}
