package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"galley/internal/book"
	"galley/internal/logging"
)

// ChapterName derives the chapter's state key from a manuscript file
// path: the base name with any ".md" extension removed.
func ChapterName(file string) string {
	return strings.TrimSuffix(filepath.Base(file), ".md")
}

// GetChapterState returns a copy of the chapter's state document, or
// (nil, nil) when no state exists for that chapter.
func (m *Manager) GetChapterState(name string) (*book.ChapterState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	chapter, err := m.loadChapter(name)
	if err != nil {
		return nil, err
	}
	return chapter.Clone(), nil
}

// loadChapter returns the cached document, reading from disk on a miss.
// Callers must hold m.mu. Returns (nil, nil) when absent.
func (m *Manager) loadChapter(name string) (*book.ChapterState, error) {
	if chapter, ok := m.chapters[name]; ok {
		return chapter, nil
	}
	path := m.chapterPath(name)
	data, err := m.store.Read(path)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	chapter, err := decodeChapter(data, name, path)
	if err != nil {
		return nil, err
	}
	m.chapters[name] = chapter
	return chapter, nil
}

// SaveChapterState validates and persists the chapter document, stamping
// lastModified, then recalculates the project aggregate.
func (m *Manager) SaveChapterState(chapter *book.ChapterState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureInitialized(); err != nil {
		return err
	}
	if err := m.saveChapter(chapter); err != nil {
		return err
	}
	_, err := m.recalculateProject()
	return err
}

// saveChapter persists one chapter document and updates the cache.
// Callers must hold m.mu.
func (m *Manager) saveChapter(chapter *book.ChapterState) error {
	chapter.LastModified = m.now()
	normalizeChapter(chapter)

	doc, err := book.Document(chapter)
	if err != nil {
		return err
	}
	path := m.chapterPath(chapter.Name)
	if violations := book.ValidateChapterState(doc); len(violations) > 0 {
		return &book.ValidationError{Kind: "chapter state", Path: path, Violations: violations}
	}
	if err := m.store.Write(path, chapter); err != nil {
		return err
	}
	m.chapters[chapter.Name] = chapter.Clone()
	return nil
}

// CreateChapterState creates a fresh draft state document for a chapter.
// It fails when state for that chapter already exists.
func (m *Manager) CreateChapterState(name, file string) (*book.ChapterState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	existing, err := m.loadChapter(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, chapterError(name, ErrAlreadyExists)
	}

	now := m.now()
	chapter := &book.ChapterState{
		Name:             name,
		File:             file,
		Status:           book.StatusDraft,
		Reviews:          []book.Review{},
		CompletedReviews: map[string]time.Time{},
		PendingActions:   []book.PendingAction{},
		Characteristics: map[string]any{
			"complexity":           "unknown",
			"estimatedReadingTime": 0,
		},
		Transitions: []book.Transition{},
		CreatedAt:   now,
	}
	if err := m.saveChapter(chapter); err != nil {
		return nil, err
	}
	if _, err := m.recalculateProject(); err != nil {
		return nil, err
	}
	m.logger.Info("created chapter state",
		logging.String("chapter", name),
		logging.String("file", file))
	return chapter.Clone(), nil
}

// ChapterUpdate describes a partial chapter state change. Pointer fields
// replace the current value when set. Reviews, PendingActions, and
// Transitions replace the stored slice when non-nil; CompletedReviews and
// Characteristics are merged key-by-key.
type ChapterUpdate struct {
	File             *string
	Status           *book.Status
	WordCount        *int
	Reviews          []book.Review
	PendingActions   []book.PendingAction
	Transitions      []book.Transition
	CompletedReviews map[string]time.Time
	Characteristics  map[string]any
	Metrics          *MetricsUpdate
}

// MetricsUpdate describes a partial change to a chapter's metrics.
type MetricsUpdate struct {
	LastReviewedAt *time.Time
	TotalReviews   *int
	CostToDate     *float64
}

// UpdateChapterState applies a partial update to an existing chapter
// state document and persists the result.
func (m *Manager) UpdateChapterState(name string, update ChapterUpdate) (*book.ChapterState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	chapter, err := m.applyChapterUpdate(name, update)
	if err != nil {
		return nil, err
	}
	if _, err := m.recalculateProject(); err != nil {
		return nil, err
	}
	return chapter.Clone(), nil
}

// applyChapterUpdate merges and persists an update without touching the
// project aggregate. Callers must hold m.mu.
func (m *Manager) applyChapterUpdate(name string, update ChapterUpdate) (*book.ChapterState, error) {
	current, err := m.loadChapter(name)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, chapterError(name, ErrNotFound)
	}

	chapter := current.Clone()
	if update.File != nil {
		chapter.File = *update.File
	}
	if update.Status != nil {
		chapter.Status = *update.Status
	}
	if update.WordCount != nil {
		chapter.WordCount = *update.WordCount
	}
	if update.Reviews != nil {
		chapter.Reviews = update.Reviews
	}
	if update.PendingActions != nil {
		chapter.PendingActions = update.PendingActions
	}
	if update.Transitions != nil {
		chapter.Transitions = update.Transitions
	}
	for reviewType, ts := range update.CompletedReviews {
		chapter.CompletedReviews[reviewType] = ts
	}
	for key, value := range update.Characteristics {
		chapter.Characteristics[key] = value
	}
	if update.Metrics != nil {
		if update.Metrics.LastReviewedAt != nil {
			ts := *update.Metrics.LastReviewedAt
			chapter.Metrics.LastReviewedAt = &ts
		}
		if update.Metrics.TotalReviews != nil {
			chapter.Metrics.TotalReviews = *update.Metrics.TotalReviews
		}
		if update.Metrics.CostToDate != nil {
			chapter.Metrics.CostToDate = *update.Metrics.CostToDate
		}
	}
	if err := m.saveChapter(chapter); err != nil {
		return nil, err
	}
	return chapter, nil
}

// DeleteChapterState removes a chapter's state document and refreshes
// the project aggregate. Deleting a chapter with no state is a no-op.
func (m *Manager) DeleteChapterState(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureInitialized(); err != nil {
		return err
	}
	path := m.chapterPath(name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	// Best effort on the backup sibling left by atomic writes.
	_ = os.Remove(path + ".backup")
	delete(m.chapters, name)
	if _, err := m.recalculateProject(); err != nil {
		return err
	}
	m.logger.Info("deleted chapter state", logging.String("chapter", name))
	return nil
}

// AllChapterStates returns every chapter state document, sorted by
// chapter name.
func (m *Manager) AllChapterStates() ([]*book.ChapterState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	return m.allChapters()
}

// allChapters lists chapter documents from disk, serving each through
// the cache. Callers must hold m.mu.
func (m *Manager) allChapters() ([]*book.ChapterState, error) {
	names, err := m.chapterNames()
	if err != nil {
		return nil, err
	}
	chapters := make([]*book.ChapterState, 0, len(names))
	for _, name := range names {
		chapter, err := m.loadChapter(name)
		if err != nil {
			return nil, err
		}
		if chapter == nil {
			continue
		}
		chapters = append(chapters, chapter.Clone())
	}
	return chapters, nil
}

func (m *Manager) chapterNames() ([]string, error) {
	entries, err := os.ReadDir(m.chaptersDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(names)
	return names, nil
}

func chapterError(name string, err error) error {
	return fmt.Errorf("chapter %s: %w", name, err)
}
