package state

import (
	"time"

	"galley/internal/book"
)

// FindChaptersByStatus returns every chapter currently in the given
// workflow status, sorted by name.
func (m *Manager) FindChaptersByStatus(status book.Status) ([]*book.ChapterState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	chapters, err := m.allChapters()
	if err != nil {
		return nil, err
	}
	matched := make([]*book.ChapterState, 0, len(chapters))
	for _, chapter := range chapters {
		if chapter.Status == status {
			matched = append(matched, chapter)
		}
	}
	return matched, nil
}

// DefaultReviewStaleDays is the review age threshold used when a caller
// does not supply one.
const DefaultReviewStaleDays = 30

// FindChaptersNeedingReview returns chapters that are waiting in
// ready-for-review, have never been reviewed, or whose last review is
// older than maxDays days. maxDays <= 0 selects the default threshold.
func (m *Manager) FindChaptersNeedingReview(maxDays int) ([]*book.ChapterState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	if maxDays <= 0 {
		maxDays = DefaultReviewStaleDays
	}
	cutoff := time.Duration(maxDays) * 24 * time.Hour
	now := m.now()

	chapters, err := m.allChapters()
	if err != nil {
		return nil, err
	}
	matched := make([]*book.ChapterState, 0, len(chapters))
	for _, chapter := range chapters {
		switch {
		case chapter.Status == book.StatusReadyForReview:
			matched = append(matched, chapter)
		case chapter.Metrics.LastReviewedAt == nil:
			matched = append(matched, chapter)
		case now.Sub(*chapter.Metrics.LastReviewedAt) > cutoff:
			matched = append(matched, chapter)
		}
	}
	return matched, nil
}

// FindChaptersByCharacteristic returns chapters whose characteristic
// under key equals value. A nil value matches any chapter that has the
// key at all.
func (m *Manager) FindChaptersByCharacteristic(key string, value any) ([]*book.ChapterState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	chapters, err := m.allChapters()
	if err != nil {
		return nil, err
	}
	matched := make([]*book.ChapterState, 0, len(chapters))
	for _, chapter := range chapters {
		have, ok := chapter.Characteristics[key]
		if !ok {
			continue
		}
		if value == nil || characteristicEqual(have, value) {
			matched = append(matched, chapter)
		}
	}
	return matched, nil
}

// characteristicEqual compares characteristic values, treating all
// numeric representations as equivalent since JSON decoding yields
// float64 while callers often pass int.
func characteristicEqual(have, want any) bool {
	if haveNum, ok := asFloat(have); ok {
		if wantNum, ok := asFloat(want); ok {
			return haveNum == wantNum
		}
		return false
	}
	return have == want
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// ChapterActions pairs a chapter with its outstanding actions.
type ChapterActions struct {
	Chapter *book.ChapterState
	Actions []book.PendingAction
}

// FindChaptersWithPendingActions returns every chapter with at least one
// action matching the filter, paired with the matching actions only.
// Chapters whose filtered list comes up empty are omitted.
func (m *Manager) FindChaptersWithPendingActions(filter ActionFilter) ([]ChapterActions, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	chapters, err := m.allChapters()
	if err != nil {
		return nil, err
	}
	matched := make([]ChapterActions, 0, len(chapters))
	for _, chapter := range chapters {
		actions := filterActions(chapter.PendingActions, filter)
		if len(actions) == 0 {
			continue
		}
		matched = append(matched, ChapterActions{
			Chapter: chapter,
			Actions: actions,
		})
	}
	return matched, nil
}

// FindChaptersMissingReview returns chapters that have never completed a
// review of the given type.
func (m *Manager) FindChaptersMissingReview(reviewType string) ([]*book.ChapterState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	chapters, err := m.allChapters()
	if err != nil {
		return nil, err
	}
	matched := make([]*book.ChapterState, 0, len(chapters))
	for _, chapter := range chapters {
		if _, done := chapter.CompletedReviews[reviewType]; !done {
			matched = append(matched, chapter)
		}
	}
	return matched, nil
}

// Statistics summarizes the chapter state set.
type Statistics struct {
	Total              int
	ByStatus           map[book.Status]int
	TotalWords         int
	TotalReviews       int
	TotalCost          float64
	AverageWordCount   int
	WithPendingActions int
	NeverReviewed      int
}

// ChapterStatistics computes summary statistics across every chapter.
func (m *Manager) ChapterStatistics() (*Statistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	chapters, err := m.allChapters()
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		Total:    len(chapters),
		ByStatus: book.ZeroStatusBreakdown(),
	}
	for _, chapter := range chapters {
		status := chapter.Status
		if !book.ValidStatus(status) {
			status = book.StatusDraft
		}
		stats.ByStatus[status]++
		stats.TotalWords += chapter.WordCount
		stats.TotalReviews += chapter.Metrics.TotalReviews
		stats.TotalCost += chapter.Metrics.CostToDate
		if len(chapter.PendingActions) > 0 {
			stats.WithPendingActions++
		}
		if chapter.Metrics.TotalReviews == 0 {
			stats.NeverReviewed++
		}
	}
	if stats.Total > 0 {
		stats.AverageWordCount = (stats.TotalWords + stats.Total/2) / stats.Total
	}
	return stats, nil
}
