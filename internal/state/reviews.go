package state

import (
	"fmt"
	"sort"
	"time"

	"galley/internal/book"
	"galley/internal/logging"
)

// ReviewInput describes a review to record against a chapter. Type is
// required and must be one of the book configuration's review types;
// Model defaults to the preferences' default model when empty.
type ReviewInput struct {
	Type    string
	Model   string
	Cost    float64
	Summary string
	Issues  []book.Issue
}

// AddReview appends an immutable review record to a chapter, marks the
// review type completed, and updates the chapter's review metrics. The
// whole change is persisted as a single write.
func (m *Manager) AddReview(name string, input ReviewInput) (*book.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}

	current, err := m.loadChapter(name)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, chapterError(name, ErrNotFound)
	}

	allowed, err := m.bookCfg.ReviewTypes()
	if err != nil {
		return nil, err
	}
	permitted := false
	for _, reviewType := range allowed {
		if reviewType == input.Type {
			permitted = true
			break
		}
	}
	if !permitted {
		return nil, &ReviewTypeError{Chapter: name, Type: input.Type, Allowed: allowed}
	}

	model := input.Model
	if model == "" {
		model = m.prefs.DefaultModel
	}
	now := m.now()
	review := book.Review{
		ID:        fmt.Sprintf("%s-%s-%d", name, input.Type, now.UnixMilli()),
		Type:      input.Type,
		Model:     model,
		Cost:      input.Cost,
		Timestamp: now,
		Summary:   input.Summary,
		Issues:    input.Issues,
	}
	if review.Issues == nil {
		review.Issues = []book.Issue{}
	}

	chapter := current.Clone()
	chapter.Reviews = append(chapter.Reviews, review)
	chapter.CompletedReviews[input.Type] = now
	chapter.Metrics.LastReviewedAt = &now
	chapter.Metrics.TotalReviews++
	chapter.Metrics.CostToDate += input.Cost

	if err := m.saveChapter(chapter); err != nil {
		return nil, err
	}
	if _, err := m.recalculateProject(); err != nil {
		return nil, err
	}
	m.logger.Info("recorded review",
		logging.String("chapter", name),
		logging.String("type", input.Type),
		logging.String("model", model),
		logging.Float64("cost", input.Cost))
	return &review, nil
}

// ReviewFilter narrows ReviewHistory results. Zero values apply no
// filtering.
type ReviewFilter struct {
	Type  string
	Since time.Time
	Limit int
}

// ReviewHistory returns a chapter's reviews, newest first, optionally
// filtered by type, timestamp, and count.
func (m *Manager) ReviewHistory(name string, filter ReviewFilter) ([]book.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}

	chapter, err := m.loadChapter(name)
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return []book.Review{}, nil
	}

	reviews := make([]book.Review, 0, len(chapter.Reviews))
	for _, review := range chapter.Clone().Reviews {
		if filter.Type != "" && review.Type != filter.Type {
			continue
		}
		if !filter.Since.IsZero() && review.Timestamp.Before(filter.Since) {
			continue
		}
		reviews = append(reviews, review)
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].Timestamp.After(reviews[j].Timestamp)
	})
	if filter.Limit > 0 && len(reviews) > filter.Limit {
		reviews = reviews[:filter.Limit]
	}
	return reviews, nil
}

// LatestReview returns a chapter's most recent review of the given type,
// or (nil, nil) when none exists.
func (m *Manager) LatestReview(name, reviewType string) (*book.Review, error) {
	reviews, err := m.ReviewHistory(name, ReviewFilter{Type: reviewType, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, nil
	}
	return &reviews[0], nil
}
