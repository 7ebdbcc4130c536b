package state

import (
	"galley/internal/book"
)

// RecalculateProjectStats rebuilds the project aggregate from the full
// chapter state set and persists it. The result is a pure function of
// the chapter documents on disk, so repeated calls are idempotent.
func (m *Manager) RecalculateProjectStats() (*book.ProjectState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	return m.recalculateProject()
}

// recalculateProject does the aggregate rebuild. Callers must hold m.mu.
func (m *Manager) recalculateProject() (*book.ProjectState, error) {
	chapters, err := m.allChapters()
	if err != nil {
		return nil, err
	}

	project := m.project.Clone()
	project.TotalChapters = len(chapters)
	project.TotalWords = 0
	project.TotalReviews = 0
	project.TotalCost = 0
	project.StatusBreakdown = book.ZeroStatusBreakdown()
	project.Chapters = make([]string, 0, len(chapters))

	for _, chapter := range chapters {
		project.Chapters = append(project.Chapters, chapter.Name)
		project.TotalWords += chapter.WordCount
		project.TotalReviews += chapter.Metrics.TotalReviews
		project.TotalCost += chapter.Metrics.CostToDate
		status := chapter.Status
		if !book.ValidStatus(status) {
			// Unknown or missing status is counted as draft rather
			// than dropped from the breakdown.
			status = book.StatusDraft
		}
		project.StatusBreakdown[status]++
	}
	project.LastModified = m.now()

	if err := m.writeProject(project); err != nil {
		return nil, err
	}
	m.project = project
	return project.Clone(), nil
}
