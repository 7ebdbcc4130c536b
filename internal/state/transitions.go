package state

import (
	"galley/internal/book"
	"galley/internal/logging"
)

// TransitionChapterStatus moves a chapter to a new workflow status. The
// move must be a single edge the workflow permits; the change is recorded
// in the chapter's append-only transition log.
func (m *Manager) TransitionChapterStatus(name string, to book.Status, metadata map[string]string) (*book.ChapterState, error) {
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

	from := current.Status
	if !book.CanTransition(from, to) {
		return nil, &TransitionError{
			Chapter: name,
			From:    from,
			To:      to,
			Allowed: book.AllowedTransitions(from),
		}
	}

	chapter := current.Clone()
	chapter.Status = to
	entry := book.Transition{From: from, To: to, Timestamp: m.now()}
	if len(metadata) > 0 {
		entry.Metadata = make(map[string]string, len(metadata))
		for key, value := range metadata {
			entry.Metadata[key] = value
		}
	}
	chapter.Transitions = append(chapter.Transitions, entry)

	if err := m.saveChapter(chapter); err != nil {
		return nil, err
	}
	if _, err := m.recalculateProject(); err != nil {
		return nil, err
	}
	m.logger.Info("chapter status changed",
		logging.String("chapter", name),
		logging.String("from", string(from)),
		logging.String("to", string(to)))
	return chapter.Clone(), nil
}
