package state

import (
	"fmt"

	"galley/internal/book"
	"galley/internal/logging"
)

// ActionInput describes a pending action to attach to a chapter. Type
// defaults to "general" and Priority to medium.
type ActionInput struct {
	Type        string
	Description string
	Priority    book.Priority
}

// AddPendingAction attaches an outstanding task to a chapter.
func (m *Manager) AddPendingAction(name string, input ActionInput) (*book.PendingAction, error) {
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

	actionType := input.Type
	if actionType == "" {
		actionType = "general"
	}
	priority := input.Priority
	if priority == "" {
		priority = book.PriorityMedium
	}
	if !book.ValidPriority(priority) {
		return nil, fmt.Errorf("chapter %s: invalid action priority %q", name, priority)
	}

	now := m.now()
	action := book.PendingAction{
		ID:          fmt.Sprintf("%s-action-%d", name, now.UnixMilli()),
		Type:        actionType,
		Description: input.Description,
		Priority:    priority,
		CreatedAt:   now,
	}

	chapter := current.Clone()
	chapter.PendingActions = append(chapter.PendingActions, action)
	if err := m.saveChapter(chapter); err != nil {
		return nil, err
	}
	if _, err := m.recalculateProject(); err != nil {
		return nil, err
	}
	m.logger.Info("added pending action",
		logging.String("chapter", name),
		logging.String("action", action.ID),
		logging.String("priority", string(priority)))
	return &action, nil
}

// CompletePendingAction removes an action from a chapter by ID. Completed
// actions are not retained.
func (m *Manager) CompletePendingAction(name, actionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureInitialized(); err != nil {
		return err
	}

	current, err := m.loadChapter(name)
	if err != nil {
		return err
	}
	if current == nil {
		return chapterError(name, ErrNotFound)
	}

	chapter := current.Clone()
	remaining := chapter.PendingActions[:0]
	found := false
	for _, action := range chapter.PendingActions {
		if action.ID == actionID {
			found = true
			continue
		}
		remaining = append(remaining, action)
	}
	if !found {
		return fmt.Errorf("chapter %s: action %s: %w", name, actionID, ErrNotFound)
	}
	chapter.PendingActions = remaining

	if err := m.saveChapter(chapter); err != nil {
		return err
	}
	if _, err := m.recalculateProject(); err != nil {
		return err
	}
	m.logger.Info("completed pending action",
		logging.String("chapter", name),
		logging.String("action", actionID))
	return nil
}

// RemovePendingAction deletes an action without recording completion.
// Removal and completion are the same operation for stored state.
func (m *Manager) RemovePendingAction(name, actionID string) error {
	return m.CompletePendingAction(name, actionID)
}

// ActionFilter narrows PendingActions results. Zero values apply no
// filtering.
type ActionFilter struct {
	Type     string
	Priority book.Priority
}

// PendingActions returns a chapter's outstanding actions in creation
// order. A chapter with no state yields an empty list.
func (m *Manager) PendingActions(name string, filter ActionFilter) ([]book.PendingAction, error) {
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
		return []book.PendingAction{}, nil
	}

	return filterActions(chapter.Clone().PendingActions, filter), nil
}

// filterActions keeps the actions matching the filter, in input order.
func filterActions(actions []book.PendingAction, filter ActionFilter) []book.PendingAction {
	matched := make([]book.PendingAction, 0, len(actions))
	for _, action := range actions {
		if filter.Type != "" && action.Type != filter.Type {
			continue
		}
		if filter.Priority != "" && action.Priority != filter.Priority {
			continue
		}
		matched = append(matched, action)
	}
	return matched
}
