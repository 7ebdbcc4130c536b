package state

import (
	"errors"
	"fmt"
	"strings"

	"galley/internal/book"
)

var (
	// ErrNotInitialized indicates a Manager method was called before
	// Initialize succeeded.
	ErrNotInitialized = errors.New("state manager not initialized")
	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a create collided with an existing record.
	ErrAlreadyExists = errors.New("already exists")
)

// TransitionError reports a status change that the chapter workflow does
// not permit.
type TransitionError struct {
	Chapter string
	From    book.Status
	To      book.Status
	Allowed []book.Status
}

func (e *TransitionError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, status := range e.Allowed {
		allowed[i] = string(status)
	}
	if len(allowed) == 0 {
		return fmt.Sprintf("chapter %s: cannot transition from %s to %s: no transitions allowed from %s", e.Chapter, e.From, e.To, e.From)
	}
	return fmt.Sprintf("chapter %s: cannot transition from %s to %s (allowed: %s)", e.Chapter, e.From, e.To, strings.Join(allowed, ", "))
}

// ReviewTypeError reports a review whose type the book configuration
// does not permit.
type ReviewTypeError struct {
	Chapter string
	Type    string
	Allowed []string
}

func (e *ReviewTypeError) Error() string {
	return fmt.Sprintf("chapter %s: review type %q is not configured for this book (allowed: %s)", e.Chapter, e.Type, strings.Join(e.Allowed, ", "))
}
