package book

// Type classifies the kind of book being written.
type Type string

const (
	TypeFiction    Type = "fiction"
	TypeNonFiction Type = "non-fiction"
	TypeTechnical  Type = "technical"
	TypeAcademic   Type = "academic"
)

var allTypes = []Type{TypeFiction, TypeNonFiction, TypeTechnical, TypeAcademic}

// AllTypes returns the ordered list of known book types.
func AllTypes() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// ValidType reports whether t is a known book type.
func ValidType(t Type) bool {
	for _, known := range allTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Status represents the editorial lifecycle of a chapter.
type Status string

const (
	StatusDraft               Status = "draft"
	StatusReadyForReview      Status = "ready-for-review"
	StatusInRevision          Status = "in-revision"
	StatusPendingVerification Status = "pending-verification"
	StatusReadyForPublication Status = "ready-for-publication"
)

var allStatuses = []Status{
	StatusDraft,
	StatusReadyForReview,
	StatusInRevision,
	StatusPendingVerification,
	StatusReadyForPublication,
}

// AllStatuses returns the ordered list of known chapter statuses.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ValidStatus reports whether s is a known chapter status.
func ValidStatus(s Status) bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// statusTransitions is the full chapter state machine. A chapter moves
// exactly one edge per transition; there is no skipping or batching.
var statusTransitions = map[Status][]Status{
	StatusDraft:               {StatusReadyForReview},
	StatusReadyForReview:      {StatusInRevision, StatusPendingVerification},
	StatusInRevision:          {StatusReadyForReview, StatusPendingVerification},
	StatusPendingVerification: {StatusReadyForPublication, StatusInRevision},
	StatusReadyForPublication: {StatusInRevision},
}

// AllowedTransitions returns the statuses reachable from the given status.
func AllowedTransitions(from Status) []Status {
	allowed := statusTransitions[from]
	out := make([]Status, len(allowed))
	copy(out, allowed)
	return out
}

// CanTransition reports whether the state machine permits moving from one
// status to another.
func CanTransition(from, to Status) bool {
	for _, allowed := range statusTransitions[from] {
		if to == allowed {
			return true
		}
	}
	return false
}

// Priority ranks a pending action.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriority reports whether p is a known action priority.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
