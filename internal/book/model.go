package book

import (
	"time"
)

// Config is the book configuration document (book-config.json). One exists
// per project and it drives which review types and content detections the
// rest of the tooling may use.
type Config struct {
	Type            Type                 `json:"type"`
	Genre           string               `json:"genre"`
	Subgenre        string               `json:"subgenre"`
	Title           string               `json:"title"`
	TargetAudience  string               `json:"targetAudience"`
	Voice           string               `json:"voice"`
	ContentTypes    map[string]bool      `json:"contentTypes"`
	ReviewTypes     []string             `json:"reviewTypes"`
	CustomDetection map[string]Detection `json:"customDetection"`
	CustomWorkflows map[string][]string  `json:"customWorkflows"`
}

// Detection holds the match patterns for one content flag.
type Detection struct {
	Patterns []string `json:"patterns"`
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	out.ContentTypes = cloneBoolMap(c.ContentTypes)
	out.ReviewTypes = cloneStrings(c.ReviewTypes)
	out.CustomDetection = make(map[string]Detection, len(c.CustomDetection))
	for key, det := range c.CustomDetection {
		out.CustomDetection[key] = Detection{Patterns: cloneStrings(det.Patterns)}
	}
	out.CustomWorkflows = make(map[string][]string, len(c.CustomWorkflows))
	for name, steps := range c.CustomWorkflows {
		out.CustomWorkflows[name] = cloneStrings(steps)
	}
	return &out
}

// ConfigUpdate describes a partial configuration change. Pointer fields
// replace the current value when set; the three map fields are merged
// key-by-key with the update's keys winning.
type ConfigUpdate struct {
	Type            *Type
	Genre           *string
	Subgenre        *string
	Title           *string
	TargetAudience  *string
	Voice           *string
	ReviewTypes     []string
	ContentTypes    map[string]bool
	CustomDetection map[string]Detection
	CustomWorkflows map[string][]string
}

// Issue is an opaque issue descriptor attached to a review. The state
// layer stores and returns these without interpreting them.
type Issue map[string]any

// Review is one recorded evaluation of a chapter. Immutable once appended.
type Review struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Model     string    `json:"model"`
	Cost      float64   `json:"cost"`
	Timestamp time.Time `json:"timestamp"`
	Summary   string    `json:"summary"`
	Issues    []Issue   `json:"issues"`
}

// PendingAction is an outstanding task attached to a chapter, independent
// of the review and status machinery.
type PendingAction struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Transition is one entry in a chapter's append-only status change log.
type Transition struct {
	From      Status            `json:"from"`
	To        Status            `json:"to"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Metrics accumulates per-chapter review totals.
type Metrics struct {
	LastReviewedAt *time.Time `json:"lastReviewedAt"`
	TotalReviews   int        `json:"totalReviews"`
	CostToDate     float64    `json:"costToDate"`
}

// ChapterState is the persisted state document for one manuscript chapter
// (chapters/<name>.json). Name is derived from the document's file name
// and is not serialized.
type ChapterState struct {
	Name             string               `json:"-"`
	File             string               `json:"file"`
	Status           Status               `json:"status"`
	WordCount        int                  `json:"wordCount"`
	Reviews          []Review             `json:"reviews"`
	CompletedReviews map[string]time.Time `json:"completedReviews"`
	PendingActions   []PendingAction      `json:"pendingActions"`
	Metrics          Metrics              `json:"metrics"`
	Characteristics  map[string]any       `json:"characteristics"`
	Transitions      []Transition         `json:"transitions"`
	CreatedAt        time.Time            `json:"createdAt"`
	LastModified     time.Time            `json:"lastModified"`
}

// Clone returns a deep copy of the chapter state so cached documents are
// never shared with callers.
func (c *ChapterState) Clone() *ChapterState {
	if c == nil {
		return nil
	}
	out := *c
	out.Reviews = make([]Review, len(c.Reviews))
	for i, review := range c.Reviews {
		out.Reviews[i] = review
		out.Reviews[i].Issues = make([]Issue, len(review.Issues))
		for j, issue := range review.Issues {
			cp := make(Issue, len(issue))
			for key, value := range issue {
				cp[key] = value
			}
			out.Reviews[i].Issues[j] = cp
		}
	}
	out.PendingActions = make([]PendingAction, len(c.PendingActions))
	copy(out.PendingActions, c.PendingActions)
	out.CompletedReviews = make(map[string]time.Time, len(c.CompletedReviews))
	for key, ts := range c.CompletedReviews {
		out.CompletedReviews[key] = ts
	}
	out.Characteristics = make(map[string]any, len(c.Characteristics))
	for key, value := range c.Characteristics {
		out.Characteristics[key] = value
	}
	out.Transitions = make([]Transition, len(c.Transitions))
	for i, tr := range c.Transitions {
		out.Transitions[i] = tr
		if tr.Metadata != nil {
			meta := make(map[string]string, len(tr.Metadata))
			for key, value := range tr.Metadata {
				meta[key] = value
			}
			out.Transitions[i].Metadata = meta
		}
	}
	if c.Metrics.LastReviewedAt != nil {
		ts := *c.Metrics.LastReviewedAt
		out.Metrics.LastReviewedAt = &ts
	}
	return &out
}

// ProjectState is the project-wide aggregate document (project.json). Its
// numeric fields are always recomputable as a pure function of the full
// chapter state set.
type ProjectState struct {
	Name            string         `json:"name"`
	Type            Type           `json:"type"`
	Genre           string         `json:"genre"`
	Subgenre        string         `json:"subgenre"`
	TotalChapters   int            `json:"totalChapters"`
	TotalWords      int            `json:"totalWords"`
	TotalReviews    int            `json:"totalReviews"`
	TotalCost       float64        `json:"totalCost"`
	StatusBreakdown map[Status]int `json:"statusBreakdown"`
	Chapters        []string       `json:"chapters"`
	CreatedAt       time.Time      `json:"createdAt"`
	LastModified    time.Time      `json:"lastModified"`
}

// Clone returns a deep copy of the project state.
func (p *ProjectState) Clone() *ProjectState {
	if p == nil {
		return nil
	}
	out := *p
	out.StatusBreakdown = make(map[Status]int, len(p.StatusBreakdown))
	for status, count := range p.StatusBreakdown {
		out.StatusBreakdown[status] = count
	}
	out.Chapters = cloneStrings(p.Chapters)
	return &out
}

// ZeroStatusBreakdown returns a breakdown with every known status present
// at zero. All five statuses are always serialized, even when unused.
func ZeroStatusBreakdown() map[Status]int {
	breakdown := make(map[Status]int, len(allStatuses))
	for _, status := range allStatuses {
		breakdown[status] = 0
	}
	return breakdown
}

// Preferences is the per-project user preferences document
// (preferences.json).
type Preferences struct {
	DefaultModel string  `json:"defaultModel"`
	AutoSuggest  bool    `json:"autoSuggest"`
	CostLimit    float64 `json:"costLimit"`
	Verbose      bool    `json:"verbose"`
}

// DefaultPreferences returns the preferences written on first
// initialization.
func DefaultPreferences() Preferences {
	return Preferences{
		DefaultModel: "gpt-4o-mini",
		AutoSuggest:  true,
		CostLimit:    10.0,
		Verbose:      false,
	}
}

func cloneStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func cloneBoolMap(values map[string]bool) map[string]bool {
	out := make(map[string]bool, len(values))
	for key, value := range values {
		out[key] = value
	}
	return out
}
