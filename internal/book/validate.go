package book

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationError reports every rule a document violated. Kind names the
// document kind ("book configuration", "chapter state", ...) and Path the
// file it came from, when known.
type ValidationError struct {
	Kind       string
	Path       string
	Violations []string
}

func (e *ValidationError) Error() string {
	where := e.Kind
	if e.Path != "" {
		where = fmt.Sprintf("%s at %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("invalid %s: %s", where, strings.Join(e.Violations, "; "))
}

// Document converts any JSON-serializable value into the generic document
// form the validators operate on.
func Document(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// ValidateBookConfig checks the shape of a book configuration document and
// returns every violation found.
func ValidateBookConfig(doc map[string]any) []string {
	var violations []string

	if t, ok := doc["type"].(string); !ok || !ValidType(Type(t)) {
		violations = append(violations, fmt.Sprintf("invalid type: %v (must be one of: %s)", doc["type"], joinTypes(allTypes)))
	}
	if !isNonEmptyString(doc["genre"]) {
		violations = append(violations, "missing or invalid genre")
	}
	if !isNonEmptyString(doc["title"]) {
		violations = append(violations, "missing or invalid title")
	}
	if !isObject(doc["contentTypes"]) {
		violations = append(violations, "missing or invalid contentTypes object")
	}
	if !isNonEmptyArray(doc["reviewTypes"]) {
		violations = append(violations, "missing or invalid reviewTypes array")
	}

	return violations
}

// ValidateChapterState checks the shape of a chapter state document and
// returns every violation found.
func ValidateChapterState(doc map[string]any) []string {
	var violations []string

	if !isNonEmptyString(doc["file"]) {
		violations = append(violations, "missing or invalid file path")
	}
	if s, ok := doc["status"].(string); !ok || !ValidStatus(Status(s)) {
		violations = append(violations, fmt.Sprintf("invalid status: %v (must be one of: %s)", doc["status"], joinStatuses(allStatuses)))
	}
	if n, ok := asNumber(doc["wordCount"]); !ok || n < 0 {
		violations = append(violations, "invalid wordCount: must be a non-negative number")
	}
	if !isArray(doc["reviews"]) {
		violations = append(violations, "reviews must be an array")
	}
	if !isArray(doc["pendingActions"]) {
		violations = append(violations, "pendingActions must be an array")
	}
	if !isObject(doc["completedReviews"]) {
		violations = append(violations, "completedReviews must be an object")
	}
	if !isObject(doc["metrics"]) {
		violations = append(violations, "metrics must be an object")
	}
	if !isObject(doc["characteristics"]) {
		violations = append(violations, "characteristics must be an object")
	}

	return violations
}

// ValidateProjectState checks the shape of a project state document and
// returns every violation found.
func ValidateProjectState(doc map[string]any) []string {
	var violations []string

	if !isNonEmptyString(doc["name"]) {
		violations = append(violations, "missing or invalid name")
	}
	if t, ok := doc["type"].(string); !ok || !ValidType(Type(t)) {
		violations = append(violations, fmt.Sprintf("invalid type: %v", doc["type"]))
	}
	if !isNonEmptyString(doc["genre"]) {
		violations = append(violations, "missing or invalid genre")
	}
	if n, ok := asNumber(doc["totalChapters"]); !ok || n < 0 {
		violations = append(violations, "invalid totalChapters")
	}
	if n, ok := asNumber(doc["totalWords"]); !ok || n < 0 {
		violations = append(violations, "invalid totalWords")
	}
	if !isArray(doc["chapters"]) {
		violations = append(violations, "chapters must be an array")
	}

	return violations
}

// ValidatePreferences type-checks only the preference fields present; all
// are optional.
func ValidatePreferences(doc map[string]any) []string {
	var violations []string

	if value, present := doc["defaultModel"]; present && value != nil {
		if _, ok := value.(string); !ok {
			violations = append(violations, "defaultModel must be a string")
		}
	}
	if value, present := doc["autoSuggest"]; present && value != nil {
		if _, ok := value.(bool); !ok {
			violations = append(violations, "autoSuggest must be a boolean")
		}
	}
	if value, present := doc["costLimit"]; present && value != nil {
		if n, ok := asNumber(value); !ok || n < 0 {
			violations = append(violations, "costLimit must be a non-negative number")
		}
	}
	if value, present := doc["verbose"]; present && value != nil {
		if _, ok := value.(bool); !ok {
			violations = append(violations, "verbose must be a boolean")
		}
	}

	return violations
}

func isNonEmptyString(value any) bool {
	s, ok := value.(string)
	return ok && s != ""
}

func isObject(value any) bool {
	_, ok := value.(map[string]any)
	return ok
}

func isArray(value any) bool {
	_, ok := value.([]any)
	return ok
}

func isNonEmptyArray(value any) bool {
	arr, ok := value.([]any)
	return ok && len(arr) > 0
}

func asNumber(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func joinTypes(types []Type) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

func joinStatuses(statuses []Status) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
