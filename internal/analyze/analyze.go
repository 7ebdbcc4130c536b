// Package analyze inspects manuscript chapter files: word counts,
// reading time, content pattern detection, and a coarse complexity
// rating. Its output feeds chapter characteristics; it never touches
// state documents itself.
package analyze

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"galley/internal/bookcfg"
)

// WordsPerMinute is the reading speed used for estimated reading time.
const WordsPerMinute = 225

// Analysis is the result of analyzing one chapter file.
type Analysis struct {
	WordCount            int
	EstimatedReadingTime int
	Characteristics      map[string]any
}

// Analyzer examines chapter content using the book configuration's
// content flags and detection patterns.
type Analyzer struct {
	cfg *bookcfg.Config
}

// New returns an analyzer driven by the given book configuration.
func New(cfg *bookcfg.Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// AnalyzeChapter reads and analyzes a chapter file.
func (a *Analyzer) AnalyzeChapter(path string) (*Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chapter %s: %w", path, err)
	}
	return a.AnalyzeContent(string(data))
}

// AnalyzeContent analyzes chapter text directly.
func (a *Analyzer) AnalyzeContent(content string) (*Analysis, error) {
	prose := stripMarkup(content)
	wordCount := countWords(prose)

	characteristics := map[string]any{}
	flags, err := a.cfg.ContentTypes()
	if err != nil {
		return nil, err
	}
	detected := map[string]bool{}
	for flag, enabled := range flags {
		if !enabled {
			continue
		}
		// Detection patterns are stored under the short key, not the
		// content flag name.
		key := patternKey(flag)
		patterns, err := a.cfg.PatternsFor(key)
		if err != nil {
			return nil, err
		}
		count := countMatches(content, patterns)
		detected[flag] = count > 0
		if count > 0 {
			characteristics[key] = count
		}
	}

	readingTime := (wordCount + WordsPerMinute - 1) / WordsPerMinute
	characteristics["estimatedReadingTime"] = readingTime
	characteristics["complexity"] = complexity(wordCount, avgSentenceLength(prose), detected)

	return &Analysis{
		WordCount:            wordCount,
		EstimatedReadingTime: readingTime,
		Characteristics:      characteristics,
	}, nil
}

var (
	fencedCodeRE = regexp.MustCompile("(?s)```.*?```")
	headingRE    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	linkRE       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	emphasisRE   = regexp.MustCompile(`[*_~` + "`" + `]+`)
)

// stripMarkup removes fenced code blocks and markdown syntax so word
// counts reflect prose only.
func stripMarkup(content string) string {
	content = fencedCodeRE.ReplaceAllString(content, " ")
	content = headingRE.ReplaceAllString(content, "")
	content = linkRE.ReplaceAllString(content, "$1")
	content = emphasisRE.ReplaceAllString(content, "")
	return content
}

func countWords(prose string) int {
	return len(strings.Fields(prose))
}

func avgSentenceLength(prose string) float64 {
	sentences := 0
	for _, r := range prose {
		if r == '.' || r == '!' || r == '?' {
			sentences++
		}
	}
	if sentences == 0 {
		return 0
	}
	return float64(countWords(prose)) / float64(sentences)
}

// countMatches counts occurrences of any detection pattern in the
// content. Patterns are tried as case-insensitive regular expressions
// first, falling back to substring counting for patterns that fail to
// compile.
func countMatches(content string, patterns []string) int {
	lower := strings.ToLower(content)
	total := 0
	for _, pattern := range patterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			total += strings.Count(lower, strings.ToLower(pattern))
			continue
		}
		total += len(re.FindAllStringIndex(content, -1))
	}
	return total
}

// patternKey maps a content flag to the key its detection patterns and
// occurrence counts live under: hasRecipes -> recipes,
// hasHistoricalClaims -> historicalClaims.
func patternKey(flag string) string {
	switch flag {
	case "hasRecipes":
		return "recipes"
	case "hasCodeSamples":
		return "code"
	case "hasDialogue":
		return "dialogue"
	case "hasFootnotes":
		return "footnotes"
	}
	trimmed := strings.TrimPrefix(flag, "has")
	if trimmed == "" {
		return flag
	}
	return strings.ToLower(trimmed[:1]) + trimmed[1:]
}

// complexity scores a chapter from its size, sentence length, and the
// content kinds detected in it.
func complexity(wordCount int, avgSentence float64, detected map[string]bool) string {
	score := 0
	switch {
	case wordCount > 5000:
		score += 2
	case wordCount > 3000:
		score++
	}
	if avgSentence > 25 {
		score++
	}
	if avgSentence > 35 {
		score++
	}
	if detected["hasCodeSamples"] {
		score += 2
	}
	if detected["hasTechnicalContent"] {
		score++
	}
	if detected["hasFootnotes"] {
		score++
	}
	switch {
	case score >= 5:
		return "high"
	case score >= 3:
		return "medium"
	default:
		return "low"
	}
}
