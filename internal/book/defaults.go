package book

// genreDefaults is one default configuration template keyed by book type
// and genre.
type genreDefaults struct {
	contentTypes    map[string]bool
	reviewTypes     []string
	customDetection map[string]Detection
	customWorkflows map[string][]string
}

var defaultTemplates = map[Type]map[string]genreDefaults{
	TypeNonFiction: {
		"cookbook": {
			contentTypes: map[string]bool{
				"hasRecipes":          true,
				"hasCodeSamples":      false,
				"hasDialogue":         false,
				"hasTechnicalContent": true,
				"hasFootnotes":        false,
				"hasScientificClaims": false,
				"hasHistoricalClaims": true,
			},
			reviewTypes: []string{"comprehensive", "tone", "structure", "recipes", "facts", "readability", "creative"},
			customDetection: map[string]Detection{
				"recipes": {Patterns: []string{"## Recipe:", "### Ingredients", "### Instructions"}},
				"historicalClaims": {Patterns: []string{"medieval", "century", "ancient", "historical", "traditionally"}},
			},
			customWorkflows: map[string][]string{
				"pre-publication": {"comprehensive", "recipes", "facts", "creative"},
				"quick-check":     {"tone", "readability"},
				"recipe-focused":  {"recipes", "facts"},
			},
		},
	},
	TypeFiction: {
		"novel": {
			contentTypes: map[string]bool{
				"hasRecipes":          false,
				"hasCodeSamples":      false,
				"hasDialogue":         true,
				"hasTechnicalContent": false,
				"hasFootnotes":        false,
				"hasScientificClaims": false,
				"hasHistoricalClaims": false,
			},
			reviewTypes: []string{"comprehensive", "tone", "structure", "dialogue", "character-consistency", "pacing", "creative"},
			customDetection: map[string]Detection{
				"dialogue": {Patterns: []string{`"`, "“", "”"}},
			},
			customWorkflows: map[string][]string{
				"pre-publication": {"comprehensive", "dialogue", "character-consistency", "pacing", "creative"},
				"quick-check":     {"tone", "dialogue"},
				"deep-edit":       {"comprehensive", "creative", "character-consistency"},
			},
		},
	},
	TypeTechnical: {
		"programming": {
			contentTypes: map[string]bool{
				"hasRecipes":          false,
				"hasCodeSamples":      true,
				"hasDialogue":         false,
				"hasTechnicalContent": true,
				"hasFootnotes":        false,
				"hasScientificClaims": false,
				"hasHistoricalClaims": false,
			},
			reviewTypes: []string{"comprehensive", "tone", "structure", "code", "technical-accuracy", "examples", "readability"},
			customDetection: map[string]Detection{
				"code": {Patterns: []string{"```"}},
			},
			customWorkflows: map[string][]string{
				"pre-publication": {"comprehensive", "code", "technical-accuracy", "examples"},
				"quick-check":     {"code", "examples"},
				"deep-edit":       {"comprehensive", "technical-accuracy", "readability"},
			},
		},
	},
}

// genreFallbackOrder decides which template stands in when the requested
// genre has no template of its own.
var genreFallbackOrder = []string{"cookbook", "novel", "programming"}

// DefaultConfig builds a fully populated default configuration for the
// given type and genre. Unrecognized types fall back to non-fiction;
// unrecognized genres fall back to the first available template for the
// resolved type. The requested type and genre are kept on the result
// either way.
func DefaultConfig(t Type, genre string) *Config {
	typeTemplates, ok := defaultTemplates[t]
	if !ok {
		typeTemplates = defaultTemplates[TypeNonFiction]
	}

	template, ok := typeTemplates[genre]
	if !ok {
		for _, candidate := range genreFallbackOrder {
			if fallback, found := typeTemplates[candidate]; found {
				template = fallback
				break
			}
		}
	}

	cfg := &Config{
		Type:            t,
		Genre:           genre,
		Subgenre:        "",
		Title:           "Untitled Book",
		TargetAudience:  "general",
		Voice:           "conversational",
		ContentTypes:    cloneBoolMap(template.contentTypes),
		ReviewTypes:     cloneStrings(template.reviewTypes),
		CustomDetection: make(map[string]Detection, len(template.customDetection)),
		CustomWorkflows: make(map[string][]string, len(template.customWorkflows)),
	}
	for key, det := range template.customDetection {
		cfg.CustomDetection[key] = Detection{Patterns: cloneStrings(det.Patterns)}
	}
	for name, steps := range template.customWorkflows {
		cfg.CustomWorkflows[name] = cloneStrings(steps)
	}
	return cfg
}
