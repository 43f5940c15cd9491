// Package profile holds the built-in generation workflows.
package profile

import (
	"strings"

	"sjt-studio/internal/domain"
	"sjt-studio/internal/prompt"
)

const Default = "mod-levels"

var levelSchema = domain.InputSchema{
	NameColumn:       "Competency",
	DefinitionColumn: "Definition",
	IndicatorColumns: []domain.IndicatorColumn{
		{Header: "Positive High", Level: domain.LevelPositiveHigh},
		{Header: "Positive Low", Level: domain.LevelPositiveLow},
		{Header: "Negative Low", Level: domain.LevelNegativeLow},
		{Header: "Negative High", Level: domain.LevelNegativeHigh},
	},
}

var profiles = []domain.Profile{
	{
		Name:        "mod-levels",
		Description: "Military SJTs from four level-tagged indicators",
		Schema:      levelSchema,
		Template:    "mod-levels",
		Attempts:    3,
	},
	{
		Name:        "corporate-levels",
		Description: "Corporate SJTs from four level-tagged indicators",
		Schema:      levelSchema,
		Template:    "corporate-levels",
		Attempts:    3,
	},
	{
		Name:        "themes",
		Description: "Theme-driven SJTs from grouped, newline-separated indicators",
		Schema: domain.InputSchema{
			NameColumn:       "Competency",
			DefinitionColumn: "Theme",
			IndicatorColumns: []domain.IndicatorColumn{{Header: "Indicators"}},
			SplitLines:       true,
		},
		Template: "themes",
		Attempts: 5,
	},
}

// All returns the built-in profiles in display order.
func All() []domain.Profile {
	out := make([]domain.Profile, len(profiles))
	copy(out, profiles)
	return out
}

// Get looks a profile up by name. An empty name selects Default.
func Get(name string) (domain.Profile, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = Default
	}
	for _, p := range profiles {
		if p.Name == key {
			return p, nil
		}
	}
	return domain.Profile{}, domain.NewUnknownProfileError(name)
}

// Template loads the prompt template of p. A path in overrides keyed by the
// profile name replaces the embedded template.
func Template(p domain.Profile, overrides map[string]string) (*prompt.Template, error) {
	if path := overrides[p.Name]; path != "" {
		return prompt.LoadFile(p.Template, path)
	}
	return prompt.Builtin(p.Template)
}

// AttemptsFor returns the attempt count for p, honouring a positive override.
func AttemptsFor(p domain.Profile, override int) int {
	if override > 0 {
		return override
	}
	return p.Attempts
}
