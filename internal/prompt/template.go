// Package prompt renders competency records into model requests.
package prompt

import (
	"embed"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"sjt-studio/internal/domain"
)

//go:embed templates/*.tmpl
var builtinFS embed.FS

const maxPositionalIndicators = 4

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Z0-9_]+)\s*\}\}`)

// Template is an immutable prompt template with {{TOKEN}} placeholders.
type Template struct {
	name string
	text string
}

// New creates a template from raw text.
func New(name, text string) *Template {
	return &Template{name: name, text: text}
}

// Builtin returns the embedded template with the given name.
func Builtin(name string) (*Template, error) {
	data, err := builtinFS.ReadFile("templates/" + name + ".tmpl")
	if err != nil {
		return nil, fmt.Errorf("builtin template %q not found: %w", name, err)
	}
	return New(name, string(data)), nil
}

// LoadFile reads a template from disk.
func LoadFile(name, path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %q from %s: %w", name, path, err)
	}
	return New(name, string(data)), nil
}

// Name returns the template name.
func (t *Template) Name() string {
	return t.name
}

// Tokens returns the distinct placeholder names used by the template.
func (t *Template) Tokens() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range tokenPattern.FindAllStringSubmatch(t.text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// Unfilled lists the template's placeholders that have no value for record,
// in order of first use. Misspelled tokens in an override file show up here.
func (t *Template) Unfilled(record *domain.CompetencyRecord) []string {
	values := Values(record)
	var out []string
	for _, tok := range t.Tokens() {
		if values[tok] == "" {
			out = append(out, tok)
		}
	}
	return out
}

// Render substitutes every placeholder in one pass. Placeholders without a
// value become empty, and substituted text is never expanded again.
func (t *Template) Render(record *domain.CompetencyRecord) string {
	values := Values(record)
	return tokenPattern.ReplaceAllStringFunc(t.text, func(tok string) string {
		name := tokenPattern.FindStringSubmatch(tok)[1]
		return values[name]
	})
}

// Values builds the placeholder table for a record. A level token takes the
// first indicator tagged with that level, so rows merged from a repeated
// competency never displace the earlier row's text. Untagged indicators fill
// the level at their position when no tagged indicator claims it.
func Values(record *domain.CompetencyRecord) map[string]string {
	values := map[string]string{
		"COMPETENCY_NAME":       record.Name,
		"COMPETENCY_DEFINITION": record.Definition,
		"COMPETENCY_THEME":      record.Definition,
	}

	var bullets []string
	tagged := make(map[string]bool)
	for i, ind := range record.Indicators {
		if i < maxPositionalIndicators {
			values["INDICATOR_"+strconv.Itoa(i+1)] = ind.Text
		}
		bullets = append(bullets, "- "+ind.Text)

		lvl := ind.Level
		if lvl == domain.LevelUnknown && i < len(domain.Levels) {
			lvl = domain.Levels[i]
		}
		tok := lvl.Token()
		switch {
		case tok == "" || tagged[tok]:
		case ind.Level != domain.LevelUnknown:
			values[tok] = ind.Text
			tagged[tok] = true
		default:
			if _, taken := values[tok]; !taken {
				values[tok] = ind.Text
			}
		}
	}
	values["INDICATORS"] = strings.Join(bullets, "\n")
	return values
}

var _ domain.PromptRenderer = (*Template)(nil)
