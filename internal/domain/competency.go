package domain

import "strings"

// MinIndicators is the smallest indicator count a competency needs before
// it is sent for generation.
const MinIndicators = 2

// Level is a behavioural indicator level. The same labels are used for the
// indicator columns of the input sheet and for the option categories the
// model assigns in its reply.
type Level string

const (
	LevelUnknown      Level = ""
	LevelPositiveHigh Level = "Positive High"
	LevelPositiveLow  Level = "Positive Low"
	LevelNegativeLow  Level = "Negative Low"
	LevelNegativeHigh Level = "Negative High"
)

// Levels lists the known levels in priority order.
var Levels = []Level{LevelPositiveHigh, LevelPositiveLow, LevelNegativeLow, LevelNegativeHigh}

// ParseLevel maps labels such as "positive_high", "Positive High" or
// "POSITIVE-HIGH" onto a Level. The second result is false for anything else.
func ParseLevel(label string) (Level, bool) {
	norm := strings.ToLower(strings.TrimSpace(label))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	norm = strings.Join(strings.Fields(norm), " ")
	for _, lvl := range Levels {
		if strings.ToLower(string(lvl)) == norm {
			return lvl, true
		}
	}
	return LevelUnknown, false
}

// Rank returns the sort priority of the level. Unknown levels sort last.
func (l Level) Rank() int {
	for i, lvl := range Levels {
		if lvl == l {
			return i
		}
	}
	return len(Levels)
}

// Token is the placeholder name used for the level in prompt templates,
// e.g. INDICATOR_POSITIVE_HIGH.
func (l Level) Token() string {
	if l == LevelUnknown {
		return ""
	}
	return "INDICATOR_" + strings.ToUpper(strings.ReplaceAll(string(l), " ", "_"))
}

// Indicator is one behavioural statement of a competency. Level is empty
// when the input schema does not say which level the statement describes.
type Indicator struct {
	Level Level
	Text  string
}

// CompetencyRecord is one competency read from the input sheet.
type CompetencyRecord struct {
	Name       string
	Definition string
	Indicators []Indicator
	// SourceRows are the 1-based sheet rows the record was assembled from.
	SourceRows []int
}

// Eligible reports whether the record carries enough indicators.
func (r *CompetencyRecord) Eligible() bool {
	return len(r.Indicators) >= MinIndicators
}

// IndicatorTexts returns the indicator statements in order.
func (r *CompetencyRecord) IndicatorTexts() []string {
	out := make([]string, 0, len(r.Indicators))
	for _, ind := range r.Indicators {
		out = append(out, ind.Text)
	}
	return out
}
