package domain

import (
	"context"
	"fmt"
)

// SJTOption is one candidate response of a generated SJT.
type SJTOption struct {
	Text string
	// Level is LevelUnknown when the model used a label outside the known set.
	Level Level
	// Label is the indicator label as it appeared in the reply.
	Label string
}

// IndicatorLabel is the label written to the output sheet.
func (o SJTOption) IndicatorLabel() string {
	if o.Level != LevelUnknown {
		return string(o.Level)
	}
	return o.Label
}

// GeneratedItem is a successfully decoded model reply.
type GeneratedItem struct {
	// CompetencyName is the name echoed by the model. Informational only.
	CompetencyName string
	Situation      string
	Question       string
	Options        []SJTOption
	Rationale      string
}

// SJTGenerator sends a rendered prompt to a text-generation service and
// returns the raw reply. Implementations must not interpret the reply.
type SJTGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OptionCell is a flattened option in a result row.
type OptionCell struct {
	Text      string
	Indicator string
}

// ResultRow is a GeneratedItem joined with its competency and attempt.
type ResultRow struct {
	Competency string
	Attempt    int
	Situation  string
	Question   string
	Options    []OptionCell
	Rationale  string
}

// AttemptLabel returns the user-facing attempt label, e.g. "SJT 2".
func AttemptLabel(attempt int) string {
	return fmt.Sprintf("SJT %d", attempt)
}

// ResultColumns returns the fixed output header for maxOptions options.
func ResultColumns(maxOptions int) []string {
	cols := []string{"Competency", "SJT Number", "Situation", "Question"}
	for i := 1; i <= maxOptions; i++ {
		cols = append(cols, fmt.Sprintf("Option %d Text", i), fmt.Sprintf("Option %d Indicator", i))
	}
	return append(cols, "Rationale")
}

// Cells returns the row values aligned with ResultColumns(maxOptions).
func (r ResultRow) Cells(maxOptions int) []string {
	cells := []string{r.Competency, AttemptLabel(r.Attempt), r.Situation, r.Question}
	for i := 0; i < maxOptions; i++ {
		if i < len(r.Options) {
			cells = append(cells, r.Options[i].Text, r.Options[i].Indicator)
			continue
		}
		cells = append(cells, "", "")
	}
	return append(cells, r.Rationale)
}
