package domain

import (
	"context"
	"time"
)

// IndicatorColumn is an input column holding indicator statements.
// Level is empty for columns whose statements are not tied to a level.
type IndicatorColumn struct {
	Header string
	Level  Level
}

// InputSchema describes the columns a profile expects in the input sheet.
type InputSchema struct {
	NameColumn       string
	DefinitionColumn string
	IndicatorColumns []IndicatorColumn
	// SplitLines marks indicator cells that may hold several
	// newline-separated statements.
	SplitLines bool
}

// RequiredColumns returns every header the schema needs, in sheet order.
func (s InputSchema) RequiredColumns() []string {
	cols := []string{s.NameColumn, s.DefinitionColumn}
	for _, ic := range s.IndicatorColumns {
		cols = append(cols, ic.Header)
	}
	return cols
}

// Profile is one version of the generation workflow: an input schema, a
// prompt template and the number of attempts per competency.
type Profile struct {
	Name        string
	Description string
	Schema      InputSchema
	Template    string
	Attempts    int
}

// PromptRenderer turns a competency into the request text sent to the model.
type PromptRenderer interface {
	Render(record *CompetencyRecord) string
}

// ProgressEvent is emitted before each generation attempt.
type ProgressEvent struct {
	RunID      string
	Competency string
	Attempt    int
	Attempts   int
	Done       int
	Total      int
}

// ProgressObserver receives progress and per-item warnings of a batch.
type ProgressObserver interface {
	OnAttempt(ev ProgressEvent)
	OnFailure(f AttemptFailure)
}

// SkippedRecord is a competency excluded before generation.
type SkippedRecord struct {
	Competency string
	Reason     string
}

// AttemptFailure is a single attempt that produced no row.
type AttemptFailure struct {
	Competency string
	Attempt    int
	Code       ErrorCode
	Message    string
}

// BatchRequest is the input of one batch run.
type BatchRequest struct {
	RunID    string
	Profile  string
	Records  []*CompetencyRecord
	Renderer PromptRenderer
	Attempts int
	Observer ProgressObserver
}

// BatchReport is the outcome of one batch run.
type BatchReport struct {
	RunID      string
	Profile    string
	StartedAt  time.Time
	FinishedAt time.Time
	Eligible   int
	Attempts   int
	Rows       []ResultRow
	Skipped    []SkippedRecord
	Failures   []AttemptFailure
}

// BatchService runs the generation pipeline over a set of competencies.
type BatchService interface {
	GenerateSJTs(ctx context.Context, req BatchRequest) (*BatchReport, error)
}
