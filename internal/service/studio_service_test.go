package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"sjt-studio/internal/domain"
	"sjt-studio/internal/sheet"
)

var levelHeader = []interface{}{"Competency", "Definition", "Positive High", "Positive Low", "Negative Low", "Negative High"}

func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func newTestStudio(gen domain.SJTGenerator) *StudioService {
	cfg := testConfig()
	cfg.Batch.Profile = "mod-levels"
	batch, _ := newTestBatchService(gen, cfg)
	return NewStudioService(batch, cfg, zap.NewNop())
}

func readResultRows(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet.ResultSheet)
	require.NoError(t, err)
	return rows
}

// One competency, four indicators, three attempts, always a good reply.
func TestStudio_ScenarioA(t *testing.T) {
	gen := new(MockSJTGenerator)
	gen.On("Generate", mock.Anything, mock.AnythingOfType("string")).Return(wrappedReply("Agility"), nil)
	studio := newTestStudio(gen)

	input := workbook(t, levelHeader,
		[]interface{}{"Agility", "Adapts to change.", "Champions change.", "Follows change.", "Doubts change.", "Resists change."})

	result, err := studio.Generate(context.Background(), "", input, nil)
	require.NoError(t, err)
	require.NotNil(t, result.Workbook)
	assert.Contains(t, result.FileName, result.Report.RunID)

	rows := readResultRows(t, result.Workbook)
	require.Len(t, rows, 4)
	assert.Equal(t, domain.ResultColumns(4)[:4], rows[0][:4])
	for i, row := range rows[1:] {
		assert.Equal(t, "Agility", row[0])
		assert.Equal(t, domain.AttemptLabel(i+1), row[1])
	}

	prompt := gen.Calls[0].Arguments.String(1)
	assert.Contains(t, prompt, "Champions change.")
	assert.Contains(t, prompt, "Resists change.")
	assert.NotContains(t, prompt, "{{")
}

// The second attempt returns malformed text.
func TestStudio_ScenarioB(t *testing.T) {
	gen := new(MockSJTGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(wrappedReply("Agility"), nil).Once()
	gen.On("Generate", mock.Anything, mock.Anything).Return("```json\n{\"sjt\": {\"situation\": \"cut off", nil).Once()
	gen.On("Generate", mock.Anything, mock.Anything).Return(wrappedReply("Agility"), nil).Once()
	studio := newTestStudio(gen)
	observer := &recordingObserver{}

	input := workbook(t, levelHeader,
		[]interface{}{"Agility", "Adapts to change.", "a", "b", "c", "d"})

	result, err := studio.Generate(context.Background(), "mod-levels", input, observer)
	require.NoError(t, err)

	rows := readResultRows(t, result.Workbook)
	require.Len(t, rows, 3)
	assert.Equal(t, "SJT 1", rows[1][1])
	assert.Equal(t, "SJT 3", rows[2][1])
	require.Len(t, observer.failures, 1)
	assert.Equal(t, domain.ErrParse, observer.failures[0].Code)
}

// A required column is missing entirely.
func TestStudio_ScenarioC(t *testing.T) {
	gen := new(MockSJTGenerator)
	studio := newTestStudio(gen)

	input := workbook(t,
		[]interface{}{"Competency", "Definition", "Positive High", "Positive Low", "Negative Low"},
		[]interface{}{"Agility", "Adapts to change.", "a", "b", "c"})

	result, err := studio.Generate(context.Background(), "mod-levels", input, nil)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, domain.HasCode(err, domain.ErrSchema))
	assert.Contains(t, err.Error(), "Negative High")
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

// A competency with a single indicator is skipped, the rest still runs.
func TestStudio_ScenarioD(t *testing.T) {
	gen := new(MockSJTGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(wrappedReply("Agility"), nil)
	studio := newTestStudio(gen)

	input := workbook(t, levelHeader,
		[]interface{}{"Resilience", "Recovers from setbacks.", "Bounces back.", "", "", ""},
		[]interface{}{"Agility", "Adapts to change.", "a", "b", "c", "d"})

	result, err := studio.Generate(context.Background(), "mod-levels", input, nil)
	require.NoError(t, err)

	require.Len(t, result.Report.Skipped, 1)
	assert.Equal(t, "Resilience", result.Report.Skipped[0].Competency)
	assert.Equal(t, 3, result.Report.Attempts)
	gen.AssertNumberOfCalls(t, "Generate", 3)
	for _, call := range gen.Calls {
		assert.NotContains(t, call.Arguments.String(1), "Bounces back.")
	}
	for _, row := range result.Report.Rows {
		assert.Equal(t, "Agility", row.Competency)
	}
}

func TestStudio_UnknownProfile(t *testing.T) {
	studio := newTestStudio(new(MockSJTGenerator))

	_, err := studio.Generate(context.Background(), "legacy", workbook(t, levelHeader), nil)
	assert.True(t, domain.HasCode(err, domain.ErrUnknownProfile))

	_, err = studio.Sample("legacy")
	assert.True(t, domain.HasCode(err, domain.ErrUnknownProfile))
}

func TestStudio_EmptyResultOffersNoFile(t *testing.T) {
	gen := new(MockSJTGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("no json here", nil)
	studio := newTestStudio(gen)

	input := workbook(t, levelHeader,
		[]interface{}{"Agility", "Adapts to change.", "a", "b", "c", "d"})

	result, err := studio.Generate(context.Background(), "mod-levels", input, nil)
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrEmptyResult))
	require.NotNil(t, result)
	assert.Nil(t, result.Workbook)
	assert.Len(t, result.Report.Failures, 3)
}

func TestStudio_PrepareAppliesAttemptOverride(t *testing.T) {
	studio := newTestStudio(new(MockSJTGenerator))
	studio.cfg.Batch.Attempts = 1

	run, err := studio.Prepare("themes", workbook(t,
		[]interface{}{"Competency", "Theme", "Indicators"},
		[]interface{}{"Agility", "Change", "one\ntwo"}))
	require.NoError(t, err)
	assert.Equal(t, "themes", run.Profile.Name)
	assert.Equal(t, 1, run.Attempts)
	require.Len(t, run.Records, 1)
	assert.Len(t, run.Records[0].Indicators, 2)
}

func TestStudio_SampleRoundTrip(t *testing.T) {
	studio := newTestStudio(new(MockSJTGenerator))
	for _, p := range studio.Profiles() {
		buf, err := studio.Sample(p.Name)
		require.NoError(t, err, p.Name)

		run, err := studio.Prepare(p.Name, buf)
		require.NoError(t, err, p.Name)
		assert.Len(t, run.Records, 2, p.Name)
		for _, rec := range run.Records {
			assert.True(t, rec.Eligible(), p.Name)
		}
	}
}

func TestStudio_RunUsesBatchService(t *testing.T) {
	batch := new(MockBatchService)
	cfg := testConfig()
	studio := NewStudioService(batch, cfg, zap.NewNop())
	run := &PreparedRun{
		Profile:  domain.Profile{Name: "mod-levels"},
		Records:  []*domain.CompetencyRecord{record("Agility", "a", "b")},
		Attempts: 2,
	}
	batch.On("GenerateSJTs", mock.Anything, mock.MatchedBy(func(req domain.BatchRequest) bool {
		return req.Profile == "mod-levels" && req.Attempts == 2 && req.RunID != ""
	})).Return(&domain.BatchReport{
		RunID: "r",
		Rows:  []domain.ResultRow{{Competency: "Agility", Attempt: 1}},
	}, nil).Once()

	result, err := studio.Run(context.Background(), run, nil)
	require.NoError(t, err)
	assert.NotNil(t, result.Workbook)
	assert.Contains(t, result.FileName, "Generated_SJTs_")
	batch.AssertExpectations(t)
}
