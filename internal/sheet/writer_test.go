package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sjt-studio/internal/domain"
)

func TestExportResults(t *testing.T) {
	rows := []domain.ResultRow{
		{
			Competency: "Agility",
			Attempt:    1,
			Situation:  "S1",
			Question:   "Q1",
			Options: []domain.OptionCell{
				{Text: "o1", Indicator: "Positive High"},
				{Text: "o2", Indicator: "Negative High"},
			},
			Rationale: "R1",
		},
		{Competency: "Agility", Attempt: 2, Question: "Q2", Rationale: "R2"},
	}

	buf, err := ExportResults(rows, 4)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ResultSheet}, f.GetSheetList())
	got, err := f.GetRows(ResultSheet)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, domain.ResultColumns(4), got[0])
	assert.Equal(t, rows[0].Cells(4), got[1])
	assert.Equal(t, "SJT 2", got[2][1])
	assert.Equal(t, "", got[2][2])
	assert.Equal(t, "R2", got[2][len(got[2])-1])
	assert.Len(t, got[2], len(domain.ResultColumns(4)))
}

func TestExportResults_Empty(t *testing.T) {
	_, err := ExportResults(nil, 4)
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrEmptyResult))
}

func TestOutputFileName(t *testing.T) {
	assert.Equal(t, "Generated_SJTs_01J0000000000000000000000.xlsx", OutputFileName("01J0000000000000000000000"))
}

func TestSampleWorkbook(t *testing.T) {
	tests := []struct {
		name   string
		schema domain.InputSchema
	}{
		{name: "level", schema: levelSchema},
		{name: "grouped", schema: groupedSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := SampleWorkbook(tt.schema)
			require.NoError(t, err)

			records, err := Load(buf, tt.schema, SampleSheet)
			require.NoError(t, err)
			require.Len(t, records, len(sampleCompetencies))
			for i, rec := range records {
				assert.Equal(t, sampleCompetencies[i].name, rec.Name)
				assert.Equal(t, sampleCompetencies[i].definition, rec.Definition)
				assert.Equal(t, sampleCompetencies[i].indicators, rec.IndicatorTexts())
			}
		})
	}
}
