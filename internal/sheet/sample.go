package sheet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"sjt-studio/internal/domain"
	"sjt-studio/internal/logger"
)

// SampleSheet is the sheet name used in sample input workbooks.
const SampleSheet = "Competencies"

type sampleCompetency struct {
	name       string
	definition string
	indicators []string // Positive High, Positive Low, Negative Low, Negative High
}

var sampleCompetencies = []sampleCompetency{
	{
		name:       "Agility",
		definition: "The ability to adapt to new situations, embrace change, and remain effective in a constantly evolving environment.",
		indicators: []string{
			"Proactively seeks out and champions new ways of working.",
			"Accepts and follows new procedures when mandated.",
			"Expresses skepticism about change but eventually complies.",
			"Actively resists change and continues to use old methods.",
		},
	},
	{
		name:       "Strategic Thinking",
		definition: "The ability to see the bigger picture, understand the long-term implications of actions, and align tactical decisions with overarching goals.",
		indicators: []string{
			"Analyzes situations from a broad, long-term perspective before acting.",
			"Considers immediate consequences but may miss long-term effects.",
			"Focuses only on completing the immediate task without considering strategic context.",
			"Acts impulsively, potentially compromising strategic objectives.",
		},
	},
}

// SampleWorkbook builds an example input workbook for the schema.
// Grouped schemas get merged name cells and newline-separated indicators
// spread over two rows per competency.
func SampleWorkbook(schema domain.InputSchema) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Get().Error("failed to close sample workbook", zap.Error(err))
		}
	}()
	if err := f.SetSheetName("Sheet1", SampleSheet); err != nil {
		return nil, fmt.Errorf("failed to name sample sheet: %w", err)
	}

	headers := schema.RequiredColumns()
	if err := writeHeader(f, SampleSheet, 1, headers); err != nil {
		return nil, fmt.Errorf("failed to write sample header: %w", err)
	}

	var err error
	if schema.SplitLines {
		err = writeGroupedSample(f, headers)
	} else {
		err = writeLevelSample(f, schema)
	}
	if err != nil {
		return nil, err
	}
	return f.WriteToBuffer()
}

func writeLevelSample(f *excelize.File, schema domain.InputSchema) error {
	for i, c := range sampleCompetencies {
		row := i + 2
		values := []string{c.name, c.definition}
		for j := range schema.IndicatorColumns {
			if j < len(c.indicators) {
				values = append(values, c.indicators[j])
			}
		}
		for col, v := range values {
			if err := writeCell(f, SampleSheet, col+1, row, v); err != nil {
				return fmt.Errorf("failed to write sample row %d: %w", row, err)
			}
		}
	}
	return applyDataStyle(f, SampleSheet, 1, 2, len(schema.RequiredColumns()), len(sampleCompetencies)+1)
}

func writeGroupedSample(f *excelize.File, headers []string) error {
	row := 2
	for _, c := range sampleCompetencies {
		first := row
		halves := [][]string{c.indicators[:2], c.indicators[2:]}
		for _, part := range halves {
			if err := writeCell(f, SampleSheet, 3, row, strings.Join(part, "\n")); err != nil {
				return fmt.Errorf("failed to write sample row %d: %w", row, err)
			}
			row++
		}
		if err := writeCell(f, SampleSheet, 1, first, c.name); err != nil {
			return err
		}
		if err := writeCell(f, SampleSheet, 2, first, c.definition); err != nil {
			return err
		}
		for col := 1; col <= 2; col++ {
			top, _ := excelize.CoordinatesToCellName(col, first)
			bottom, _ := excelize.CoordinatesToCellName(col, row-1)
			if err := f.MergeCell(SampleSheet, top, bottom); err != nil {
				return fmt.Errorf("failed to merge sample cells: %w", err)
			}
		}
	}
	return applyDataStyle(f, SampleSheet, 1, 2, len(headers), row-1)
}
