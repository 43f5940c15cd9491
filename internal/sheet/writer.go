package sheet

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"sjt-studio/internal/domain"
	"sjt-studio/internal/logger"
)

// ResultSheet is the name of the sheet holding generated SJTs.
const ResultSheet = "Generated_SJTs"

// ExportResults writes rows into a single-sheet workbook, one row per
// ResultRow in the given order, under the fixed header for maxOptions.
func ExportResults(rows []domain.ResultRow, maxOptions int) (*bytes.Buffer, error) {
	if len(rows) == 0 {
		return nil, domain.NewError(domain.ErrEmptyResult, "no result rows to export", nil)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Get().Error("failed to close result workbook", zap.Error(err))
		}
	}()

	const defaultSheet = "Sheet1"
	if err := f.SetSheetName(defaultSheet, ResultSheet); err != nil {
		return nil, fmt.Errorf("failed to name result sheet: %w", err)
	}

	headers := domain.ResultColumns(maxOptions)
	if err := writeHeader(f, ResultSheet, 1, headers); err != nil {
		return nil, fmt.Errorf("failed to write result header: %w", err)
	}
	if err := applyDataStyle(f, ResultSheet, 1, 2, len(headers), len(rows)+1); err != nil {
		return nil, fmt.Errorf("failed to style result rows: %w", err)
	}
	for i, r := range rows {
		for col, value := range r.Cells(maxOptions) {
			if value == "" {
				continue
			}
			if err := writeCell(f, ResultSheet, col+1, i+2, value); err != nil {
				return nil, fmt.Errorf("failed to write result row %d: %w", i+1, err)
			}
		}
	}
	if err := f.SetPanes(ResultSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze result header: %w", err)
	}
	return f.WriteToBuffer()
}

// OutputFileName is the download name of a run's result workbook.
func OutputFileName(runID string) string {
	return fmt.Sprintf("Generated_SJTs_%s.xlsx", runID)
}
