// Package sheet reads competency workbooks and writes generated SJT workbooks.
package sheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"sjt-studio/internal/domain"
)

// sourceRow is one sheet row after forward-fill.
type sourceRow struct {
	line       int
	name       string
	definition string
	indicators []domain.Indicator
}

// LoadFile opens a workbook on disk and loads competency records from it.
func LoadFile(path string, schema domain.InputSchema, sheetName string) ([]*domain.CompetencyRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, domain.NewError(domain.ErrInvalidInput, "unable to open input workbook", err)
	}
	defer f.Close()
	return load(f, schema, sheetName)
}

// Load reads a workbook stream and loads competency records from it.
// An empty sheetName selects the first sheet.
func Load(r io.Reader, schema domain.InputSchema, sheetName string) ([]*domain.CompetencyRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.NewError(domain.ErrInvalidInput, "unable to read input workbook", err)
	}
	defer f.Close()
	return load(f, schema, sheetName)
}

func load(f *excelize.File, schema domain.InputSchema, sheetName string) ([]*domain.CompetencyRecord, error) {
	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, domain.NewInvalidInputError("input workbook has no sheets")
		}
		sheetName = sheets[0]
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, domain.NewError(domain.ErrInvalidInput, fmt.Sprintf("unable to read sheet %q", sheetName), err)
	}

	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}
	cols, err := resolveColumns(header, schema)
	if err != nil {
		return nil, err
	}

	filled := forwardFill(rows[1:], cols, schema)
	records := groupRecords(filled)
	if len(records) == 0 {
		return nil, domain.NewNoEligibleRecordsError("no competency rows with indicator content")
	}
	return records, nil
}

type columnIndex struct {
	name       int
	definition int
	indicators []int
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// resolveColumns maps the schema onto header positions. It fails with a
// SchemaError naming every missing column.
func resolveColumns(header []string, schema domain.InputSchema) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := pos[key]; !dup && key != "" {
			pos[key] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := pos[normalizeHeader(name)]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}

	idx := columnIndex{
		name:       lookup(schema.NameColumn),
		definition: lookup(schema.DefinitionColumn),
	}
	for _, ic := range schema.IndicatorColumns {
		idx.indicators = append(idx.indicators, lookup(ic.Header))
	}
	if len(missing) > 0 {
		return columnIndex{}, domain.NewSchemaError(missing)
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// forwardFill is the first pass: it carries the last seen name and
// definition into rows that leave them blank, as merged cells do.
func forwardFill(rows [][]string, cols columnIndex, schema domain.InputSchema) []sourceRow {
	var (
		out      []sourceRow
		lastName string
		lastDef  string
	)
	for i, row := range rows {
		name := cell(row, cols.name)
		def := cell(row, cols.definition)
		switch {
		case name == "":
			name = lastName
			if def == "" {
				def = lastDef
			}
		case def == "" && strings.EqualFold(name, lastName):
			def = lastDef
		}
		if name != "" {
			lastName = name
			lastDef = def
		}

		sr := sourceRow{line: i + 2, name: name, definition: def}
		for j, ic := range schema.IndicatorColumns {
			for _, text := range indicatorEntries(cell(row, cols.indicators[j]), schema.SplitLines) {
				sr.indicators = append(sr.indicators, domain.Indicator{Level: ic.Level, Text: text})
			}
		}
		out = append(out, sr)
	}
	return out
}

// indicatorEntries splits a cell into statements. Blank lines and list
// bullets are dropped.
func indicatorEntries(value string, split bool) []string {
	if value == "" {
		return nil
	}
	if !split {
		return []string{value}
	}
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(value, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-•*·"))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// groupRecords is the second pass: it drops rows without a name or
// indicators and merges rows of the same competency in first-seen order.
func groupRecords(rows []sourceRow) []*domain.CompetencyRecord {
	var records []*domain.CompetencyRecord
	byName := make(map[string]*domain.CompetencyRecord)
	for _, sr := range rows {
		if sr.name == "" || len(sr.indicators) == 0 {
			continue
		}
		key := strings.ToLower(sr.name)
		rec, ok := byName[key]
		if !ok {
			rec = &domain.CompetencyRecord{Name: sr.name}
			byName[key] = rec
			records = append(records, rec)
		}
		if rec.Definition == "" {
			rec.Definition = sr.definition
		}
		rec.Indicators = append(rec.Indicators, sr.indicators...)
		rec.SourceRows = append(rec.SourceRows, sr.line)
	}
	return records
}
