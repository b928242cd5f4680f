package spreadsheet

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/xavierca1/lead-dashboard/internal/usecase"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	minNameWidth = 10
	defaultSheet = "Sheet1"
)

type XLSXEncoder struct{}

func NewXLSXEncoder() *XLSXEncoder {
	return &XLSXEncoder{}
}

func (e *XLSXEncoder) ContentType() string {
	return ContentType
}

// Encode writes the table as a single-sheet workbook: a header row with the
// column labels, then one row per lead.
func (e *XLSXEncoder) Encode(w io.Writer, table usecase.ExportTable) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := table.Sheet
	if sheet == "" {
		sheet = usecase.ExportSheetName
	}
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range table.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := e.fitNameColumn(f, sheet, table); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// fitNameColumn widens the Name column to its longest value.
func (e *XLSXEncoder) fitNameColumn(f *excelize.File, sheet string, table usecase.ExportTable) error {
	idx := table.ColumnIndex("Name")
	if idx < 0 {
		return nil
	}
	width := minNameWidth
	for _, row := range table.Rows {
		if n := utf8.RuneCountInString(row[idx]); n > width {
			width = n
		}
	}
	col, err := excelize.ColumnNumberToName(idx + 1)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, col, col, float64(width+2))
}
