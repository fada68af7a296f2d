package infra

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet: a bold header row followed by data rows.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// WriteWorkbook writes sheets, in order, as an .xlsx document.
func WriteWorkbook(w io.Writer, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook: no sheets")
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E6F3FF"}},
	})
	if err != nil {
		return fmt.Errorf("workbook: header style: %w", err)
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.Name); err != nil {
				return fmt.Errorf("workbook: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			return fmt.Errorf("workbook: sheet %q: %w", sh.Name, err)
		}

		for col, h := range sh.Header {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(sh.Name, cell, h); err != nil {
				return fmt.Errorf("workbook: %s!%s: %w", sh.Name, cell, err)
			}
			if err := f.SetColWidth(sh.Name, colName(col), colName(col), 20); err != nil {
				return fmt.Errorf("workbook: column width: %w", err)
			}
		}
		if len(sh.Header) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(sh.Header), 1)
			if err := f.SetCellStyle(sh.Name, "A1", last, bold); err != nil {
				return fmt.Errorf("workbook: header style: %w", err)
			}
		}

		for r, row := range sh.Rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			values := row
			if err := f.SetSheetRow(sh.Name, cell, &values); err != nil {
				return fmt.Errorf("workbook: %s row %d: %w", sh.Name, r+2, err)
			}
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("workbook: write: %w", err)
	}
	return nil
}

func colName(i int) string {
	name, _ := excelize.ColumnNumberToName(i + 1)
	return name
}
