package shift

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

const sheetName = "shift"

// BuildXLSX renders rep as a single-sheet workbook.
func BuildXLSX(rep Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheetName)

	for i, col := range rep.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheetName, cell, col)
	}
	for r, row := range rep.Rows {
		for c, col := range rep.Columns {
			v, ok := row[col]
			if !ok || v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildPDF renders rep as a one-page table.
func BuildPDF(rep Report) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, "Shift Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", rep.Date))
	pdf.Ln(8)

	if rep.Empty || len(rep.Columns) == 0 {
		pdf.Cell(0, 6, "No shift data yet.")
	} else {
		w := 277.0 / float64(len(rep.Columns))
		pdf.SetFont("Arial", "B", 9)
		for _, col := range rep.Columns {
			pdf.CellFormat(w, 6, col, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for _, row := range rep.Rows {
			for _, col := range rep.Columns {
				align := "R"
				if _, isText := row[col].(string); isText {
					align = "L"
				}
				pdf.CellFormat(w, 6, formatCell(row[col]), "1", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
