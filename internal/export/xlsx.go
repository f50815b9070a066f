package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/nekogravitycat/party-booking-backend/internal/party"
)

const sheetName = "Партита"

// columnWidths widens the date, name, location and notes columns.
var columnWidths = map[string]float64{"B": 12, "F": 25, "H": 30, "O": 40}

// WriteXLSX writes a single-sheet workbook with a bold header row.
func (e *Exporter) WriteXLSX(w io.Writer, parties []*party.Party) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := setRow(f, 1, columns); err != nil {
		return err
	}
	if err := boldHeader(f); err != nil {
		return err
	}

	for i, p := range parties {
		if err := setRow(f, i+2, e.row(i, p)); err != nil {
			return err
		}
	}

	for col, width := range columnWidths {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("set width of column %s: %w", col, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func boldHeader(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	endCell, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", endCell, style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
