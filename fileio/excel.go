package fileio

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dataveil/dataveil/core"
)

// loadExcel reads the first sheet of a workbook; the first row is the
// header.
func loadExcel(path string) (*core.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return core.NewDataset(nil, nil), nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return core.NewDataset(nil, nil), nil
	}
	return core.NewDataset(rows[0], rows[1:]), nil
}

func saveExcel(ds *core.Dataset, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	header := ds.Names()
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range ds.Rows() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
