package fileio

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/dataveil/dataveil/core"
)

func loadCSV(path string, sep rune) (*core.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = sep
	r.FieldsPerRecord = -1 // tolerate ragged rows; NewDataset pads them

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return core.NewDataset(nil, nil), nil
	}
	return core.NewDataset(records[0], records[1:]), nil
}

func saveCSV(ds *core.Dataset, path string, sep rune) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = sep
	if err := w.Write(ds.Names()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range ds.Rows() {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}
