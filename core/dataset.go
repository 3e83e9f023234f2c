package core

// Column is a single named column with its values in row order.
type Column struct {
	Name   string
	Values []string
}

// Dataset is an in-memory tabular structure: an ordered set of named
// columns, each holding one string value per row. Loaders coerce every
// cell to a string; the empty string stands for a missing value.
//
// Classification and scoring treat a Dataset as read-only input; the
// engine returns a new Dataset and never mutates its source.
type Dataset struct {
	Columns []Column
}

// NewDataset builds a Dataset from a header and row-major records. Short
// rows are padded with empty strings so every column ends up with the
// same length.
func NewDataset(names []string, rows [][]string) *Dataset {
	ds := &Dataset{Columns: make([]Column, len(names))}
	for i, name := range names {
		ds.Columns[i] = Column{Name: name, Values: make([]string, len(rows))}
	}
	for r, row := range rows {
		for i := range names {
			if i < len(row) {
				ds.Columns[i].Values[r] = row[i]
			}
		}
	}
	return ds
}

// RowCount returns the number of rows in the dataset.
func (d *Dataset) RowCount() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0].Values)
}

// Names returns the column names in their original order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		names[i] = col.Name
	}
	return names
}

// Column looks up a column by its exact name.
func (d *Dataset) Column(name string) (*Column, bool) {
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			return &d.Columns[i], true
		}
	}
	return nil, false
}

// Head returns up to n rows as name-to-value records, the shape the
// preview responses serialize.
func (d *Dataset) Head(n int) []map[string]string {
	if n < 0 {
		n = 0
	}
	if n > d.RowCount() {
		n = d.RowCount()
	}
	out := make([]map[string]string, n)
	for r := 0; r < n; r++ {
		rec := make(map[string]string, len(d.Columns))
		for _, col := range d.Columns {
			rec[col.Name] = col.Values[r]
		}
		out[r] = rec
	}
	return out
}

// Rows returns a row-major copy of the data, for writers.
func (d *Dataset) Rows() [][]string {
	rows := make([][]string, d.RowCount())
	for r := range rows {
		row := make([]string, len(d.Columns))
		for i, col := range d.Columns {
			row[i] = col.Values[r]
		}
		rows[r] = row
	}
	return rows
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{Columns: make([]Column, len(d.Columns))}
	for i, col := range d.Columns {
		values := make([]string, len(col.Values))
		copy(values, col.Values)
		out.Columns[i] = Column{Name: col.Name, Values: values}
	}
	return out
}
