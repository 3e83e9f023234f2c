// Package fileio loads and saves tabular datasets in the supported file
// formats. Every cell is coerced to a string on load; the core pipeline
// works on strings only.
package fileio

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dataveil/dataveil/core"
)

// ErrUnsupportedFormat signals a file extension no loader or writer
// handles.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._\-]`)

// SafeFilename replaces every character outside [A-Za-z0-9._-] with an
// underscore, defusing path tricks in user-supplied names.
func SafeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(filepath.Base(name), "_")
}

// Load reads the file at path into a Dataset, dispatching on its
// extension: csv/tsv/txt, xlsx/xlsm/xls, json/jsonl and parquet.
func Load(path string) (*core.Dataset, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt":
		return loadCSV(path, ',')
	case ".tsv":
		return loadCSV(path, '\t')
	case ".xlsx", ".xlsm", ".xls":
		return loadExcel(path)
	case ".json", ".jsonl":
		return loadJSON(path)
	case ".parquet":
		return loadParquet(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// Save persists the dataset, dispatching on the destination extension.
// CSV and modern Excel are written natively; any other extension falls
// back to CSV with a .csv suffix. The path actually written is returned.
func Save(ds *core.Dataset, path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".tsv", ".txt":
		sep := ','
		if ext == ".tsv" {
			sep = '\t'
		}
		return path, saveCSV(ds, path, sep)
	case ".xlsx", ".xlsm":
		return path, saveExcel(ds, path)
	default:
		// Legacy .xls cannot be written; it falls through to CSV.
		fallback := strings.TrimSuffix(path, ext) + ".csv"
		return fallback, saveCSV(ds, fallback, ',')
	}
}
