package fileio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataveil/dataveil/core"
)

func testDataset() *core.Dataset {
	return core.NewDataset(
		[]string{"nombre", "email", "edad"},
		[][]string{
			{"Juan Perez", "juan@mail.com", "34"},
			{"Maria, Garcia", "maria@mail.com", "17"},
		},
	)
}

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "passwd", SafeFilename("../../etc/passwd"))
	assert.Equal(t, "clients.csv", SafeFilename("clients.csv"))
	assert.Equal(t, "weird_name_.csv", SafeFilename("weird name!.csv"))
	assert.Equal(t, "a_b.csv", SafeFilename("a/b.csv"))
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load("dataset.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	actual, err := Save(testDataset(), path)
	require.NoError(t, err)
	assert.Equal(t, path, actual)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, testDataset().Names(), loaded.Names())
	assert.Equal(t, testDataset().Rows(), loaded.Rows())
}

func TestTSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tsv")
	_, err := Save(testDataset(), path)
	require.NoError(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, testDataset().Rows(), loaded.Rows())
}

func TestCSVRaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c\n1,2,3\n4\n"), 0o644))

	ds, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "2", "3"}, {"4", "", ""}}, ds.Rows())
}

func TestLoadJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.jsonl")
	content := `{"nombre": "Juan", "edad": 34}
{"nombre": "Maria", "edad": 17, "extra": true}

{"nombre": "Ana", "edad": null}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ds, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"nombre", "edad", "extra"}, ds.Names())
	assert.Equal(t, [][]string{
		{"Juan", "34", ""},
		{"Maria", "17", "true"},
		{"Ana", "", ""},
	}, ds.Rows())
}

func TestLoadJSONArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	content := `[
  {"id": 1, "monto": 10.5},
  {"id": 2, "monto": 20}
]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ds, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "monto"}, ds.Names())

	// Numbers keep their textual form.
	assert.Equal(t, [][]string{{"1", "10.5"}, {"2", "20"}}, ds.Rows())
}

func TestExcelRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	actual, err := Save(testDataset(), path)
	require.NoError(t, err)
	assert.Equal(t, path, actual)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, testDataset().Names(), loaded.Names())
	assert.Equal(t, testDataset().Rows(), loaded.Rows())
}

// Formats without a native writer fall back to CSV with a .csv suffix.
func TestSaveFallbackToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")
	actual, err := Save(testDataset(), path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "out.csv"), actual)

	loaded, err := Load(actual)
	require.NoError(t, err)
	assert.Equal(t, testDataset().Rows(), loaded.Rows())
}
