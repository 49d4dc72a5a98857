package sheet

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// CSVStore keeps the whole sheet in memory and persists it as a CSV file.
type CSVStore struct {
	path string
	rows [][]string
}

// OpenCSV loads a sheet from a CSV file. A missing file yields an empty
// sheet so a fresh store can be created by the first Save.
func OpenCSV(path string) (*CSVStore, error) {
	s := &CSVStore{path: path}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrapf(err, "open signal store %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "read signal store %s", path)
	}
	s.rows = rows

	return s, nil
}

func (s *CSVStore) Cell(col string, row int) string {
	if row < 1 || row > len(s.rows) {
		return ""
	}
	line := s.rows[row-1]
	ci := colIndex(col)
	if ci >= len(line) {
		return ""
	}
	return line[ci]
}

func (s *CSVStore) SetCell(col string, row int, value string) {
	if row < 1 {
		return
	}
	for len(s.rows) < row {
		s.rows = append(s.rows, nil)
	}
	ci := colIndex(col)
	line := s.rows[row-1]
	for len(line) <= ci {
		line = append(line, "")
	}
	line[ci] = value
	s.rows[row-1] = line
}

func (s *CSVStore) MaxRow() int {
	return len(s.rows)
}

// Save writes the sheet to a temp file and renames it over the store path so
// an interrupted run never leaves a half-written file behind.
func (s *CSVStore) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create signal store dir")
	}

	tmp, err := os.CreateTemp(dir, "sheet-*.csv")
	if err != nil {
		return errors.Wrap(err, "create temp store file")
	}
	defer os.Remove(tmp.Name())

	// Pad every row to a common width: csv readers skip fully blank lines,
	// which would renumber rows on reload.
	width := 2
	for _, row := range s.rows {
		if len(row) > width {
			width = len(row)
		}
	}
	padded := make([][]string, len(s.rows))
	for i, row := range s.rows {
		line := make([]string, width)
		copy(line, row)
		padded[i] = line
	}

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(padded); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write signal store")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "flush signal store")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp store file")
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "replace signal store")
	}
	return nil
}
