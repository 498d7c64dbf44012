package sheet

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dori/airtrack/internal/model"
)

// WriteCSV writes a plain CSV table with a header row
func WriteCSV(w io.Writer, rows []model.Project, cols []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	rec := make([]string, len(cols))
	for r := range rows {
		for c, col := range cols {
			rec[c] = cellText(&rows[r], col)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV decodes a CSV table. Rows may be shorter than the header.
func ReadCSV(r io.Reader) ([]model.Project, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return decodeRows(records)
}
