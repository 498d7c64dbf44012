package sheet

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dori/airtrack/internal/model"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet the table lives on
const SheetName = "Airdrop Data"

const maxColWidth = 50

// StatusFills are the row background colours per status
var StatusFills = map[model.Status]string{
	model.StatusActive:     "#4FC3F7",
	model.StatusCompleted:  "#81C784",
	model.StatusMonitoring: "#FFA500",
	model.StatusDropped:    "#E57373",
}

// WriteXLSX writes rows with the given columns to a single-sheet workbook.
// The header is bold, each row is filled by status and column widths
// follow the longest value.
func WriteXLSX(w io.Writer, rows []model.Project, cols []string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	widths := make([]int, len(cols))
	for c, col := range cols {
		if err := f.SetCellValue(SheetName, cellName(c, 0), col); err != nil {
			return err
		}
		widths[c] = utf8.RuneCountInString(col)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if len(cols) > 0 {
		if err := f.SetCellStyle(SheetName, cellName(0, 0), cellName(len(cols)-1, 0), headerStyle); err != nil {
			return err
		}
	}

	fills := make(map[model.Status]int, len(StatusFills))
	for status, color := range StatusFills {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return fmt.Errorf("failed to create %s style: %w", status, err)
		}
		fills[status] = id
	}

	for r := range rows {
		p := &rows[r]
		for c, col := range cols {
			if err := f.SetCellValue(SheetName, cellName(c, r+1), cellValue(p, col)); err != nil {
				return err
			}
			widths[c] = max(widths[c], utf8.RuneCountInString(cellText(p, col)))
		}
		if style, ok := fills[p.Status]; ok && len(cols) > 0 {
			if err := f.SetCellStyle(SheetName, cellName(0, r+1), cellName(len(cols)-1, r+1), style); err != nil {
				return err
			}
		}
	}

	for c, width := range widths {
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, name, name, float64(min(width+2, maxColWidth))); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ReadXLSX decodes the first worksheet, preferring one named SheetName
func ReadXLSX(r io.Reader) ([]model.Project, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	name := sheets[0]
	if slices.Contains(sheets, SheetName) {
		name = SheetName
	}

	records, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	if err := convertDateCells(records, date1904); err != nil {
		return nil, err
	}
	return decodeRows(records)
}

// convertDateCells rewrites Excel serial numbers in the due date and time
// columns as DateLayout and TimeLayout text. Cells that are already text
// are left for decodeRows to validate.
func convertDateCells(records [][]string, date1904 bool) error {
	if len(records) == 0 {
		return nil
	}
	layouts := map[int]string{}
	for i, h := range records[0] {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case ColDueDate:
			layouts[i] = model.DateLayout
		case ColDueTime:
			layouts[i] = model.TimeLayout
		}
	}

	for r, rec := range records[1:] {
		for i, layout := range layouts {
			if i >= len(rec) {
				continue
			}
			serial, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			if err != nil {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, date1904)
			if err != nil {
				return &RowError{Row: r + 2, Column: records[0][i], Err: err}
			}
			if layout == model.TimeLayout {
				t = t.Round(time.Minute)
			}
			rec[i] = t.Format(layout)
		}
	}
	return nil
}

// cellName converts zero-based column/row to "A1" notation
func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row+1)
	return name
}
