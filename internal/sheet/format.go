package sheet

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dori/airtrack/internal/model"
)

// Format is an export/import file type
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// TimestampLayout is used in export and backup file names
const TimestampLayout = "20060102_150405"

// ParseFormat accepts "xlsx", "excel", "csv" or "pdf"
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "xlsx", "excel", "xls":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported format %q (want xlsx, csv or pdf)", s)
}

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// DefaultExportName returns Airdrop_Data_Export_TS.xlsx|csv or
// Airdrop_Report_TS.pdf
func DefaultExportName(f Format, now time.Time) string {
	ts := now.Format(TimestampLayout)
	if f == FormatPDF {
		return "Airdrop_Report_" + ts + ".pdf"
	}
	return "Airdrop_Data_Export_" + ts + "." + string(f)
}

// Export writes rows in format f without the reserved columns
func Export(w io.Writer, f Format, rows []model.Project, now time.Time) error {
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, rows, ExportColumns)
	case FormatCSV:
		return WriteCSV(w, rows, ExportColumns)
	case FormatPDF:
		return WritePDF(w, rows, now)
	}
	return fmt.Errorf("unsupported format %q", f)
}

// Import reads rows in format f. PDF is export-only.
func Import(r io.Reader, f Format) ([]model.Project, error) {
	switch f {
	case FormatXLSX:
		return ReadXLSX(r)
	case FormatCSV:
		return ReadCSV(r)
	}
	return nil, fmt.Errorf("cannot import %s files", f)
}
