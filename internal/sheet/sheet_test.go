package sheet

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dori/airtrack/internal/model"
	"github.com/xuri/excelize/v2"
)

func sampleProjects() []model.Project {
	return []model.Project{
		{
			ID: "a", Name: "Foo", Status: model.StatusActive,
			DueDate: "2025-01-01", DueTime: "09:00", Progress: model.Progress25,
			EstimatedReward: 1500.5, Link: "https://foo.example", Notes: "claim, then bridge",
			ReminderEnabled: false,
		},
		{
			ID: "b", Name: "Bar", Status: model.StatusDropped,
			Progress: model.Progress0, ReminderEnabled: true,
		},
		{
			ID: "c", Name: "Baz", Status: model.StatusCompleted,
			DueDate: "2025-03-10", DueTime: "18:30", Progress: model.Progress100,
			EstimatedReward: 0.25, Notes: "multi\nline",
			ReminderEnabled: true,
		},
	}
}

// exported rows lose the reserved columns: fresh ids and reminders on
func asImported(in []model.Project) []model.Project {
	out := make([]model.Project, len(in))
	for i, p := range in {
		p.ID = ""
		p.ReminderEnabled = true
		out[i] = p
	}
	return out
}

func assertEqualProjects(t *testing.T, got, want []model.Project) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d:\n got  %+v\n want %+v", i, got[i], want[i])
		}
	}
}

func TestXLSXExportRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, FormatXLSX, sampleProjects(), time.Now()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	got, err := Import(&buf, FormatXLSX)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	assertEqualProjects(t, got, asImported(sampleProjects()))
}

func TestCSVExportRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, FormatCSV, sampleProjects(), time.Now()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if strings.Contains(buf.String(), ColReminder) || strings.Contains(buf.String(), "ID,") {
		t.Fatalf("reserved column leaked into CSV:\n%s", buf.String())
	}
	got, err := Import(&buf, FormatCSV)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	assertEqualProjects(t, got, asImported(sampleProjects()))
}

func TestStorageRoundTripKeepsReservedColumns(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleProjects(), StorageColumns); err != nil {
		t.Fatal(err)
	}
	got, err := ReadXLSX(&buf)
	if err != nil {
		t.Fatal(err)
	}
	assertEqualProjects(t, got, sampleProjects())
}

func TestXLSXLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleProjects(), ExportColumns); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if list := f.GetSheetList(); len(list) != 1 || list[0] != SheetName {
		t.Fatalf("sheets = %v", list)
	}
	header, err := f.GetCellValue(SheetName, "A1")
	if err != nil || header != ColName {
		t.Fatalf("A1 = %q, %v", header, err)
	}

	// Notes column width follows its longest value
	width, err := f.GetColWidth(SheetName, "H")
	if err != nil {
		t.Fatal(err)
	}
	if want := float64(len("claim, then bridge") + 2); width != want {
		t.Errorf("notes width = %v, want %v", width, want)
	}
}

func TestImportDefaultsMissingColumns(t *testing.T) {
	in := "Project Name,Status\nFoo,Active\n,\nBar,Monitoring\n"
	got, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("blank row should be skipped, got %d rows", len(got))
	}
	for _, p := range got {
		if !p.ReminderEnabled || p.EstimatedReward != 0 || p.Notes != "" {
			t.Errorf("defaults not applied: %+v", p)
		}
	}
}

func TestImportErrors(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("Name\nFoo\n")); !errors.Is(err, ErrMissingName) {
		t.Fatalf("missing name column: %v", err)
	}

	_, err := ReadCSV(strings.NewReader("Project Name,Estimated Reward\nFoo,lots\n"))
	var rowErr *RowError
	if !errors.As(err, &rowErr) || rowErr.Row != 2 || rowErr.Column != ColReward {
		t.Fatalf("bad reward: %v", err)
	}

	if _, err := ReadXLSX(strings.NewReader("definitely not a zip")); err == nil {
		t.Fatal("expected error for garbage workbook")
	}
}

func TestXLSXImportDateCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	cells := map[string]any{
		"A1": ColName, "B1": ColStatus, "C1": ColDueDate, "D1": ColDueTime,
		"A2": "Foo", "B2": "Active", "C2": time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "D2": 9 * time.Hour,
		"A3": "Bar", "B3": "Active", "C3": "2025-02-01", "D3": "18:30",
	}
	for cell, v := range cells {
		if err := f.SetCellValue("Sheet1", cell, v); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	got, err := ReadXLSX(&buf)
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows", len(got))
	}
	if got[0].DueDate != "2025-01-01" || got[0].DueTime != "09:00" {
		t.Errorf("date cells = %q %q", got[0].DueDate, got[0].DueTime)
	}
	if got[1].DueDate != "2025-02-01" || got[1].DueTime != "18:30" {
		t.Errorf("text cells = %q %q", got[1].DueDate, got[1].DueTime)
	}
}

func TestParseRewardWithDisplayFormat(t *testing.T) {
	in := "Project Name,Estimated Reward\nFoo,\"Rp 1,234.56\"\n"
	got, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if got[0].EstimatedReward != 1234.56 {
		t.Fatalf("reward = %v", got[0].EstimatedReward)
	}
}

func TestWritePDF(t *testing.T) {
	rows := sampleProjects()
	// enough rows to force a second page
	for i := 0; i < 60; i++ {
		p := rows[0]
		p.Notes = strings.Repeat("long note ", 12) + "✓"
		rows = append(rows, p)
	}

	var buf bytes.Buffer
	if err := Export(&buf, FormatPDF, rows, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", buf.Bytes()[:16])
	}
	if _, err := Import(&buf, FormatPDF); err == nil {
		t.Fatal("PDF import should be rejected")
	}
}

func TestFormats(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := DefaultExportName(FormatCSV, now); got != "Airdrop_Data_Export_20250102_030405.csv" {
		t.Errorf("csv name = %q", got)
	}
	if got := DefaultExportName(FormatPDF, now); got != "Airdrop_Report_20250102_030405.pdf" {
		t.Errorf("pdf name = %q", got)
	}
	if f, err := FormatFromPath("/tmp/out.XLSX"); err != nil || f != FormatXLSX {
		t.Errorf("FormatFromPath = %q, %v", f, err)
	}
	if _, err := ParseFormat("docx"); err == nil {
		t.Error("expected error for docx")
	}
}
