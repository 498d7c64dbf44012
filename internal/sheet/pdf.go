package sheet

import (
	"io"
	"strings"
	"time"

	"github.com/dori/airtrack/internal/model"
	"github.com/go-pdf/fpdf"
)

// ReportTitle heads the PDF report
const ReportTitle = "Airdrop Tracker Report"

const (
	mmPerInch    = 25.4
	reportMargin = 10.0
	lineHeight   = 5.0
	cellPadding  = 1.0
)

var reportColumns = []struct {
	title string
	width float64 // inches
	text  func(p *model.Project) string
}{
	{"Project Name", 1.5, func(p *model.Project) string { return p.Name }},
	{"Status", 0.8, func(p *model.Project) string { return string(p.Status) }},
	{"Due DateTime", 1.5, func(p *model.Project) string { return p.FormatDue() }},
	{"Progress", 0.8, func(p *model.Project) string { return string(p.Progress) }},
	{"Estimated Reward", 1.0, func(p *model.Project) string { return model.FormatReward(p.EstimatedReward) }},
	{"Project Link", 1.8, func(p *model.Project) string { return p.Link }},
	{"Notes", 2.0, func(p *model.Project) string { return p.Notes }},
}

// WritePDF renders a landscape Letter report. Cells wrap and the header
// row repeats on every page.
func WritePDF(w io.Writer, rows []model.Project, generatedAt time.Time) error {
	pdf := fpdf.New("L", "mm", "Letter", "")
	pdf.SetTitle(ReportTitle, true)
	pdf.SetMargins(reportMargin, reportMargin, reportMargin)
	pdf.SetAutoPageBreak(false, reportMargin)

	t := &reportTable{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, ReportTitle, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated on: "+generatedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	t.header()
	for i := range rows {
		p := &rows[i]
		cells := make([]string, len(reportColumns))
		for c, col := range reportColumns {
			cells[c] = col.text(p)
		}
		t.row(cells)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

type reportTable struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (t *reportTable) header() {
	t.pdf.SetFont("Helvetica", "B", 9)
	t.pdf.SetFillColor(128, 128, 128)
	t.pdf.SetTextColor(245, 245, 245)
	titles := make([]string, len(reportColumns))
	for i, col := range reportColumns {
		titles[i] = col.title
	}
	t.draw(titles, "C")
	t.pdf.SetFont("Helvetica", "", 8)
	t.pdf.SetFillColor(245, 245, 220)
	t.pdf.SetTextColor(0, 0, 0)
}

func (t *reportTable) row(cells []string) {
	pdf := t.pdf
	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+t.height(cells) > pageH-reportMargin {
		pdf.AddPage()
		t.header()
	}
	t.draw(cells, "L")
}

func (t *reportTable) height(cells []string) float64 {
	n := 1
	for i, c := range cells {
		n = max(n, len(t.wrap(c, reportColumns[i].width*mmPerInch)))
	}
	return float64(n)*lineHeight + 2*cellPadding
}

func (t *reportTable) draw(cells []string, align string) {
	pdf := t.pdf
	h := t.height(cells)
	x, y := reportMargin, pdf.GetY()

	for i, c := range cells {
		w := reportColumns[i].width * mmPerInch
		pdf.Rect(x, y, w, h, "FD")
		for j, line := range t.wrap(c, w) {
			pdf.SetXY(x, y+cellPadding+float64(j)*lineHeight)
			pdf.CellFormat(w, lineHeight, t.tr(line), "", 0, align, false, 0, "")
		}
		x += w
	}
	pdf.SetXY(reportMargin, y+h)
}

// wrap splits text into lines that fit width using the current font. The
// core fonts only cover Latin-1, so anything outside it becomes '?'.
func (t *reportTable) wrap(text string, width float64) []string {
	text = strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r < ' ' || r == 0x7f:
			return ' '
		case r > 0xff:
			return '?'
		}
		return r
	}, text)
	lines := t.pdf.SplitText(text, width)
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
