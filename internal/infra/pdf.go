package infra

// pdf.go: KPI report generation using go-pdf/fpdf.
// The report is a single A4 document with:
//   - Title and generation timestamp
//   - KPI block (label / value pairs)
//   - One bordered table per section (funnel, top SKUs, cleaning summary)

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// KPILine is one indicator in the KPI block.
type KPILine struct {
	Label string
	Value string
}

// ReportTable is a titled table. Widths are fractions of the content width
// and must line up with Header.
type ReportTable struct {
	Title  string
	Header []string
	Widths []float64
	Rows   [][]string
}

// Report is the content of the PDF KPI report.
type Report struct {
	Title       string
	Subtitle    string
	GeneratedAt time.Time
	KPIs        []KPILine
	Tables      []ReportTable
}

// WriteReportPDF renders r to w.
func WriteReportPDF(w io.Writer, r Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentW, 10, tr(r.Title), "", 1, "C", false, 0, "")
	if r.Subtitle != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(contentW, 6, tr(r.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 5, "Generated "+r.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── KPIs ──────────────────────────────────────────────────────────────────
	if len(r.KPIs) > 0 {
		boxW := contentW / float64(len(r.KPIs))
		y := pdf.GetY()
		for i, k := range r.KPIs {
			x := left + float64(i)*boxW
			pdf.SetXY(x, y)
			pdf.SetFont("Helvetica", "", 9)
			pdf.CellFormat(boxW, 6, tr(k.Label), "LTR", 2, "C", false, 0, "")
			pdf.SetFont("Helvetica", "B", 16)
			pdf.SetTextColor(46, 139, 87)
			pdf.CellFormat(boxW, 10, tr(k.Value), "LBR", 0, "C", false, 0, "")
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.SetXY(left, y+16)
		pdf.Ln(6)
	}

	// ── Tables ────────────────────────────────────────────────────────────────
	for _, t := range r.Tables {
		if len(t.Widths) != len(t.Header) {
			return fmt.Errorf("pdf: table %q has %d widths for %d columns", t.Title, len(t.Widths), len(t.Header))
		}
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(contentW, 8, tr(t.Title), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 243, 255)
		for i, h := range t.Header {
			pdf.CellFormat(contentW*t.Widths[i], 6, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 9)
		for _, row := range t.Rows {
			for i := range t.Header {
				cell := ""
				if i < len(row) {
					cell = truncate(row[i], 48)
				}
				align := "L"
				if i > 0 {
					align = "R"
				}
				pdf.CellFormat(contentW*t.Widths[i], 5.5, tr(cell), "1", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(5)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
