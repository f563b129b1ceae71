package reporter

import (
	"fmt"
	"io"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/ethanolivertroy/secreport/internal/models"
	"github.com/go-pdf/fpdf"
)

const (
	// MaxFindingsPerSeverity caps how many findings of one severity the PDF
	// renders; the rest are summarized in an overflow note
	MaxFindingsPerSeverity = 20

	maxDescriptionLen = 200
	lineHeight        = 5.0
)

// WriteScanPDF renders a StackHawk scan report as PDF
func WriteScanPDF(w io.Writer, result models.ScanResult, now time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("StackHawk Security Scan Report", true)
	pdf.SetCreator("secreport", true)
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")

	// core fonts are cp1252; findings text may carry anything
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(102, 102, 102)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// Title
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(44, 62, 80)
	pdf.CellFormat(0, 14, "StackHawk Security Scan Report", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	// Scan metadata
	scan := result.Scan
	if scan == nil {
		scan = &models.Scan{}
	}
	pdf.SetTextColor(0, 0, 0)
	writeLabeled(pdf, tr, "Scan ID", models.OrNA(scan.ID))
	writeLabeled(pdf, tr, "Status", models.OrNA(scan.Status))
	writeLabeled(pdf, tr, "Started", models.OrNA(scan.StartedAt))
	writeLabeled(pdf, tr, "Completed", models.OrNA(scan.CompletedAt))
	pdf.Ln(8)

	// Summary
	writeHeading(pdf, "Summary", 16)
	counts := result.SeverityCounts()
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(44, 62, 80)
	pdf.SetTextColor(245, 245, 245)
	pdf.CellFormat(75, 9, "Severity", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 9, "Count", "1", 1, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetFillColor(245, 245, 220)
	pdf.SetTextColor(0, 0, 0)
	for _, sev := range models.Severities() {
		n := counts[sev.String()]
		if n == 0 {
			continue
		}
		pdf.CellFormat(75, 8, sev.String(), "1", 0, "L", true, 0, "")
		pdf.CellFormat(25, 8, strconv.Itoa(n), "1", 1, "L", true, 0, "")
	}
	pdf.Ln(8)

	// Findings grouped by severity
	writeHeading(pdf, "Security Findings", 16)
	groups := groupBySeverity(result.Findings)
	for _, sev := range models.Severities() {
		group := groups[sev]
		if len(group) == 0 {
			continue
		}

		writeHeading(pdf, fmt.Sprintf("%s Severity (%d findings)", sev, len(group)), 13)
		for i, f := range group {
			if i == MaxFindingsPerSeverity {
				break
			}
			writeFinding(pdf, tr, i+1, f)
		}
		if len(group) > MaxFindingsPerSeverity {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.SetTextColor(102, 102, 102)
			pdf.MultiCell(0, lineHeight, fmt.Sprintf("... and %d more %s findings",
				len(group)-MaxFindingsPerSeverity, sev), "", "L", false)
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.Ln(4)
	}

	// Footer
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(102, 102, 102)
	pdf.MultiCell(0, lineHeight, "Report generated: "+now.Format("2006-01-02 15:04:05"), "", "L", false)
	pdf.MultiCell(0, lineHeight, "Generated by StackHawk Security Scan", "", "L", false)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return pdf.Output(w)
}

func groupBySeverity(findings []models.ScanFinding) map[models.Severity][]models.ScanFinding {
	groups := make(map[models.Severity][]models.ScanFinding)
	for _, f := range findings {
		if sev, ok := f.Level(); ok {
			groups[sev] = append(groups[sev], f)
		}
	}
	return groups
}

func writeHeading(pdf *fpdf.Fpdf, text string, size float64) {
	pdf.SetFont("Helvetica", "B", size)
	pdf.SetTextColor(44, 62, 80)
	pdf.CellFormat(0, size/2+3, text, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)
}

func writeLabeled(pdf *fpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(30, 6, label+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr(value), "", "L", false)
}

func writeFinding(pdf *fpdf.Fpdf, tr func(string) string, idx int, f models.ScanFinding) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.MultiCell(0, 6, tr(fmt.Sprintf("Finding %d: %s", idx, models.OrNA(f.Title))), "", "L", false)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(102, 102, 102)
	pdf.MultiCell(0, lineHeight, tr("ID: "+models.OrNA(f.ID)), "", "L", false)
	pdf.MultiCell(0, lineHeight, tr("URL: "+models.OrNA(f.URL)), "", "L", false)
	if f.CWE != "" && f.CWE != models.NotAvailable {
		pdf.MultiCell(0, lineHeight, tr("CWE: "+f.CWE), "", "L", false)
	}

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(0, lineHeight, tr("Description: "+truncateText(models.OrNA(f.Description), maxDescriptionLen)), "", "L", false)
	pdf.Ln(3)
}

// truncateText shortens s to at most n runes, marking the cut with "..."
func truncateText(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
