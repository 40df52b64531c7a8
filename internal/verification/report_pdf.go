package verification

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// RenderReportPDF renders a verification report as a PDF document
func RenderReportPDF(report *Report) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "Company Verification Report")
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, report.Company.Name)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("%s  |  %s", report.Company.Email, report.Company.UserType))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Overall: %d%% (%s)",
		report.Compliance.Score, strings.ReplaceAll(report.Compliance.Level, "_", " ")))
	pdf.Ln(12)

	// Field table
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(68, 114, 196)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(30, 8, "Field", "1", 0, "L", true, 0, "")
	pdf.CellFormat(60, 8, "Identifier", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Status", "1", 0, "L", true, 0, "")
	pdf.CellFormat(70, 8, "Detail", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for _, field := range Fields {
		rf := report.Fields[field]
		detail := rf.Error
		if rf.Status == StatusVerified && rf.VerifiedAt != nil {
			detail = "Verified " + rf.VerifiedAt.Format("2006-01-02")
		}
		pdf.CellFormat(30, 8, strings.ToUpper(field), "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 8, rf.Number, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, string(rf.Status), "1", 0, "L", false, 0, "")
		pdf.CellFormat(70, 8, detail, "1", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.Cell(0, 6, "Generated "+report.GeneratedAt.Format("2006-01-02 15:04:05"))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return &buf, nil
}
