package verification

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{
	"Company Name", "Email", "User Type", "Industry", "Company Size",
	"GST Number", "GST Status", "PAN Number", "PAN Status",
	"CIN Number", "CIN Status", "Bank Status",
	"Overall Percentage", "Compliance Level", "Created Date", "Last Updated",
}

// ExportMatrix renders the verification state of every company as an
// xlsx workbook.
func ExportMatrix(companies []Company) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Verifications"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	endCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	f.SetCellStyle(sheet, "A1", endCell, headerStyle)
	f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, ActivePane: "bottomLeft"})

	for row, company := range companies {
		overall := OverallPercent(company.Status)
		values := []interface{}{
			company.CompanyName,
			company.Email,
			company.UserType,
			company.Industry,
			company.CompanySize,
			company.GSTNumber,
			string(company.Status.GST.Normalize()),
			company.PANNumber,
			string(company.Status.PAN.Normalize()),
			company.CINNumber,
			string(company.Status.CIN.Normalize()),
			string(company.Status.Bank.Normalize()),
			fmt.Sprintf("%d%%", overall),
			ComplianceLevel(overall),
			company.CreatedAt.Format("2006-01-02"),
			company.UpdatedAt.Format("2006-01-02"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}
