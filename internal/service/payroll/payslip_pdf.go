package payroll

import (
	"bytes"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/jung-kurt/gofpdf"
)

// renderPayslipPDF lays out the stored breakdown as an A4 payslip. The PDF
// is rendered purely from the payslip row; nothing is recomputed here.
func renderPayslipPDF(p payroll.Payslip) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	if p.EmployeeName != nil && *p.EmployeeName != "" {
		pdf.Cell(0, 7, fmt.Sprintf("Employee: %s", *p.EmployeeName))
		pdf.Ln(6)
	}
	if p.EmployeeNumber != nil && *p.EmployeeNumber != "" {
		pdf.Cell(0, 7, fmt.Sprintf("Employee No: %s", *p.EmployeeNumber))
		pdf.Ln(6)
	}
	period := time.Date(p.PeriodYear, time.Month(p.PeriodMonth), 1, 0, 0, 0, 0, time.UTC)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s", period.Format("January 2006")))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Status: %s", p.Status))
	pdf.Ln(10)

	writeLineSection(pdf, "Earnings", p.Earnings)
	writeLineSection(pdf, "Deductions", p.Deductions)
	writeLineSection(pdf, "Employer Contributions", p.EmployerContributions)
	writeLineSection(pdf, "Tax Exemptions", p.Exemptions)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(120, 8, "Gross Salary")
	pdf.CellFormat(50, 8, p.GrossSalary.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.Cell(120, 8, "Total Deductions")
	pdf.CellFormat(50, 8, p.TotalDeductions.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.Cell(120, 8, "Taxable Income")
	pdf.CellFormat(50, 8, p.TaxableIncome.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.Cell(120, 8, "Income Tax")
	pdf.CellFormat(50, 8, p.TaxAmount.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(120, 10, "Net Salary")
	pdf.CellFormat(50, 10, p.NetSalary.StringFixed(2), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeLineSection(pdf *gofpdf.Fpdf, title string, lines []payroll.PayslipLine) {
	if len(lines) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range lines {
		pdf.Cell(120, 7, line.Name)
		pdf.CellFormat(50, 7, line.Amount.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(3)
}
