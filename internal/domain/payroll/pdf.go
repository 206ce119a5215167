package payroll

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

// PayslipHeader is the descriptive part of a rendered payslip.
type PayslipHeader struct {
	EmployeeName string
	Period       PayrollPeriod
}

// RenderPayslipPDF writes a one-page payslip: header, breakdown table and totals.
func RenderPayslipPDF(w io.Writer, payslip Payslip, header PayslipHeader) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	name := header.EmployeeName
	if name == "" {
		name = payslip.EmployeeID
	}
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", name, payslip.EmployeeID))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s", header.Period.Start.Format("2006-01-02"), header.Period.End.Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Tax regime: %s", payslip.Regime))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(70, 7, "Component", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, "Type", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, "Amount", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Payable", "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range payslip.Breakdown {
		label := line.Name
		if label == "" {
			label = line.Code
		}
		pdf.CellFormat(70, 7, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, line.Type, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, line.Amount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, line.Payable.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	totals := []struct {
		label string
		value string
	}{
		{"Gross", payslip.GrossSalary.StringFixed(2)},
		{"Deductions", payslip.TotalDeductions.StringFixed(2)},
		{"Net", payslip.NetSalary.StringFixed(2)},
		{"Employer cost", payslip.TotalEmployerCost.StringFixed(2)},
	}
	for _, total := range totals {
		pdf.CellFormat(120, 7, total.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(70, 7, total.value, "", 1, "R", false, 0, "")
	}
	return pdf.Output(w)
}

// GeneratePayslipPDF renders payslip into dir (the configured payslip directory
// when empty) and returns the file path. The file is encrypted at rest when a
// data encryption key is configured.
func (s *Service) GeneratePayslipPDF(ctx context.Context, payslip Payslip, dir string) (string, error) {
	if dir == "" {
		dir = s.settings.PayslipDir
	}
	employee, err := call(ctx, s.settings.StoreTimeout, func(ctx context.Context) (Employee, error) {
		return s.store.GetEmployee(ctx, payslip.EmployeeID)
	})
	if err != nil {
		return "", fmt.Errorf("get employee %s: %w", payslip.EmployeeID, err)
	}
	period, err := call(ctx, s.settings.StoreTimeout, func(ctx context.Context) (PayrollPeriod, error) {
		return s.store.GetPayrollPeriod(ctx, payslip.PeriodID)
	})
	if err != nil {
		return "", fmt.Errorf("get payroll period %s: %w", payslip.PeriodID, err)
	}

	var buf bytes.Buffer
	if err := RenderPayslipPDF(&buf, payslip, PayslipHeader{EmployeeName: employee.Name, Period: period}); err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := payslip.ID
	if name == "" {
		name = payslip.EmployeeID + "_" + payslip.PeriodID
	}
	filePath := filepath.Join(dir, name+".pdf")

	if s.crypto.Configured() {
		encrypted, err := s.crypto.Encrypt(buf.Bytes())
		if err != nil {
			return "", err
		}
		encryptedPath := filePath + ".enc"
		if err := os.WriteFile(encryptedPath, encrypted, 0o600); err != nil {
			return "", err
		}
		return encryptedPath, nil
	}
	if err := os.WriteFile(filePath, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return filePath, nil
}
