package payroll

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// BreakdownLine is one payslip row. Amount is the resolved component amount;
// Payable is what the line contributed to the payslip totals.
type BreakdownLine struct {
	Code      string
	Name      string
	Type      string
	IsTaxable bool
	Amount    decimal.Decimal
	Payable   decimal.Decimal
}

// Breakdown keeps payslip rows in display order and serializes as an ordered JSON object.
type Breakdown []BreakdownLine

type breakdownLineJSON struct {
	Name      string      `json:"name,omitempty"`
	Amount    json.Number `json:"amount"`
	Payable   json.Number `json:"payable"`
	Type      string      `json:"type"`
	IsTaxable bool        `json:"is_taxable"`
}

func (b *Breakdown) set(line BreakdownLine) {
	for i := range *b {
		if (*b)[i].Code == line.Code {
			(*b)[i] = line
			return
		}
	}
	*b = append(*b, line)
}

// Line returns the row for code.
func (b Breakdown) Line(code string) (BreakdownLine, bool) {
	for _, line := range b {
		if line.Code == code {
			return line, true
		}
	}
	return BreakdownLine{}, false
}

func (b Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, line := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(line.Code)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(breakdownLineJSON{
			Name:      line.Name,
			Amount:    json.Number(line.Amount.StringFixed(2)),
			Payable:   json.Number(line.Payable.StringFixed(2)),
			Type:      line.Type,
			IsTaxable: line.IsTaxable,
		})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type payslipJSON struct {
	ID                string      `json:"id,omitempty"`
	EmployeeID        string      `json:"employee_id"`
	PeriodID          string      `json:"payroll_period_id"`
	Regime            string      `json:"regime"`
	GrossSalary       json.Number `json:"gross_salary"`
	TotalDeductions   json.Number `json:"total_deductions"`
	NetSalary         json.Number `json:"net_salary"`
	TotalEmployerCost json.Number `json:"total_employer_cost"`
	Breakdown         Breakdown   `json:"breakdown"`
	Warnings          []string    `json:"warnings,omitempty"`
	ComputedAt        string      `json:"computed_at"`
}

func (p Payslip) MarshalJSON() ([]byte, error) {
	return json.Marshal(payslipJSON{
		ID:                p.ID,
		EmployeeID:        p.EmployeeID,
		PeriodID:          p.PeriodID,
		Regime:            p.Regime,
		GrossSalary:       json.Number(p.GrossSalary.StringFixed(2)),
		TotalDeductions:   json.Number(p.TotalDeductions.StringFixed(2)),
		NetSalary:         json.Number(p.NetSalary.StringFixed(2)),
		TotalEmployerCost: json.Number(p.TotalEmployerCost.StringFixed(2)),
		Breakdown:         p.Breakdown,
		Warnings:          p.Warnings,
		ComputedAt:        p.ComputedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
}
