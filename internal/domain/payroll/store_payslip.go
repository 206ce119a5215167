package payroll

import (
	"context"
	"encoding/json"
)

// PersistPayslip upserts on (employee_id, payroll_period_id) so a recomputed
// payslip replaces the previous one.
func (s *Store) PersistPayslip(ctx context.Context, payslip Payslip) (Payslip, error) {
	breakdownJSON, err := json.Marshal(payslip.Breakdown)
	if err != nil {
		return Payslip{}, err
	}
	warnings := payslip.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return Payslip{}, err
	}

	err = s.DB.QueryRow(ctx, `
    INSERT INTO payslips (employee_id, payroll_period_id, regime, gross_salary, total_deductions,
                          net_salary, total_employer_cost, breakdown, warnings, computed_at)
    VALUES ($1, $2, $3, $4::text::numeric, $5::text::numeric, $6::text::numeric, $7::text::numeric, $8::jsonb, $9::jsonb, $10)
    ON CONFLICT (employee_id, payroll_period_id)
    DO UPDATE SET regime = EXCLUDED.regime, gross_salary = EXCLUDED.gross_salary,
                  total_deductions = EXCLUDED.total_deductions, net_salary = EXCLUDED.net_salary,
                  total_employer_cost = EXCLUDED.total_employer_cost, breakdown = EXCLUDED.breakdown,
                  warnings = EXCLUDED.warnings, computed_at = EXCLUDED.computed_at
    RETURNING id::text
  `, payslip.EmployeeID, payslip.PeriodID, payslip.Regime,
		payslip.GrossSalary.StringFixed(2), payslip.TotalDeductions.StringFixed(2),
		payslip.NetSalary.StringFixed(2), payslip.TotalEmployerCost.StringFixed(2),
		string(breakdownJSON), string(warningsJSON), payslip.ComputedAt).Scan(&payslip.ID)
	if err != nil {
		return Payslip{}, err
	}
	return payslip, nil
}
