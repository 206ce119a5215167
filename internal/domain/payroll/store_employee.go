package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	var employee Employee
	var customCTC *string
	var customCTCEnc []byte
	err := s.DB.QueryRow(ctx, `
    SELECT e.id::text, e.name, COALESCE(e.work_region, ''), COALESCE(e.tax_regime, ''), e.is_active,
           a.custom_annual_ctc::text, a.custom_annual_ctc_enc, COALESCE(a.grade_id::text, '')
    FROM employees e
    LEFT JOIN LATERAL (
      SELECT custom_annual_ctc, custom_annual_ctc_enc, grade_id
      FROM employee_salary_assignments
      WHERE employee_id = e.id
      ORDER BY effective_from DESC
      LIMIT 1
    ) a ON true
    WHERE e.id = $1
  `, employeeID).Scan(&employee.ID, &employee.Name, &employee.WorkRegion, &employee.TaxRegime, &employee.IsActive,
		&customCTC, &customCTCEnc, &employee.GradeID)
	if err != nil {
		return Employee{}, notFound(err, ErrEmployeeNotFound)
	}

	switch {
	case len(customCTCEnc) > 0:
		amount, err := s.crypto.DecryptAmount(customCTCEnc)
		if err != nil {
			return Employee{}, fmt.Errorf("decrypt annual ctc: %w", err)
		}
		employee.AnnualCTC = &amount
	case customCTC != nil:
		amount, err := decimalFromText(*customCTC)
		if err != nil {
			return Employee{}, err
		}
		if !amount.IsZero() {
			employee.AnnualCTC = &amount
		}
	}
	return employee, nil
}

func (s *Store) GetGradeAnnualCTC(ctx context.Context, gradeID string) (*decimal.Decimal, error) {
	var raw *string
	err := s.DB.QueryRow(ctx, `
    SELECT annual_ctc::text FROM employee_grades WHERE id = $1
  `, gradeID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return optionalDecimal(raw)
}

func (s *Store) ListActiveEmployeeIDs(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text FROM employees WHERE is_active ORDER BY id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) GetAttendance(ctx context.Context, employeeID, periodID string) (*Attendance, error) {
	var attendance Attendance
	err := s.DB.QueryRow(ctx, `
    SELECT working_days, present_days
    FROM attendance
    WHERE employee_id = $1 AND payroll_period_id = $2
  `, employeeID, periodID).Scan(&attendance.WorkingDays, &attendance.PresentDays)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &attendance, nil
}
