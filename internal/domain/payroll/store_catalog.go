package payroll

import (
	"context"
	"time"
)

func (s *Store) GetSalaryCatalog(ctx context.Context) ([]SalaryComponent, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, code, name, type, is_taxable, calc_method, COALESCE(calc_value, ''),
           COALESCE(base_component_code, ''), ordering
    FROM salary_components
    ORDER BY ordering, code
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var components []SalaryComponent
	for rows.Next() {
		var c SalaryComponent
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Type, &c.IsTaxable, &c.CalcMethod, &c.CalcValue, &c.BaseComponentCode, &c.Ordering); err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	return components, rows.Err()
}

func (s *Store) GetEmployeeOverrides(ctx context.Context, employeeID string) ([]ComponentOverride, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id::text, component_id::text, COALESCE(value_override, ''), COALESCE(method_override, '')
    FROM employee_component_overrides
    WHERE employee_id = $1
  `, employeeID)
	if err != nil {
		return nil, notFound(err, ErrEmployeeNotFound)
	}
	defer rows.Close()

	var overrides []ComponentOverride
	for rows.Next() {
		var o ComponentOverride
		if err := rows.Scan(&o.EmployeeID, &o.ComponentID, &o.ValueOverride, &o.MethodOverride); err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

func (s *Store) GetActiveBonuses(ctx context.Context, employeeID string) ([]Bonus, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, employee_id::text, COALESCE(code, ''), amount::text, is_percentage,
           COALESCE(percent_of_component, ''), COALESCE(bonus_type, ''), effective_from, effective_to, is_paid
    FROM employee_bonuses
    WHERE employee_id = $1
    ORDER BY id
  `, employeeID)
	if err != nil {
		return nil, notFound(err, ErrEmployeeNotFound)
	}
	defer rows.Close()

	var bonuses []Bonus
	for rows.Next() {
		var b Bonus
		var amount string
		var from, to *time.Time
		if err := rows.Scan(&b.ID, &b.EmployeeID, &b.Code, &amount, &b.IsPercentage, &b.PercentOfComponent, &b.BonusType, &from, &to, &b.IsPaid); err != nil {
			return nil, err
		}
		value, err := decimalFromText(amount)
		if err != nil {
			return nil, err
		}
		b.Amount = value
		b.EffectiveFrom = from
		b.EffectiveTo = to
		bonuses = append(bonuses, b)
	}
	return bonuses, rows.Err()
}
