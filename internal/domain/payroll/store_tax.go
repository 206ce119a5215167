package payroll

import (
	"context"
	"time"
)

func (s *Store) GetTaxRegime(ctx context.Context, name string) ([]TaxSlab, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT s.from_amount::text, s.to_amount::text, s.rate_percent::text
    FROM tax_slabs s
    JOIN tax_regimes r ON r.id = s.tax_regime_id
    WHERE r.name = $1
    ORDER BY s.from_amount
  `, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slabs []TaxSlab
	for rows.Next() {
		var from, rate string
		var to *string
		if err := rows.Scan(&from, &to, &rate); err != nil {
			return nil, err
		}
		var slab TaxSlab
		if slab.From, err = decimalFromText(from); err != nil {
			return nil, err
		}
		if slab.To, err = optionalDecimal(to); err != nil {
			return nil, err
		}
		if slab.RatePercent, err = decimalFromText(rate); err != nil {
			return nil, err
		}
		slabs = append(slabs, slab)
	}
	return slabs, rows.Err()
}

func (s *Store) GetProfessionalTaxRules(ctx context.Context, region string) ([]ProfessionalTaxRule, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT region, min_monthly_salary::text, max_monthly_salary::text, monthly_amount::text
    FROM professional_tax_rules
    WHERE region = $1
    ORDER BY min_monthly_salary NULLS FIRST, id
  `, region)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []ProfessionalTaxRule
	for rows.Next() {
		var rule ProfessionalTaxRule
		var low, high *string
		var amount string
		if err := rows.Scan(&rule.Region, &low, &high, &amount); err != nil {
			return nil, err
		}
		if rule.MinMonthlySalary, err = optionalDecimal(low); err != nil {
			return nil, err
		}
		if rule.MaxMonthlySalary, err = optionalDecimal(high); err != nil {
			return nil, err
		}
		if rule.MonthlyAmount, err = decimalFromText(amount); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (s *Store) GetPayrollPeriod(ctx context.Context, periodID string) (PayrollPeriod, error) {
	var period PayrollPeriod
	err := s.DB.QueryRow(ctx, `
    SELECT id::text, period_start, period_end FROM payroll_periods WHERE id = $1
  `, periodID).Scan(&period.ID, &period.Start, &period.End)
	if err != nil {
		return PayrollPeriod{}, notFound(err, ErrPeriodNotFound)
	}
	return period, nil
}

func (s *Store) ListDuePeriods(ctx context.Context, asOf time.Time) ([]PayrollPeriod, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT p.id::text, p.period_start, p.period_end
    FROM payroll_periods p
    WHERE p.period_end < $1::date
      AND NOT EXISTS (
        SELECT 1 FROM payroll_runs r
        WHERE r.payroll_period_id = p.id AND r.status IN ('COMPLETED', 'IN_PROGRESS')
      )
    ORDER BY p.period_end
  `, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []PayrollPeriod
	for rows.Next() {
		var period PayrollPeriod
		if err := rows.Scan(&period.ID, &period.Start, &period.End); err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}
	return periods, rows.Err()
}
