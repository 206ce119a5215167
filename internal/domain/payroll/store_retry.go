package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"paycore/internal/platform/retry"
)

// RetryingStore retries transient data-store failures with bounded backoff.
// Reads and the payslip upsert are idempotent; creating a run is not and is
// attempted once.
type RetryingStore struct {
	next   StoreAPI
	policy retry.Policy
}

func NewRetryingStore(next StoreAPI, policy retry.Policy) *RetryingStore {
	return &RetryingStore{next: next, policy: policy}
}

var _ StoreAPI = (*RetryingStore)(nil)

func retrying[T any](ctx context.Context, policy retry.Policy, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}

func (r *RetryingStore) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	return retrying(ctx, r.policy, func(ctx context.Context) (Employee, error) {
		return r.next.GetEmployee(ctx, employeeID)
	})
}

func (r *RetryingStore) GetGradeAnnualCTC(ctx context.Context, gradeID string) (*decimal.Decimal, error) {
	return retrying(ctx, r.policy, func(ctx context.Context) (*decimal.Decimal, error) {
		return r.next.GetGradeAnnualCTC(ctx, gradeID)
	})
}

func (r *RetryingStore) ListActiveEmployeeIDs(ctx context.Context) ([]string, error) {
	return retrying(ctx, r.policy, r.next.ListActiveEmployeeIDs)
}

func (r *RetryingStore) GetSalaryCatalog(ctx context.Context) ([]SalaryComponent, error) {
	return retrying(ctx, r.policy, r.next.GetSalaryCatalog)
}

func (r *RetryingStore) GetEmployeeOverrides(ctx context.Context, employeeID string) ([]ComponentOverride, error) {
	return retrying(ctx, r.policy, func(ctx context.Context) ([]ComponentOverride, error) {
		return r.next.GetEmployeeOverrides(ctx, employeeID)
	})
}

func (r *RetryingStore) GetActiveBonuses(ctx context.Context, employeeID string) ([]Bonus, error) {
	return retrying(ctx, r.policy, func(ctx context.Context) ([]Bonus, error) {
		return r.next.GetActiveBonuses(ctx, employeeID)
	})
}

func (r *RetryingStore) GetTaxRegime(ctx context.Context, name string) ([]TaxSlab, error) {
	return retrying(ctx, r.policy, func(ctx context.Context) ([]TaxSlab, error) {
		return r.next.GetTaxRegime(ctx, name)
	})
}

func (r *RetryingStore) GetProfessionalTaxRules(ctx context.Context, region string) ([]ProfessionalTaxRule, error) {
	return retrying(ctx, r.policy, func(ctx context.Context) ([]ProfessionalTaxRule, error) {
		return r.next.GetProfessionalTaxRules(ctx, region)
	})
}

func (r *RetryingStore) GetPayrollPeriod(ctx context.Context, periodID string) (PayrollPeriod, error) {
	return retrying(ctx, r.policy, func(ctx context.Context) (PayrollPeriod, error) {
		return r.next.GetPayrollPeriod(ctx, periodID)
	})
}

func (r *RetryingStore) GetAttendance(ctx context.Context, employeeID, periodID string) (*Attendance, error) {
	return retrying(ctx, r.policy, func(ctx context.Context) (*Attendance, error) {
		return r.next.GetAttendance(ctx, employeeID, periodID)
	})
}

func (r *RetryingStore) PersistPayslip(ctx context.Context, payslip Payslip) (Payslip, error) {
	return retrying(ctx, r.policy, func(ctx context.Context) (Payslip, error) {
		return r.next.PersistPayslip(ctx, payslip)
	})
}

func (r *RetryingStore) CreatePayrollRun(ctx context.Context, periodID, runBy string) (Run, error) {
	return r.next.CreatePayrollRun(ctx, periodID, runBy)
}

func (r *RetryingStore) UpdateRunStatus(ctx context.Context, runID, status string, summary *RunSummary) error {
	_, err := retrying(ctx, r.policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.next.UpdateRunStatus(ctx, runID, status, summary)
	})
	return err
}

func (r *RetryingStore) ListDuePeriods(ctx context.Context, asOf time.Time) ([]PayrollPeriod, error) {
	return retrying(ctx, r.policy, func(ctx context.Context) ([]PayrollPeriod, error) {
		return r.next.ListDuePeriods(ctx, asOf)
	})
}
