package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StoreAPI is the data-access contract the payroll engine consumes. Lookups of
// missing employees or periods wrap ErrEmployeeNotFound / ErrPeriodNotFound.
type StoreAPI interface {
	GetEmployee(ctx context.Context, employeeID string) (Employee, error)
	GetGradeAnnualCTC(ctx context.Context, gradeID string) (*decimal.Decimal, error)
	ListActiveEmployeeIDs(ctx context.Context) ([]string, error)
	GetSalaryCatalog(ctx context.Context) ([]SalaryComponent, error)
	GetEmployeeOverrides(ctx context.Context, employeeID string) ([]ComponentOverride, error)
	GetActiveBonuses(ctx context.Context, employeeID string) ([]Bonus, error)
	GetTaxRegime(ctx context.Context, name string) ([]TaxSlab, error)
	GetProfessionalTaxRules(ctx context.Context, region string) ([]ProfessionalTaxRule, error)
	GetPayrollPeriod(ctx context.Context, periodID string) (PayrollPeriod, error)
	GetAttendance(ctx context.Context, employeeID, periodID string) (*Attendance, error)
	PersistPayslip(ctx context.Context, payslip Payslip) (Payslip, error)
	CreatePayrollRun(ctx context.Context, periodID, runBy string) (Run, error)
	UpdateRunStatus(ctx context.Context, runID, status string, summary *RunSummary) error
	ListDuePeriods(ctx context.Context, asOf time.Time) ([]PayrollPeriod, error)
}
