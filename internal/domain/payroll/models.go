package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type SalaryComponent struct {
	ID                string `json:"id" yaml:"id"`
	Code              string `json:"code" yaml:"code"`
	Name              string `json:"name" yaml:"name"`
	Type              string `json:"type" yaml:"type"`
	IsTaxable         bool   `json:"is_taxable" yaml:"is_taxable"`
	CalcMethod        string `json:"calc_method" yaml:"calc_method"`
	CalcValue         string `json:"calc_value" yaml:"calc_value"`
	BaseComponentCode string `json:"base_component_code,omitempty" yaml:"base_component_code"`
	Ordering          int    `json:"ordering" yaml:"ordering"`
}

// ComponentOverride replaces a catalog entry's value and/or method for one employee.
// Empty fields leave the catalog value in place.
type ComponentOverride struct {
	EmployeeID     string `json:"employee_id" yaml:"employee_id"`
	ComponentID    string `json:"component_id" yaml:"component_id"`
	ValueOverride  string `json:"value_override,omitempty" yaml:"value_override"`
	MethodOverride string `json:"method_override,omitempty" yaml:"method_override"`
}

type Employee struct {
	ID         string           `json:"id" yaml:"id"`
	Name       string           `json:"name" yaml:"name"`
	AnnualCTC  *decimal.Decimal `json:"annual_ctc,omitempty" yaml:"annual_ctc"`
	GradeID    string           `json:"grade_id,omitempty" yaml:"grade_id"`
	WorkRegion string           `json:"work_region,omitempty" yaml:"work_region"`
	TaxRegime  string           `json:"tax_regime,omitempty" yaml:"tax_regime"`
	IsActive   bool             `json:"is_active" yaml:"is_active"`
}

type Bonus struct {
	ID                 string          `json:"id" yaml:"id"`
	EmployeeID         string          `json:"employee_id" yaml:"employee_id"`
	Code               string          `json:"code,omitempty" yaml:"code"`
	Amount             decimal.Decimal `json:"amount" yaml:"amount"`
	IsPercentage       bool            `json:"is_percentage" yaml:"is_percentage"`
	PercentOfComponent string          `json:"percent_of_component,omitempty" yaml:"percent_of_component"`
	BonusType          string          `json:"bonus_type" yaml:"bonus_type"`
	EffectiveFrom      *time.Time      `json:"effective_from,omitempty" yaml:"effective_from"`
	EffectiveTo        *time.Time      `json:"effective_to,omitempty" yaml:"effective_to"`
	IsPaid             bool            `json:"is_paid" yaml:"is_paid"`
}

// TaxSlab is one progressive bracket. A nil To marks the open-ended top bracket.
type TaxSlab struct {
	From        decimal.Decimal  `json:"from_amount" yaml:"from_amount"`
	To          *decimal.Decimal `json:"to_amount" yaml:"to_amount"`
	RatePercent decimal.Decimal  `json:"rate_percent" yaml:"rate_percent"`
}

type ProfessionalTaxRule struct {
	Region           string           `json:"region" yaml:"region"`
	MinMonthlySalary *decimal.Decimal `json:"min_monthly_salary" yaml:"min_monthly_salary"`
	MaxMonthlySalary *decimal.Decimal `json:"max_monthly_salary" yaml:"max_monthly_salary"`
	MonthlyAmount    decimal.Decimal  `json:"monthly_amount" yaml:"monthly_amount"`
}

type PayrollPeriod struct {
	ID    string    `json:"id" yaml:"id"`
	Start time.Time `json:"period_start" yaml:"period_start"`
	End   time.Time `json:"period_end" yaml:"period_end"`
}

// Attendance drives proration. A nil PresentDays means the employee was present
// for every working day.
type Attendance struct {
	WorkingDays int  `json:"working_days" yaml:"working_days"`
	PresentDays *int `json:"present_days,omitempty" yaml:"present_days"`
}

type Payslip struct {
	ID                string          `json:"id,omitempty"`
	EmployeeID        string          `json:"employee_id"`
	PeriodID          string          `json:"payroll_period_id"`
	Regime            string          `json:"regime"`
	GrossSalary       decimal.Decimal `json:"gross_salary"`
	TotalDeductions   decimal.Decimal `json:"total_deductions"`
	NetSalary         decimal.Decimal `json:"net_salary"`
	TotalEmployerCost decimal.Decimal `json:"total_employer_cost"`
	Breakdown         Breakdown       `json:"breakdown"`
	Warnings          []string        `json:"warnings,omitempty"`
	ComputedAt        time.Time       `json:"computed_at"`
}

type Run struct {
	ID          string     `json:"id"`
	PeriodID    string     `json:"payroll_period_id"`
	RunBy       string     `json:"run_by,omitempty"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type RunError struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

type RunSummary struct {
	RunID     string     `json:"run_id"`
	PeriodID  string     `json:"payroll_period_id"`
	Status    string     `json:"status"`
	Total     int        `json:"total"`
	Succeeded int        `json:"succeeded"`
	Failed    int        `json:"failed"`
	Skipped   int        `json:"skipped,omitempty"`
	Errors    []RunError `json:"errors"`
}

// ComponentIssue records a component that could not be resolved and fell back to zero.
type ComponentIssue struct {
	Code string
	Err  error
}

func (i ComponentIssue) String() string {
	return i.Code + ": " + i.Err.Error()
}
