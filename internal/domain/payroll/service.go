package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	cryptoutil "paycore/internal/platform/crypto"
	"paycore/internal/platform/lock"
	"paycore/internal/platform/metrics"
)

type Settings struct {
	StoreTimeout  time.Duration
	DefaultRegime string
	Workers       int
	RunLockTTL    time.Duration
	PayslipDir    string

	// ExcludeMonthlyCTC stops MONTHLY_CTC from being aggregated as an earning.
	ExcludeMonthlyCTC bool
}

// AuditRecorder keeps a trail of who changed payroll data.
type AuditRecorder interface {
	Record(ctx context.Context, actor, action, entityType, entityID string, after any) error
}

// Dependencies are the collaborators of a Service. Only Store is required.
type Dependencies struct {
	Store   StoreAPI
	Audit   AuditRecorder
	Crypto  *cryptoutil.Cipher
	Locker  lock.Locker
	Metrics *metrics.Collector
	Logger  *slog.Logger
	Now     func() time.Time
}

type Service struct {
	store    StoreAPI
	audit    AuditRecorder
	crypto   *cryptoutil.Cipher
	locker   lock.Locker
	metrics  *metrics.Collector
	logger   *slog.Logger
	now      func() time.Time
	settings Settings
}

func NewService(deps Dependencies, settings Settings) *Service {
	if settings.StoreTimeout <= 0 {
		settings.StoreTimeout = 5 * time.Second
	}
	if strings.TrimSpace(settings.DefaultRegime) == "" {
		settings.DefaultRegime = DefaultTaxRegime
	}
	if settings.Workers <= 0 {
		settings.Workers = 4
	}
	if settings.RunLockTTL <= 0 {
		settings.RunLockTTL = 30 * time.Minute
	}
	if settings.PayslipDir == "" {
		settings.PayslipDir = "storage/payslips"
	}
	s := &Service{
		store:    deps.Store,
		audit:    deps.Audit,
		crypto:   deps.Crypto,
		locker:   deps.Locker,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		now:      deps.Now,
		settings: settings,
	}
	if s.locker == nil {
		s.locker = lock.NewLocal()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) Metrics() *metrics.Collector {
	return s.metrics
}

// ComputeOptions override what ComputePayslip would otherwise load.
type ComputeOptions struct {
	Regime     string
	Attendance *Attendance
}

// ComputePayslip builds the payslip for one employee and period without persisting it.
func (s *Service) ComputePayslip(ctx context.Context, employeeID, periodID string, opts ComputeOptions) (Payslip, error) {
	started := s.now()
	payslip, fallbacks, err := s.computePayslip(ctx, employeeID, periodID, opts)
	if err != nil {
		s.metrics.RecordFailure()
		return Payslip{}, err
	}
	s.metrics.RecordPayslip(s.now().Sub(started), fallbacks)
	return payslip, nil
}

func (s *Service) computePayslip(ctx context.Context, employeeID, periodID string, opts ComputeOptions) (Payslip, int, error) {
	employee, err := call(ctx, s.settings.StoreTimeout, func(ctx context.Context) (Employee, error) {
		return s.store.GetEmployee(ctx, employeeID)
	})
	if err != nil {
		return Payslip{}, 0, fmt.Errorf("get employee %s: %w", employeeID, err)
	}
	period, err := call(ctx, s.settings.StoreTimeout, func(ctx context.Context) (PayrollPeriod, error) {
		return s.store.GetPayrollPeriod(ctx, periodID)
	})
	if err != nil {
		return Payslip{}, 0, fmt.Errorf("get payroll period %s: %w", periodID, err)
	}

	annualCTC, err := s.annualCTC(ctx, employee)
	if err != nil {
		return Payslip{}, 0, err
	}
	monthlyCTC := ToMoney(annualCTC.Div(twelve))

	catalog, err := call(ctx, s.settings.StoreTimeout, s.store.GetSalaryCatalog)
	if err != nil {
		return Payslip{}, 0, fmt.Errorf("get salary catalog: %w", err)
	}
	overrides, err := call(ctx, s.settings.StoreTimeout, func(ctx context.Context) ([]ComponentOverride, error) {
		return s.store.GetEmployeeOverrides(ctx, employeeID)
	})
	if err != nil {
		return Payslip{}, 0, fmt.Errorf("get overrides: %w", err)
	}

	components := MergeComponents(catalog, overrides)
	components.Put(monthlyCTCComponent(monthlyCTC))

	resolver := NewResolver(BuildGraph(components))
	issues := resolver.ResolveAll()
	warnings := make([]string, 0, len(issues))
	for _, issue := range issues {
		s.logger.Warn("component resolved to zero", "employeeId", employeeID, "periodId", periodID, "code", issue.Code, "err", issue.Err)
		warnings = append(warnings, issue.String())
	}

	bonuses, err := call(ctx, s.settings.StoreTimeout, func(ctx context.Context) ([]Bonus, error) {
		return s.store.GetActiveBonuses(ctx, employeeID)
	})
	if err != nil {
		return Payslip{}, 0, fmt.Errorf("get bonuses: %w", err)
	}
	for _, bonus := range SelectActiveBonuses(bonuses, period.Start, period.End) {
		amount, err := bonusAmount(bonus, resolver.Resolve)
		if err != nil {
			s.logger.Warn("bonus resolved to zero", "employeeId", employeeID, "bonusId", bonus.ID, "err", err)
			warnings = append(warnings, BonusCode(bonus)+": "+err.Error())
			amount = decimal.Zero
		}
		components.Put(bonusComponent(bonus, amount))
		resolver.Set(BonusCode(bonus), amount)
	}

	attendance := opts.Attendance
	if attendance == nil {
		attendance, err = call(ctx, s.settings.StoreTimeout, func(ctx context.Context) (*Attendance, error) {
			return s.store.GetAttendance(ctx, employeeID, periodID)
		})
		if err != nil {
			return Payslip{}, 0, fmt.Errorf("get attendance: %w", err)
		}
	}

	regime := s.regimeFor(employee, opts.Regime)
	slabs, err := call(ctx, s.settings.StoreTimeout, func(ctx context.Context) ([]TaxSlab, error) {
		return s.store.GetTaxRegime(ctx, regime)
	})
	if err != nil {
		return Payslip{}, 0, fmt.Errorf("get tax regime %q: %w", regime, err)
	}

	var rules []ProfessionalTaxRule
	if employee.WorkRegion != "" {
		rules, err = call(ctx, s.settings.StoreTimeout, func(ctx context.Context) ([]ProfessionalTaxRule, error) {
			return s.store.GetProfessionalTaxRules(ctx, employee.WorkRegion)
		})
		if err != nil {
			return Payslip{}, 0, fmt.Errorf("get professional tax rules: %w", err)
		}
	}

	payslip := Assemble(AssembleInput{
		Employee:             employee,
		Period:               period,
		Components:           components,
		Amounts:              resolver.Amounts(),
		Attendance:           attendance,
		MonthlyCTC:           monthlyCTC,
		Slabs:                SortSlabs(slabs),
		ProfessionalTaxRules: rules,
		Regime:               regime,
		Warnings:             warnings,
		Now:                  s.now(),
		ExcludeMonthlyCTC:    s.settings.ExcludeMonthlyCTC,
	})
	return payslip, len(issues), nil
}

// annualCTC prefers the employee's own CTC, then the grade's, then zero.
func (s *Service) annualCTC(ctx context.Context, employee Employee) (decimal.Decimal, error) {
	if employee.AnnualCTC != nil {
		return *employee.AnnualCTC, nil
	}
	if employee.GradeID == "" {
		return decimal.Zero, nil
	}
	gradeCTC, err := call(ctx, s.settings.StoreTimeout, func(ctx context.Context) (*decimal.Decimal, error) {
		return s.store.GetGradeAnnualCTC(ctx, employee.GradeID)
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("get grade %s: %w", employee.GradeID, err)
	}
	if gradeCTC == nil {
		return decimal.Zero, nil
	}
	return *gradeCTC, nil
}

func (s *Service) regimeFor(employee Employee, explicit string) string {
	if regime := strings.TrimSpace(explicit); regime != "" {
		return regime
	}
	if regime := strings.TrimSpace(employee.TaxRegime); regime != "" {
		return regime
	}
	return s.settings.DefaultRegime
}

// PersistPayslip upserts the payslip on (employee, period).
func (s *Service) PersistPayslip(ctx context.Context, payslip Payslip) (Payslip, error) {
	saved, err := call(ctx, s.settings.StoreTimeout, func(ctx context.Context) (Payslip, error) {
		return s.store.PersistPayslip(ctx, payslip)
	})
	if err != nil {
		return Payslip{}, fmt.Errorf("persist payslip for %s: %w", payslip.EmployeeID, err)
	}
	return saved, nil
}

// ValidateEmployeeCatalog reports structural catalog problems for one employee,
// or for the bare catalog when employeeID is empty.
func (s *Service) ValidateEmployeeCatalog(ctx context.Context, employeeID string) ([]ComponentIssue, error) {
	catalog, err := call(ctx, s.settings.StoreTimeout, s.store.GetSalaryCatalog)
	if err != nil {
		return nil, fmt.Errorf("get salary catalog: %w", err)
	}
	var overrides []ComponentOverride
	if employeeID != "" {
		overrides, err = call(ctx, s.settings.StoreTimeout, func(ctx context.Context) ([]ComponentOverride, error) {
			return s.store.GetEmployeeOverrides(ctx, employeeID)
		})
		if err != nil {
			return nil, fmt.Errorf("get overrides: %w", err)
		}
	}
	return ValidateCatalog(catalog, overrides), nil
}

// DuePeriods lists periods that have ended and have no completed run.
func (s *Service) DuePeriods(ctx context.Context) ([]PayrollPeriod, error) {
	return call(ctx, s.settings.StoreTimeout, func(ctx context.Context) ([]PayrollPeriod, error) {
		return s.store.ListDuePeriods(ctx, s.now())
	})
}

// call bounds a single data-store call by timeout.
func call[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx)
}
