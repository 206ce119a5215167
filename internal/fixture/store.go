package fixture

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"paycore/internal/domain/payroll"
)

// Store serves a Dataset through payroll.StoreAPI and keeps persisted
// payslips and runs in memory.
type Store struct {
	mu       sync.Mutex
	data     Dataset
	payslips map[string]payroll.Payslip
	runs     map[string]payroll.Run
	runOrder []string
	summary  map[string]payroll.RunSummary
	now      func() time.Time
}

func NewStore(data Dataset) *Store {
	return &Store{
		data:     data,
		payslips: map[string]payroll.Payslip{},
		runs:     map[string]payroll.Run{},
		summary:  map[string]payroll.RunSummary{},
		now:      time.Now,
	}
}

var _ payroll.StoreAPI = (*Store)(nil)

func payslipKey(employeeID, periodID string) string {
	return employeeID + "|" + periodID
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (payroll.Employee, error) {
	if err := ctx.Err(); err != nil {
		return payroll.Employee{}, err
	}
	for _, e := range s.data.Employees {
		if e.ID == employeeID {
			return e, nil
		}
	}
	return payroll.Employee{}, fmt.Errorf("%w: %s", payroll.ErrEmployeeNotFound, employeeID)
}

func (s *Store) GetGradeAnnualCTC(ctx context.Context, gradeID string) (*decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, g := range s.data.Grades {
		if g.ID == gradeID {
			return g.AnnualCTC, nil
		}
	}
	return nil, nil
}

func (s *Store) ListActiveEmployeeIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range s.data.Employees {
		if e.IsActive {
			ids = append(ids, e.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) GetSalaryCatalog(ctx context.Context) ([]payroll.SalaryComponent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]payroll.SalaryComponent, len(s.data.Components))
	copy(out, s.data.Components)
	return out, nil
}

func (s *Store) GetEmployeeOverrides(ctx context.Context, employeeID string) ([]payroll.ComponentOverride, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []payroll.ComponentOverride
	for _, o := range s.data.Overrides {
		if o.EmployeeID == employeeID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Store) GetActiveBonuses(ctx context.Context, employeeID string) ([]payroll.Bonus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []payroll.Bonus
	for _, b := range s.data.Bonuses {
		if b.EmployeeID == employeeID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) GetTaxRegime(ctx context.Context, name string) ([]payroll.TaxSlab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, r := range s.data.TaxRegimes {
		if r.Name == name {
			return payroll.SortSlabs(r.Slabs), nil
		}
	}
	return nil, nil
}

func (s *Store) GetProfessionalTaxRules(ctx context.Context, region string) ([]payroll.ProfessionalTaxRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return payroll.RulesForRegion(s.data.ProfessionalTaxRules, region), nil
}

func (s *Store) GetPayrollPeriod(ctx context.Context, periodID string) (payroll.PayrollPeriod, error) {
	if err := ctx.Err(); err != nil {
		return payroll.PayrollPeriod{}, err
	}
	for _, p := range s.data.Periods {
		if p.ID == periodID {
			return p, nil
		}
	}
	return payroll.PayrollPeriod{}, fmt.Errorf("%w: %s", payroll.ErrPeriodNotFound, periodID)
}

func (s *Store) GetAttendance(ctx context.Context, employeeID, periodID string) (*payroll.Attendance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, a := range s.data.Attendance {
		if a.EmployeeID == employeeID && a.PeriodID == periodID {
			return &payroll.Attendance{WorkingDays: a.WorkingDays, PresentDays: a.PresentDays}, nil
		}
	}
	return nil, nil
}

func (s *Store) PersistPayslip(ctx context.Context, payslip payroll.Payslip) (payroll.Payslip, error) {
	if err := ctx.Err(); err != nil {
		return payroll.Payslip{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := payslipKey(payslip.EmployeeID, payslip.PeriodID)
	if existing, ok := s.payslips[key]; ok {
		payslip.ID = existing.ID
	} else {
		payslip.ID = uuid.NewString()
	}
	s.payslips[key] = payslip
	return payslip, nil
}

func (s *Store) CreatePayrollRun(ctx context.Context, periodID, runBy string) (payroll.Run, error) {
	if err := ctx.Err(); err != nil {
		return payroll.Run{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	run := payroll.Run{
		ID:        uuid.NewString(),
		PeriodID:  periodID,
		RunBy:     runBy,
		Status:    payroll.RunStatusInProgress,
		StartedAt: s.now().UTC(),
	}
	s.runs[run.ID] = run
	s.runOrder = append(s.runOrder, run.ID)
	return run, nil
}

func (s *Store) UpdateRunStatus(ctx context.Context, runID, status string, summary *payroll.RunSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", payroll.ErrRunNotFound, runID)
	}
	run.Status = status
	if status != payroll.RunStatusInProgress {
		completed := s.now().UTC()
		run.CompletedAt = &completed
	}
	s.runs[runID] = run
	if summary != nil {
		s.summary[runID] = *summary
	}
	return nil
}

func (s *Store) ListDuePeriods(ctx context.Context, asOf time.Time) ([]payroll.PayrollPeriod, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	covered := map[string]bool{}
	for _, run := range s.runs {
		if run.Status == payroll.RunStatusCompleted || run.Status == payroll.RunStatusInProgress {
			covered[run.PeriodID] = true
		}
	}
	asOfDay := truncateDay(asOf)
	var due []payroll.PayrollPeriod
	for _, p := range s.data.Periods {
		if truncateDay(p.End).Before(asOfDay) && !covered[p.ID] {
			due = append(due, p)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].End.Before(due[j].End) })
	return due, nil
}

// Payslip returns the persisted payslip for an employee and period.
func (s *Store) Payslip(employeeID, periodID string) (payroll.Payslip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payslips[payslipKey(employeeID, periodID)]
	return p, ok
}

func (s *Store) PayslipCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payslips)
}

// Runs returns every run in creation order.
func (s *Store) Runs() []payroll.Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]payroll.Run, 0, len(s.runOrder))
	for _, id := range s.runOrder {
		out = append(out, s.runs[id])
	}
	return out
}

func (s *Store) RunSummary(runID string) (payroll.RunSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary, ok := s.summary[runID]
	return summary, ok
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Describe is a one-line summary of the dataset for logs.
func (ds Dataset) Describe() string {
	parts := []string{
		fmt.Sprintf("%d employees", len(ds.Employees)),
		fmt.Sprintf("%d components", len(ds.Components)),
		fmt.Sprintf("%d periods", len(ds.Periods)),
	}
	return strings.Join(parts, ", ")
}
