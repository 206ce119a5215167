// Package fixture loads a payroll dataset from YAML into an in-memory store.
// It backs the CLI's --fixture mode and the domain tests.
package fixture

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"paycore/internal/domain/payroll"
)

type Grade struct {
	ID        string           `yaml:"id"`
	Name      string           `yaml:"name"`
	AnnualCTC *decimal.Decimal `yaml:"annual_ctc"`
}

type TaxRegime struct {
	Name  string            `yaml:"name"`
	Slabs []payroll.TaxSlab `yaml:"slabs"`
}

type AttendanceRecord struct {
	EmployeeID  string `yaml:"employee_id"`
	PeriodID    string `yaml:"period_id"`
	WorkingDays int    `yaml:"working_days"`
	PresentDays *int   `yaml:"present_days"`
}

type Dataset struct {
	Grades               []Grade                       `yaml:"grades"`
	Employees            []payroll.Employee            `yaml:"employees"`
	Components           Catalog                       `yaml:"components"`
	Overrides            []payroll.ComponentOverride   `yaml:"overrides"`
	Bonuses              []payroll.Bonus               `yaml:"bonuses"`
	TaxRegimes           []TaxRegime                   `yaml:"tax_regimes"`
	ProfessionalTaxRules []payroll.ProfessionalTaxRule `yaml:"professional_tax_rules"`
	Periods              []payroll.PayrollPeriod       `yaml:"periods"`
	Attendance           []AttendanceRecord            `yaml:"attendance"`
}

// Catalog is the salary component list. Components that omit is_taxable are
// taxable and those that omit ordering get payroll.DefaultComponentOrdering.
type Catalog []payroll.SalaryComponent

func (c *Catalog) UnmarshalYAML(value *yaml.Node) error {
	var components []payroll.SalaryComponent
	if err := value.Decode(&components); err != nil {
		return err
	}
	var present []struct {
		IsTaxable *bool `yaml:"is_taxable"`
		Ordering  *int  `yaml:"ordering"`
	}
	if err := value.Decode(&present); err != nil {
		return err
	}
	for i := range components {
		if present[i].IsTaxable == nil {
			components[i].IsTaxable = true
		}
		if present[i].Ordering == nil {
			components[i].Ordering = payroll.DefaultComponentOrdering
		}
	}
	*c = components
	return nil
}

func Parse(data []byte) (Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return Dataset{}, fmt.Errorf("parse fixture: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

func LoadFile(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, err
	}
	return Parse(data)
}

// Validate rejects duplicate keys and references to unknown records.
func (ds Dataset) Validate() error {
	var errs []error
	employees := map[string]bool{}
	for _, e := range ds.Employees {
		if e.ID == "" {
			errs = append(errs, errors.New("employee without id"))
		}
		if employees[e.ID] {
			errs = append(errs, fmt.Errorf("duplicate employee %q", e.ID))
		}
		employees[e.ID] = true
	}
	grades := map[string]bool{}
	for _, g := range ds.Grades {
		grades[g.ID] = true
	}
	for _, e := range ds.Employees {
		if e.GradeID != "" && !grades[e.GradeID] {
			errs = append(errs, fmt.Errorf("employee %q references unknown grade %q", e.ID, e.GradeID))
		}
	}
	codes := map[string]bool{}
	components := map[string]bool{}
	for _, c := range ds.Components {
		if codes[c.Code] {
			errs = append(errs, fmt.Errorf("duplicate component code %q", c.Code))
		}
		codes[c.Code] = true
		components[c.ID] = true
	}
	for _, o := range ds.Overrides {
		if !employees[o.EmployeeID] {
			errs = append(errs, fmt.Errorf("override references unknown employee %q", o.EmployeeID))
		}
		if !components[o.ComponentID] {
			errs = append(errs, fmt.Errorf("override references unknown component %q", o.ComponentID))
		}
	}
	for _, b := range ds.Bonuses {
		if !employees[b.EmployeeID] {
			errs = append(errs, fmt.Errorf("bonus %q references unknown employee %q", b.ID, b.EmployeeID))
		}
	}
	periods := map[string]bool{}
	for _, p := range ds.Periods {
		if p.End.Before(p.Start) {
			errs = append(errs, fmt.Errorf("period %q ends before it starts", p.ID))
		}
		periods[p.ID] = true
	}
	for _, a := range ds.Attendance {
		if !periods[a.PeriodID] {
			errs = append(errs, fmt.Errorf("attendance references unknown period %q", a.PeriodID))
		}
	}
	return errors.Join(errs...)
}
