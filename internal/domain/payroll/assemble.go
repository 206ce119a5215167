package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssembleInput carries everything the assembler needs for one employee and
// period. Amounts holds resolved, unprorated component amounts keyed by code.
type AssembleInput struct {
	Employee             Employee
	Period               PayrollPeriod
	Components           *ComponentMap
	Amounts              map[string]decimal.Decimal
	Attendance           *Attendance
	MonthlyCTC           decimal.Decimal
	Slabs                []TaxSlab
	ProfessionalTaxRules []ProfessionalTaxRule
	Regime               string
	Warnings             []string
	Now                  time.Time
	// ExcludeMonthlyCTC keeps MONTHLY_CTC on the payslip but out of gross and
	// taxable income. By default it counts as a taxable earning.
	ExcludeMonthlyCTC bool
}

// Proration is presentDays / workingDays. Missing or non-positive working days
// mean no proration.
func Proration(attendance *Attendance) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if attendance == nil || attendance.WorkingDays <= 0 {
		return one
	}
	present := attendance.WorkingDays
	if attendance.PresentDays != nil {
		present = *attendance.PresentDays
	}
	return decimal.NewFromInt(int64(present)).Div(decimal.NewFromInt(int64(attendance.WorkingDays)))
}

// Assemble prorates earnings, aggregates totals, applies income and
// professional tax and builds the ordered breakdown.
func Assemble(in AssembleInput) Payslip {
	proration := Proration(in.Attendance)

	gross := decimal.Zero
	taxable := decimal.Zero
	deductions := decimal.Zero
	employer := decimal.Zero

	var breakdown Breakdown
	for _, component := range in.Components.Ordered() {
		amount := ToMoney(in.Amounts[component.Code])
		payable := amount
		switch {
		case in.ExcludeMonthlyCTC && component.Code == CodeMonthlyCTC:
			payable = decimal.Zero
		case component.Type == ComponentEarning:
			payable = ToMoney(amount.Mul(proration))
			gross = gross.Add(payable)
			if component.IsTaxable {
				taxable = taxable.Add(payable)
			}
		case component.Type == ComponentDeduction:
			deductions = deductions.Add(amount)
		case component.Type == ComponentEmployerContribution:
			employer = employer.Add(amount)
		}
		breakdown.set(BreakdownLine{
			Code:      component.Code,
			Name:      component.Name,
			Type:      component.Type,
			IsTaxable: component.IsTaxable,
			Amount:    amount,
			Payable:   payable,
		})
	}

	incomeTax := MonthlyIncomeTax(taxable, in.Slabs)
	professionalTax := decimal.Zero
	if in.Employee.WorkRegion != "" {
		professionalTax = ResolveProfessionalTax(in.MonthlyCTC, in.ProfessionalTaxRules)
	}

	breakdown.set(BreakdownLine{Code: CodeIncomeTax, Name: "Income Tax", Type: ComponentDeduction, Amount: incomeTax, Payable: incomeTax})
	breakdown.set(BreakdownLine{Code: CodeProfessionalTax, Name: "Professional Tax", Type: ComponentDeduction, Amount: professionalTax, Payable: professionalTax})

	gross = ToMoney(gross)
	totalDeductions := ToMoney(deductions.Add(incomeTax).Add(professionalTax))

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	return Payslip{
		EmployeeID:        in.Employee.ID,
		PeriodID:          in.Period.ID,
		Regime:            in.Regime,
		GrossSalary:       gross,
		TotalDeductions:   totalDeductions,
		NetSalary:         ToMoney(gross.Sub(totalDeductions)),
		TotalEmployerCost: ToMoney(gross.Add(employer)),
		Breakdown:         breakdown,
		Warnings:          in.Warnings,
		ComputedAt:        now.UTC(),
	}
}
