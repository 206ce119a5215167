package payroll

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// SortSlabs orders slabs ascending by lower bound.
func SortSlabs(slabs []TaxSlab) []TaxSlab {
	out := make([]TaxSlab, len(slabs))
	copy(out, slabs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].From.LessThan(out[j].From) })
	return out
}

// ComputeAnnualTax applies marginal brackets: each slab taxes only the part of
// income that falls inside it. Slabs must already be sorted.
func ComputeAnnualTax(taxableIncome decimal.Decimal, slabs []TaxSlab) decimal.Decimal {
	tax := decimal.Zero
	for _, slab := range slabs {
		from := ToMoney(slab.From)
		if !taxableIncome.GreaterThan(from) {
			continue
		}
		upper := taxableIncome
		if slab.To != nil {
			upper = decimal.Min(taxableIncome, ToMoney(*slab.To))
		}
		inSlab := upper.Sub(from)
		if !inSlab.IsPositive() {
			continue
		}
		tax = tax.Add(percentOf(inSlab, slab.RatePercent))
	}
	return ToMoney(tax)
}

// MonthlyIncomeTax annualizes a month's taxable earnings, taxes them and
// returns one twelfth of the annual tax.
func MonthlyIncomeTax(monthlyTaxable decimal.Decimal, slabs []TaxSlab) decimal.Decimal {
	if len(slabs) == 0 {
		return decimal.Zero
	}
	annualTaxable := ToMoney(monthlyTaxable.Mul(twelve))
	return ToMoney(ComputeAnnualTax(annualTaxable, slabs).Div(twelve))
}

// ResolveProfessionalTax returns the flat amount of the first band containing
// monthlySalary, or 0.00. A missing minimum is 0 and a missing maximum is open.
func ResolveProfessionalTax(monthlySalary decimal.Decimal, rules []ProfessionalTaxRule) decimal.Decimal {
	for _, rule := range rules {
		low := MoneyOrZero(rule.MinMonthlySalary)
		high := openEndedMonthlySalary
		if rule.MaxMonthlySalary != nil {
			high = ToMoney(*rule.MaxMonthlySalary)
		}
		if monthlySalary.GreaterThanOrEqual(low) && monthlySalary.LessThanOrEqual(high) {
			return ToMoney(rule.MonthlyAmount)
		}
	}
	return decimal.Zero
}

// RulesForRegion filters rules by region code, ignoring case.
func RulesForRegion(rules []ProfessionalTaxRule, region string) []ProfessionalTaxRule {
	region = strings.TrimSpace(region)
	var out []ProfessionalTaxRule
	for _, rule := range rules {
		if strings.EqualFold(strings.TrimSpace(rule.Region), region) {
			out = append(out, rule)
		}
	}
	return out
}
