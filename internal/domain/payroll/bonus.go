package payroll

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SelectActiveBonuses returns the bonuses that apply to the period
// [start, end]. Dates are compared at day granularity.
func SelectActiveBonuses(bonuses []Bonus, start, end time.Time) []Bonus {
	start, end = dateOnly(start), dateOnly(end)
	var active []Bonus
	for _, bonus := range bonuses {
		if bonusApplies(bonus, start, end) {
			active = append(active, bonus)
		}
	}
	return active
}

func bonusApplies(bonus Bonus, start, end time.Time) bool {
	var from, to *time.Time
	if bonus.EffectiveFrom != nil {
		d := dateOnly(*bonus.EffectiveFrom)
		from = &d
	}
	if bonus.EffectiveTo != nil {
		d := dateOnly(*bonus.EffectiveTo)
		to = &d
	}
	inWindow := func() bool {
		if from != nil && from.After(end) {
			return false
		}
		if to != nil && to.Before(start) {
			return false
		}
		return true
	}

	switch bonusType(bonus) {
	case BonusOneTime:
		return from != nil && !from.Before(start) && !from.After(end) && !bonus.IsPaid
	case BonusRecurringMonthly:
		return inWindow()
	case BonusRecurringYearly:
		return from != nil && from.Month() == start.Month() && inWindow()
	default:
		return false
	}
}

func bonusType(bonus Bonus) string {
	typ := strings.ToUpper(strings.TrimSpace(bonus.BonusType))
	if typ == "" {
		return BonusOneTime
	}
	return typ
}

// BonusCode is the synthetic component code a bonus is injected under.
func BonusCode(bonus Bonus) string {
	return bonusCodePrefix + bonus.ID
}

// bonusAmount computes a bonus from already resolved amounts. Percentage
// bonuses apply to PercentOfComponent, or BASIC when unset.
func bonusAmount(bonus Bonus, resolve func(code string) (decimal.Decimal, error)) (decimal.Decimal, error) {
	if !bonus.IsPercentage {
		return ToMoney(bonus.Amount), nil
	}
	base := strings.TrimSpace(bonus.PercentOfComponent)
	if base == "" {
		base = DefaultBonusBase
	}
	baseAmount, err := resolve(base)
	if err != nil {
		return decimal.Zero, err
	}
	return ToMoney(percentOf(baseAmount, bonus.Amount)), nil
}

func bonusComponent(bonus Bonus, amount decimal.Decimal) EffectiveComponent {
	code := BonusCode(bonus)
	name := strings.TrimSpace(bonus.Code)
	if name == "" {
		name = code
	}
	return EffectiveComponent{
		Code:      code,
		Name:      name,
		Type:      ComponentEarning,
		IsTaxable: true,
		Method:    MethodFixed,
		Value:     amount.StringFixed(2),
		Ordering:  bonusOrdering,
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
