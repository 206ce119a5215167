package payroll

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)

	// openEndedMonthlySalary bounds a professional tax band with no maximum.
	openEndedMonthlySalary = decimal.NewFromInt(999999999)
)

// ToMoney quantizes an amount to two fractional digits, rounding half away from zero.
func ToMoney(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

// MoneyOrZero converts an optional amount; nil yields 0.00.
func MoneyOrZero(value *decimal.Decimal) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return ToMoney(*value)
}

// ParseMoney parses a decimal literal and quantizes it. Blank or malformed input yields 0.00.
func ParseMoney(raw string) decimal.Decimal {
	return ToMoney(parseDecimal(raw))
}

func parseDecimal(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return value
}

func percentOf(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}
