package payroll

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, dd int) *time.Time {
	t := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestSelectActiveBonuses(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		bonus Bonus
		want  bool
	}{
		{"one time inside", Bonus{BonusType: BonusOneTime, EffectiveFrom: day(2025, 1, 15)}, true},
		{"one time on start", Bonus{BonusType: BonusOneTime, EffectiveFrom: day(2025, 1, 1)}, true},
		{"one time on end with time of day", Bonus{BonusType: BonusOneTime, EffectiveFrom: ptr(time.Date(2025, 1, 31, 18, 30, 0, 0, time.UTC))}, true},
		{"one time before", Bonus{BonusType: BonusOneTime, EffectiveFrom: day(2024, 12, 31)}, false},
		{"one time after", Bonus{BonusType: BonusOneTime, EffectiveFrom: day(2025, 2, 1)}, false},
		{"one time paid", Bonus{BonusType: BonusOneTime, EffectiveFrom: day(2025, 1, 15), IsPaid: true}, false},
		{"one time without date", Bonus{BonusType: BonusOneTime}, false},
		{"blank type is one time", Bonus{EffectiveFrom: day(2025, 1, 10)}, true},
		{"monthly open", Bonus{BonusType: BonusRecurringMonthly}, true},
		{"monthly started", Bonus{BonusType: BonusRecurringMonthly, EffectiveFrom: day(2024, 6, 1)}, true},
		{"monthly not yet", Bonus{BonusType: BonusRecurringMonthly, EffectiveFrom: day(2025, 2, 1)}, false},
		{"monthly ended", Bonus{BonusType: BonusRecurringMonthly, EffectiveTo: day(2024, 12, 31)}, false},
		{"monthly ends in period", Bonus{BonusType: BonusRecurringMonthly, EffectiveTo: day(2025, 1, 1)}, true},
		{"yearly matching month", Bonus{BonusType: BonusRecurringYearly, EffectiveFrom: day(2024, 1, 20)}, true},
		{"yearly other month", Bonus{BonusType: BonusRecurringYearly, EffectiveFrom: day(2024, 3, 1)}, false},
		{"yearly without date", Bonus{BonusType: BonusRecurringYearly}, false},
		{"yearly ended", Bonus{BonusType: BonusRecurringYearly, EffectiveFrom: day(2023, 1, 1), EffectiveTo: day(2024, 6, 1)}, false},
		{"yearly future", Bonus{BonusType: BonusRecurringYearly, EffectiveFrom: day(2026, 1, 1)}, false},
		{"lowercase type", Bonus{BonusType: "recurring_monthly"}, true},
		{"unknown type", Bonus{BonusType: "QUARTERLY"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectActiveBonuses([]Bonus{tt.bonus}, start, end)
			assert.Equal(t, tt.want, len(got) == 1)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestBonusAmount(t *testing.T) {
	amounts := map[string]decimal.Decimal{"BASIC": d("40000"), "HRA": d("20000")}
	resolve := func(code string) (decimal.Decimal, error) { return amounts[code], nil }

	got, err := bonusAmount(Bonus{Amount: d("5000.005")}, resolve)
	require.NoError(t, err)
	assert.Equal(t, "5000.01", got.StringFixed(2))

	got, err = bonusAmount(Bonus{Amount: d("10"), IsPercentage: true}, resolve)
	require.NoError(t, err)
	assert.Equal(t, "4000.00", got.StringFixed(2))

	got, err = bonusAmount(Bonus{Amount: d("5"), IsPercentage: true, PercentOfComponent: "HRA"}, resolve)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", got.StringFixed(2))

	got, err = bonusAmount(Bonus{Amount: d("5"), IsPercentage: true, PercentOfComponent: "NOPE"}, resolve)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	boom := errors.New("boom")
	_, err = bonusAmount(Bonus{Amount: d("5"), IsPercentage: true}, func(string) (decimal.Decimal, error) { return decimal.Zero, boom })
	assert.ErrorIs(t, err, boom)
}

func TestBonusComponent(t *testing.T) {
	c := bonusComponent(Bonus{ID: "42", Code: "Diwali"}, d("2500"))
	assert.Equal(t, "BONUS_42", c.Code)
	assert.Equal(t, "Diwali", c.Name)
	assert.Equal(t, ComponentEarning, c.Type)
	assert.True(t, c.IsTaxable)
	assert.Equal(t, MethodFixed, c.Method)
	assert.Equal(t, "2500.00", c.Value)
	assert.Equal(t, 5, c.Ordering)

	unnamed := bonusComponent(Bonus{ID: "7"}, d("1"))
	assert.Equal(t, "BONUS_7", unnamed.Name)
}
