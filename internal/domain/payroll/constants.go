package payroll

const (
	ComponentEarning              = "EARNING"
	ComponentDeduction            = "DEDUCTION"
	ComponentEmployerContribution = "EMPLOYER_CONTRIBUTION"

	MethodFixed     = "FIXED"
	MethodPercentOf = "PERCENT_OF"
	MethodFormula   = "FORMULA"

	BonusOneTime          = "ONE_TIME"
	BonusRecurringMonthly = "RECURRING_MONTHLY"
	BonusRecurringYearly  = "RECURRING_YEARLY"

	RunStatusInProgress = "IN_PROGRESS"
	RunStatusCompleted  = "COMPLETED"
	RunStatusFailed     = "FAILED"

	CodeMonthlyCTC      = "MONTHLY_CTC"
	CodeIncomeTax       = "INCOME_TAX"
	CodeProfessionalTax = "PROFESSIONAL_TAX"
	DefaultBonusBase    = "BASIC"
	DefaultTaxRegime    = "new"

	// DefaultComponentOrdering places catalog entries without an ordering after bonuses.
	DefaultComponentOrdering = 100

	bonusCodePrefix = "BONUS_"

	monthlyCTCOrdering = 0
	bonusOrdering      = 5
)
