package payroll

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func component(code, typ, method, value, base string, ordering int) SalaryComponent {
	return SalaryComponent{
		ID:                "c-" + code,
		Code:              code,
		Name:              code,
		Type:              typ,
		IsTaxable:         typ == ComponentEarning,
		CalcMethod:        method,
		CalcValue:         value,
		BaseComponentCode: base,
		Ordering:          ordering,
	}
}

func standardCatalog() []SalaryComponent {
	return []SalaryComponent{
		component("BASIC", ComponentEarning, MethodPercentOf, "40", "MONTHLY_CTC", 10),
		component("HRA", ComponentEarning, MethodPercentOf, "50", "BASIC", 20),
		component("SPECIAL", ComponentEarning, MethodFormula, "MONTHLY_CTC - BASIC - HRA - PF_EMPLOYER", "", 30),
		component("PF_EMPLOYEE", ComponentDeduction, MethodFormula, "BASIC * 12 / 100", "", 40),
		component("PF_EMPLOYER", ComponentEmployerContribution, MethodFormula, "BASIC * 0.12", "", 50),
	}
}

func resolverFor(catalog []SalaryComponent, overrides []ComponentOverride, monthly string) (*ComponentMap, *Resolver) {
	components := MergeComponents(catalog, overrides)
	components.Put(monthlyCTCComponent(d(monthly)))
	return components, NewResolver(BuildGraph(components))
}

func TestResolveStandardCatalog(t *testing.T) {
	_, r := resolverFor(standardCatalog(), nil, "100000")
	issues := r.ResolveAll()
	require.Empty(t, issues)

	want := map[string]string{
		"MONTHLY_CTC": "100000.00",
		"BASIC":       "40000.00",
		"HRA":         "20000.00",
		"SPECIAL":     "35200.00",
		"PF_EMPLOYEE": "4800.00",
		"PF_EMPLOYER": "4800.00",
	}
	for code, amount := range want {
		assert.Equal(t, amount, r.Amount(code).StringFixed(2), code)
	}
}

func TestResolveIsMemoized(t *testing.T) {
	_, r := resolverFor(standardCatalog(), nil, "100000")
	first, err := r.Resolve("SPECIAL")
	require.NoError(t, err)
	second, err := r.Resolve("SPECIAL")
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
	assert.True(t, first.Equal(r.Amount("SPECIAL")))
}

func TestResolveUnknownCodeIsZero(t *testing.T) {
	_, r := resolverFor(standardCatalog(), nil, "100000")
	amount, err := r.Resolve("NOPE")
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
}

func TestResolveMethods(t *testing.T) {
	catalog := []SalaryComponent{
		component("FLAT", ComponentEarning, MethodFixed, "1234.567", "", 10),
		component("EMPTY", ComponentEarning, MethodFixed, "", "", 20),
		component("JUNK", ComponentEarning, MethodFixed, "12abc", "", 30),
		component("DEFAULT_BASE", ComponentEarning, MethodPercentOf, "10", "", 40),
		component("ODD", ComponentEarning, "SOMETHING", "55.5", "", 50),
		component("ODD_JUNK", ComponentEarning, "SOMETHING", "x", "", 60),
		component("MISSING_BASE", ComponentEarning, MethodPercentOf, "10", "GHOST", 70),
	}
	_, r := resolverFor(catalog, nil, "50000")
	require.Empty(t, r.ResolveAll())

	assert.Equal(t, "1234.57", r.Amount("FLAT").StringFixed(2))
	assert.Equal(t, "0.00", r.Amount("EMPTY").StringFixed(2))
	assert.Equal(t, "0.00", r.Amount("JUNK").StringFixed(2))
	assert.Equal(t, "5000.00", r.Amount("DEFAULT_BASE").StringFixed(2))
	assert.Equal(t, "55.50", r.Amount("ODD").StringFixed(2))
	assert.Equal(t, "0.00", r.Amount("ODD_JUNK").StringFixed(2))
	assert.Equal(t, "0.00", r.Amount("MISSING_BASE").StringFixed(2))
}

func TestResolveMutualPercentCycle(t *testing.T) {
	catalog := []SalaryComponent{
		component("A", ComponentEarning, MethodPercentOf, "10", "B", 10),
		component("B", ComponentEarning, MethodPercentOf, "10", "A", 20),
		component("OK", ComponentEarning, MethodFixed, "100", "", 30),
	}
	_, r := resolverFor(catalog, nil, "1000")
	issues := r.ResolveAll()

	// A fails first and falls back to zero; B then resolves against that zero.
	require.Len(t, issues, 1)
	assert.Equal(t, "A", issues[0].Code)
	assert.ErrorIs(t, issues[0].Err, ErrCircularReference)
	var cycle *CircularReferenceError
	require.True(t, errors.As(issues[0].Err, &cycle))
	assert.Equal(t, []string{"A", "B", "A"}, cycle.Path)
	assert.Equal(t, "circular reference: A -> B -> A", cycle.Error())

	assert.True(t, r.Amount("A").IsZero())
	assert.True(t, r.Amount("B").IsZero())
	assert.Equal(t, "100.00", r.Amount("OK").StringFixed(2))
}

func TestResolveSelfReference(t *testing.T) {
	catalog := []SalaryComponent{
		component("LOOP", ComponentEarning, MethodFormula, "LOOP + 1", "", 10),
	}
	_, r := resolverFor(catalog, nil, "1000")
	issues := r.ResolveAll()
	require.Len(t, issues, 1)
	assert.ErrorIs(t, issues[0].Err, ErrCircularReference)
	assert.True(t, r.Amount("LOOP").IsZero())
}

func TestResolveBadFormulaIsContained(t *testing.T) {
	catalog := []SalaryComponent{
		component("BASIC", ComponentEarning, MethodFixed, "1000", "", 10),
		component("EVIL", ComponentEarning, MethodFormula, "__import__('os')", "", 20),
		component("UNKNOWN_REF", ComponentEarning, MethodFormula, "BASIC + BONUS_POOL", "", 30),
		component("DIV", ComponentEarning, MethodFormula, "BASIC / 0", "", 40),
		component("DEPENDS", ComponentEarning, MethodFormula, "EVIL + BASIC", "", 50),
	}
	_, r := resolverFor(catalog, nil, "1000")
	issues := r.ResolveAll()

	byCode := map[string]error{}
	for _, issue := range issues {
		byCode[issue.Code] = issue.Err
	}
	assert.ErrorIs(t, byCode["EVIL"], ErrUnsupportedExpression)
	assert.ErrorIs(t, byCode["UNKNOWN_REF"], ErrUnsupportedExpression)
	assert.ErrorIs(t, byCode["DIV"], ErrDivisionByZero)
	assert.NotContains(t, byCode, "DEPENDS")

	assert.Equal(t, "1000.00", r.Amount("BASIC").StringFixed(2))
	assert.Equal(t, "1000.00", r.Amount("DEPENDS").StringFixed(2))
}

func TestFormulaTokensDoNotCollide(t *testing.T) {
	catalog := []SalaryComponent{
		component("BASIC", ComponentEarning, MethodFixed, "100", "", 10),
		component("BASIC_EXTRA", ComponentEarning, MethodFixed, "7", "", 20),
		component("TOTAL", ComponentEarning, MethodFormula, "BASIC_EXTRA + BASIC", "", 30),
	}
	_, r := resolverFor(catalog, nil, "0")
	require.Empty(t, r.ResolveAll())
	assert.Equal(t, "107.00", r.Amount("TOTAL").StringFixed(2))
}

func TestMergeComponentsOverrideWins(t *testing.T) {
	overrides := []ComponentOverride{
		{EmployeeID: "E2", ComponentID: "c-HRA", ValueOverride: "40"},
		{EmployeeID: "E2", ComponentID: "c-SPECIAL", MethodOverride: "fixed", ValueOverride: "1000"},
		{EmployeeID: "E2", ComponentID: "c-BASIC", ValueOverride: "  "},
	}
	components := MergeComponents(standardCatalog(), overrides)

	hra, ok := components.Get("HRA")
	require.True(t, ok)
	assert.Equal(t, "40", hra.Value)
	assert.Equal(t, MethodPercentOf, hra.Method)

	special, _ := components.Get("SPECIAL")
	assert.Equal(t, MethodFixed, special.Method)
	assert.Equal(t, "1000", special.Value)

	basic, _ := components.Get("BASIC")
	assert.Equal(t, "40", basic.Value)
}

func TestComponentMapOrdering(t *testing.T) {
	m := NewComponentMap()
	m.Put(EffectiveComponent{Code: "Z", Ordering: 10})
	m.Put(EffectiveComponent{Code: "A", Ordering: 10})
	m.Put(EffectiveComponent{Code: "FIRST", Ordering: 1})
	m.Put(EffectiveComponent{Code: "Z", Ordering: 10, Name: "replaced"})

	var ordered []string
	for _, c := range m.Ordered() {
		ordered = append(ordered, c.Code)
	}
	assert.Equal(t, []string{"FIRST", "Z", "A"}, ordered)
	assert.Equal(t, []string{"FIRST", "A", "Z"}, m.resolutionOrder())
	assert.Equal(t, 3, m.Len())

	z, _ := m.Get("Z")
	assert.Equal(t, "replaced", z.Name)
}
