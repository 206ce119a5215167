package payroll

import (
	"github.com/shopspring/decimal"
)

// Resolver turns the component graph into concrete amounts. Every code is
// computed at most once; a code reached again while it is still being
// computed is a circular reference.
type Resolver struct {
	graph    *Graph
	cache    map[string]decimal.Decimal
	visiting map[string]bool
	stack    []string
}

func NewResolver(graph *Graph) *Resolver {
	return &Resolver{
		graph:    graph,
		cache:    map[string]decimal.Decimal{},
		visiting: map[string]bool{},
	}
}

// Resolve returns the amount of code, computing its dependencies first.
// Unknown codes resolve to 0.00.
func (r *Resolver) Resolve(code string) (decimal.Decimal, error) {
	component, ok := r.graph.components.Get(code)
	if !ok {
		return decimal.Zero, nil
	}
	if amount, ok := r.cache[code]; ok {
		return amount, nil
	}
	if r.visiting[code] {
		return decimal.Zero, &CircularReferenceError{Code: code, Path: cyclePath(r.stack, code)}
	}

	r.visiting[code] = true
	r.stack = append(r.stack, code)
	defer func() {
		delete(r.visiting, code)
		r.stack = r.stack[:len(r.stack)-1]
	}()

	amount, err := r.compute(component)
	if err != nil {
		return decimal.Zero, err
	}
	amount = ToMoney(amount)
	r.cache[code] = amount
	return amount, nil
}

func (r *Resolver) compute(component EffectiveComponent) (decimal.Decimal, error) {
	switch component.Method {
	case MethodFixed:
		return parseDecimal(component.Value), nil
	case MethodPercentOf:
		base := component.BaseCode
		if base == "" {
			base = CodeMonthlyCTC
		}
		baseAmount, err := r.Resolve(base)
		if err != nil {
			return decimal.Zero, err
		}
		return percentOf(baseAmount, parseDecimal(component.Value)), nil
	case MethodFormula:
		if err, ok := r.graph.parseErrs[component.Code]; ok {
			return decimal.Zero, err
		}
		expr := r.graph.formulas[component.Code]
		values := make(map[string]decimal.Decimal, len(r.graph.edges[component.Code]))
		for _, ref := range r.graph.edges[component.Code] {
			amount, err := r.Resolve(ref)
			if err != nil {
				return decimal.Zero, err
			}
			values[ref] = amount
		}
		return expr.Eval(values)
	default:
		return parseDecimal(component.Value), nil
	}
}

// ResolveAll resolves every component. A component that fails is recorded as
// an issue and set to 0.00; the remaining components still resolve.
func (r *Resolver) ResolveAll() []ComponentIssue {
	var issues []ComponentIssue
	for _, code := range r.graph.components.resolutionOrder() {
		if _, err := r.Resolve(code); err != nil {
			r.cache[code] = decimal.Zero
			issues = append(issues, ComponentIssue{Code: code, Err: err})
		}
	}
	return issues
}

// Amount returns the resolved amount for code, or 0.00 if it was never resolved.
func (r *Resolver) Amount(code string) decimal.Decimal {
	return r.cache[code]
}

// Set records an externally computed amount, such as a bonus.
func (r *Resolver) Set(code string, amount decimal.Decimal) {
	r.cache[code] = ToMoney(amount)
}

// Amounts returns a copy of every resolved amount.
func (r *Resolver) Amounts() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(r.cache))
	for code, amount := range r.cache {
		out[code] = amount
	}
	return out
}
