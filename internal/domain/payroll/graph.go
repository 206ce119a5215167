package payroll

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Graph is the component dependency graph: an edge A -> B means A's amount
// depends on B. PERCENT_OF contributes its base code; FORMULA contributes every
// code its expression references.
type Graph struct {
	components *ComponentMap
	formulas   map[string]*Expr
	parseErrs  map[string]error
	edges      map[string][]string
	unknown    map[string][]string
}

// BuildGraph parses every formula once and records the edges between known codes.
func BuildGraph(components *ComponentMap) *Graph {
	g := &Graph{
		components: components,
		formulas:   map[string]*Expr{},
		parseErrs:  map[string]error{},
		edges:      map[string][]string{},
		unknown:    map[string][]string{},
	}
	for _, code := range components.Codes() {
		component, _ := components.Get(code)
		switch component.Method {
		case MethodPercentOf:
			base := component.BaseCode
			if base == "" {
				base = CodeMonthlyCTC
			}
			if _, ok := components.Get(base); ok {
				g.edges[code] = []string{base}
			}
		case MethodFormula:
			expr, err := ParseExpr(component.Value)
			if err != nil {
				g.parseErrs[code] = err
				continue
			}
			g.formulas[code] = expr
			for _, ref := range expr.Codes() {
				if _, ok := components.Get(ref); ok {
					g.edges[code] = append(g.edges[code], ref)
				} else {
					g.unknown[code] = append(g.unknown[code], ref)
				}
			}
		}
	}
	return g
}

// Edges returns the known codes that code depends on.
func (g *Graph) Edges(code string) []string {
	out := make([]string, len(g.edges[code]))
	copy(out, g.edges[code])
	return out
}

// Cycles returns one witness path per back edge found by a depth-first walk
// over codes in sorted order. Each path starts and ends with the same code.
func (g *Graph) Cycles() [][]string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	codes := g.components.Codes()
	sort.Strings(codes)

	color := make(map[string]int, len(codes))
	var stack []string
	var cycles [][]string

	var visit func(code string)
	visit = func(code string) {
		color[code] = gray
		stack = append(stack, code)
		for _, next := range g.edges[code] {
			switch color[next] {
			case white:
				visit(next)
			case gray:
				cycles = append(cycles, cyclePath(stack, next))
			}
		}
		stack = stack[:len(stack)-1]
		color[code] = black
	}

	for _, code := range codes {
		if color[code] == white {
			visit(code)
		}
	}
	return cycles
}

// Validate reports every structural problem in the catalog without computing amounts.
func (g *Graph) Validate() []ComponentIssue {
	var issues []ComponentIssue
	codes := g.components.Codes()
	sort.Strings(codes)
	for _, code := range codes {
		if err, ok := g.parseErrs[code]; ok {
			issues = append(issues, ComponentIssue{Code: code, Err: err})
		}
		for _, ref := range g.unknown[code] {
			issues = append(issues, ComponentIssue{
				Code: code,
				Err:  fmt.Errorf("%w: unknown component %q", ErrUnsupportedExpression, ref),
			})
		}
	}
	for _, path := range g.Cycles() {
		issues = append(issues, ComponentIssue{
			Code: path[0],
			Err:  &CircularReferenceError{Code: path[0], Path: path},
		})
	}
	return issues
}

// ValidateCatalog merges catalog and overrides and reports unresolvable components.
func ValidateCatalog(catalog []SalaryComponent, overrides []ComponentOverride) []ComponentIssue {
	components := MergeComponents(catalog, overrides)
	if _, ok := components.Get(CodeMonthlyCTC); !ok {
		components.Put(monthlyCTCComponent(decimal.Zero))
	}
	return BuildGraph(components).Validate()
}

func cyclePath(stack []string, start string) []string {
	for i, code := range stack {
		if code == start {
			path := make([]string, 0, len(stack)-i+1)
			path = append(path, stack[i:]...)
			return append(path, start)
		}
	}
	return []string{start, start}
}
