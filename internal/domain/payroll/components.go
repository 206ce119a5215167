package payroll

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// EffectiveComponent is a catalog entry after per-employee overrides were applied.
type EffectiveComponent struct {
	Code      string
	Name      string
	Type      string
	IsTaxable bool
	Method    string
	Value     string
	BaseCode  string
	Ordering  int
}

// ComponentMap is the per-employee, per-run effective component set. It keeps
// insertion order so ties in Ordering display in catalog order.
type ComponentMap struct {
	byCode map[string]EffectiveComponent
	order  []string
}

func NewComponentMap() *ComponentMap {
	return &ComponentMap{byCode: map[string]EffectiveComponent{}}
}

// Put adds or replaces a component. A replaced component keeps its original position.
func (m *ComponentMap) Put(component EffectiveComponent) {
	if _, exists := m.byCode[component.Code]; !exists {
		m.order = append(m.order, component.Code)
	}
	m.byCode[component.Code] = component
}

func (m *ComponentMap) Get(code string) (EffectiveComponent, bool) {
	component, ok := m.byCode[code]
	return component, ok
}

func (m *ComponentMap) Len() int { return len(m.order) }

// Codes returns component codes in insertion order.
func (m *ComponentMap) Codes() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Ordered returns components sorted by Ordering, ties kept in insertion order.
func (m *ComponentMap) Ordered() []EffectiveComponent {
	out := make([]EffectiveComponent, 0, len(m.order))
	for _, code := range m.order {
		out = append(out, m.byCode[code])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Ordering < out[j].Ordering })
	return out
}

// resolutionOrder is the deterministic order in which top-level resolution visits codes.
func (m *ComponentMap) resolutionOrder() []string {
	codes := m.Codes()
	sort.SliceStable(codes, func(i, j int) bool {
		a, b := m.byCode[codes[i]], m.byCode[codes[j]]
		if a.Ordering != b.Ordering {
			return a.Ordering < b.Ordering
		}
		return a.Code < b.Code
	})
	return codes
}

// MergeComponents builds the effective component map. An override wins over
// the catalog for value and method when it carries a non-blank value.
func MergeComponents(catalog []SalaryComponent, overrides []ComponentOverride) *ComponentMap {
	overrideByComponent := make(map[string]ComponentOverride, len(overrides))
	for _, override := range overrides {
		overrideByComponent[override.ComponentID] = override
	}

	m := NewComponentMap()
	for _, component := range catalog {
		value := component.CalcValue
		method := component.CalcMethod
		if override, ok := overrideByComponent[component.ID]; ok {
			if strings.TrimSpace(override.ValueOverride) != "" {
				value = override.ValueOverride
			}
			if strings.TrimSpace(override.MethodOverride) != "" {
				method = override.MethodOverride
			}
		}
		m.Put(EffectiveComponent{
			Code:      component.Code,
			Name:      component.Name,
			Type:      strings.ToUpper(strings.TrimSpace(component.Type)),
			IsTaxable: component.IsTaxable,
			Method:    strings.ToUpper(strings.TrimSpace(method)),
			Value:     strings.TrimSpace(value),
			BaseCode:  strings.TrimSpace(component.BaseComponentCode),
			Ordering:  component.Ordering,
		})
	}
	return m
}

func monthlyCTCComponent(monthlyCTC decimal.Decimal) EffectiveComponent {
	return EffectiveComponent{
		Code:      CodeMonthlyCTC,
		Name:      "Monthly CTC",
		Type:      ComponentEarning,
		IsTaxable: true,
		Method:    MethodFixed,
		Value:     monthlyCTC.StringFixed(2),
		Ordering:  monthlyCTCOrdering,
	}
}
