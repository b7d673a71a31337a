package salarystructure

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ResolvedComponent is a salary component with its monetary value fixed for
// one employee and pay period.
type ResolvedComponent struct {
	Name        string            `json:"name"`
	Type        ComponentType     `json:"type"`
	Category    ComponentCategory `json:"category"`
	Amount      decimal.Decimal   `json:"amount"`
	IsTaxable   bool              `json:"is_taxable"`
	IsStatutory bool              `json:"is_statutory"`
}

// ResolveComponents evaluates structure components in priority order,
// applying per-employee overrides. A percentage component whose base has not
// been resolved yet, or does not exist, fails resolution: that is a
// configuration error, never a silent default.
func ResolveComponents(components []SalaryComponent, overrides map[string]decimal.Decimal) ([]ResolvedComponent, error) {
	ordered := make([]SalaryComponent, len(components))
	copy(ordered, components)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	resolved := make([]ResolvedComponent, 0, len(ordered))
	byName := make(map[string]decimal.Decimal, len(ordered))

	for _, c := range ordered {
		if _, exists := byName[c.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateComponentName, c.Name)
		}

		value := c.Amount
		if override, ok := overrides[c.Name]; ok {
			value = override
		}

		amount := value
		if c.IsPercentage {
			base, ok := byName[c.PercentageOf]
			if !ok {
				return nil, fmt.Errorf("%w: component %q references %q", ErrUnresolvedPercentageBase, c.Name, c.PercentageOf)
			}
			amount = base.Mul(value).Div(decimal.NewFromInt(100))
		}
		amount = amount.Round(2)

		byName[c.Name] = amount
		resolved = append(resolved, ResolvedComponent{
			Name:        c.Name,
			Type:        c.Type,
			Category:    c.Category,
			Amount:      amount,
			IsTaxable:   c.IsTaxable,
			IsStatutory: c.IsStatutory,
		})
	}

	return resolved, nil
}
