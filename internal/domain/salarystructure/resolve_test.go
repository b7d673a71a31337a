package salarystructure

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func structureComponents() []SalaryComponent {
	return []SalaryComponent{
		{
			Name:      "Basic",
			Type:      ComponentTypeEarning,
			Category:  CategoryBasic,
			Amount:    d("50000"),
			IsTaxable: true,
			Priority:  1,
		},
		{
			Name:         "House Rent Allowance",
			Type:         ComponentTypeEarning,
			Category:     CategoryHousingAllowance,
			Amount:       d("40"),
			IsPercentage: true,
			PercentageOf: "Basic",
			IsTaxable:    true,
			Priority:     2,
		},
		{
			Name:      "Special Allowance",
			Type:      ComponentTypeEarning,
			Category:  CategorySpecialAllowance,
			Amount:    d("10000"),
			IsTaxable: true,
			Priority:  3,
		},
	}
}

func TestResolveComponents(t *testing.T) {
	resolved, err := ResolveComponents(structureComponents(), nil)
	require.NoError(t, err)
	require.Len(t, resolved, 3)

	assert.Equal(t, "Basic", resolved[0].Name)
	assert.True(t, resolved[0].Amount.Equal(d("50000")))

	// 40% of Basic
	assert.Equal(t, "House Rent Allowance", resolved[1].Name)
	assert.True(t, resolved[1].Amount.Equal(d("20000")))

	assert.Equal(t, "Special Allowance", resolved[2].Name)
	assert.True(t, resolved[2].Amount.Equal(d("10000")))
}

func TestResolveComponents_PriorityOrder(t *testing.T) {
	// Declaration order is irrelevant: priority decides evaluation order, so
	// a percentage component listed before its base still resolves.
	components := structureComponents()
	components[0], components[1] = components[1], components[0]

	resolved, err := ResolveComponents(components, nil)
	require.NoError(t, err)

	assert.Equal(t, "Basic", resolved[0].Name)
	assert.Equal(t, "House Rent Allowance", resolved[1].Name)
	assert.True(t, resolved[1].Amount.Equal(d("20000")))
}

func TestResolveComponents_FixedOverride(t *testing.T) {
	overrides := map[string]decimal.Decimal{
		"Special Allowance": d("12500"),
	}

	resolved, err := ResolveComponents(structureComponents(), overrides)
	require.NoError(t, err)
	assert.True(t, resolved[2].Amount.Equal(d("12500")))
}

func TestResolveComponents_PercentageOverrideChangesRate(t *testing.T) {
	// Overriding a percentage component replaces the percentage points, not
	// the computed amount.
	overrides := map[string]decimal.Decimal{
		"House Rent Allowance": d("50"),
	}

	resolved, err := ResolveComponents(structureComponents(), overrides)
	require.NoError(t, err)
	assert.True(t, resolved[1].Amount.Equal(d("25000")))
}

func TestResolveComponents_BaseOverrideCascades(t *testing.T) {
	// Raising Basic raises everything derived from it.
	overrides := map[string]decimal.Decimal{
		"Basic": d("60000"),
	}

	resolved, err := ResolveComponents(structureComponents(), overrides)
	require.NoError(t, err)
	assert.True(t, resolved[0].Amount.Equal(d("60000")))
	assert.True(t, resolved[1].Amount.Equal(d("24000")))
}

func TestResolveComponents_UnknownBase(t *testing.T) {
	components := []SalaryComponent{
		{
			Name:         "House Rent Allowance",
			Type:         ComponentTypeEarning,
			Category:     CategoryHousingAllowance,
			Amount:       d("40"),
			IsPercentage: true,
			PercentageOf: "Base Pay",
			Priority:     1,
		},
	}

	_, err := ResolveComponents(components, nil)
	assert.ErrorIs(t, err, ErrUnresolvedPercentageBase)
}

func TestResolveComponents_BaseResolvedAfterReference(t *testing.T) {
	// The base exists but runs at a later priority, so the reference cannot
	// be satisfied at evaluation time.
	components := []SalaryComponent{
		{
			Name:         "House Rent Allowance",
			Type:         ComponentTypeEarning,
			Category:     CategoryHousingAllowance,
			Amount:       d("40"),
			IsPercentage: true,
			PercentageOf: "Basic",
			Priority:     1,
		},
		{
			Name:     "Basic",
			Type:     ComponentTypeEarning,
			Category: CategoryBasic,
			Amount:   d("50000"),
			Priority: 2,
		},
	}

	_, err := ResolveComponents(components, nil)
	assert.ErrorIs(t, err, ErrUnresolvedPercentageBase)
}

func TestResolveComponents_DuplicateName(t *testing.T) {
	components := structureComponents()
	components = append(components, SalaryComponent{
		Name:     "Basic",
		Type:     ComponentTypeEarning,
		Category: CategoryOther,
		Amount:   d("1000"),
		Priority: 4,
	})

	_, err := ResolveComponents(components, nil)
	assert.ErrorIs(t, err, ErrDuplicateComponentName)
}

func TestResolveComponents_RoundsToTwoPlaces(t *testing.T) {
	components := []SalaryComponent{
		{
			Name:     "Basic",
			Type:     ComponentTypeEarning,
			Category: CategoryBasic,
			Amount:   d("33333"),
			Priority: 1,
		},
		{
			Name:         "House Rent Allowance",
			Type:         ComponentTypeEarning,
			Category:     CategoryHousingAllowance,
			Amount:       d("33.33"),
			IsPercentage: true,
			PercentageOf: "Basic",
			Priority:     2,
		},
	}

	resolved, err := ResolveComponents(components, nil)
	require.NoError(t, err)
	// 33333 * 33.33% = 11109.8889, rounded half-up
	assert.True(t, resolved[1].Amount.Equal(d("11109.89")),
		"got %s", resolved[1].Amount)
}
