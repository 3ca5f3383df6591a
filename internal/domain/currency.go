package domain

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency type names. Each maps to a CurrencyType strategy that decides how
// balances for the currency are read and written.
const (
	CurrencyTypeVirtual    = "virtual"
	CurrencyTypeItem       = "item"
	CurrencyTypeExperience = "experience"
	CurrencyTypeMixed      = "mixed"
)

// MaxHoldings is the largest balance magnitude any holdings entry may carry.
var MaxHoldings = decimal.RequireFromString("900000000000000000000000000000000000000000000")

// RegionSetting holds the per-region flags for a currency.
type RegionSetting struct {
	Enabled bool
	Default bool
}

// Denomination ties a physical item material to its currency weight. Only
// meaningful for item-backed currencies.
type Denomination struct {
	Material string
	Weight   decimal.Decimal
}

// Currency describes a single currency known to the registry.
type Currency struct {
	UID                uuid.UUID
	Identifier         string
	Display            string
	DisplayPlural      string
	DisplayMinor       string
	DisplayMinorPlural string
	Symbol             string
	Type               string
	Scale              int
	Starting           decimal.Decimal
	GlobalDefault      bool
	Regions            map[string]RegionSetting
	Denominations      []Denomination

	// Transient marks a currency constructed by FindOrDefault for immediate
	// use. Transient currencies are never registered or persisted.
	Transient bool
}

// NewCurrency creates a registered-shape currency with a fresh UID.
func NewCurrency(identifier, display, displayPlural string, scale int) *Currency {
	return &Currency{
		UID:           uuid.New(),
		Identifier:    identifier,
		Display:       display,
		DisplayPlural: displayPlural,
		Type:          CurrencyTypeVirtual,
		Scale:         scale,
		Starting:      decimal.Zero,
		Regions:       make(map[string]RegionSetting),
	}
}

// RegionEnabled reports whether the currency is usable in region.
func (c *Currency) RegionEnabled(region string) bool {
	setting, ok := c.Regions[region]

	return ok && setting.Enabled
}

// IsRegionDefault reports whether the currency is flagged default for region.
func (c *Currency) IsRegionDefault(region string) bool {
	setting, ok := c.Regions[region]

	return ok && setting.Default
}

// DenominationByMaterial returns the denomination matching material, if any.
func (c *Currency) DenominationByMaterial(material string) (Denomination, bool) {
	for _, denom := range c.Denominations {
		if strings.EqualFold(denom.Material, material) {
			return denom, true
		}
	}

	return Denomination{}, false
}

// IsItemBacked reports whether balances for this currency resolve from
// physical items rather than a stored number.
func (c *Currency) IsItemBacked() bool {
	return c.Type == CurrencyTypeItem || c.Type == CurrencyTypeMixed
}

// AsMonetary decomposes amount at this currency's scale.
func (c *Currency) AsMonetary(amount decimal.Decimal) Monetary {
	return NewMonetary(amount, c.Scale)
}
