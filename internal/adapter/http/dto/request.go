package dto

import (
	"github.com/shopspring/decimal"
)

// CreateAccountRequest represents a request to create an account. Identifier
// is the external id for player accounts; shared accounts send their name as
// the identifier.
type CreateAccountRequest struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
}

// SetBalanceRequest represents a request to overwrite one holdings entry.
type SetBalanceRequest struct {
	Region   string          `json:"region"`
	Currency string          `json:"currency"`
	Handler  string          `json:"handler,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

// CreateTransactionRequest represents a request to process a transfer
// between two accounts.
type CreateTransactionRequest struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	Region   string          `json:"region"`
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
	Type     string          `json:"type"`
	Source   string          `json:"source,omitempty"`
}

// CreateCurrencyRequest represents a request to register a currency.
type CreateCurrencyRequest struct {
	Identifier         string                   `json:"identifier"`
	Display            string                   `json:"display"`
	DisplayPlural      string                   `json:"display_plural"`
	DisplayMinor       string                   `json:"display_minor,omitempty"`
	DisplayMinorPlural string                   `json:"display_minor_plural,omitempty"`
	Symbol             string                   `json:"symbol,omitempty"`
	Type               string                   `json:"type,omitempty"`
	Scale              int                      `json:"scale"`
	Starting           decimal.Decimal          `json:"starting"`
	GlobalDefault      bool                     `json:"global_default"`
	Regions            map[string]RegionSetting `json:"regions,omitempty"`
}

// RegionSetting mirrors a currency's per-region flags on the wire.
type RegionSetting struct {
	Enabled bool `json:"enabled"`
	Default bool `json:"default"`
}
