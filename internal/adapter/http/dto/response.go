package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goeconomy/internal/domain"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID.String(),
		Name:      a.Name,
		Kind:      a.Kind,
		CreatedAt: a.CreatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps an account listing.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// CreateAccountResponse reports the outcome of an account creation.
type CreateAccountResponse struct {
	Result  string           `json:"result"`
	Account *AccountResponse `json:"account,omitempty"`
}

// BalanceResponse represents one holdings entry in API responses.
type BalanceResponse struct {
	Region   string          `json:"region"`
	Currency string          `json:"currency"`
	Handler  string          `json:"handler"`
	Amount   decimal.Decimal `json:"amount"`
	Display  string          `json:"display,omitempty"`
}

// BalanceFromEntry converts a holdings entry to a response.
func BalanceFromEntry(entry domain.HoldingsEntry) BalanceResponse {
	return BalanceResponse{
		Region:   entry.Region,
		Currency: entry.Currency,
		Handler:  string(entry.Handler),
		Amount:   entry.Amount,
	}
}

// CurrencyResponse represents a currency in API responses.
type CurrencyResponse struct {
	UID                string                   `json:"uid"`
	Identifier         string                   `json:"identifier"`
	Display            string                   `json:"display"`
	DisplayPlural      string                   `json:"display_plural"`
	DisplayMinor       string                   `json:"display_minor,omitempty"`
	DisplayMinorPlural string                   `json:"display_minor_plural,omitempty"`
	Symbol             string                   `json:"symbol,omitempty"`
	Type               string                   `json:"type"`
	Scale              int                      `json:"scale"`
	Starting           decimal.Decimal          `json:"starting"`
	GlobalDefault      bool                     `json:"global_default"`
	Regions            map[string]RegionSetting `json:"regions,omitempty"`
}

// CurrencyFromDomain converts a domain currency to a response.
func CurrencyFromDomain(c *domain.Currency) *CurrencyResponse {
	resp := &CurrencyResponse{
		UID:                c.UID.String(),
		Identifier:         c.Identifier,
		Display:            c.Display,
		DisplayPlural:      c.DisplayPlural,
		DisplayMinor:       c.DisplayMinor,
		DisplayMinorPlural: c.DisplayMinorPlural,
		Symbol:             c.Symbol,
		Type:               c.Type,
		Scale:              c.Scale,
		Starting:           c.Starting,
		GlobalDefault:      c.GlobalDefault,
	}

	if len(c.Regions) > 0 {
		resp.Regions = make(map[string]RegionSetting, len(c.Regions))
		for region, setting := range c.Regions {
			resp.Regions[region] = RegionSetting{Enabled: setting.Enabled, Default: setting.Default}
		}
	}

	return resp
}

// CurrenciesFromDomain converts domain currencies to responses.
func CurrenciesFromDomain(currencies []*domain.Currency) []*CurrencyResponse {
	result := make([]*CurrencyResponse, len(currencies))
	for i, c := range currencies {
		result[i] = CurrencyFromDomain(c)
	}
	return result
}

// ParticipantResponse represents one party of a committed transaction.
type ParticipantResponse struct {
	Account        string            `json:"account"`
	EndingBalances []BalanceResponse `json:"ending_balances"`
}

// ReceiptResponse represents a receipt in API responses.
type ReceiptResponse struct {
	ID     string               `json:"id"`
	Time   time.Time            `json:"time"`
	Type   string               `json:"type"`
	Source string               `json:"source,omitempty"`
	From   *ParticipantResponse `json:"from,omitempty"`
	To     *ParticipantResponse `json:"to,omitempty"`
}

// ReceiptFromDomain converts a domain receipt to a response.
func ReceiptFromDomain(r *domain.Receipt) *ReceiptResponse {
	resp := &ReceiptResponse{
		ID:     r.ID.String(),
		Time:   r.Time,
		Type:   r.Transaction.Type,
		Source: r.Transaction.Source,
	}

	resp.From = participantFromDomain(r.Transaction.From)
	resp.To = participantFromDomain(r.Transaction.To)

	return resp
}

func participantFromDomain(p *domain.Participant) *ParticipantResponse {
	if p == nil {
		return nil
	}

	balances := make([]BalanceResponse, len(p.EndingBalances))
	for i, entry := range p.EndingBalances {
		balances[i] = BalanceFromEntry(entry)
	}

	return &ParticipantResponse{
		Account:        p.ID.String(),
		EndingBalances: balances,
	}
}

// ReceiptsFromDomain converts domain receipts to responses.
func ReceiptsFromDomain(receipts []*domain.Receipt) []*ReceiptResponse {
	result := make([]*ReceiptResponse, len(receipts))
	for i, r := range receipts {
		result[i] = ReceiptFromDomain(r)
	}
	return result
}

// TransactionResultResponse reports the outcome of a processed transaction.
type TransactionResultResponse struct {
	Committed bool             `json:"committed"`
	Message   string           `json:"message,omitempty"`
	Receipt   *ReceiptResponse `json:"receipt,omitempty"`
}
