package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/iho/goeconomy/internal/domain"
)

// VirtualType stores balances as plain numbers in the account wallet. An
// absent entry resolves to the currency's starting holdings, not zero.
type VirtualType struct{}

func (VirtualType) Name() string {
	return domain.CurrencyTypeVirtual
}

func (VirtualType) GetHoldings(account *domain.Account, region string, currency *domain.Currency, handler domain.HoldingsHandler) decimal.Decimal {
	key := domain.HoldingsKey{Region: region, Currency: currency.Identifier, Handler: handler}
	if entry, ok := account.Wallet.Get(key); ok {
		return entry.Amount
	}

	return currency.Starting
}

func (VirtualType) SetHoldings(account *domain.Account, region string, currency *domain.Currency, handler domain.HoldingsHandler, amount decimal.Decimal) bool {
	account.Wallet.Set(domain.HoldingsEntry{
		Region:   region,
		Currency: currency.Identifier,
		Handler:  handler,
		Amount:   amount,
	})

	return true
}

// ItemType resolves balances from physical containers instead of a stored
// number. Writes may fail on insufficient container space, which is a normal
// business outcome, not an error.
type ItemType struct {
	Items ItemProvider
}

func (ItemType) Name() string {
	return domain.CurrencyTypeItem
}

func (t ItemType) GetHoldings(account *domain.Account, region string, currency *domain.Currency, handler domain.HoldingsHandler) decimal.Decimal {
	if t.Items != nil {
		if amount, ok := t.Items.Count(account, region, currency, handler); ok {
			return amount
		}
	}

	return currency.Starting
}

func (t ItemType) SetHoldings(account *domain.Account, region string, currency *domain.Currency, handler domain.HoldingsHandler, amount decimal.Decimal) bool {
	if t.Items == nil {
		return false
	}

	return t.Items.SetCount(account, region, currency, handler, amount)
}

// ExperienceType backs balances with the account's experience pool.
type ExperienceType struct {
	Experience ExperienceProvider
}

func (ExperienceType) Name() string {
	return domain.CurrencyTypeExperience
}

func (t ExperienceType) GetHoldings(account *domain.Account, region string, currency *domain.Currency, handler domain.HoldingsHandler) decimal.Decimal {
	if t.Experience == nil {
		return currency.Starting
	}

	return t.Experience.Balance(account)
}

func (t ExperienceType) SetHoldings(account *domain.Account, region string, currency *domain.Currency, handler domain.HoldingsHandler, amount decimal.Decimal) bool {
	if t.Experience == nil {
		return false
	}

	return t.Experience.SetBalance(account, amount)
}

// MixedType keeps the inventory-backed portion in items and the remainder as
// a virtual balance. Reads sum both stores; writes land in the wallet and
// fall back entirely to it when no item provider is wired.
type MixedType struct {
	Items ItemProvider
}

func (MixedType) Name() string {
	return domain.CurrencyTypeMixed
}

func (t MixedType) GetHoldings(account *domain.Account, region string, currency *domain.Currency, handler domain.HoldingsHandler) decimal.Decimal {
	virtual := VirtualType{}.GetHoldings(account, region, currency, handler)

	if t.Items != nil {
		if amount, ok := t.Items.Count(account, region, currency, domain.HandlerInventory); ok {
			return virtual.Add(amount)
		}
	}

	return virtual
}

func (t MixedType) SetHoldings(account *domain.Account, region string, currency *domain.Currency, handler domain.HoldingsHandler, amount decimal.Decimal) bool {
	if handler == domain.HandlerInventory && t.Items != nil {
		return t.Items.SetCount(account, region, currency, handler, amount)
	}

	return VirtualType{}.SetHoldings(account, region, currency, handler, amount)
}
