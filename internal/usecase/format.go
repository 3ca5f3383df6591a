package usecase

import (
	"strings"

	"github.com/iho/goeconomy/internal/domain"
)

// FormatRule substitutes one placeholder token in a display template.
type FormatRule interface {
	Name() string
	Format(account *domain.Account, entry domain.HoldingsEntry, currency *domain.Currency, format string) string
}

// MajorNameRule replaces <major.name> with the currency's singular or
// plural display name. Singular only when the major component is exactly
// one.
type MajorNameRule struct{}

func (MajorNameRule) Name() string { return "major_name" }

func (MajorNameRule) Format(_ *domain.Account, entry domain.HoldingsEntry, currency *domain.Currency, format string) string {
	name := currency.DisplayPlural
	if entry.AsMonetary(currency.Scale).IsOne() {
		name = currency.Display
	}

	return strings.ReplaceAll(format, "<major.name>", name)
}

// MinorNameRule replaces <minor.name> with the minor unit's singular or
// plural display name.
type MinorNameRule struct{}

func (MinorNameRule) Name() string { return "minor_name" }

func (MinorNameRule) Format(_ *domain.Account, entry domain.HoldingsEntry, currency *domain.Currency, format string) string {
	monetary := entry.AsMonetary(currency.Scale)

	name := currency.DisplayMinorPlural
	if monetary.MinorAsInt().Int64() == 1 {
		name = currency.DisplayMinor
	}

	return strings.ReplaceAll(format, "<minor.name>", name)
}

// MajorAmountRule replaces <major.amount> with the whole-unit component.
type MajorAmountRule struct{}

func (MajorAmountRule) Name() string { return "major_amount" }

func (MajorAmountRule) Format(_ *domain.Account, entry domain.HoldingsEntry, currency *domain.Currency, format string) string {
	return strings.ReplaceAll(format, "<major.amount>", entry.AsMonetary(currency.Scale).Major().String())
}

// MinorAmountRule replaces <minor.amount> with the fixed-width fractional
// component.
type MinorAmountRule struct{}

func (MinorAmountRule) Name() string { return "minor_amount" }

func (MinorAmountRule) Format(_ *domain.Account, entry domain.HoldingsEntry, currency *domain.Currency, format string) string {
	return strings.ReplaceAll(format, "<minor.amount>", entry.AsMonetary(currency.Scale).Minor())
}

// SymbolRule replaces <symbol> with the currency symbol.
type SymbolRule struct{}

func (SymbolRule) Name() string { return "symbol" }

func (SymbolRule) Format(_ *domain.Account, entry domain.HoldingsEntry, currency *domain.Currency, format string) string {
	return strings.ReplaceAll(format, "<symbol>", currency.Symbol)
}

// Formatter applies every registered rule to a display template.
type Formatter struct {
	currencies *CurrencyUseCase
	rules      []FormatRule
}

// NewFormatter creates a formatter with the built-in rules.
func NewFormatter(currencies *CurrencyUseCase) *Formatter {
	return &Formatter{
		currencies: currencies,
		rules: []FormatRule{
			MajorNameRule{},
			MinorNameRule{},
			MajorAmountRule{},
			MinorAmountRule{},
			SymbolRule{},
		},
	}
}

// AddRule registers an extra rule; rules run in registration order.
func (f *Formatter) AddRule(rule FormatRule) {
	f.rules = append(f.rules, rule)
}

// Format resolves the entry's currency and substitutes every placeholder in
// the template. An unknown currency returns the template untouched.
func (f *Formatter) Format(account *domain.Account, entry domain.HoldingsEntry, format string) string {
	currency, ok := f.currencies.Find(entry.Currency)
	if !ok {
		return format
	}

	for _, rule := range f.rules {
		format = rule.Format(account, entry, currency, format)
	}

	return format
}
