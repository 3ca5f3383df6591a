package usecase

import (
	"github.com/iho/goeconomy/internal/domain"
)

// Built-in check identifiers.
const (
	CheckFunds   = "funds"
	CheckMaximum = "maximum"
	CheckRegion  = "region"
)

// FundsCheck rejects a transaction whose sender would end below zero.
type FundsCheck struct{}

func (FundsCheck) Identifier() string {
	return CheckFunds
}

func (FundsCheck) Process(transaction *domain.Transaction) domain.CheckResponse {
	if transaction.From == nil {
		return domain.CheckResponse{Success: true}
	}

	for _, entry := range transaction.From.EndingBalances {
		if entry.Amount.IsNegative() {
			return domain.CheckResponse{Message: "insufficient funds"}
		}
	}

	return domain.CheckResponse{Success: true}
}

// MaximumCheck rejects ending balances beyond the global maximum magnitude.
type MaximumCheck struct{}

func (MaximumCheck) Identifier() string {
	return CheckMaximum
}

func (MaximumCheck) Process(transaction *domain.Transaction) domain.CheckResponse {
	for _, participant := range []*domain.Participant{transaction.From, transaction.To} {
		if participant == nil {
			continue
		}

		for _, entry := range participant.EndingBalances {
			if entry.Amount.Abs().GreaterThan(domain.MaxHoldings) {
				return domain.CheckResponse{Message: "balance would exceed the maximum"}
			}
		}
	}

	return domain.CheckResponse{Success: true}
}

// RegionCheck rejects entries whose currency is unknown or not enabled in
// the entry's region.
type RegionCheck struct {
	Currencies *CurrencyUseCase
}

func (RegionCheck) Identifier() string {
	return CheckRegion
}

func (c RegionCheck) Process(transaction *domain.Transaction) domain.CheckResponse {
	for _, participant := range []*domain.Participant{transaction.From, transaction.To} {
		if participant == nil {
			continue
		}

		for _, entry := range participant.EndingBalances {
			currency, ok := c.Currencies.Find(entry.Currency)
			if !ok {
				return domain.CheckResponse{Message: "unknown currency " + entry.Currency}
			}

			if !currency.RegionEnabled(entry.Region) {
				return domain.CheckResponse{Message: "currency " + entry.Currency + " is not enabled in " + entry.Region}
			}
		}
	}

	return domain.CheckResponse{Success: true}
}
