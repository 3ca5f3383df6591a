package usecase

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/goeconomy/internal/domain"
)

// HoldingsUseCase is the holdings ledger. Reads and writes dispatch through
// the currency's type strategy; read-modify-write sequences take the owning
// account's update lock to avoid lost updates.
type HoldingsUseCase struct {
	currencies *CurrencyUseCase
	repo       AccountRepository
	logger     zerolog.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewHoldingsUseCase creates a holdings ledger. repo may be nil when
// persistence is not wired.
func NewHoldingsUseCase(currencies *CurrencyUseCase, repo AccountRepository, logger zerolog.Logger) *HoldingsUseCase {
	return &HoldingsUseCase{
		currencies: currencies,
		repo:       repo,
		logger:     logger,
		locks:      make(map[uuid.UUID]*sync.Mutex),
	}
}

// Get resolves the effective balance for (account, region, currency,
// handler). Absent entries resolve to the currency's starting holdings,
// never an error.
func (uc *HoldingsUseCase) Get(account *domain.Account, region, currency string, handler domain.HoldingsHandler) (decimal.Decimal, error) {
	cur, ok := uc.currencies.Find(currency)
	if !ok {
		return decimal.Zero, domain.ErrCurrencyNotFound
	}

	t, ok := uc.currencies.FindType(cur.Type)
	if !ok {
		t = VirtualType{}
	}

	return t.GetHoldings(account, region, cur, handler), nil
}

// Set upserts the holdings entry for the entry's (region, currency,
// handler). Returns false for normal business failures such as insufficient
// container space; only contract violations return an error.
func (uc *HoldingsUseCase) Set(account *domain.Account, entry domain.HoldingsEntry) (bool, error) {
	unlock := uc.Lock(account.ID)
	defer unlock()

	return uc.setHeld(account, entry)
}

// Modify applies a pure function to the stored amount and writes back,
// serialized under the account's update lock.
func (uc *HoldingsUseCase) Modify(account *domain.Account, region, currency string, handler domain.HoldingsHandler, modifier func(decimal.Decimal) decimal.Decimal) (decimal.Decimal, error) {
	unlock := uc.Lock(account.ID)
	defer unlock()

	current, err := uc.Get(account, region, currency, handler)
	if err != nil {
		return decimal.Zero, err
	}

	amount := modifier(current)

	ok, err := uc.setHeld(account, domain.HoldingsEntry{
		Region:   region,
		Currency: currency,
		Handler:  handler,
		Amount:   amount,
	})
	if err != nil {
		return decimal.Zero, err
	}

	if !ok {
		return current, nil
	}

	return amount, nil
}

// Lock acquires the update locks for the given accounts in sorted id order
// and returns a release function. Sorted acquisition keeps concurrent
// multi-account callers deadlock free.
func (uc *HoldingsUseCase) Lock(ids ...uuid.UUID) func() {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	locks := make([]*sync.Mutex, 0, len(sorted))
	seen := make(map[uuid.UUID]bool, len(sorted))

	for _, id := range sorted {
		if seen[id] {
			continue
		}
		seen[id] = true

		lock := uc.accountLock(id)
		lock.Lock()
		locks = append(locks, lock)
	}

	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

// setHeld writes an entry assuming the caller holds the account's update
// lock.
func (uc *HoldingsUseCase) setHeld(account *domain.Account, entry domain.HoldingsEntry) (bool, error) {
	cur, ok := uc.currencies.Find(entry.Currency)
	if !ok {
		return false, domain.ErrCurrencyNotFound
	}

	t, ok := uc.currencies.FindType(cur.Type)
	if !ok {
		t = VirtualType{}
	}

	if !t.SetHoldings(account, entry.Region, cur, entry.Handler, entry.Amount) {
		return false, nil
	}

	uc.persist(account.ID, entry)

	return true, nil
}

// persist pushes the entry to storage before the account's update lock is
// released, so the upsert for a later write can never land before an earlier
// one. Failures are logged, not surfaced.
func (uc *HoldingsUseCase) persist(accountID uuid.UUID, entry domain.HoldingsEntry) {
	if uc.repo == nil {
		return
	}

	if err := uc.repo.SaveHoldings(context.Background(), accountID, entry); err != nil {
		uc.logger.Error().Err(err).
			Str("account", accountID.String()).
			Str("currency", entry.Currency).
			Msg("failed to persist holdings")
	}
}

func (uc *HoldingsUseCase) accountLock(id uuid.UUID) *sync.Mutex {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	lock, ok := uc.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		uc.locks[id] = lock
	}

	return lock
}
