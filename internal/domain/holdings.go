package domain

import (
	"sync"

	"github.com/shopspring/decimal"
)

// HoldingsHandler tags how a holdings entry is stored: a plain ledger
// number, a physical container, or the account's inventory only.
type HoldingsHandler string

const (
	HandlerNormal    HoldingsHandler = "normal"
	HandlerContainer HoldingsHandler = "container"
	HandlerInventory HoldingsHandler = "inventory"
)

// HoldingsKey identifies one holdings entry inside a wallet.
type HoldingsKey struct {
	Region   string
	Currency string
	Handler  HoldingsHandler
}

// HoldingsEntry is a stored balance for one (region, currency, handler)
// combination.
type HoldingsEntry struct {
	Region   string
	Currency string
	Handler  HoldingsHandler
	Amount   decimal.Decimal
}

// NewHoldingsEntry creates an entry with the plain-balance handler.
func NewHoldingsEntry(region, currency string, amount decimal.Decimal) HoldingsEntry {
	return HoldingsEntry{
		Region:   region,
		Currency: currency,
		Handler:  HandlerNormal,
		Amount:   amount,
	}
}

// Key returns the wallet key for this entry.
func (e HoldingsEntry) Key() HoldingsKey {
	return HoldingsKey{Region: e.Region, Currency: e.Currency, Handler: e.Handler}
}

// Modify returns a copy of the entry with modifier applied to the amount.
func (e HoldingsEntry) Modify(modifier func(decimal.Decimal) decimal.Decimal) HoldingsEntry {
	e.Amount = clampHoldings(modifier(e.Amount))

	return e
}

// AsMonetary decomposes the entry amount at the given scale.
func (e HoldingsEntry) AsMonetary(scale int) Monetary {
	return NewMonetary(e.Amount, scale)
}

// clampHoldings caps an amount at the global maximum magnitude. Stored
// amounts keep their full precision; truncation to the currency scale is a
// display concern handled by Monetary.
func clampHoldings(amount decimal.Decimal) decimal.Decimal {
	if amount.Abs().LessThanOrEqual(MaxHoldings) {
		return amount
	}

	if amount.IsNegative() {
		return MaxHoldings.Neg()
	}

	return MaxHoldings
}

// Wallet holds every balance an account owns. Individual reads and writes
// are safe for concurrent use; read-modify-write sequences need the owning
// account's update lock, which the holdings ledger provides.
type Wallet struct {
	mu      sync.RWMutex
	entries map[HoldingsKey]HoldingsEntry
}

// NewWallet creates an empty wallet.
func NewWallet() *Wallet {
	return &Wallet{entries: make(map[HoldingsKey]HoldingsEntry)}
}

// Get returns the entry for key, if present.
func (w *Wallet) Get(key HoldingsKey) (HoldingsEntry, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	entry, ok := w.entries[key]

	return entry, ok
}

// Set upserts an entry, clamping the amount to the global maximum.
func (w *Wallet) Set(entry HoldingsEntry) {
	entry.Amount = clampHoldings(entry.Amount)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.entries[entry.Key()] = entry
}

// Delete removes the entry for key.
func (w *Wallet) Delete(key HoldingsKey) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.entries, key)
}

// Entries returns a snapshot of every entry in the wallet.
func (w *Wallet) Entries() []HoldingsEntry {
	w.mu.RLock()
	defer w.mu.RUnlock()

	entries := make([]HoldingsEntry, 0, len(w.entries))
	for _, entry := range w.entries {
		entries = append(entries, entry)
	}

	return entries
}
