package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/goeconomy/internal/domain"
	"github.com/iho/goeconomy/internal/infrastructure/metrics"
)

// CheckGroup bundles related checks so processors can adopt them together.
type CheckGroup struct {
	Name   string
	Checks []domain.Check
}

// TransactionUseCase is the transaction pipeline. It validates a proposed
// transfer through an ordered chain of named checks, applies the ending
// balances atomically, and emits a receipt plus cross-node sync messages.
type TransactionUseCase struct {
	accounts *AccountUseCase
	holdings *HoldingsUseCase

	receipts  ReceiptRepository
	publisher BalancePublisher

	mu     sync.RWMutex
	checks map[string]domain.Check
	order  []string
	types  map[string]*domain.TransactionType

	node    string
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewTransactionUseCase creates a pipeline. receipts and publisher may be
// nil when persistence or cross-node fanout is not wired.
func NewTransactionUseCase(accounts *AccountUseCase, holdings *HoldingsUseCase, receipts ReceiptRepository, publisher BalancePublisher, node string, logger zerolog.Logger) *TransactionUseCase {
	return &TransactionUseCase{
		accounts:  accounts,
		holdings:  holdings,
		receipts:  receipts,
		publisher: publisher,
		checks:    make(map[string]domain.Check),
		types:     make(map[string]*domain.TransactionType),
		node:      node,
		logger:    logger,
	}
}

// WithMetrics attaches pipeline counters. Safe to skip when metrics are not
// collected.
func (uc *TransactionUseCase) WithMetrics(m *metrics.Metrics) *TransactionUseCase {
	uc.metrics = m

	return uc
}

// RegisterCheck makes a check resolvable by name without adding it to the
// processing order.
func (uc *TransactionUseCase) RegisterCheck(check domain.Check) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.checks[check.Identifier()] = check
}

// AddCheck registers a check and appends it to the processing order.
func (uc *TransactionUseCase) AddCheck(check domain.Check) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.checks[check.Identifier()] = check
	uc.order = append(uc.order, check.Identifier())
}

// AddGroup registers every check in the group, in group order.
func (uc *TransactionUseCase) AddGroup(group CheckGroup) {
	for _, check := range group.Checks {
		uc.AddCheck(check)
	}
}

// FindCheck returns the registered check for name.
func (uc *TransactionUseCase) FindCheck(name string) (domain.Check, bool) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	check, ok := uc.checks[name]

	return check, ok
}

// Checks returns the processing order.
func (uc *TransactionUseCase) Checks() []string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	order := make([]string, len(uc.order))
	copy(order, uc.order)

	return order
}

// RegisterType registers a named transaction type policy. Types register
// once at startup and are looked up by name during processing.
func (uc *TransactionUseCase) RegisterType(t *domain.TransactionType) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.types[t.Identifier] = t
}

// FindType returns the transaction type for name.
func (uc *TransactionUseCase) FindType(name string) (*domain.TransactionType, bool) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	t, ok := uc.types[name]

	return t, ok
}

// Process consumes a transaction: checks run in order and short-circuit on
// the first failure; on success every ending balance is overwritten onto the
// party's ledger before returning, so application is all-or-nothing with
// respect to both parties.
func (uc *TransactionUseCase) Process(ctx context.Context, transaction *domain.Transaction) (*domain.Result, error) {
	start := time.Now()

	if err := transaction.Validate(); err != nil {
		return nil, err
	}

	if response, check, failed := uc.processChecks(transaction); failed {
		if uc.metrics != nil {
			uc.metrics.TransactionsRejected.WithLabelValues(check).Inc()
		}

		return &domain.Result{Committed: false, Message: response.Message}, nil
	}

	uc.apply(ctx, transaction)

	if uc.metrics != nil {
		uc.metrics.TransactionsProcessed.Inc()
		uc.metrics.TransactionDuration.Observe(time.Since(start).Seconds())
	}

	receipt := domain.NewReceipt(transaction)

	if uc.receipts != nil {
		if err := uc.receipts.Save(ctx, receipt); err != nil {
			uc.logger.Error().Err(err).Str("receipt", receipt.ID.String()).Msg("failed to persist receipt")
		}
	}

	return &domain.Result{Committed: true, Receipt: receipt}, nil
}

// processChecks runs the ordered check chain. Checks after the first failure
// never run.
func (uc *TransactionUseCase) processChecks(transaction *domain.Transaction) (domain.CheckResponse, string, bool) {
	for _, name := range uc.Checks() {
		check, ok := uc.FindCheck(name)
		if !ok {
			continue
		}

		response := check.Process(transaction)

		uc.logger.Debug().
			Str("check", check.Identifier()).
			Bool("success", response.Success).
			Msg("transaction check")

		if !response.Success {
			return response, check.Identifier(), true
		}
	}

	return domain.CheckResponse{Success: true}, "", false
}

// apply overwrites both parties' ending balances while holding both account
// locks, acquired in sorted order. The cross-node fanout also happens under
// the locks: a later transaction on the same account cannot publish its
// balances before this one does, so remote last-write-wins overwrites land
// in ledger-write order.
func (uc *TransactionUseCase) apply(ctx context.Context, transaction *domain.Transaction) {
	var ids []uuid.UUID

	from, fromOK := uc.resolve(transaction.From)
	if fromOK {
		ids = append(ids, from.ID)
	}

	to, toOK := uc.resolve(transaction.To)
	if toOK {
		ids = append(ids, to.ID)
	}

	if len(ids) == 0 {
		return
	}

	unlock := uc.holdings.Lock(ids...)
	defer unlock()

	if fromOK {
		uc.overwrite(from, transaction.From.EndingBalances)
	}

	if toOK {
		uc.overwrite(to, transaction.To.EndingBalances)
	}

	uc.broadcast(ctx, transaction)
}

func (uc *TransactionUseCase) resolve(participant *domain.Participant) (*domain.Account, bool) {
	if participant == nil {
		return nil, false
	}

	return uc.accounts.FindAccountByID(participant.ID)
}

func (uc *TransactionUseCase) overwrite(account *domain.Account, entries []domain.HoldingsEntry) {
	for _, entry := range entries {
		if _, err := uc.holdings.setHeld(account, entry); err != nil {
			uc.logger.Error().Err(err).
				Str("account", account.ID.String()).
				Str("currency", entry.Currency).
				Msg("failed to apply ending balance")
		}
	}
}

// broadcast fans the committed balance overwrites out to other nodes.
// Delivery failures are absorbed by the backlog, never surfaced here.
func (uc *TransactionUseCase) broadcast(ctx context.Context, transaction *domain.Transaction) {
	if uc.publisher == nil {
		return
	}

	now := time.Now().UnixMilli()

	for _, participant := range []*domain.Participant{transaction.From, transaction.To} {
		if participant == nil {
			continue
		}

		for _, entry := range participant.EndingBalances {
			uc.publisher.Broadcast(ctx, domain.BalanceSyncMessage{
				Origin:   uc.node,
				Account:  participant.ID,
				Region:   entry.Region,
				Currency: entry.Currency,
				Handler:  string(entry.Handler),
				Amount:   entry.Amount.String(),
				Time:     now,
			})
		}
	}
}

// GetReceipt retrieves a persisted receipt by id.
func (uc *TransactionUseCase) GetReceipt(ctx context.Context, id uuid.UUID) (*domain.Receipt, error) {
	if uc.receipts == nil {
		return nil, domain.ErrReceiptNotFound
	}

	return uc.receipts.GetByID(ctx, id)
}

// ListReceiptsByAccount lists persisted receipts referencing an account.
func (uc *TransactionUseCase) ListReceiptsByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.Receipt, error) {
	if uc.receipts == nil {
		return nil, nil
	}

	return uc.receipts.ListByAccount(ctx, accountID, clampLimit(limit), offset)
}

// BuildTransfer pre-bakes a transfer of amount between two accounts into a
// transaction carrying ending balances, with the type's tax entries already
// applied. The pipeline never computes taxes itself.
func (uc *TransactionUseCase) BuildTransfer(from, to *domain.Account, region, currency string, amount decimal.Decimal, typeName, source string) (*domain.Transaction, error) {
	transaction := &domain.Transaction{Type: typeName, Source: source}

	outgoing := amount
	incoming := amount

	if t, ok := uc.FindType(typeName); ok {
		if t.FromTax != nil {
			outgoing = outgoing.Add(t.FromTax.Apply(amount))
		}

		if t.ToTax != nil {
			incoming = incoming.Sub(t.ToTax.Apply(amount))
		}
	}

	if from != nil {
		current, err := uc.holdings.Get(from, region, currency, domain.HandlerNormal)
		if err != nil {
			return nil, err
		}

		transaction.From = domain.NewParticipant(from.ID,
			domain.NewHoldingsEntry(region, currency, current.Sub(outgoing)))
	}

	if to != nil {
		current, err := uc.holdings.Get(to, region, currency, domain.HandlerNormal)
		if err != nil {
			return nil, err
		}

		transaction.To = domain.NewParticipant(to.ID,
			domain.NewHoldingsEntry(region, currency, current.Add(incoming)))
	}

	if err := transaction.Validate(); err != nil {
		return nil, err
	}

	return transaction, nil
}
