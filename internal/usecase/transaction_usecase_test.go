package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/goeconomy/internal/domain"
	"github.com/iho/goeconomy/internal/usecase"
	"github.com/iho/goeconomy/internal/usecase/mocks"
)

// countingCheck records invocations and answers with a fixed response.
type countingCheck struct {
	name    string
	fail    bool
	message string
	calls   int
}

func (c *countingCheck) Identifier() string { return c.name }

func (c *countingCheck) Process(*domain.Transaction) domain.CheckResponse {
	c.calls++

	if c.fail {
		return domain.CheckResponse{Message: c.message}
	}

	return domain.CheckResponse{Success: true}
}

type economyFixture struct {
	directory *usecase.AccountUseCase
	registry  *usecase.CurrencyUseCase
	ledger    *usecase.HoldingsUseCase
	pipeline  *usecase.TransactionUseCase
	receipts  *mocks.MockReceiptRepository
}

func newTestEconomy(t *testing.T) *economyFixture {
	t.Helper()

	registry := usecase.NewCurrencyUseCase(nil, mocks.NewMockItemProvider(), mocks.NewMockExperienceProvider(), zerolog.Nop())
	ledger := usecase.NewHoldingsUseCase(registry, nil, zerolog.Nop())
	directory := usecase.NewAccountUseCase(mocks.NewMockIdentityService(), nil, zerolog.Nop())
	receipts := mocks.NewMockReceiptRepository()
	pipeline := usecase.NewTransactionUseCase(directory, ledger, receipts, nil, "node-a", zerolog.Nop())

	gold := domain.NewCurrency("gold", "Gold", "Gold", 2)
	gold.Regions["world"] = domain.RegionSetting{Enabled: true}
	require.NoError(t, registry.Register(context.Background(), gold))

	return &economyFixture{
		directory: directory,
		registry:  registry,
		ledger:    ledger,
		pipeline:  pipeline,
		receipts:  receipts,
	}
}

func (f *economyFixture) player(t *testing.T, name string) *domain.Account {
	t.Helper()

	id := uuid.New()
	require.Equal(t, domain.AccountCreated, f.directory.CreateAccount(context.Background(), id.String(), name))

	account, ok := f.directory.FindAccountByID(id)
	require.True(t, ok)

	return account
}

func TestTransactionUseCase_CommitBothParties(t *testing.T) {
	f := newTestEconomy(t)

	p := f.player(t, "Alice")
	q := f.player(t, "Bob")

	f.ledger.Set(p, domain.NewHoldingsEntry("world", "gold", decimal.RequireFromString("100.005")))

	transaction := &domain.Transaction{
		Type:   "pay",
		Source: "test",
		From:   domain.NewParticipant(p.ID, domain.NewHoldingsEntry("world", "gold", decimal.RequireFromString("75.005"))),
		To:     domain.NewParticipant(q.ID, domain.NewHoldingsEntry("world", "gold", decimal.RequireFromString("25.00"))),
	}

	result, err := f.pipeline.Process(context.Background(), transaction)
	require.NoError(t, err)
	require.True(t, result.Committed)

	// Exactly one receipt, fresh id, referencing the transaction.
	require.NotNil(t, result.Receipt)
	require.Same(t, transaction, result.Receipt.Transaction)
	require.Equal(t, 1, f.receipts.Saved())

	// Both parties carry the supplied ending balances, at full precision.
	got, err := f.ledger.Get(p, "world", "gold", domain.HandlerNormal)
	require.NoError(t, err)
	require.True(t, got.Equal(decimal.RequireFromString("75.005")), "from balance = %s", got)

	got, err = f.ledger.Get(q, "world", "gold", domain.HandlerNormal)
	require.NoError(t, err)
	require.True(t, got.Equal(decimal.RequireFromString("25.00")), "to balance = %s", got)
}

func TestTransactionUseCase_ChecksShortCircuit(t *testing.T) {
	f := newTestEconomy(t)

	p := f.player(t, "Alice")
	f.ledger.Set(p, domain.NewHoldingsEntry("world", "gold", decimal.NewFromInt(100)))

	passing := &countingCheck{name: "first"}
	failing := &countingCheck{name: "second", fail: true, message: "rejected by second"}
	after := &countingCheck{name: "third"}

	f.pipeline.AddCheck(passing)
	f.pipeline.AddCheck(failing)
	f.pipeline.AddCheck(after)

	transaction := &domain.Transaction{
		Type: "pay",
		From: domain.NewParticipant(p.ID, domain.NewHoldingsEntry("world", "gold", decimal.NewFromInt(40))),
	}

	result, err := f.pipeline.Process(context.Background(), transaction)
	require.NoError(t, err)
	require.False(t, result.Committed)
	require.Equal(t, "rejected by second", result.Message)
	require.Nil(t, result.Receipt)

	require.Equal(t, 1, passing.calls)
	require.Equal(t, 1, failing.calls)
	require.Equal(t, 0, after.calls, "checks after the failure must never run")

	// No ledger mutation and no receipt on rejection.
	got, _ := f.ledger.Get(p, "world", "gold", domain.HandlerNormal)
	require.True(t, got.Equal(decimal.NewFromInt(100)), "balance = %s, want untouched 100", got)
	require.Equal(t, 0, f.receipts.Saved())
}

func TestTransactionUseCase_UnknownCheckSkipped(t *testing.T) {
	f := newTestEconomy(t)

	p := f.player(t, "Alice")

	// A check name with no registration is skipped rather than failed.
	f.pipeline.AddCheck(&countingCheck{name: "known"})

	transaction := &domain.Transaction{
		Type: "deposit",
		To:   domain.NewParticipant(p.ID, domain.NewHoldingsEntry("world", "gold", decimal.NewFromInt(5))),
	}

	result, err := f.pipeline.Process(context.Background(), transaction)
	require.NoError(t, err)
	require.True(t, result.Committed)
}

func TestTransactionUseCase_SinglePartyLegal(t *testing.T) {
	f := newTestEconomy(t)

	q := f.player(t, "Bob")

	// A pure deposit has no from party.
	deposit := &domain.Transaction{
		Type: "deposit",
		To:   domain.NewParticipant(q.ID, domain.NewHoldingsEntry("world", "gold", decimal.NewFromInt(10))),
	}

	result, err := f.pipeline.Process(context.Background(), deposit)
	require.NoError(t, err)
	require.True(t, result.Committed)

	got, _ := f.ledger.Get(q, "world", "gold", domain.HandlerNormal)
	require.True(t, got.Equal(decimal.NewFromInt(10)))

	// No parties at all is a contract violation.
	_, err = f.pipeline.Process(context.Background(), &domain.Transaction{Type: "void"})
	require.ErrorIs(t, err, domain.ErrNoParticipants)
}

func TestTransactionUseCase_BuiltInChecks(t *testing.T) {
	f := newTestEconomy(t)

	p := f.player(t, "Alice")
	f.ledger.Set(p, domain.NewHoldingsEntry("world", "gold", decimal.NewFromInt(10)))

	f.pipeline.AddGroup(usecase.CheckGroup{
		Name: "standard",
		Checks: []domain.Check{
			usecase.FundsCheck{},
			usecase.MaximumCheck{},
			usecase.RegionCheck{Currencies: f.registry},
		},
	})

	// Overdraw: ending balance below zero.
	overdraw := &domain.Transaction{
		Type: "withdraw",
		From: domain.NewParticipant(p.ID, domain.NewHoldingsEntry("world", "gold", decimal.NewFromInt(-5))),
	}

	result, err := f.pipeline.Process(context.Background(), overdraw)
	require.NoError(t, err)
	require.False(t, result.Committed)
	require.Equal(t, "insufficient funds", result.Message)

	// Disabled region.
	elsewhere := &domain.Transaction{
		Type: "deposit",
		To:   domain.NewParticipant(p.ID, domain.NewHoldingsEntry("void", "gold", decimal.NewFromInt(5))),
	}

	result, err = f.pipeline.Process(context.Background(), elsewhere)
	require.NoError(t, err)
	require.False(t, result.Committed)
}

func TestTransactionUseCase_BuildTransfer(t *testing.T) {
	f := newTestEconomy(t)

	p := f.player(t, "Alice")
	q := f.player(t, "Bob")

	f.ledger.Set(p, domain.NewHoldingsEntry("world", "gold", decimal.NewFromInt(100)))

	f.pipeline.RegisterType(&domain.TransactionType{
		Identifier: "pay",
		ToTax:      &domain.TaxEntry{Percentage: true, Amount: decimal.NewFromInt(10)},
	})

	transaction, err := f.pipeline.BuildTransfer(p, q, "world", "gold", decimal.NewFromInt(20), "pay", "command")
	require.NoError(t, err)

	// Sender loses the full amount, recipient receives it less the 10% tax.
	require.True(t, transaction.From.EndingBalances[0].Amount.Equal(decimal.NewFromInt(80)))
	require.True(t, transaction.To.EndingBalances[0].Amount.Equal(decimal.NewFromInt(18)))

	result, err := f.pipeline.Process(context.Background(), transaction)
	require.NoError(t, err)
	require.True(t, result.Committed)
}

func TestTransactionUseCase_BroadcastsCommittedBalances(t *testing.T) {
	registry := usecase.NewCurrencyUseCase(nil, mocks.NewMockItemProvider(), mocks.NewMockExperienceProvider(), zerolog.Nop())
	ledger := usecase.NewHoldingsUseCase(registry, nil, zerolog.Nop())
	directory := usecase.NewAccountUseCase(mocks.NewMockIdentityService(), nil, zerolog.Nop())

	delivery := mocks.NewMockDeliveryChannel("node-a", "node-b")
	backlog := usecase.NewBacklogUseCase(delivery, "node-a", 0, zerolog.Nop())

	pipeline := usecase.NewTransactionUseCase(directory, ledger, nil, backlog, "node-a", zerolog.Nop())

	gold := domain.NewCurrency("gold", "Gold", "Gold", 2)
	require.NoError(t, registry.Register(context.Background(), gold))

	id := uuid.New()
	directory.CreateAccount(context.Background(), id.String(), "Alice")
	account, _ := directory.FindAccountByID(id)

	transaction := &domain.Transaction{
		Type: "deposit",
		To:   domain.NewParticipant(account.ID, domain.NewHoldingsEntry("world", "gold", decimal.NewFromInt(42))),
	}

	result, err := pipeline.Process(context.Background(), transaction)
	require.NoError(t, err)
	require.True(t, result.Committed)

	// The delta reached the other node; the local node is skipped.
	require.Len(t, delivery.Delivered["node-b"], 1)
	require.Empty(t, delivery.Delivered["node-a"])
}

// recordingPublisher captures broadcast messages in arrival order.
type recordingPublisher struct {
	mu       sync.Mutex
	messages []domain.BalanceSyncMessage
}

func (p *recordingPublisher) Broadcast(_ context.Context, message domain.BalanceSyncMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.messages = append(p.messages, message)
}

func TestTransactionUseCase_BroadcastOrderMatchesLedgerWrites(t *testing.T) {
	registry := usecase.NewCurrencyUseCase(nil, mocks.NewMockItemProvider(), mocks.NewMockExperienceProvider(), zerolog.Nop())
	ledger := usecase.NewHoldingsUseCase(registry, nil, zerolog.Nop())
	directory := usecase.NewAccountUseCase(mocks.NewMockIdentityService(), nil, zerolog.Nop())

	publisher := &recordingPublisher{}
	pipeline := usecase.NewTransactionUseCase(directory, ledger, nil, publisher, "node-a", zerolog.Nop())

	gold := domain.NewCurrency("gold", "Gold", "Gold", 2)
	require.NoError(t, registry.Register(context.Background(), gold))

	id := uuid.New()
	directory.CreateAccount(context.Background(), id.String(), "Alice")
	account, _ := directory.FindAccountByID(id)

	// Hammer one account from many goroutines. Because the fanout happens
	// while the account's update lock is still held, the last message out
	// must carry whatever balance the last ledger write left behind.
	const writers = 16

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)

		go func(amount int64) {
			defer wg.Done()

			_, err := pipeline.Process(context.Background(), &domain.Transaction{
				Type: "deposit",
				To:   domain.NewParticipant(account.ID, domain.NewHoldingsEntry("world", "gold", decimal.NewFromInt(amount))),
			})
			if err != nil {
				t.Error(err)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	require.Len(t, publisher.messages, writers)

	final, err := ledger.Get(account, "world", "gold", domain.HandlerNormal)
	require.NoError(t, err)

	last := publisher.messages[len(publisher.messages)-1]
	require.Equal(t, final.String(), last.Amount)
}
