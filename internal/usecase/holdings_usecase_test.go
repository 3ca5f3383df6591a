package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/goeconomy/internal/domain"
	"github.com/iho/goeconomy/internal/usecase"
	"github.com/iho/goeconomy/internal/usecase/mocks"
)

func newTestLedger(t *testing.T) (*usecase.HoldingsUseCase, *usecase.CurrencyUseCase, *mocks.MockItemProvider) {
	t.Helper()

	items := mocks.NewMockItemProvider()
	registry := usecase.NewCurrencyUseCase(nil, items, mocks.NewMockExperienceProvider(), zerolog.Nop())
	ledger := usecase.NewHoldingsUseCase(registry, nil, zerolog.Nop())

	return ledger, registry, items
}

func TestHoldingsUseCase_GetAbsentReturnsStarting(t *testing.T) {
	ledger, registry, _ := newTestLedger(t)

	gold := domain.NewCurrency("gold", "Gold", "Gold", 2)
	gold.Starting = decimal.NewFromInt(50)
	registry.Register(context.Background(), gold)

	account := domain.NewPlayerAccount(uuid.New(), "Steve")

	amount, err := ledger.Get(account, "world", "gold", domain.HandlerNormal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("absent holdings = %s, want starting balance 50", amount)
	}
}

func TestHoldingsUseCase_GetUnknownCurrency(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	account := domain.NewPlayerAccount(uuid.New(), "Steve")

	_, err := ledger.Get(account, "world", "unknown", domain.HandlerNormal)
	if err != domain.ErrCurrencyNotFound {
		t.Errorf("expected ErrCurrencyNotFound, got %v", err)
	}
}

func TestHoldingsUseCase_SetGet(t *testing.T) {
	ledger, registry, _ := newTestLedger(t)

	registry.Register(context.Background(), domain.NewCurrency("gold", "Gold", "Gold", 2))

	account := domain.NewPlayerAccount(uuid.New(), "Steve")

	ok, err := ledger.Set(account, domain.NewHoldingsEntry("world", "gold", decimal.RequireFromString("100.005")))
	if err != nil || !ok {
		t.Fatalf("set failed: ok=%v err=%v", ok, err)
	}

	amount, err := ledger.Get(account, "world", "gold", domain.HandlerNormal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !amount.Equal(decimal.RequireFromString("100.005")) {
		t.Errorf("amount = %s, want 100.005 stored at full precision", amount)
	}
}

func TestHoldingsUseCase_ItemBackedFullContainer(t *testing.T) {
	ledger, registry, items := newTestLedger(t)

	coins := domain.NewCurrency("coins", "Coin", "Coins", 0)
	coins.Type = domain.CurrencyTypeItem
	registry.Register(context.Background(), coins)

	items.Full = true

	account := domain.NewPlayerAccount(uuid.New(), "Steve")

	// Insufficient container space is a business outcome, not an error.
	ok, err := ledger.Set(account, domain.NewHoldingsEntry("world", "coins", decimal.NewFromInt(10)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ok {
		t.Error("set into a full container should report failure")
	}
}

func TestHoldingsUseCase_ItemBackedReadsContainer(t *testing.T) {
	ledger, registry, items := newTestLedger(t)

	coins := domain.NewCurrency("coins", "Coin", "Coins", 0)
	coins.Type = domain.CurrencyTypeItem
	registry.Register(context.Background(), coins)

	account := domain.NewPlayerAccount(uuid.New(), "Steve")

	items.SetCount(account, "world", coins, domain.HandlerNormal, decimal.NewFromInt(7))

	amount, err := ledger.Get(account, "world", "coins", domain.HandlerNormal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !amount.Equal(decimal.NewFromInt(7)) {
		t.Errorf("amount = %s, want container count 7", amount)
	}
}

func TestHoldingsUseCase_ModifyIsSerialized(t *testing.T) {
	ledger, registry, _ := newTestLedger(t)

	gold := domain.NewCurrency("gold", "Gold", "Gold", 0)
	registry.Register(context.Background(), gold)

	account := domain.NewPlayerAccount(uuid.New(), "Steve")
	ledger.Set(account, domain.NewHoldingsEntry("world", "gold", decimal.Zero))

	const workers = 50

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()

			_, err := ledger.Modify(account, "world", "gold", domain.HandlerNormal, func(d decimal.Decimal) decimal.Decimal {
				return d.Add(decimal.NewFromInt(1))
			})
			if err != nil {
				t.Errorf("modify failed: %v", err)
			}
		}()
	}

	wg.Wait()

	amount, _ := ledger.Get(account, "world", "gold", domain.HandlerNormal)
	if !amount.Equal(decimal.NewFromInt(workers)) {
		t.Errorf("amount = %s, want %d (no lost updates)", amount, workers)
	}
}

func TestHoldingsUseCase_PersistFollowsWriteOrder(t *testing.T) {
	repo := mocks.NewMockAccountRepository()

	var mu sync.Mutex
	var persisted []decimal.Decimal
	repo.SaveHoldingsFunc = func(ctx context.Context, accountID uuid.UUID, entry domain.HoldingsEntry) error {
		mu.Lock()
		defer mu.Unlock()
		persisted = append(persisted, entry.Amount)
		return nil
	}

	registry := usecase.NewCurrencyUseCase(nil, mocks.NewMockItemProvider(), mocks.NewMockExperienceProvider(), zerolog.Nop())
	ledger := usecase.NewHoldingsUseCase(registry, repo, zerolog.Nop())

	gold := domain.NewCurrency("gold", "Gold", "Gold", 0)
	registry.Register(context.Background(), gold)

	account := domain.NewPlayerAccount(uuid.New(), "Steve")

	// Each Set must reach the upsert before the account lock is released,
	// so the store sees writes in the same order the ledger applied them
	// and the final persisted amount matches the final balance.
	const writers = 50

	var wg sync.WaitGroup
	wg.Add(writers)

	for i := 0; i < writers; i++ {
		go func(amount int64) {
			defer wg.Done()

			if _, err := ledger.Set(account, domain.NewHoldingsEntry("world", "gold", decimal.NewFromInt(amount))); err != nil {
				t.Errorf("set failed: %v", err)
			}
		}(int64(i + 1))
	}

	wg.Wait()

	if len(persisted) != writers {
		t.Fatalf("persisted %d entries, want %d", len(persisted), writers)
	}

	final, _ := ledger.Get(account, "world", "gold", domain.HandlerNormal)
	if last := persisted[len(persisted)-1]; !last.Equal(final) {
		t.Errorf("last persisted amount = %s, want final balance %s", last, final)
	}
}

func TestHoldingsUseCase_ExperienceBacked(t *testing.T) {
	items := mocks.NewMockItemProvider()
	experience := mocks.NewMockExperienceProvider()
	registry := usecase.NewCurrencyUseCase(nil, items, experience, zerolog.Nop())
	ledger := usecase.NewHoldingsUseCase(registry, nil, zerolog.Nop())

	xp := domain.NewCurrency("xp", "Point", "Points", 0)
	xp.Type = domain.CurrencyTypeExperience
	registry.Register(context.Background(), xp)

	account := domain.NewPlayerAccount(uuid.New(), "Steve")

	ok, err := ledger.Set(account, domain.NewHoldingsEntry("world", "xp", decimal.NewFromInt(30)))
	if err != nil || !ok {
		t.Fatalf("set failed: ok=%v err=%v", ok, err)
	}

	if got := experience.Balance(account); !got.Equal(decimal.NewFromInt(30)) {
		t.Errorf("experience pool = %s, want 30", got)
	}
}
