package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iho/goeconomy/internal/domain"
)

// IdentityService resolves external id and name pairs against the player
// directory.
type IdentityService interface {
	Resolve(ctx context.Context, name string) (uuid.UUID, bool, error)
	Store(ctx context.Context, id uuid.UUID, name string) error
}

// AccountRepository defines persistence for accounts and their holdings.
// The core calls these as best-effort hooks; schema and versioning belong to
// the adapter.
type AccountRepository interface {
	Save(ctx context.Context, account *domain.Account) error
	SaveHoldings(ctx context.Context, accountID uuid.UUID, entry domain.HoldingsEntry) error
	LoadAll(ctx context.Context) ([]*domain.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CurrencyRepository defines persistence for currency definitions.
type CurrencyRepository interface {
	Save(ctx context.Context, currency *domain.Currency) error
	LoadAll(ctx context.Context) ([]*domain.Currency, error)
	Delete(ctx context.Context, uid uuid.UUID) error
}

// ReceiptRepository defines persistence for receipts and their line items.
type ReceiptRepository interface {
	Save(ctx context.Context, receipt *domain.Receipt) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Receipt, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.Receipt, error)
}

// DeliveryChannel sends balance-affecting messages to remote nodes. A send
// error means the node did not confirm delivery and the message belongs in
// the backlog.
type DeliveryChannel interface {
	Nodes(ctx context.Context) ([]string, error)
	Online(ctx context.Context, node string) (bool, error)
	Send(ctx context.Context, node string, payload []byte) error
}

// BalancePublisher fans committed balance changes out to other nodes.
type BalancePublisher interface {
	Broadcast(ctx context.Context, message domain.BalanceSyncMessage)
}

// CurrencyType is the behavioral strategy for how a currency's balance is
// read and written. Implementations dispatch by value, not by subtype.
type CurrencyType interface {
	Name() string
	GetHoldings(account *domain.Account, region string, currency *domain.Currency, handler domain.HoldingsHandler) decimal.Decimal
	SetHoldings(account *domain.Account, region string, currency *domain.Currency, handler domain.HoldingsHandler, amount decimal.Decimal) bool
}

// Item is the minimal view of a physical item the registry needs to match a
// denomination.
type Item interface {
	Material() string
}

// ItemProvider inspects and mutates the physical containers that back
// item-backed currencies.
type ItemProvider interface {
	Count(account *domain.Account, region string, currency *domain.Currency, handler domain.HoldingsHandler) (decimal.Decimal, bool)
	SetCount(account *domain.Account, region string, currency *domain.Currency, handler domain.HoldingsHandler, amount decimal.Decimal) bool
}

// ExperienceProvider reads and writes the experience pool backing
// experience-backed currencies.
type ExperienceProvider interface {
	Balance(account *domain.Account) decimal.Decimal
	SetBalance(account *domain.Account, amount decimal.Decimal) bool
}

// IDGenerator generates unique row ids for persistence adapters.
type IDGenerator interface {
	Generate() string
}

// Transaction represents a storage transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles storage transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}
