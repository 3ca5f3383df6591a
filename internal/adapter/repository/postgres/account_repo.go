package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/goeconomy/internal/domain"
	"github.com/iho/goeconomy/internal/infrastructure/metrics"
	"github.com/iho/goeconomy/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool    *pgxpool.Pool
	ids     usecase.IDGenerator
	retrier *Retrier
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool, ids usecase.IDGenerator) *AccountRepository {
	return &AccountRepository{
		pool:    pool,
		ids:     ids,
		retrier: NewRetrier(),
	}
}

// WithMetrics attaches database error counters to the retrier.
func (r *AccountRepository) WithMetrics(m *metrics.Metrics) *AccountRepository {
	r.retrier.WithMetrics(m)

	return r
}

// Save upserts an account and every holdings entry in its wallet.
func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	return r.retrier.Retry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		_, err = tx.Exec(ctx, `
			INSERT INTO accounts (id, name, kind, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, kind = EXCLUDED.kind`,
			account.ID, account.Name, account.Kind, timeToPgTimestamptz(account.CreatedAt))
		if err != nil {
			return err
		}

		for _, entry := range account.Wallet.Entries() {
			if err := upsertHoldings(ctx, tx, r.ids, account.ID, entry); err != nil {
				return err
			}
		}

		return tx.Commit(ctx)
	})
}

// SaveHoldings upserts a single holdings entry for an account.
func (r *AccountRepository) SaveHoldings(ctx context.Context, accountID uuid.UUID, entry domain.HoldingsEntry) error {
	return r.retrier.Retry(ctx, func() error {
		return upsertHoldings(ctx, r.pool, r.ids, accountID, entry)
	})
}

// execer is the Exec surface shared by pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func upsertHoldings(ctx context.Context, db execer, ids usecase.IDGenerator, accountID uuid.UUID, entry domain.HoldingsEntry) error {
	_, err := db.Exec(ctx, `
		INSERT INTO holdings (id, account_id, region, currency, handler, amount, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (account_id, region, currency, handler)
		DO UPDATE SET amount = EXCLUDED.amount, updated_at = EXCLUDED.updated_at`,
		ids.Generate(), accountID, entry.Region, entry.Currency, string(entry.Handler),
		decimalToNumeric(entry.Amount), timeToPgTimestamptz(time.Now().UTC()))

	return err
}

// LoadAll retrieves every account with its holdings.
func (r *AccountRepository) LoadAll(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, kind, created_at FROM accounts ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	byID := make(map[uuid.UUID]*domain.Account)

	for rows.Next() {
		var (
			account   domain.Account
			createdAt pgtype.Timestamptz
		)

		if err := rows.Scan(&account.ID, &account.Name, &account.Kind, &createdAt); err != nil {
			return nil, err
		}

		account.CreatedAt = createdAt.Time
		account.Wallet = domain.NewWallet()

		accounts = append(accounts, &account)
		byID[account.ID] = &account
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadHoldings(ctx, byID); err != nil {
		return nil, err
	}

	return accounts, nil
}

func (r *AccountRepository) loadHoldings(ctx context.Context, byID map[uuid.UUID]*domain.Account) error {
	rows, err := r.pool.Query(ctx, `
		SELECT account_id, region, currency, handler, amount FROM holdings`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			accountID uuid.UUID
			entry     domain.HoldingsEntry
			handler   string
			amount    pgtype.Numeric
		)

		if err := rows.Scan(&accountID, &entry.Region, &entry.Currency, &handler, &amount); err != nil {
			return err
		}

		account, ok := byID[accountID]
		if !ok {
			continue
		}

		entry.Handler = domain.HoldingsHandler(handler)
		entry.Amount = numericToDecimal(amount)
		account.Wallet.Set(entry)
	}

	return rows.Err()
}

// Delete removes an account and its holdings.
func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.retrier.Retry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if _, err := tx.Exec(ctx, `DELETE FROM holdings WHERE account_id = $1`, id); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
