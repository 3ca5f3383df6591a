package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goeconomy/internal/domain"
	"github.com/iho/goeconomy/internal/infrastructure/metrics"
	"github.com/iho/goeconomy/internal/usecase"
)

// Receipt line-item sides.
const (
	partyFrom = "from"
	partyTo   = "to"
)

// ReceiptRepository implements usecase.ReceiptRepository. A receipt row
// carries the transaction header; every ending balance becomes one line item
// row, written atomically with the header.
type ReceiptRepository struct {
	pool    *pgxpool.Pool
	txm     usecase.TransactionManager
	ids     usecase.IDGenerator
	retrier *Retrier
}

// NewReceiptRepository creates a new ReceiptRepository.
func NewReceiptRepository(pool *pgxpool.Pool, txm usecase.TransactionManager, ids usecase.IDGenerator) *ReceiptRepository {
	return &ReceiptRepository{
		pool:    pool,
		txm:     txm,
		ids:     ids,
		retrier: NewRetrier(),
	}
}

// WithMetrics attaches database error counters to the retrier.
func (r *ReceiptRepository) WithMetrics(m *metrics.Metrics) *ReceiptRepository {
	r.retrier.WithMetrics(m)

	return r
}

// Save persists a receipt and its line items in one storage transaction.
func (r *ReceiptRepository) Save(ctx context.Context, receipt *domain.Receipt) error {
	return r.retrier.Retry(ctx, func() error {
		tx, err := r.txm.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		pgxTx := tx.(*Tx).PgxTx()

		_, err = pgxTx.Exec(ctx, `
			INSERT INTO receipts (id, created_at, type, source)
			VALUES ($1, $2, $3, $4)`,
			receipt.ID, timeToPgTimestamptz(receipt.Time),
			receipt.Transaction.Type, receipt.Transaction.Source)
		if err != nil {
			return err
		}

		if err := r.saveParty(ctx, pgxTx, receipt.ID, partyFrom, receipt.Transaction.From); err != nil {
			return err
		}

		if err := r.saveParty(ctx, pgxTx, receipt.ID, partyTo, receipt.Transaction.To); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
}

func (r *ReceiptRepository) saveParty(ctx context.Context, tx pgx.Tx, receiptID uuid.UUID, party string, participant *domain.Participant) error {
	if participant == nil {
		return nil
	}

	for _, entry := range participant.EndingBalances {
		_, err := tx.Exec(ctx, `
			INSERT INTO receipt_entries (
				id, receipt_id, party, account_id, region, currency, handler, amount
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			r.ids.Generate(), receiptID, party, participant.ID,
			entry.Region, entry.Currency, string(entry.Handler),
			decimalToNumeric(entry.Amount))
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves a receipt with its reconstructed transaction.
func (r *ReceiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Receipt, error) {
	receipt := &domain.Receipt{ID: id, Transaction: &domain.Transaction{}}

	var createdAt pgtype.Timestamptz

	err := r.pool.QueryRow(ctx, `
		SELECT created_at, type, source FROM receipts WHERE id = $1`, id).
		Scan(&createdAt, &receipt.Transaction.Type, &receipt.Transaction.Source)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReceiptNotFound
		}

		return nil, err
	}

	receipt.Time = createdAt.Time

	if err := r.loadEntries(ctx, receipt); err != nil {
		return nil, err
	}

	return receipt, nil
}

func (r *ReceiptRepository) loadEntries(ctx context.Context, receipt *domain.Receipt) error {
	rows, err := r.pool.Query(ctx, `
		SELECT party, account_id, region, currency, handler, amount
		FROM receipt_entries WHERE receipt_id = $1 ORDER BY id`, receipt.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			party     string
			accountID uuid.UUID
			entry     domain.HoldingsEntry
			handler   string
			amount    pgtype.Numeric
		)

		if err := rows.Scan(&party, &accountID, &entry.Region, &entry.Currency, &handler, &amount); err != nil {
			return err
		}

		entry.Handler = domain.HoldingsHandler(handler)
		entry.Amount = numericToDecimal(amount)

		switch party {
		case partyFrom:
			if receipt.Transaction.From == nil {
				receipt.Transaction.From = domain.NewParticipant(accountID)
			}
			receipt.Transaction.From.EndingBalances = append(receipt.Transaction.From.EndingBalances, entry)
		case partyTo:
			if receipt.Transaction.To == nil {
				receipt.Transaction.To = domain.NewParticipant(accountID)
			}
			receipt.Transaction.To.EndingBalances = append(receipt.Transaction.To.EndingBalances, entry)
		}
	}

	return rows.Err()
}

// ListByAccount lists receipts referencing an account, newest first.
func (r *ReceiptRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.Receipt, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT r.id, r.created_at
		FROM receipts r
		JOIN receipt_entries e ON e.receipt_id = r.id
		WHERE e.account_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID

	for rows.Next() {
		var (
			id        uuid.UUID
			createdAt pgtype.Timestamptz
		)

		if err := rows.Scan(&id, &createdAt); err != nil {
			rows.Close()
			return nil, err
		}

		ids = append(ids, id)
	}

	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	receipts := make([]*domain.Receipt, 0, len(ids))

	for _, id := range ids {
		receipt, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		receipts = append(receipts, receipt)
	}

	return receipts, nil
}
