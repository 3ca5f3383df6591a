package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goeconomy/internal/domain"
	"github.com/iho/goeconomy/internal/infrastructure/metrics"
)

// CurrencyRepository implements usecase.CurrencyRepository. The per-region
// flags and denomination tables ride along as jsonb documents; the queried
// columns stay relational.
type CurrencyRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewCurrencyRepository creates a new CurrencyRepository.
func NewCurrencyRepository(pool *pgxpool.Pool) *CurrencyRepository {
	return &CurrencyRepository{
		pool:    pool,
		retrier: NewRetrier(),
	}
}

// WithMetrics attaches database error counters to the retrier.
func (r *CurrencyRepository) WithMetrics(m *metrics.Metrics) *CurrencyRepository {
	r.retrier.WithMetrics(m)

	return r
}

// Save upserts a currency definition.
func (r *CurrencyRepository) Save(ctx context.Context, currency *domain.Currency) error {
	regions, err := json.Marshal(currency.Regions)
	if err != nil {
		return err
	}

	denominations, err := json.Marshal(currency.Denominations)
	if err != nil {
		return err
	}

	return r.retrier.Retry(ctx, func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO currencies (
				uid, identifier, display, display_plural, display_minor,
				display_minor_plural, symbol, type, scale, starting,
				global_default, regions, denominations
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (uid) DO UPDATE SET
				identifier = EXCLUDED.identifier,
				display = EXCLUDED.display,
				display_plural = EXCLUDED.display_plural,
				display_minor = EXCLUDED.display_minor,
				display_minor_plural = EXCLUDED.display_minor_plural,
				symbol = EXCLUDED.symbol,
				type = EXCLUDED.type,
				scale = EXCLUDED.scale,
				starting = EXCLUDED.starting,
				global_default = EXCLUDED.global_default,
				regions = EXCLUDED.regions,
				denominations = EXCLUDED.denominations`,
			currency.UID, currency.Identifier, currency.Display, currency.DisplayPlural,
			currency.DisplayMinor, currency.DisplayMinorPlural, currency.Symbol,
			currency.Type, currency.Scale, decimalToNumeric(currency.Starting),
			currency.GlobalDefault, regions, denominations)

		return err
	})
}

// LoadAll retrieves every persisted currency in registration order.
func (r *CurrencyRepository) LoadAll(ctx context.Context) ([]*domain.Currency, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT uid, identifier, display, display_plural, display_minor,
		       display_minor_plural, symbol, type, scale, starting,
		       global_default, regions, denominations
		FROM currencies ORDER BY registered_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var currencies []*domain.Currency

	for rows.Next() {
		var (
			currency      domain.Currency
			starting      pgtype.Numeric
			regions       []byte
			denominations []byte
		)

		err := rows.Scan(&currency.UID, &currency.Identifier, &currency.Display,
			&currency.DisplayPlural, &currency.DisplayMinor, &currency.DisplayMinorPlural,
			&currency.Symbol, &currency.Type, &currency.Scale, &starting,
			&currency.GlobalDefault, &regions, &denominations)
		if err != nil {
			return nil, err
		}

		currency.Starting = numericToDecimal(starting)

		if err := json.Unmarshal(regions, &currency.Regions); err != nil {
			return nil, err
		}

		if len(denominations) > 0 {
			if err := json.Unmarshal(denominations, &currency.Denominations); err != nil {
				return nil, err
			}
		}

		currencies = append(currencies, &currency)
	}

	return currencies, rows.Err()
}

// Delete removes a currency definition.
func (r *CurrencyRepository) Delete(ctx context.Context, uid uuid.UUID) error {
	return r.retrier.Retry(ctx, func() error {
		_, err := r.pool.Exec(ctx, `DELETE FROM currencies WHERE uid = $1`, uid)

		return err
	})
}
