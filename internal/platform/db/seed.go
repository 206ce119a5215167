package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"paycore/internal/domain/payroll"
)

// defaultRegimeSlabs are the annual income bands of the default regime.
func defaultRegimeSlabs() []payroll.TaxSlab {
	band := func(from, to, rate int64) payroll.TaxSlab {
		slab := payroll.TaxSlab{From: decimal.NewFromInt(from), RatePercent: decimal.NewFromInt(rate)}
		if to > 0 {
			upper := decimal.NewFromInt(to)
			slab.To = &upper
		}
		return slab
	}
	return []payroll.TaxSlab{
		band(0, 400000, 0),
		band(400000, 800000, 5),
		band(800000, 1200000, 10),
		band(1200000, 1600000, 15),
		band(1600000, 2000000, 20),
		band(2000000, 2400000, 25),
		band(2400000, 0, 30),
	}
}

// Seed inserts the default tax regime and its slabs when the regime is absent.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		var id string
		err := tx.QueryRow(ctx, "SELECT id::text FROM tax_regimes WHERE name = $1", payroll.DefaultTaxRegime).Scan(&id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		if err := tx.QueryRow(ctx, "INSERT INTO tax_regimes (name) VALUES ($1) RETURNING id::text", payroll.DefaultTaxRegime).Scan(&id); err != nil {
			return err
		}
		for _, slab := range defaultRegimeSlabs() {
			var to *string
			if slab.To != nil {
				upper := slab.To.StringFixed(2)
				to = &upper
			}
			_, err = tx.Exec(ctx, `
        INSERT INTO tax_slabs (tax_regime_id, from_amount, to_amount, rate_percent)
        VALUES ($1, $2::text::numeric, $3::text::numeric, $4::text::numeric)
      `, id, slab.From.StringFixed(2), to, slab.RatePercent.StringFixed(2))
			if err != nil {
				return err
			}
		}
		return nil
	})
}
