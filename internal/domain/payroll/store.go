package payroll

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	cryptoutil "paycore/internal/platform/crypto"
)

// Store implements StoreAPI on PostgreSQL. Monetary columns are NUMERIC and
// cross the wire as text so no value passes through float64.
type Store struct {
	DB     *pgxpool.Pool
	crypto *cryptoutil.Cipher
}

func NewStore(db *pgxpool.Pool, crypto *cryptoutil.Cipher) *Store {
	return &Store{DB: db, crypto: crypto}
}

var _ StoreAPI = (*Store)(nil)

// notFound maps a missing row, or an id that is not a valid uuid, to sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation {
		return fmt.Errorf("%w: %s", sentinel, pgErr.Message)
	}
	return err
}

func decimalFromText(raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse numeric %q: %w", raw, err)
	}
	return value, nil
}

func optionalDecimal(raw *string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	value, err := decimalFromText(*raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
