// Package ledgerrepo manages repository layer of the cash ledger.
package ledgerrepo

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/beverage-pos/internal/domain"
	"github.com/go-petr/beverage-pos/pkg/dbpkg"
)

// RepoPGS facilitates cash ledger repository layer logic.
//
// The ledger holds a single row per label; this till uses one label for
// its cash-on-hand balance.
type RepoPGS struct {
	db    dbpkg.SQLInterface
	label string
}

// NewRepoPGS returns ledger RepoPGS operating on the given ledger label.
func NewRepoPGS(db dbpkg.SQLInterface, label string) *RepoPGS {
	return &RepoPGS{db: db, label: label}
}

const balanceQuery = `
SELECT balance FROM ledger
WHERE label = $1
`

// Balance returns the current cash balance.
func (r *RepoPGS) Balance(ctx context.Context) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	var balance decimal.Decimal

	err := r.db.QueryRowContext(ctx, balanceQuery, r.label).Scan(&balance)
	if err != nil {
		l.Error().Err(err).Send()
		return balance, domain.ErrLedgerUnavailable
	}

	return balance, nil
}

const incrementQuery = `
UPDATE ledger
SET balance = balance + $1
WHERE label = $2
RETURNING balance
`

// Increment atomically adds delta to the balance and returns the new balance.
// Delta may be negative when a transaction pays out more credit than it charges.
func (r *RepoPGS) Increment(ctx context.Context, delta decimal.Decimal) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	var balance decimal.Decimal

	err := r.db.QueryRowContext(ctx, incrementQuery, delta, r.label).Scan(&balance)
	if err != nil {
		l.Error().Err(err).Msgf("Increment(ctx, %s)", delta)
		return balance, domain.ErrLedgerUnavailable
	}

	return balance, nil
}
