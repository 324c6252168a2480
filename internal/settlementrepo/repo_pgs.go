// Package settlementrepo manages repository layer of transaction settlement.
package settlementrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/go-petr/beverage-pos/internal/domain"
	"github.com/go-petr/beverage-pos/internal/ledgerrepo"
)

// RepoPGS facilitates settlement repository layer logic.
type RepoPGS struct {
	conn        *sql.DB
	ledgerLabel string
}

// NewRepoPGS returns settlement RepoPGS with a connection to start transactions.
func NewRepoPGS(conn *sql.DB, ledgerLabel string) *RepoPGS {
	return &RepoPGS{
		conn:        conn,
		ledgerLabel: ledgerLabel,
	}
}

const createTransactionQuery = `
INSERT INTO
	transactions (id, created_at, charge_total, credit_total, net_cash_delta)
VALUES
	($1, $2, $3, $4, $5)
RETURNING id, created_at, charge_total, credit_total, net_cash_delta
`

const createLineQuery = `
INSERT INTO
	transaction_lines (transaction_id, position, catalog_id, name, kind, quantity, unit_price, unit_deposit)
VALUES
	($1, $2, $3, $4, $5, $6, $7, $8)
`

// Settle commits a completed transaction as a single database transaction:
// the ledger balance is incremented by the net cash delta, then the
// transaction record and its lines are persisted. Any failure rolls the
// whole commit back, so a retry can never apply the cash effect twice.
func (r *RepoPGS) Settle(ctx context.Context, arg domain.CreateTransactionParams) (domain.SettleTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.SettleTxResult

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, domain.ErrSettlementFailed
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	ledgerRepo := ledgerrepo.NewRepoPGS(tx, r.ledgerLabel)

	result.Balance, err = ledgerRepo.Increment(ctx, arg.NetCashDelta)
	if err != nil {
		l.Error().Err(err).Send()
		return result, domain.ErrSettlementFailed
	}

	row := tx.QueryRowContext(ctx, createTransactionQuery,
		arg.ID,
		arg.CreatedAt,
		arg.ChargeTotal,
		arg.CreditTotal,
		arg.NetCashDelta,
	)

	record := &result.Record
	if err := row.Scan(
		&record.ID,
		&record.CreatedAt,
		&record.ChargeTotal,
		&record.CreditTotal,
		&record.NetCashDelta,
	); err != nil {
		l.Error().Err(err).Msgf("Settle(ctx, %+v)", arg)

		if pqErr, ok := err.(*pq.Error); ok {
			l.Error().Str("constraint", pqErr.Constraint).Send()
		}

		return result, domain.ErrSettlementFailed
	}

	for i, line := range arg.Lines {
		_, err := tx.ExecContext(ctx, createLineQuery,
			arg.ID,
			i,
			line.CatalogID,
			line.Name,
			line.Kind,
			line.Quantity,
			line.UnitPrice,
			line.UnitDeposit,
		)
		if err != nil {
			l.Error().Err(err).Send()
			return result, domain.ErrSettlementFailed
		}

		record.Lines = append(record.Lines, line)
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return result, domain.ErrSettlementFailed
	}

	return result, nil
}

const listLinesQuery = `
SELECT
	catalog_id, name, kind, quantity, unit_price, unit_deposit
FROM transaction_lines
WHERE transaction_id = $1
ORDER BY position
`

const getTransactionQuery = `
SELECT
	id, created_at, charge_total, credit_total, net_cash_delta
FROM transactions
WHERE id = $1
`

// Get returns the persisted transaction record with its lines.
func (r *RepoPGS) Get(ctx context.Context, id string) (domain.TransactionRecord, error) {
	l := zerolog.Ctx(ctx)

	var record domain.TransactionRecord

	row := r.conn.QueryRowContext(ctx, getTransactionQuery, id)
	if err := row.Scan(
		&record.ID,
		&record.CreatedAt,
		&record.ChargeTotal,
		&record.CreditTotal,
		&record.NetCashDelta,
	); err != nil {
		l.Error().Err(err).Send()
		return record, domain.ErrLedgerUnavailable
	}

	rows, err := r.conn.QueryContext(ctx, listLinesQuery, id)
	if err != nil {
		l.Error().Err(err).Send()
		return record, domain.ErrLedgerUnavailable
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.LineItem
		if err := rows.Scan(
			&line.CatalogID,
			&line.Name,
			&line.Kind,
			&line.Quantity,
			&line.UnitPrice,
			&line.UnitDeposit,
		); err != nil {
			l.Error().Err(err).Send()
			return record, domain.ErrLedgerUnavailable
		}

		record.Lines = append(record.Lines, line)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return record, domain.ErrLedgerUnavailable
	}

	return record, nil
}
