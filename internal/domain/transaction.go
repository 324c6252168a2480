package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrLedgerUnavailable indicates that the cash ledger could not be read or updated.
	ErrLedgerUnavailable = errors.New("cash ledger unavailable")
	// ErrSettlementFailed indicates that the settlement commit did not go through.
	// The cart is preserved and the settlement may be retried.
	ErrSettlementFailed = errors.New("settlement failed")
)

// TransactionRecord is the immutable snapshot of a settled transaction.
type TransactionRecord struct {
	ID           string          `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	Lines        []LineItem      `json:"lines"`
	ChargeTotal  decimal.Decimal `json:"charge_total"`
	CreditTotal  decimal.Decimal `json:"credit_total"`
	NetCashDelta decimal.Decimal `json:"net_cash_delta"`
}

// CreateTransactionParams is the input data for the settlement transaction.
type CreateTransactionParams struct {
	ID           string
	CreatedAt    time.Time
	Lines        []LineItem
	ChargeTotal  decimal.Decimal
	CreditTotal  decimal.Decimal
	NetCashDelta decimal.Decimal
}

// SettleTxResult is the result of the settlement transaction.
type SettleTxResult struct {
	Record  TransactionRecord `json:"record"`
	Balance decimal.Decimal   `json:"balance"`
}
