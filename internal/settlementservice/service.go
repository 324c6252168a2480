// Package settlementservice manages business logic layer of transaction settlement.
package settlementservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/beverage-pos/internal/domain"
)

// Repo provides data access layer interface needed by settlement service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package settlementservice
type Repo interface {
	Settle(ctx context.Context, arg domain.CreateTransactionParams) (domain.SettleTxResult, error)
}

// Service facilitates settlement service layer logic.
type Service struct {
	repo Repo
}

// New returns settlement service struct to manage settlement bussines logic.
func New(r Repo) *Service {
	return &Service{repo: r}
}

// Finish settles the cart: it computes the totals, applies the net cash
// delta to the ledger and persists the transaction record as one commit,
// then clears the cart.
//
// On failure the cart is left untouched so the settlement can be retried
// with the same totals.
func (s *Service) Finish(ctx context.Context, cart *domain.Cart) (domain.SettleTxResult, error) {
	l := zerolog.Ctx(ctx)

	if cart.IsEmpty() {
		return domain.SettleTxResult{}, domain.ErrEmptyCart
	}

	chargeTotal := cart.TotalCharge()
	creditTotal := cart.TotalCredit()

	arg := domain.CreateTransactionParams{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Lines:        cart.Lines(),
		ChargeTotal:  chargeTotal,
		CreditTotal:  creditTotal,
		NetCashDelta: chargeTotal.Sub(creditTotal),
	}

	result, err := s.repo.Settle(ctx, arg)
	if err != nil {
		l.Error().Err(err).Send()
		return result, domain.ErrSettlementFailed
	}

	cart.Clear()

	return result, nil
}
