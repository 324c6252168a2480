package settlementservice

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/beverage-pos/internal/domain"
)

func testCatalog() domain.Catalog {
	return domain.Catalog{
		"cola-bottle": {
			ID:          "cola-bottle",
			Name:        "Cola Bottle",
			Kind:        domain.KindBottle,
			UnitPrice:   decimal.RequireFromString("1.00"),
			UnitDeposit: decimal.RequireFromString("0.20"),
		},
		"empty-bottle": {
			ID:          "empty-bottle",
			Name:        "Empty Bottle",
			Kind:        domain.KindEmpty,
			UnitPrice:   decimal.Zero,
			UnitDeposit: decimal.RequireFromString("0.20"),
		},
	}
}

func testCart(t *testing.T) *domain.Cart {
	t.Helper()

	cart := domain.NewCart(testCatalog())

	_, err := cart.AddLine("cola-bottle", domain.KindBottle, 2)
	require.NoError(t, err)
	_, err = cart.AddLine("empty-bottle", domain.KindEmpty, 1)
	require.NoError(t, err)

	return cart
}

func TestFinish(t *testing.T) {
	testCases := []struct {
		name          string
		cart          func(t *testing.T) *domain.Cart
		buildStubs    func(repo *MockRepo)
		checkResponse func(t *testing.T, cart *domain.Cart, res domain.SettleTxResult, err error)
	}{
		{
			name: "EmptyCart",
			cart: func(t *testing.T) *domain.Cart {
				return domain.NewCart(testCatalog())
			},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Settle(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, cart *domain.Cart, res domain.SettleTxResult, err error) {
				require.ErrorIs(t, err, domain.ErrEmptyCart)
				require.Empty(t, res)
			},
		},
		{
			name: "OK",
			cart: testCart,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Settle(gomock.Any(), gomock.Any()).
					Times(1).
					DoAndReturn(func(_ context.Context, arg domain.CreateTransactionParams) (domain.SettleTxResult, error) {
						require.NotEmpty(t, arg.ID)
						require.False(t, arg.CreatedAt.IsZero())
						require.Len(t, arg.Lines, 2)
						require.Equal(t, "2.40", arg.ChargeTotal.StringFixed(2))
						require.Equal(t, "0.20", arg.CreditTotal.StringFixed(2))
						require.Equal(t, "2.20", arg.NetCashDelta.StringFixed(2))

						return domain.SettleTxResult{
							Record: domain.TransactionRecord{
								ID:           arg.ID,
								CreatedAt:    arg.CreatedAt,
								Lines:        arg.Lines,
								ChargeTotal:  arg.ChargeTotal,
								CreditTotal:  arg.CreditTotal,
								NetCashDelta: arg.NetCashDelta,
							},
							Balance: decimal.RequireFromString("102.20"),
						}, nil
					})
			},
			checkResponse: func(t *testing.T, cart *domain.Cart, res domain.SettleTxResult, err error) {
				require.NoError(t, err)
				require.True(t, cart.IsEmpty())
				require.Equal(t, "102.20", res.Balance.StringFixed(2))
				require.Equal(t, "2.20", res.Record.NetCashDelta.StringFixed(2))
			},
		},
		{
			name: "RepoError",
			cart: testCart,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Settle(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.SettleTxResult{}, domain.ErrSettlementFailed)
			},
			checkResponse: func(t *testing.T, cart *domain.Cart, res domain.SettleTxResult, err error) {
				require.ErrorIs(t, err, domain.ErrSettlementFailed)
				require.Equal(t, 2, cart.Len())
				require.Equal(t, "2.20", cart.NetAmount().StringFixed(2))
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			service := New(repo)
			cart := tc.cart(t)

			res, err := service.Finish(context.Background(), cart)
			tc.checkResponse(t, cart, res, err)
		})
	}
}

func TestFinishRetryAfterFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	service := New(repo)
	cart := testCart(t)

	var firstArg domain.CreateTransactionParams

	first := repo.EXPECT().
		Settle(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg domain.CreateTransactionParams) (domain.SettleTxResult, error) {
			firstArg = arg
			return domain.SettleTxResult{}, domain.ErrLedgerUnavailable
		})

	repo.EXPECT().
		Settle(gomock.Any(), gomock.Any()).
		After(first).
		DoAndReturn(func(_ context.Context, arg domain.CreateTransactionParams) (domain.SettleTxResult, error) {
			// The retry must carry the same totals as the failed attempt.
			require.True(t, arg.ChargeTotal.Equal(firstArg.ChargeTotal))
			require.True(t, arg.CreditTotal.Equal(firstArg.CreditTotal))
			require.True(t, arg.NetCashDelta.Equal(firstArg.NetCashDelta))

			return domain.SettleTxResult{
				Balance: decimal.RequireFromString("102.20"),
			}, nil
		})

	_, err := service.Finish(context.Background(), cart)
	require.ErrorIs(t, err, domain.ErrSettlementFailed)
	require.Equal(t, 2, cart.Len())

	res, err := service.Finish(context.Background(), cart)
	require.NoError(t, err)
	require.True(t, cart.IsEmpty())
	require.Equal(t, "102.20", res.Balance.StringFixed(2))
}
