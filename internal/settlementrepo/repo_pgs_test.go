package settlementrepo

import (
	"context"
	"database/sql"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/beverage-pos/internal/domain"
	"github.com/go-petr/beverage-pos/internal/ledgerrepo"
	"github.com/go-petr/beverage-pos/pkg/configpkg"
	"github.com/go-petr/beverage-pos/pkg/dbpkg"
	"github.com/go-petr/beverage-pos/pkg/randompkg"
)

var (
	testDB     *sql.DB
	testRepo   *RepoPGS
	testLedger *ledgerrepo.RepoPGS
)

func TestMain(m *testing.M) {
	config, err := configpkg.Load("../../configs")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	testDB, err = dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		log.Fatal("cannot connect to db:", err)
	}

	testRepo = NewRepoPGS(testDB, config.LedgerLabel)
	testLedger = ledgerrepo.NewRepoPGS(testDB, config.LedgerLabel)

	os.Exit(m.Run())
}

func testParams() domain.CreateTransactionParams {
	lines := []domain.LineItem{
		{
			CatalogID:   randompkg.ItemID(),
			Name:        "Cola Bottle",
			Kind:        domain.KindBottle,
			Quantity:    2,
			UnitPrice:   decimal.RequireFromString("1.00"),
			UnitDeposit: decimal.RequireFromString("0.20"),
		},
		{
			CatalogID:   randompkg.ItemID(),
			Name:        "Empty Bottle (Std)",
			Kind:        domain.KindEmpty,
			Quantity:    1,
			UnitPrice:   decimal.Zero,
			UnitDeposit: decimal.RequireFromString("0.20"),
		},
	}

	return domain.CreateTransactionParams{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().Truncate(time.Second).UTC(),
		Lines:        lines,
		ChargeTotal:  decimal.RequireFromString("2.40"),
		CreditTotal:  decimal.RequireFromString("0.20"),
		NetCashDelta: decimal.RequireFromString("2.20"),
	}
}

func TestSettle(t *testing.T) {
	ctx := context.Background()

	before, err := testLedger.Balance(ctx)
	require.NoError(t, err)

	arg := testParams()

	result, err := testRepo.Settle(ctx, arg)
	require.NoError(t, err)

	require.Equal(t, before.Add(arg.NetCashDelta).StringFixed(2), result.Balance.StringFixed(2))
	require.Equal(t, arg.ID, result.Record.ID)
	require.Equal(t, arg.NetCashDelta.StringFixed(2), result.Record.NetCashDelta.StringFixed(2))
	require.Len(t, result.Record.Lines, 2)

	stored, err := testRepo.Get(ctx, arg.ID)
	require.NoError(t, err)
	require.Equal(t, arg.ChargeTotal.StringFixed(2), stored.ChargeTotal.StringFixed(2))
	require.Equal(t, arg.CreditTotal.StringFixed(2), stored.CreditTotal.StringFixed(2))
	require.Len(t, stored.Lines, 2)
	require.Equal(t, arg.Lines[0].CatalogID, stored.Lines[0].CatalogID)
	require.Equal(t, int32(2), stored.Lines[0].Quantity)
}

func TestSettleNegativeDelta(t *testing.T) {
	ctx := context.Background()

	before, err := testLedger.Balance(ctx)
	require.NoError(t, err)

	arg := testParams()
	arg.ID = uuid.NewString()
	arg.Lines = arg.Lines[1:]
	arg.ChargeTotal = decimal.Zero
	arg.CreditTotal = decimal.RequireFromString("0.20")
	arg.NetCashDelta = decimal.RequireFromString("-0.20")

	result, err := testRepo.Settle(ctx, arg)
	require.NoError(t, err)
	require.Equal(t, before.Sub(decimal.RequireFromString("0.20")).StringFixed(2), result.Balance.StringFixed(2))
}

func TestSettleRollsBackOnBadLine(t *testing.T) {
	ctx := context.Background()

	before, err := testLedger.Balance(ctx)
	require.NoError(t, err)

	arg := testParams()
	arg.ID = uuid.NewString()
	arg.Lines[1].Quantity = 0 // violates the quantity check

	_, err = testRepo.Settle(ctx, arg)
	require.ErrorIs(t, err, domain.ErrSettlementFailed)

	// The ledger increment from the failed settlement must not stick.
	after, err := testLedger.Balance(ctx)
	require.NoError(t, err)
	require.Equal(t, before.StringFixed(2), after.StringFixed(2))

	_, err = testRepo.Get(ctx, arg.ID)
	require.Error(t, err)
}

func TestSettleDuplicateIDFails(t *testing.T) {
	ctx := context.Background()

	arg := testParams()

	_, err := testRepo.Settle(ctx, arg)
	require.NoError(t, err)

	before, err := testLedger.Balance(ctx)
	require.NoError(t, err)

	_, err = testRepo.Settle(ctx, arg)
	require.ErrorIs(t, err, domain.ErrSettlementFailed)

	after, err := testLedger.Balance(ctx)
	require.NoError(t, err)
	require.Equal(t, before.StringFixed(2), after.StringFixed(2))
}
