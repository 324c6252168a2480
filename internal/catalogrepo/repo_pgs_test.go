package catalogrepo

import (
	"context"
	"log"
	"os"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/beverage-pos/internal/domain"
	"github.com/go-petr/beverage-pos/pkg/configpkg"
	"github.com/go-petr/beverage-pos/pkg/dbpkg"
)

var testConfig configpkg.Config

func TestMain(m *testing.M) {
	config, err := configpkg.Load("../../configs")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	testConfig = config

	os.Exit(m.Run())
}

func TestLoad(t *testing.T) {
	tx := dbpkg.SetupTX(t, testConfig.DBDriver, testConfig.DBSource)
	testRepo := NewRepoPGS(tx)

	catalog, err := testRepo.Load(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, catalog)

	for id, entry := range catalog {
		require.Equal(t, id, entry.ID)
		require.NotEmpty(t, entry.Name)
		require.True(t, entry.Kind.IsValid())
		require.False(t, entry.UnitPrice.IsNegative())
		require.False(t, entry.UnitDeposit.IsNegative())

		if entry.Kind == domain.KindEmpty {
			require.True(t, entry.UnitPrice.IsZero())
		}
	}
}

func TestLoadSeededEntries(t *testing.T) {
	tx := dbpkg.SetupTX(t, testConfig.DBDriver, testConfig.DBSource)
	testRepo := NewRepoPGS(tx)

	catalog, err := testRepo.Load(context.Background())
	require.NoError(t, err)

	entry, err := catalog.Entry("cola-crate", domain.KindCrate)
	require.NoError(t, err)
	require.Equal(t, "Cola Crate", entry.Name)
	require.Equal(t, "12.00", entry.UnitPrice.StringFixed(2))
	require.Equal(t, "5.00", entry.UnitDeposit.StringFixed(2))

	_, err = catalog.Entry("cola-crate", domain.KindBottle)
	require.ErrorIs(t, err, domain.ErrUnknownItem)
}
