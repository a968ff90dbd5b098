package seeder

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	accountstore "eshmarket/internal/account/store"
	catalogstore "eshmarket/internal/catalog/store"
	donationstore "eshmarket/internal/donation/store"
)

func TestSeedAll_PopulatesEveryStore(t *testing.T) {
	products := catalogstore.NewInMemory()
	accounts := accountstore.NewInMemory()
	donations := donationstore.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := New(products, accounts, donations, logger)
	require.NoError(t, s.SeedAll(context.Background()))

	seededProducts, err := products.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, seededProducts)
	for _, p := range seededProducts {
		require.NotEmpty(t, p.Content, "seeded products must carry deliverable content")
	}

	seededAccounts, err := accounts.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, seededAccounts)

	var admins int
	for _, a := range seededAccounts {
		if a.IsAdmin {
			admins++
		}
	}
	require.Equal(t, 1, admins, "exactly one demo account is an admin")

	ledger, err := donations.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, ledger)
}

func TestSeedAll_LedgerHasAFreshExactPriceMatch(t *testing.T) {
	products := catalogstore.NewInMemory()
	accounts := accountstore.NewInMemory()
	donations := donationstore.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, New(products, accounts, donations, logger).SeedAll(context.Background()))

	seededProducts, err := products.List(context.Background())
	require.NoError(t, err)
	seededAccounts, err := accounts.List(context.Background())
	require.NoError(t, err)

	since := time.Now().Add(-10 * time.Minute)
	found := false
	for _, a := range seededAccounts {
		for _, p := range seededProducts {
			if _, err := donations.FindMatch(context.Background(), a.Username, p.Price.Money, since); err == nil {
				found = true
			}
		}
	}
	require.True(t, found, "at least one recent donation must exactly match a product price")
}
