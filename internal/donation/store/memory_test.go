package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eshmarket/internal/donation/models"
	"eshmarket/internal/sentinel"
)

func donation(tx, name string, amount int64, at time.Time) *models.Donation {
	return &models.Donation{TransactionID: tx, SupporterName: name, Amount: amount, CreatedAt: at}
}

func TestAppend_RejectsDuplicateTransaction(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	now := time.Now()

	require.NoError(t, s.Append(ctx, donation("trx-1", "rivka", 50000, now)))
	err := s.Append(ctx, donation("trx-1", "rivka", 50000, now))
	require.ErrorIs(t, err, sentinel.ErrAlreadyUsed)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestFindMatch_ExactAmountOnly(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	now := time.Now()

	require.NoError(t, s.Append(ctx, donation("trx-1", "rivka", 49000, now)))
	require.NoError(t, s.Append(ctx, donation("trx-2", "rivka", 51000, now)))

	// Off-by-one amounts never match; there is no fee tolerance.
	_, err := s.FindMatch(ctx, "rivka", 50000, now.Add(-time.Hour))
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	got, err := s.FindMatch(ctx, "rivka", 49000, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, "trx-1", got.TransactionID)
}

func TestFindMatch_CaseInsensitiveName(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	now := time.Now()

	require.NoError(t, s.Append(ctx, donation("trx-1", "Rivka", 50000, now)))

	got, err := s.FindMatch(ctx, "rivka", 50000, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, "trx-1", got.TransactionID)

	_, err = s.FindMatch(ctx, "rivka2", 50000, now.Add(-time.Hour))
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestFindMatch_WindowExcludesOldDonations(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	now := time.Now()

	require.NoError(t, s.Append(ctx, donation("trx-old", "rivka", 50000, now.Add(-time.Hour))))

	_, err := s.FindMatch(ctx, "rivka", 50000, now.Add(-10*time.Minute))
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	got, err := s.FindMatch(ctx, "rivka", 50000, now.Add(-2*time.Hour))
	require.NoError(t, err)
	require.Equal(t, "trx-old", got.TransactionID)
}

func TestFindMatch_PrefersMostRecent(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	now := time.Now()

	require.NoError(t, s.Append(ctx, donation("trx-1", "rivka", 50000, now.Add(-5*time.Minute))))
	require.NoError(t, s.Append(ctx, donation("trx-2", "rivka", 50000, now.Add(-time.Minute))))

	got, err := s.FindMatch(ctx, "rivka", 50000, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, "trx-2", got.TransactionID)
}

func TestList_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	now := time.Now()

	require.NoError(t, s.Append(ctx, donation("trx-1", "a", 100, now.Add(-2*time.Minute))))
	require.NoError(t, s.Append(ctx, donation("trx-2", "b", 200, now.Add(-time.Minute))))
	require.NoError(t, s.Append(ctx, donation("trx-3", "c", 300, now)))

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "trx-3", all[0].TransactionID)
	require.Equal(t, "trx-1", all[2].TransactionID)
}
