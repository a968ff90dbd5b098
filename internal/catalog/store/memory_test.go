package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eshmarket/internal/catalog/models"
	id "eshmarket/pkg/domain"
)

func seedProduct(t *testing.T, s *InMemory, title, description string, createdAt time.Time) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:          id.NewProductID(),
		Title:       title,
		Description: description,
		Price:       models.Price{DiamondLocks: 1, Money: 10000},
		Content:     "print('x')",
		CreatedAt:   createdAt,
	}
	require.NoError(t, s.Create(context.Background(), p))
	return p
}

func TestSearch_CaseInsensitiveTitleAndDescription(t *testing.T) {
	s := NewInMemory()
	now := time.Now()
	seedProduct(t, s, "AutoFarm", "Automates farming runs.", now)
	seedProduct(t, s, "TradeGuard", "Watches incoming trades.", now)

	byTitle, err := s.Search(context.Background(), "autofarm")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	require.Equal(t, "AutoFarm", byTitle[0].Title)

	byDescription, err := s.Search(context.Background(), "INCOMING TRADES")
	require.NoError(t, err)
	require.Len(t, byDescription, 1)
	require.Equal(t, "TradeGuard", byDescription[0].Title)

	none, err := s.Search(context.Background(), "fishing")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestSearch_NewestFirstCappedAtTen(t *testing.T) {
	s := NewInMemory()
	base := time.Now()
	for i := 0; i < 15; i++ {
		seedProduct(t, s, fmt.Sprintf("Script %02d", i), "utility script", base.Add(time.Duration(i)*time.Minute))
	}

	out, err := s.Search(context.Background(), "script")
	require.NoError(t, err)
	require.Len(t, out, 10)
	require.Equal(t, "Script 14", out[0].Title, "newest match comes first")
	for i := 1; i < len(out); i++ {
		require.True(t, out[i-1].CreatedAt.After(out[i].CreatedAt))
	}
}

func TestSearch_ReturnsCopies(t *testing.T) {
	s := NewInMemory()
	seedProduct(t, s, "AutoFarm", "Automates farming runs.", time.Now())

	out, err := s.Search(context.Background(), "auto")
	require.NoError(t, err)
	require.Len(t, out, 1)
	out[0].Title = "mutated"

	again, err := s.Search(context.Background(), "auto")
	require.NoError(t, err)
	require.Len(t, again, 1)
	require.Equal(t, "AutoFarm", again[0].Title)
}
