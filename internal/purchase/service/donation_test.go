package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	donationmodels "eshmarket/internal/donation/models"
	"eshmarket/internal/purchase/models"
	"eshmarket/internal/sentinel"
	dErrors "eshmarket/pkg/domain-errors"
)

func (s *ServiceSuite) TestDonation_BalanceFastPathDebitsPrice() {
	s.account.Balance.Money = 30000 // price is 25000
	s.expectParties()
	s.mockAccounts.EXPECT().
		Grant(gomock.Any(), s.account.ID, s.product.ID, s.product.Price.Money).
		Return(nil)
	s.mockStore.EXPECT().CreateRequest(gomock.Any(), gomock.Any(), nil).Return(nil)
	s.mockChannel.EXPECT().
		DirectMessage(gomock.Any(), s.account.ExternalID, gomock.Any(), gomock.Any()).
		Return(nil)
	// The ledger is never consulted when the balance covers the price.

	req, err := s.service.InitiateDonation(context.Background(), s.account.ID, s.product.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), models.StatusGranted, req.Status)
	require.Equal(s.T(), models.PathDonation, req.Path)
	require.NotNil(s.T(), req.ResolvedAt)
}

func (s *ServiceSuite) TestDonation_LedgerMatchGrantsWithoutDebit() {
	s.expectParties()
	s.mockDonations.EXPECT().
		FindMatch(gomock.Any(), s.account.Username, s.product.Price.Money, testNow.Add(-10*time.Minute)).
		Return(&donationmodels.Donation{
			TransactionID: "trx-1",
			SupporterName: s.account.Username,
			Amount:        s.product.Price.Money,
			CreatedAt:     testNow.Add(-time.Minute),
		}, nil)
	s.mockAccounts.EXPECT().Grant(gomock.Any(), s.account.ID, s.product.ID, int64(0)).Return(nil)
	s.mockStore.EXPECT().CreateRequest(gomock.Any(), gomock.Any(), nil).Return(nil)
	s.mockChannel.EXPECT().
		DirectMessage(gomock.Any(), s.account.ExternalID, gomock.Any(), gomock.Any()).
		Return(nil)

	req, err := s.service.InitiateDonation(context.Background(), s.account.ID, s.product.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), models.StatusGranted, req.Status)
}

func (s *ServiceSuite) TestDonation_CreditOnMatchDebitsThroughBalance() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(
		s.mockStore, s.mockAccounts, s.mockProducts, s.mockDonations, s.mockChannel,
		"https://shop.example", logger,
		WithClock(func() time.Time { return testNow }),
		WithCreditOnMatch(true),
	)

	s.expectParties()
	s.mockDonations.EXPECT().
		FindMatch(gomock.Any(), s.account.Username, s.product.Price.Money, gomock.Any()).
		Return(&donationmodels.Donation{
			TransactionID: "trx-2",
			SupporterName: s.account.Username,
			Amount:        s.product.Price.Money,
			CreatedAt:     testNow.Add(-time.Minute),
		}, nil)
	credit := s.mockAccounts.EXPECT().
		Credit(gomock.Any(), s.account.Username, s.product.Price.Money).
		Return(s.account, nil)
	grant := s.mockAccounts.EXPECT().
		Grant(gomock.Any(), s.account.ID, s.product.ID, s.product.Price.Money).
		Return(nil)
	gomock.InOrder(credit, grant)
	s.mockStore.EXPECT().CreateRequest(gomock.Any(), gomock.Any(), nil).Return(nil)
	s.mockChannel.EXPECT().
		DirectMessage(gomock.Any(), s.account.ExternalID, gomock.Any(), gomock.Any()).
		Return(nil)

	_, err := svc.InitiateDonation(context.Background(), s.account.ID, s.product.ID)
	require.NoError(s.T(), err)
}

func (s *ServiceSuite) TestDonation_MatchByExternalID() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(
		s.mockStore, s.mockAccounts, s.mockProducts, s.mockDonations, s.mockChannel,
		"https://shop.example", logger,
		WithClock(func() time.Time { return testNow }),
		WithMatchField(MatchByExternalID),
	)

	s.expectParties()
	s.mockDonations.EXPECT().
		FindMatch(gomock.Any(), s.account.ExternalID, s.product.Price.Money, gomock.Any()).
		Return(nil, sentinel.ErrNotFound)
	s.mockStore.EXPECT().CreateRequest(gomock.Any(), gomock.Any(), nil).Return(nil)

	_, err := svc.InitiateDonation(context.Background(), s.account.ID, s.product.ID)
	require.True(s.T(), dErrors.HasCode(err, dErrors.CodeNoMatchingPayment))
}

func (s *ServiceSuite) TestDonation_NoMatchRecordsRejection() {
	s.expectParties()
	s.mockDonations.EXPECT().
		FindMatch(gomock.Any(), s.account.Username, s.product.Price.Money, gomock.Any()).
		Return(nil, sentinel.ErrNotFound)

	var recorded *models.Request
	s.mockStore.EXPECT().
		CreateRequest(gomock.Any(), gomock.Any(), nil).
		DoAndReturn(func(_ context.Context, r *models.Request, _ *models.ReviewToken) error {
			recorded = r
			return nil
		})

	req, err := s.service.InitiateDonation(context.Background(), s.account.ID, s.product.ID)
	require.True(s.T(), dErrors.HasCode(err, dErrors.CodeNoMatchingPayment))
	require.Equal(s.T(), models.StatusRejected, req.Status)
	require.Same(s.T(), req, recorded)
}

func (s *ServiceSuite) TestDonation_AlreadyOwned() {
	s.account.PurchasedProductIDs = append(s.account.PurchasedProductIDs, s.product.ID)
	s.expectParties()

	_, err := s.service.InitiateDonation(context.Background(), s.account.ID, s.product.ID)
	require.True(s.T(), dErrors.HasCode(err, dErrors.CodeConflict))
}
