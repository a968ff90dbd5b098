package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"eshmarket/internal/purchase/models"
	dErrors "eshmarket/pkg/domain-errors"
)

func (s *ServiceSuite) TestInitiateProofReview_Success() {
	ctx := context.Background()
	proof := []byte("fake-png-bytes")

	s.expectParties()

	var created *models.Request
	var createdToken *models.ReviewToken
	post := s.mockChannel.EXPECT().
		PostReview(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("msg-42", nil)
	create := s.mockStore.EXPECT().
		CreateRequest(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *models.Request, token *models.ReviewToken) error {
			created = r
			createdToken = token
			return nil
		})
	// The request must not exist until the reviewer can see the notification.
	gomock.InOrder(post, create)

	req, err := s.service.InitiateProofReview(ctx, s.account.ID, s.product.ID, proof, "receipt.png")
	require.NoError(s.T(), err)

	require.Equal(s.T(), models.StatusPendingReview, req.Status)
	require.Equal(s.T(), models.PathProofReview, req.Path)
	require.Equal(s.T(), "msg-42", req.MessageID)
	require.Equal(s.T(), "receipt.png", req.ProofFilename)
	require.Nil(s.T(), req.ResolvedAt)

	require.Same(s.T(), req, created)
	require.NotNil(s.T(), createdToken)
	require.NotEmpty(s.T(), createdToken.Value)
	require.Equal(s.T(), req.ID, createdToken.RequestID)
	require.Equal(s.T(), testNow.Add(24*time.Hour), createdToken.ExpiresAt)
}

func (s *ServiceSuite) TestInitiateProofReview_EmptyProof() {
	_, err := s.service.InitiateProofReview(context.Background(), s.account.ID, s.product.ID, nil, "")
	require.True(s.T(), dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestInitiateProofReview_ProofTooLarge() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(
		s.mockStore, s.mockAccounts, s.mockProducts, s.mockDonations, s.mockChannel,
		"https://shop.example", logger,
		WithMaxProofBytes(4),
	)

	_, err := svc.InitiateProofReview(context.Background(), s.account.ID, s.product.ID, []byte("12345"), "big.png")
	require.True(s.T(), dErrors.HasCode(err, dErrors.CodePayloadTooLarge))
}

func (s *ServiceSuite) TestInitiateProofReview_AlreadyOwned() {
	s.account.PurchasedProductIDs = append(s.account.PurchasedProductIDs, s.product.ID)
	s.expectParties()

	_, err := s.service.InitiateProofReview(context.Background(), s.account.ID, s.product.ID, []byte("img"), "receipt.png")
	require.True(s.T(), dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestInitiateProofReview_NotificationFailureAbortsRequest() {
	s.expectParties()
	s.mockChannel.EXPECT().
		PostReview(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("webhook 503"))
	// CreateRequest is never expected: a pending request nobody can review
	// must not come into existence.

	_, err := s.service.InitiateProofReview(context.Background(), s.account.ID, s.product.ID, []byte("img"), "receipt.png")
	require.True(s.T(), dErrors.HasCode(err, dErrors.CodeInternal))
}
