package service

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"eshmarket/internal/purchase/models"
	"eshmarket/internal/sentinel"
	id "eshmarket/pkg/domain"
	dErrors "eshmarket/pkg/domain-errors"
)

func (s *ServiceSuite) pendingRequest() (*models.Request, *models.ReviewToken) {
	req := &models.Request{
		ID:            id.NewPurchaseID(),
		AccountID:     s.account.ID,
		ProductID:     s.product.ID,
		Path:          models.PathProofReview,
		Status:        models.StatusPendingReview,
		ProofFilename: "receipt.png",
		MessageID:     "msg-42",
		CreatedAt:     testNow,
	}
	token := &models.ReviewToken{
		Value:     "tok-abc",
		RequestID: req.ID,
		CreatedAt: testNow,
		ExpiresAt: testNow.Add(24 * time.Hour),
	}
	return req, token
}

func (s *ServiceSuite) TestApprove_Success() {
	ctx := context.Background()
	req, token := s.pendingRequest()

	s.mockStore.EXPECT().ConsumeToken(gomock.Any(), "tok-abc", testNow).Return(token, nil)
	s.mockStore.EXPECT().
		TransitionStatus(gomock.Any(), req.ID, models.StatusPendingReview, models.StatusGranted, testNow).
		Return(nil)
	s.mockStore.EXPECT().FindRequest(gomock.Any(), req.ID).Return(req, nil).Times(2)
	s.expectParties()
	s.mockAccounts.EXPECT().Grant(gomock.Any(), s.account.ID, s.product.ID, int64(0)).Return(nil)
	s.mockChannel.EXPECT().UpdateReview(gomock.Any(), "msg-42", gomock.Any()).Return(nil)
	s.mockChannel.EXPECT().
		DirectMessage(gomock.Any(), s.account.ExternalID, gomock.Any(), gomock.Any()).
		Return(nil)

	got, err := s.service.Approve(ctx, "tok-abc")
	require.NoError(s.T(), err)
	require.Equal(s.T(), req.ID, got.ID)
}

func (s *ServiceSuite) TestApprove_ReplayReportsAlreadyResolved() {
	s.mockStore.EXPECT().
		ConsumeToken(gomock.Any(), "tok-abc", testNow).
		Return(nil, sentinel.ErrAlreadyUsed)

	_, err := s.service.Approve(context.Background(), "tok-abc")
	require.True(s.T(), dErrors.HasCode(err, dErrors.CodeAlreadyResolved))
}

func (s *ServiceSuite) TestApprove_UnknownTokenReportsNotFound() {
	s.mockStore.EXPECT().
		ConsumeToken(gomock.Any(), "tok-nope", testNow).
		Return(nil, sentinel.ErrNotFound)

	_, err := s.service.Approve(context.Background(), "tok-nope")
	require.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestApprove_ExpiredTokenReportsAlreadyResolved() {
	s.mockStore.EXPECT().
		ConsumeToken(gomock.Any(), "tok-old", testNow).
		Return(nil, sentinel.ErrExpired)

	_, err := s.service.Approve(context.Background(), "tok-old")
	require.True(s.T(), dErrors.HasCode(err, dErrors.CodeAlreadyResolved))
}

func (s *ServiceSuite) TestApprove_RaceLoserReportsAlreadyResolved() {
	req, token := s.pendingRequest()

	s.mockStore.EXPECT().ConsumeToken(gomock.Any(), "tok-abc", testNow).Return(token, nil)
	s.mockStore.EXPECT().FindRequest(gomock.Any(), req.ID).Return(req, nil)
	s.expectParties()
	s.mockStore.EXPECT().
		TransitionStatus(gomock.Any(), req.ID, models.StatusPendingReview, models.StatusGranted, testNow).
		Return(sentinel.ErrInvalidState)

	_, err := s.service.Approve(context.Background(), "tok-abc")
	require.True(s.T(), dErrors.HasCode(err, dErrors.CodeAlreadyResolved))
}

func (s *ServiceSuite) TestApprove_VanishedAccountLeavesRequestPending() {
	req, token := s.pendingRequest()

	s.mockStore.EXPECT().ConsumeToken(gomock.Any(), "tok-abc", testNow).Return(token, nil)
	s.mockStore.EXPECT().FindRequest(gomock.Any(), req.ID).Return(req, nil)
	s.mockAccounts.EXPECT().
		FindByID(gomock.Any(), s.account.ID).
		Return(nil, sentinel.ErrNotFound)
	s.mockProducts.EXPECT().
		FindByID(gomock.Any(), s.product.ID).
		Return(s.product, nil).
		MaxTimes(1)
	// The token goes back so the request is not stranded: no transition to
	// granted may happen, and no entitlement may be appended.
	s.mockStore.EXPECT().ReleaseToken(gomock.Any(), "tok-abc").Return(nil)

	_, err := s.service.Approve(context.Background(), "tok-abc")
	require.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestApprove_AlreadyOwnedToleratedAsReplayIntent() {
	req, token := s.pendingRequest()

	s.mockStore.EXPECT().ConsumeToken(gomock.Any(), "tok-abc", testNow).Return(token, nil)
	s.mockStore.EXPECT().
		TransitionStatus(gomock.Any(), req.ID, models.StatusPendingReview, models.StatusGranted, testNow).
		Return(nil)
	s.mockStore.EXPECT().FindRequest(gomock.Any(), req.ID).Return(req, nil).Times(2)
	s.expectParties()
	s.mockAccounts.EXPECT().
		Grant(gomock.Any(), s.account.ID, s.product.ID, int64(0)).
		Return(sentinel.ErrAlreadyOwned)
	s.mockChannel.EXPECT().UpdateReview(gomock.Any(), "msg-42", gomock.Any()).Return(nil)
	s.mockChannel.EXPECT().
		DirectMessage(gomock.Any(), s.account.ExternalID, gomock.Any(), gomock.Any()).
		Return(nil)

	_, err := s.service.Approve(context.Background(), "tok-abc")
	require.NoError(s.T(), err)
}

func (s *ServiceSuite) TestApprove_EditFailureDoesNotBlockFulfillment() {
	req, token := s.pendingRequest()

	s.mockStore.EXPECT().ConsumeToken(gomock.Any(), "tok-abc", testNow).Return(token, nil)
	s.mockStore.EXPECT().
		TransitionStatus(gomock.Any(), req.ID, models.StatusPendingReview, models.StatusGranted, testNow).
		Return(nil)
	s.mockStore.EXPECT().FindRequest(gomock.Any(), req.ID).Return(req, nil).Times(2)
	s.expectParties()
	s.mockAccounts.EXPECT().Grant(gomock.Any(), s.account.ID, s.product.ID, int64(0)).Return(nil)
	s.mockChannel.EXPECT().
		UpdateReview(gomock.Any(), "msg-42", gomock.Any()).
		Return(errors.New("message deleted"))
	s.mockChannel.EXPECT().
		DirectMessage(gomock.Any(), s.account.ExternalID, gomock.Any(), gomock.Any()).
		Return(nil)

	_, err := s.service.Approve(context.Background(), "tok-abc")
	require.NoError(s.T(), err)
}
