package service

import (
	"context"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"eshmarket/internal/purchase/models"
	"eshmarket/internal/sentinel"
	id "eshmarket/pkg/domain"
)

func (s *ServiceSuite) TestExpireStale_RejectsPendingAndEditsNotification() {
	req, token := s.pendingRequest()

	s.mockStore.EXPECT().ExpireTokens(gomock.Any(), testNow).Return([]*models.ReviewToken{token}, nil)
	s.mockStore.EXPECT().
		TransitionStatus(gomock.Any(), req.ID, models.StatusPendingReview, models.StatusRejected, testNow).
		Return(nil)
	s.mockStore.EXPECT().FindRequest(gomock.Any(), req.ID).Return(req, nil)
	s.expectParties()
	s.mockChannel.EXPECT().UpdateReview(gomock.Any(), "msg-42", gomock.Any()).Return(nil)

	expired, err := s.service.ExpireStale(context.Background())
	require.NoError(s.T(), err)
	require.Equal(s.T(), 1, expired)
}

func (s *ServiceSuite) TestExpireStale_SkipsRequestsResolvedMidSweep() {
	token := &models.ReviewToken{Value: "tok-raced", RequestID: id.NewPurchaseID(), ExpiresAt: testNow}

	s.mockStore.EXPECT().ExpireTokens(gomock.Any(), testNow).Return([]*models.ReviewToken{token}, nil)
	s.mockStore.EXPECT().
		TransitionStatus(gomock.Any(), token.RequestID, models.StatusPendingReview, models.StatusRejected, testNow).
		Return(sentinel.ErrInvalidState)

	expired, err := s.service.ExpireStale(context.Background())
	require.NoError(s.T(), err)
	require.Equal(s.T(), 0, expired)
}

func (s *ServiceSuite) TestExpireStale_NothingToDo() {
	s.mockStore.EXPECT().ExpireTokens(gomock.Any(), testNow).Return(nil, nil)

	expired, err := s.service.ExpireStale(context.Background())
	require.NoError(s.T(), err)
	require.Equal(s.T(), 0, expired)
}
