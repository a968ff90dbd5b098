package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"eshmarket/internal/purchase/models"
	"eshmarket/internal/purchase/service/mocks"
	dErrors "eshmarket/pkg/domain-errors"
)

func (s *ServiceSuite) keywordService(verifier *mocks.MockProofVerifier) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(
		s.mockStore, s.mockAccounts, s.mockProducts, s.mockDonations, s.mockChannel,
		"https://shop.example", logger,
		WithProofVerifier(verifier),
	)
}

func (s *ServiceSuite) TestKeywordMode_AcceptGrantsSynchronously() {
	verifier := mocks.NewMockProofVerifier(s.ctrl)
	svc := s.keywordService(verifier)
	proof := []byte("screenshot")

	s.expectParties()
	verifier.EXPECT().Verify(gomock.Any(), proof).Return(true, nil)
	s.mockAccounts.EXPECT().Grant(gomock.Any(), s.account.ID, s.product.ID, int64(0)).Return(nil)
	s.mockStore.EXPECT().CreateRequest(gomock.Any(), gomock.Any(), nil).Return(nil)
	s.mockChannel.EXPECT().
		DirectMessage(gomock.Any(), s.account.ExternalID, gomock.Any(), gomock.Any()).
		Return(nil)

	req, err := svc.InitiateProofReview(context.Background(), s.account.ID, s.product.ID, proof, "receipt.png")
	require.NoError(s.T(), err)
	require.Equal(s.T(), models.StatusGranted, req.Status)
	require.NotNil(s.T(), req.ResolvedAt)
}

func (s *ServiceSuite) TestKeywordMode_RejectRecordsRequest() {
	verifier := mocks.NewMockProofVerifier(s.ctrl)
	svc := s.keywordService(verifier)

	s.expectParties()
	verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(false, nil)

	var recorded *models.Request
	s.mockStore.EXPECT().
		CreateRequest(gomock.Any(), gomock.Any(), nil).
		DoAndReturn(func(_ context.Context, r *models.Request, _ *models.ReviewToken) error {
			recorded = r
			return nil
		})

	_, err := svc.InitiateProofReview(context.Background(), s.account.ID, s.product.ID, []byte("img"), "receipt.png")
	require.True(s.T(), dErrors.HasCode(err, dErrors.CodeBadRequest))
	require.NotNil(s.T(), recorded)
	require.Equal(s.T(), models.StatusRejected, recorded.Status)
}

func (s *ServiceSuite) TestKeywordMode_ExtractionFailureLeavesNoTrace() {
	verifier := mocks.NewMockProofVerifier(s.ctrl)
	svc := s.keywordService(verifier)

	s.expectParties()
	verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(false, errors.New("ocr unreachable"))
	// Neither Grant nor CreateRequest may run: the buyer retries the same
	// submission once the extractor recovers.

	_, err := svc.InitiateProofReview(context.Background(), s.account.ID, s.product.ID, []byte("img"), "receipt.png")
	require.True(s.T(), dErrors.HasCode(err, dErrors.CodeExtraction))
}
