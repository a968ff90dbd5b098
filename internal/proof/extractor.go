// Package proof verifies purchase proof artifacts. Two variants exist:
// human review (the coordinator routes the artifact to a reviewer channel)
// and a keyword heuristic over OCR-extracted text. The heuristic is weak on
// purpose: any image containing the right words passes, regardless of its
// visual content. It is kept isolated behind the Verifier interface so it
// can be swapped without touching the coordinator's state machine.
package proof

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"eshmarket/internal/sentinel"
)

// Extractor produces text from an image. A failure means "cannot currently
// verify via this path", not "verification failed": callers must not consume
// the artifact or transition request state on error.
type Extractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// HTTPExtractor calls an external OCR service.
type HTTPExtractor struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPExtractor constructs an OCR adapter. A nil client falls back to a
// timeout-bound default.
func NewHTTPExtractor(endpoint string, client *http.Client) *HTTPExtractor {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPExtractor{endpoint: endpoint, httpClient: client}
}

type extractResponse struct {
	Text string `json:"text"`
}

// ExtractText uploads the image and returns the recognized text.
// No retries; failures surface wrapped in sentinel.ErrUnavailable.
func (e *HTTPExtractor) ExtractText(ctx context.Context, image []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "proof")
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(image); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("text extraction: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("text extraction: %w: status %d", sentinel.ErrUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("text extraction: read response: %w", sentinel.ErrUnavailable)
	}
	var out extractResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("text extraction: decode response: %w", sentinel.ErrUnavailable)
	}
	return out.Text, nil
}
