package proof

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"eshmarket/internal/sentinel"
)

type extractorFunc func(ctx context.Context, image []byte) (string, error)

func (f extractorFunc) ExtractText(ctx context.Context, image []byte) (string, error) {
	return f(ctx, image)
}

func fixedText(text string) Extractor {
	return extractorFunc(func(context.Context, []byte) (string, error) { return text, nil })
}

func TestKeywordVerifier_AllPhrasesRequired(t *testing.T) {
	phrases := []string{"Pembayaran Berhasil", "Rp 50.000", "GoPay"}

	v := NewKeywordVerifier(fixedText("Pembayaran Berhasil via GoPay sebesar Rp 50.000"), phrases)
	ok, err := v.Verify(context.Background(), []byte("img"))
	require.NoError(t, err)
	require.True(t, ok)

	// One missing phrase fails the whole check.
	v = NewKeywordVerifier(fixedText("Pembayaran Berhasil sebesar Rp 50.000"), phrases)
	ok, err = v.Verify(context.Background(), []byte("img"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKeywordVerifier_EmptyPhraseListNeverPasses(t *testing.T) {
	v := NewKeywordVerifier(fixedText("anything at all"), nil)
	ok, err := v.Verify(context.Background(), []byte("img"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKeywordVerifier_ExtractionErrorPropagates(t *testing.T) {
	boom := errors.New("ocr down")
	v := NewKeywordVerifier(extractorFunc(func(context.Context, []byte) (string, error) {
		return "", boom
	}), []string{"phrase"})

	_, err := v.Verify(context.Background(), []byte("img"))
	require.ErrorIs(t, err, boom)
}

func TestHTTPExtractor_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, _, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"Pembayaran Berhasil"}`))
	}))
	defer srv.Close()

	e := NewHTTPExtractor(srv.URL, srv.Client())
	text, err := e.ExtractText(context.Background(), []byte("png-bytes"))
	require.NoError(t, err)
	require.Equal(t, "Pembayaran Berhasil", text)
}

func TestHTTPExtractor_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	e := NewHTTPExtractor(srv.URL, srv.Client())
	_, err := e.ExtractText(context.Background(), []byte("png-bytes"))
	require.ErrorIs(t, err, sentinel.ErrUnavailable)
}
