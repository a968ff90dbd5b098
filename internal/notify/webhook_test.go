package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"eshmarket/internal/sentinel"
)

func testEmbed() Embed {
	return Embed{
		Title: "Purchase awaiting review",
		Fields: []Field{
			{Name: "Buyer", Value: "rivka", Inline: true},
		},
		Color: ColorPending,
	}
}

func TestPostReview_SendsMultipartAndReturnsMessageID(t *testing.T) {
	var gotQuery string
	var gotPayload struct {
		Embeds []Embed `json:"embeds"`
	}
	var gotFile []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("payload_json")), &gotPayload))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "receipt.png", header.Filename)
		gotFile, err = io.ReadAll(file)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg-77","channel_id":"ch-1"}`))
	}))
	defer srv.Close()

	c := NewWebhookClient(srv.URL, "", srv.Client())
	messageID, err := c.PostReview(context.Background(), testEmbed(), File{
		Name: "receipt.png",
		Data: []byte("png-bytes"),
	})
	require.NoError(t, err)
	require.Equal(t, "msg-77", messageID)
	require.Equal(t, "wait=true", gotQuery)
	require.Len(t, gotPayload.Embeds, 1)
	require.Equal(t, "Purchase awaiting review", gotPayload.Embeds[0].Title)
	require.Equal(t, []byte("png-bytes"), gotFile)
}

func TestUpdateReview_PatchesMessage(t *testing.T) {
	var gotMethod, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewWebhookClient(srv.URL, "", srv.Client())
	err := c.UpdateReview(context.Background(), "msg-77", testEmbed())
	require.NoError(t, err)
	require.Equal(t, http.MethodPatch, gotMethod)
	require.Equal(t, "/messages/msg-77", gotPath)
}

func TestDirectMessage_OpensDMThenSendsFile(t *testing.T) {
	var paths []string
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		if r.URL.Path == "/users/@me/channels" {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "ext-42", body["recipient_id"])
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"dm-1"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewWebhookClient("", "bot-token", srv.Client(), WithAPIBase(srv.URL))
	err := c.DirectMessage(context.Background(), "ext-42", testEmbed(), File{
		Name: "AutoFarm.lua",
		Data: []byte("print('hi')"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"/users/@me/channels", "/channels/dm-1/messages"}, paths)
	require.Equal(t, "Bot bot-token", gotAuth)
}

func TestPostReview_PlatformErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewWebhookClient(srv.URL, "", srv.Client())
	_, err := c.PostReview(context.Background(), testEmbed(), File{Name: "x.png", Data: []byte("x")})
	require.ErrorIs(t, err, sentinel.ErrUnavailable)
}
