package notify

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

const defaultAPIBase = "https://discord.com/api/v10"

// WebhookClient implements Channel against a chat platform webhook (for the
// reviewer channel) and a bot token (for DMs).
type WebhookClient struct {
	webhookURL string
	botToken   string
	apiBase    string
	httpClient *http.Client
}

// WebhookOption configures the WebhookClient.
type WebhookOption func(*WebhookClient)

// WithAPIBase overrides the bot REST API base URL, for tests.
func WithAPIBase(base string) WebhookOption {
	return func(c *WebhookClient) {
		if base != "" {
			c.apiBase = base
		}
	}
}

// NewWebhookClient constructs a webhook-backed notification channel.
// A nil client falls back to a timeout-bound default.
func NewWebhookClient(webhookURL, botToken string, client *http.Client, opts ...WebhookOption) *WebhookClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	c := &WebhookClient{
		webhookURL: webhookURL,
		botToken:   botToken,
		apiBase:    defaultAPIBase,
		httpClient: client,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type webhookResponse struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

// PostReview posts the embed plus proof attachment to the reviewer channel.
// The ?wait=true query makes the platform return the created message.
func (c *WebhookClient) PostReview(ctx context.Context, embed Embed, proof File) (string, error) {
	body, contentType, err := multipartPayload(embed, &proof)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL+"?wait=true", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	var resp webhookResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// UpdateReview edits a previously posted webhook message in place.
func (c *WebhookClient) UpdateReview(ctx context.Context, messageID string, embed Embed) error {
	payload, err := json.Marshal(map[string]any{"embeds": []Embed{embed}})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/messages/%s", c.webhookURL, messageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

// DirectMessage opens a DM channel with the user and sends the file.
func (c *WebhookClient) DirectMessage(ctx context.Context, recipientExternalID string, embed Embed, file File) error {
	channelID, err := c.createDM(ctx, recipientExternalID)
	if err != nil {
		return err
	}

	body, contentType, err := multipartPayload(embed, &file)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/channels/%s/messages", c.apiBase, channelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bot "+c.botToken)
	return c.do(req, nil)
}

func (c *WebhookClient) createDM(ctx context.Context, recipientExternalID string) (string, error) {
	payload, err := json.Marshal(map[string]string{"recipient_id": recipientExternalID})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/users/@me/channels", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+c.botToken)

	var resp webhookResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *WebhookClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notification delivery: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notification delivery: %w: status %d", sentinel.ErrUnavailable, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("notification delivery: read response: %w", err)
	}
	return json.Unmarshal(data, out)
}

// multipartPayload builds the platform's payload_json + file multipart body.
func multipartPayload(embed Embed, file *File) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	payload, err := json.Marshal(map[string]any{"embeds": []Embed{embed}})
	if err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("payload_json", string(payload)); err != nil {
		return nil, "", err
	}
	if file != nil && len(file.Data) > 0 {
		fw, err := mw.CreateFormFile("file", file.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write(file.Data); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
