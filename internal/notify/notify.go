// Package notify delivers human-readable review notifications and
// fulfillment messages over a chat platform's webhook and bot REST API.
// It is a narrow adapter: the coordinator only needs "post a reviewable
// message with an attachment", "edit it in place later", and "DM a file to
// a user".
package notify

import "context"

// File is a named attachment.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Field is one labelled value inside an embed.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Embed is a rich chat message body.
type Embed struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Color       int     `json:"color"`
	Timestamp   string  `json:"timestamp,omitempty"`
	Thumbnail   *Image  `json:"thumbnail,omitempty"`
}

// Image references an external image by URL.
type Image struct {
	URL string `json:"url"`
}

// Embed colors used by the review workflow.
const (
	ColorPending  = 0x00ff00
	ColorApproved = 0xffffff
	ColorExpired  = 0x808080
)

// Channel is the notification boundary the purchase coordinator depends on.
//
// PostReview must return the platform message id so the message can be
// superseded later; the coordinator persists that id before a request is
// considered pending.
type Channel interface {
	// PostReview sends an embed with an attached proof file to the reviewer
	// channel and returns the created message id.
	PostReview(ctx context.Context, embed Embed, proof File) (string, error)

	// UpdateReview replaces the embed on a previously posted message so a
	// second reviewer sees the request is already handled.
	UpdateReview(ctx context.Context, messageID string, embed Embed) error

	// DirectMessage opens a DM with the platform user and delivers the
	// fulfillment file.
	DirectMessage(ctx context.Context, recipientExternalID string, embed Embed, file File) error
}
