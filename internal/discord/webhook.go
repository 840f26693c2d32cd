// Package discord posts task summaries to a Discord webhook. The webhook
// expects a multipart form with a payload_json part and optional file
// attachments.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{httpClient: &http.Client{Timeout: 15 * time.Second}}
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type WebhookPayload struct {
	Username string  `json:"username,omitempty"`
	Content  string  `json:"content,omitempty"`
	Embeds   []Embed `json:"embeds,omitempty"`
}

// Attachment is an optional file sent alongside the payload.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// StatusError carries the upstream HTTP status so handlers can surface it.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("discord webhook returned %d: %s", e.StatusCode, e.Body)
}

// Execute posts the payload to webhookURL. Discord answers 204 for plain
// payloads and 200 when attachments are included.
func (c *Client) Execute(ctx context.Context, webhookURL string, payload WebhookPayload, attachment *Attachment) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if err := w.WriteField("payload_json", string(payloadJSON)); err != nil {
		return err
	}

	if attachment != nil {
		part, err := w.CreateFormFile("files[0]", attachment.Filename)
		if err != nil {
			return err
		}
		if _, err := part.Write(attachment.Data); err != nil {
			return err
		}
	}

	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return nil
}
