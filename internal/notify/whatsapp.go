package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNotConfigured is returned when no WhatsApp credentials are set.
	ErrNotConfigured = errors.New("whatsapp notifications are not configured")
	// ErrSendFailed is returned when the WhatsApp API rejects a message.
	ErrSendFailed = errors.New("failed to send whatsapp message")
)

const defaultGraphURL = "https://graph.facebook.com/v19.0"

// WhatsAppClient sends treatment reminders through the WhatsApp Cloud API.
type WhatsAppClient struct {
	client   *http.Client
	graphURL string
	token    string
	phoneID  string
}

// Option configures the client during construction.
type Option func(*WhatsAppClient)

// WithGraphURL overrides the base URL for API requests.
func WithGraphURL(baseURL string) Option {
	return func(c *WhatsAppClient) {
		c.graphURL = strings.TrimRight(baseURL, "/")
	}
}

// NewWhatsAppClient constructs a client. An empty token or phone id yields a
// client whose Send returns ErrNotConfigured, so callers can wire it
// unconditionally.
func NewWhatsAppClient(client *http.Client, token, phoneID string, opts ...Option) *WhatsAppClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	c := &WhatsAppClient{
		client:   client,
		graphURL: defaultGraphURL,
		token:    strings.TrimSpace(token),
		phoneID:  strings.TrimSpace(phoneID),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Configured reports whether credentials are present.
func (c *WhatsAppClient) Configured() bool {
	return c.token != "" && c.phoneID != ""
}

type textPayload struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

// Send delivers a free-form text message to the given phone number in E.164
// form. Failures are collapsed into ErrSendFailed with the cause wrapped for
// server-side logs.
func (c *WhatsAppClient) Send(ctx context.Context, to, body string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("%w: recipient phone number is empty", ErrSendFailed)
	}

	payload := textPayload{
		MessagingProduct: "whatsapp",
		To:               strings.TrimPrefix(strings.TrimSpace(to), "+"),
		Type:             "text",
	}
	payload.Text.Body = body

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encode payload: %v", ErrSendFailed, err)
	}

	endpoint := fmt.Sprintf("%s/%s/messages", c.graphURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrSendFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrSendFailed, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	return nil
}

// ReminderMessage renders the reminder text for a due treatment.
func ReminderMessage(customerName, petName, description string, dueAt time.Time) string {
	return fmt.Sprintf(
		"Hi %s! This is a reminder from the clinic: %s for %s is due on %s.",
		customerName, description, petName, dueAt.Format("02 Jan 2006"),
	)
}
