package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Sender delivers one message to one recipient.
// A nil error means the provider accepted the message; any transport or
// provider-reported failure surfaces as an error so callers can count
// the attempt as failed without aborting their own loop.
type Sender interface {
	Send(ctx context.Context, phone, credential, text string) error
}

// DefaultTimeout bounds a single delivery attempt when none is configured.
const DefaultTimeout = 10 * time.Second

// CallMeBot delivers WhatsApp messages through the CallMeBot gateway.
// The gateway is a plain GET endpoint with the recipient phone, the message
// text and a per-recipient API key as query parameters.
type CallMeBot struct {
	// baseURL is the gateway endpoint.
	baseURL string
	// client is the HTTP client with the attempt timeout applied.
	client *http.Client
}

// NewCallMeBot creates a sender for the given gateway endpoint.
func NewCallMeBot(baseURL string, timeout time.Duration) *CallMeBot {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &CallMeBot{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send performs one delivery attempt.
func (c *CallMeBot) Send(ctx context.Context, phone, credential, text string) error {
	query := url.Values{}
	query.Set("phone", phone)
	query.Set("text", text)
	query.Set("apikey", credential)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	response, err := c.client.Do(request)
	if err != nil {
		return fmt.Errorf("deliver message: %w", err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, response.Body)
		_ = response.Body.Close()
	}()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("provider returned status %d", response.StatusCode)
	}

	return nil
}
