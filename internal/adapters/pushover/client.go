// Package pushover sends push notifications through the Pushover message API.
package pushover

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/southecare68/crypto-webhook/internal/ports"
)

const (
	defaultBaseURL = "https://api.pushover.net/1/messages.json"
	defaultTimeout = 10 * time.Second

	// Pushover API limits.
	maxTitleLen   = 250
	maxMessageLen = 1000
)

// Client implements ports.Notifier against the Pushover API.
type Client struct {
	token   string
	user    string
	baseURL string
	http    *http.Client
	logger  ports.Logger
}

// Config holds configuration for the Pushover client.
type Config struct {
	Token   string
	User    string
	BaseURL string // Overridable for tests; defaults to the Pushover API
	Timeout time.Duration
	Logger  ports.Logger
}

// New creates a Pushover client.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" || cfg.User == "" {
		return nil, fmt.Errorf("pushover token and user are required: %w", ports.ErrConfigurationError)
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Pushover client")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		token:   cfg.Token,
		user:    cfg.User,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  cfg.Logger,
	}, nil
}

// Send delivers a notification. Title and message are truncated to the API
// limits rather than rejected, since a clipped alert is more useful than none.
func (c *Client) Send(ctx context.Context, title, message string) error {
	form := url.Values{}
	form.Set("token", c.token)
	form.Set("user", c.user)
	form.Set("title", truncate(title, maxTitleLen))
	form.Set("message", truncate(message, maxMessageLen))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build pushover request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("pushover request failed (%v): %w", err, ports.ErrNotifyFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pushover returned status %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(body)), ports.ErrNotifyFailed)
	}

	c.logger.Debug(ctx, "Notification delivered", map[string]interface{}{"title": title})
	return nil
}

// NoopNotifier implements ports.Notifier without sending anything. Used when
// Pushover credentials are not configured.
type NoopNotifier struct{}

// Send discards the notification.
func (NoopNotifier) Send(ctx context.Context, title, message string) error { return nil }

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
