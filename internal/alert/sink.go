package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// DefaultTelegramAPI is the base URL of the Telegram Bot API.
const DefaultTelegramAPI = "https://api.telegram.org"

// Sink delivers a formatted text message to an external channel.
type Sink interface {
	Send(ctx context.Context, text string) error
}

var (
	_ Sink = (*TelegramSink)(nil)
	_ Sink = (*WebhookSink)(nil)
	_ Sink = (*NopSink)(nil)
	_ Sink = MultiSink(nil)
)

// DefaultSendTimeout bounds a single delivery attempt.
func DefaultSendTimeout() time.Duration {
	return 10 * time.Second
}

// TelegramSink posts messages through a Telegram bot.
type TelegramSink struct {
	client  *http.Client
	baseURL string
	token   string
	chatID  string
}

// NewTelegramSink creates a sink posting to chatID as the bot identified by token.
// An empty baseURL uses DefaultTelegramAPI.
func NewTelegramSink(client *http.Client, baseURL string, token string, chatID string) (*TelegramSink, error) {
	token = strings.TrimSpace(token)
	chatID = strings.TrimSpace(chatID)
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if chatID == "" {
		return nil, fmt.Errorf("telegram chat ID cannot be empty")
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultSendTimeout()}
	}
	if baseURL == "" {
		baseURL = DefaultTelegramAPI
	}

	return &TelegramSink{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		chatID:  chatID,
	}, nil
}

type telegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// Send implements Sink.
func (s *TelegramSink) Send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.token)

	err := postJSON(ctx, s.client, endpoint, telegramMessage{
		ChatID:                s.chatID,
		Text:                  text,
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	})
	if err != nil {
		// Never leak the bot token through error messages.
		return fmt.Errorf("telegram: %s", strings.ReplaceAll(err.Error(), s.token, "<redacted>"))
	}
	return nil
}

// WebhookSink posts messages as {"text": ...} JSON to a generic chat webhook.
type WebhookSink struct {
	client *http.Client
	url    string
}

// NewWebhookSink creates a sink posting to the given webhook URL.
func NewWebhookSink(client *http.Client, webhookURL string) (*WebhookSink, error) {
	webhookURL = strings.TrimSpace(webhookURL)
	u, err := url.Parse(webhookURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid webhook URL '%s'", webhookURL)
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultSendTimeout()}
	}

	return &WebhookSink{client: client, url: webhookURL}, nil
}

// Send implements Sink.
func (s *WebhookSink) Send(ctx context.Context, text string) error {
	payload := struct {
		Text string `json:"text"`
	}{
		Text: text,
	}

	if err := postJSON(ctx, s.client, s.url, payload); err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	return nil
}

// NopSink discards messages, it is used when no alert channel is configured.
type NopSink struct {
	Logger hclog.Logger
}

// Send implements Sink.
func (s *NopSink) Send(_ context.Context, text string) error {
	if s.Logger != nil {
		s.Logger.Debug("No alert sink configured, dropping message", "length", len(text))
	}
	return nil
}

// MultiSink sends every message to each of its sinks in order.
// Delivery continues past failures, the returned error joins all of them.
type MultiSink []Sink

// Send implements Sink.
func (m MultiSink) Send(ctx context.Context, text string) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func postJSON(ctx context.Context, client *http.Client, endpoint string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}

	return nil
}
