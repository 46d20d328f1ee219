package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const telegramAPI = "https://api.telegram.org"

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	BotToken string
	Client   *resty.Client
}

// NewTelegramNotifier creates a notifier with optional proxy support.
// An empty apiURL uses the public Bot API endpoint.
func NewTelegramNotifier(botToken, apiURL, proxyURL string) *TelegramNotifier {
	if apiURL == "" {
		apiURL = telegramAPI
	}
	client := resty.New().
		SetBaseURL(apiURL).
		SetTimeout(35 * time.Second) // above the 30s long-poll timeout
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &TelegramNotifier{BotToken: botToken, Client: client}
}

func (t *TelegramNotifier) method(name string) string {
	return fmt.Sprintf("/bot%s/%s", t.BotToken, name)
}

// Send sends an HTML message to chatID.
func (t *TelegramNotifier) Send(ctx context.Context, chatID int64, text string) error {
	resp, err := t.Client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"chat_id":    chatID,
			"text":       text,
			"parse_mode": "HTML",
		}).
		Post(t.method("sendMessage"))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, chatID int64, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := t.Send(ctx, chatID, text); err != nil {
			lastErr = err
			if i == maxRetries {
				break
			}
			backoff := time.Duration(1<<uint(i)) * time.Second
			zap.S().Warnf("telegram send failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}
