package notifiers

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/Fullex26/procnotify/internal/config"
	"github.com/Fullex26/procnotify/pkg/models"
)

const defaultTelegramAPI = "https://api.telegram.org"

// Telegram sends notifications via Telegram Bot API
type Telegram struct {
	apiURL string
	token  string
	chatID string
	client *http.Client
}

func NewTelegram(cfg config.TelegramConfig) *Telegram {
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = defaultTelegramAPI
	}
	return &Telegram{
		apiURL: apiURL,
		token:  cfg.BotToken,
		chatID: cfg.ChatID,
		client: newHTTPClient(),
	}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, event models.Event) error {
	return t.send(ctx, t.formatEvent(event))
}

func (t *Telegram) SendRaw(ctx context.Context, message string) error {
	return t.send(ctx, html.EscapeString(message))
}

func (t *Telegram) Test(ctx context.Context) error {
	return t.SendRaw(ctx, testMessage)
}

func (t *Telegram) send(ctx context.Context, text string) error {
	base := t.apiURL
	if base == "" {
		base = defaultTelegramAPI
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", base, t.token)

	data := url.Values{}
	data.Set("chat_id", t.chatID)
	data.Set("parse_mode", "HTML")
	data.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		// The token is part of the URL; keep it out of logs.
		return fmt.Errorf("telegram send failed: %w", redactToken(err, t.token))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}

func (t *Telegram) formatEvent(event models.Event) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s <b>%s</b>", event.Severity.Emoji(), html.EscapeString(event.Message)))

	if event.Details != "" {
		b.WriteString(fmt.Sprintf("\n%s", html.EscapeString(event.Details)))
	}
	if event.Hostname != "" {
		b.WriteString(fmt.Sprintf("\n<i>%s</i>", html.EscapeString(event.Hostname)))
	}

	return b.String()
}

func redactToken(err error, token string) error {
	if token == "" {
		return err
	}
	msg := err.Error()
	if !strings.Contains(msg, token) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(msg, token, "<redacted>"))
}
