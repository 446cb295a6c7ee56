package notifiers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Fullex26/procnotify/internal/config"
	"github.com/Fullex26/procnotify/pkg/models"
)

// Discord sends notifications via Discord webhooks
type Discord struct {
	webhookURL string
	client     *http.Client
}

func NewDiscord(cfg config.DiscordConfig) *Discord {
	return &Discord{
		webhookURL: cfg.WebhookURL,
		client:     newHTTPClient(),
	}
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Send(ctx context.Context, event models.Event) error {
	color := 0x3498db // blue for info
	switch {
	case event.Type == models.EventCommandSucceeded:
		color = 0x2ecc71 // green
	case event.Severity == models.SeverityWarning:
		color = 0xf39c12 // orange
	case event.Severity == models.SeverityCritical:
		color = 0xe74c3c // red
	}

	embed := map[string]interface{}{
		"title":       fmt.Sprintf("%s %s", event.Severity.Emoji(), event.Message),
		"description": event.Details,
		"color":       color,
	}
	if event.Hostname != "" {
		embed["footer"] = map[string]string{"text": event.Hostname}
	}

	payload := map[string]interface{}{
		"embeds": []interface{}{embed},
	}

	return d.sendJSON(ctx, payload)
}

func (d *Discord) SendRaw(ctx context.Context, message string) error {
	payload := map[string]string{"content": message}
	return d.sendJSON(ctx, payload)
}

func (d *Discord) Test(ctx context.Context) error {
	return d.SendRaw(ctx, testMessage)
}

func (d *Discord) sendJSON(ctx context.Context, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("discord send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("discord returned status %d", resp.StatusCode)
	}
	return nil
}
