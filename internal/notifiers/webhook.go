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

// Webhook sends notifications via generic HTTP webhooks
type Webhook struct {
	url       string
	method    string
	userAgent string
	client    *http.Client
}

// NewWebhook creates a webhook notifier that identifies itself as
// procnotify/<version>.
func NewWebhook(cfg config.WebhookConfig, version string) *Webhook {
	method := cfg.Method
	if method == "" {
		method = http.MethodPost
	}
	return &Webhook{
		url:       cfg.URL,
		method:    method,
		userAgent: "procnotify/" + version,
		client:    newHTTPClient(),
	}
}

func (w *Webhook) Name() string { return "webhook" }

// webhookResult flattens models.Result, whose error does not marshal.
type webhookResult struct {
	Outcome  models.Outcome `json:"outcome"`
	PID      int            `json:"pid,omitempty"`
	Success  bool           `json:"success"`
	ExitCode int            `json:"exit_code"`
	Error    string         `json:"error,omitempty"`
}

type webhookPayload struct {
	models.Event
	Result *webhookResult `json:"result,omitempty"`
}

func (w *Webhook) Send(ctx context.Context, event models.Event) error {
	payload := webhookPayload{Event: event}
	if r := event.Result; r != nil {
		payload.Result = &webhookResult{
			Outcome:  r.Outcome,
			PID:      r.PID,
			Success:  r.Success,
			ExitCode: r.ExitCode,
		}
		if r.Err != nil {
			payload.Result.Error = r.Err.Error()
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return w.send(ctx, data)
}

func (w *Webhook) SendRaw(ctx context.Context, message string) error {
	payload := map[string]string{"message": message}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return w.send(ctx, data)
}

func (w *Webhook) Test(ctx context.Context) error {
	return w.SendRaw(ctx, testMessage)
}

func (w *Webhook) send(ctx context.Context, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, w.method, w.url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.userAgent != "" {
		req.Header.Set("User-Agent", w.userAgent)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
