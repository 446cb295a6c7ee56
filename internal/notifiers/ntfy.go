package notifiers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Fullex26/procnotify/internal/config"
	"github.com/Fullex26/procnotify/pkg/models"
)

// Ntfy sends notifications via ntfy.sh
type Ntfy struct {
	server string
	topic  string
	token  string
	client *http.Client
}

func NewNtfy(cfg config.NtfyConfig) *Ntfy {
	server := cfg.Server
	if server == "" {
		server = "https://ntfy.sh"
	}
	return &Ntfy{
		server: strings.TrimRight(server, "/"),
		topic:  cfg.Topic,
		token:  cfg.Token,
		client: newHTTPClient(),
	}
}

func (n *Ntfy) Name() string { return "ntfy" }

func (n *Ntfy) Send(ctx context.Context, event models.Event) error {
	title := "procnotify"
	if event.Hostname != "" {
		title = fmt.Sprintf("procnotify — %s", event.Hostname)
	}
	body := event.Message
	if event.Details != "" {
		body += "\n" + event.Details
	}

	priority := "default"
	tags := "hourglass"
	switch event.Severity {
	case models.SeverityCritical:
		priority = "urgent"
		tags = "rotating_light"
	case models.SeverityWarning:
		priority = "high"
		tags = "warning"
	}
	if event.Type == models.EventCommandSucceeded {
		tags = "white_check_mark"
	}

	return n.send(ctx, title, body, priority, tags)
}

func (n *Ntfy) SendRaw(ctx context.Context, message string) error {
	return n.send(ctx, "procnotify", message, "default", "hourglass")
}

func (n *Ntfy) Test(ctx context.Context) error {
	return n.SendRaw(ctx, testMessage)
}

func (n *Ntfy) send(ctx context.Context, title, body, priority, tags string) error {
	url := fmt.Sprintf("%s/%s", n.server, n.topic)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Title", title)
	req.Header.Set("Priority", priority)
	req.Header.Set("Tags", tags)

	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("ntfy send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ntfy returned status %d", resp.StatusCode)
	}
	return nil
}
