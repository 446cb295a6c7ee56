package notifiers

import (
	"context"
	"net/http"
	"time"

	"github.com/Fullex26/procnotify/pkg/models"
)

// sendTimeout bounds a single delivery so a slow endpoint cannot stall a watch.
const sendTimeout = 10 * time.Second

// testMessage is what `procnotify test` sends through SendRaw.
const testMessage = "🔔 procnotify test notification\n\nIf you see this, procnotify is connected!"

// Notifier sends lifecycle messages to external channels
type Notifier interface {
	// Name returns the notifier identifier
	Name() string
	// Send delivers an event notification
	Send(ctx context.Context, event models.Event) error
	// SendRaw sends a pre-formatted message
	SendRaw(ctx context.Context, message string) error
	// Test sends a test notification to verify configuration
	Test(ctx context.Context) error
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: sendTimeout}
}
