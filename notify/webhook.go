package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	nfhttp "github.com/newsflowhq/newsflow/http"
)

// WebhookNotifier posts events as JSON to an HTTP webhook. Delivery uses
// the shared retrying client, so transient webhook outages are absorbed.
type WebhookNotifier struct {
	client *nfhttp.Client
}

// NewWebhookNotifier creates a webhook notifier for the given URL.
// Extra headers (auth tokens etc.) are set on every delivery.
func NewWebhookNotifier(url string, headers map[string]string) *WebhookNotifier {
	return &WebhookNotifier{
		client: nfhttp.NewClient(nfhttp.ClientConfig{
			Client:      &http.Client{Timeout: 10 * time.Second},
			BaseURL:     url,
			ServiceName: "webhook",
			BeforeRequest: func(req *http.Request) {
				for k, v := range headers {
					req.Header.Set(k, v)
				}
			},
		}),
	}
}

// Notify implements Notifier.
func (n *WebhookNotifier) Notify(ctx context.Context, event Event) error {
	if err := n.client.Post(ctx, "", event, nil); err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	return nil
}
