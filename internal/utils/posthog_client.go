// posthog_client.go wraps posthog.Client so callers need not care whether PostHog is configured.
package utils

import (
	"log/slog"
	"time"

	"github.com/posthog/posthog-go"
)

// PosthogClientWrapper is a nil-safe PostHog client.
type PosthogClientWrapper struct {
	posthogClient posthog.Client
	logger        *slog.Logger
}

// InitializePosthogClient returns an uninitialized wrapper when apiKey is empty.
func InitializePosthogClient(apiKey string, endpoint string, logger *slog.Logger) *PosthogClientWrapper {
	if apiKey == "" {
		logger.Warn("Posthog API key is empty, not initializing posthog client.")
		return &PosthogClientWrapper{}
	}
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		logger.Error("Failed to initialize posthog client", slog.String("error", err.Error()))
		return &PosthogClientWrapper{}
	}
	logger.Info("Posthog client initialized", slog.String("endpoint", endpoint))
	return &PosthogClientWrapper{posthogClient: client, logger: logger}
}

func (w *PosthogClientWrapper) IsInitialized() bool {
	return w != nil && w.posthogClient != nil
}

// Enqueue captures an event for a cashier. Events that carry a session_id are also grouped
// under the "import_session" group so one upload can be followed across its steps.
func (w *PosthogClientWrapper) Enqueue(distinctId string, event string, properties map[string]any) {
	if !w.IsInitialized() {
		return
	}
	capture := posthog.Capture{
		DistinctId: distinctId,
		Event:      event,
		Properties: properties,
		Timestamp:  time.Now(),
	}
	if sessionID, ok := properties["session_id"].(string); ok && sessionID != "" {
		capture.Groups = posthog.NewGroups().Set(importSessionGroup, sessionID)
	}
	if w.logger != nil {
		w.logger.Debug("Enqueueing event", slog.String("distinct_id", distinctId), slog.String("event", event))
	}
	if err := w.posthogClient.Enqueue(capture); err != nil && w.logger != nil {
		w.logger.Warn("Failed to enqueue posthog event", slog.String("event", event), slog.String("error", err.Error()))
	}
}

const importSessionGroup = "import_session"

// Close flushes queued events.
func (w *PosthogClientWrapper) Close() {
	if !w.IsInitialized() {
		return
	}
	w.posthogClient.Close()
}
