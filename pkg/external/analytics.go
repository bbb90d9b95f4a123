package external

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gaganv007/claimequity-ai/internal/domain"
)

// AmplitudeTracker ships product events to an Amplitude-compatible endpoint.
// Tracking is fire-and-forget: no key means a silent no-op, and delivery
// failures are logged at debug level only.
type AmplitudeTracker struct {
	config     domain.AnalyticsConfig
	httpClient *http.Client
	log        *logrus.Logger
}

// NewAmplitudeTracker creates the analytics tracker.
func NewAmplitudeTracker(config domain.AnalyticsConfig, logger *logrus.Logger) *AmplitudeTracker {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &AmplitudeTracker{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger,
	}
}

type amplitudeEvent struct {
	UserID          string                 `json:"user_id"`
	EventType       string                 `json:"event_type"`
	EventProperties map[string]interface{} `json:"event_properties"`
}

type amplitudePayload struct {
	APIKey string           `json:"api_key"`
	Events []amplitudeEvent `json:"events"`
}

// Track records one event asynchronously. The caller's request never waits
// on, or learns about, the delivery.
func (t *AmplitudeTracker) Track(eventType, userID string, properties map[string]interface{}) {
	if t.config.APIKey == "" {
		return
	}
	if userID == "" {
		userID = "anon"
	}
	if properties == nil {
		properties = map[string]interface{}{}
	}

	go t.send(eventType, userID, properties)
}

func (t *AmplitudeTracker) send(eventType, userID string, properties map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), t.httpClient.Timeout)
	defer cancel()

	payload := amplitudePayload{
		APIKey: t.config.APIKey,
		Events: []amplitudeEvent{{
			UserID:          userID,
			EventType:       eventType,
			EventProperties: properties,
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		t.log.WithError(err).Debug("Failed to encode analytics event")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		t.log.WithError(err).Debug("Failed to create analytics request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.log.WithError(err).Debug("Failed to deliver analytics event")
		return
	}
	resp.Body.Close()
}
