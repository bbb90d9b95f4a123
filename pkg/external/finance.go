package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/gaganv007/claimequity-ai/internal/domain"
)

// ImpactClient estimates the out-of-pocket consequence of a denial via an
// external finance API, with a static estimate as the offline answer.
type ImpactClient struct {
	config     domain.FinanceConfig
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	log        *logrus.Logger
}

// NewImpactClient creates the financial impact client.
func NewImpactClient(config domain.FinanceConfig, logger *logrus.Logger) *ImpactClient {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "Finance",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	})

	return &ImpactClient{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		log:        logger,
	}
}

// staticImpact is the offline estimate: the full claim amount.
func staticImpact(claimAmount float64) Impact {
	return Impact{
		OutOfPocket: claimAmount,
		Message:     fmt.Sprintf("Estimated out-of-pocket: $%.2f", claimAmount),
		Live:        false,
	}
}

// Estimate queries the finance API for a live impact figure. Any failure,
// including a missing API key, resolves to the static estimate.
func (c *ImpactClient) Estimate(ctx context.Context, claimAmount float64) Impact {
	if c.config.APIKey == "" {
		return staticImpact(claimAmount)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, claimAmount)
	})
	if err != nil {
		c.log.WithError(err).Warn("Financial impact lookup failed, using static estimate")
		return staticImpact(claimAmount)
	}
	return result.(Impact)
}

func (c *ImpactClient) fetch(ctx context.Context, claimAmount float64) (Impact, error) {
	url := fmt.Sprintf("%s?claim_amount=%.2f", c.config.BaseURL, claimAmount)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Impact{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Impact{}, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Impact{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed struct {
		OutOfPocket float64 `json:"out_of_pocket"`
		Message     string  `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Impact{}, fmt.Errorf("decoding response: %w", err)
	}

	return Impact{
		OutOfPocket: parsed.OutOfPocket,
		Message:     parsed.Message,
		Live:        true,
	}, nil
}
