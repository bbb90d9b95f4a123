package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaganv007/claimequity-ai/internal/bias"
	"github.com/gaganv007/claimequity-ai/internal/database"
	"github.com/gaganv007/claimequity-ai/internal/domain"
	"github.com/gaganv007/claimequity-ai/internal/outcome"
	"github.com/gaganv007/claimequity-ai/internal/predictor"
	"github.com/gaganv007/claimequity-ai/pkg/external"
)

type fakeDBMonitor struct {
	err   error
	stats database.PoolStats
}

func (f *fakeDBMonitor) Health(ctx context.Context) error { return f.err }

func (f *fakeDBMonitor) PoolStats() database.PoolStats { return f.stats }

type jsonBody map[string]interface{}

type noopAnalytics struct{}

func (noopAnalytics) Track(eventType, userID string, properties map[string]interface{}) {}

func createTestServer(t *testing.T) (*Server, outcome.Store) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	dir := t.TempDir()
	store, err := outcome.NewSQLiteStore(filepath.Join(dir, "outcomes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	chartPath := filepath.Join(dir, "bias_heatmap.png")
	chart := bias.NewChartRenderer(chartPath, 10, logger)
	biasSvc := bias.NewService(store, chart, bias.DefaultThresholds(), logger)

	scorer := predictor.NewService(domain.ModelConfig{
		Path:             filepath.Join(dir, "appeal_model.json"),
		Seed:             42,
		SyntheticSamples: 300,
	}, logger)

	summarizer, err := external.NewSummarizerChainWith(logger, external.TemplateSummarizer{})
	require.NoError(t, err)

	cfg := &domain.Config{
		Server:  domain.ServerConfig{Host: "127.0.0.1", Port: 0},
		Bias:    domain.BiasConfig{MinAlertCount: 5, MaxAlertSuccessRate: 30, ChartPath: chartPath, ChartTopN: 10},
		Logging: domain.LoggingConfig{Level: "error"},
	}

	server := NewServer(Deps{
		Config:     cfg,
		Store:      store,
		BiasSvc:    biasSvc,
		Scorer:     scorer,
		Summarizer: summarizer,
		Appeals:    external.NewDedalusAppealWriter(domain.LLMConfig{}, logger),
		Finance:    external.NewImpactClient(domain.FinanceConfig{}, logger),
		Analytics:  noopAnalytics{},
		Logger:     logger,
	})

	return server, store
}

func doJSON(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	server, _ := createTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.Contains(t, w.Body.String(), `"storage":"ok"`)
	assert.NotContains(t, w.Body.String(), `"database"`, "no pool section without a postgres pool")
}

func TestHandleHealth_WithPoolReportsStats(t *testing.T) {
	server, _ := createTestServer(t)
	server.db = &fakeDBMonitor{stats: database.PoolStats{TotalConns: 3, AcquiredConns: 1, IdleConns: 2, MaxConns: 10}}

	w := doJSON(t, server, http.MethodGet, "/api/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
	assert.Contains(t, w.Body.String(), `"total_conns":3`)
	assert.Contains(t, w.Body.String(), `"max_conns":10`)
}

func TestHandleHealth_UnhealthyPoolDegrades(t *testing.T) {
	server, _ := createTestServer(t)
	server.db = &fakeDBMonitor{err: errors.New("pool down")}

	w := doJSON(t, server, http.MethodGet, "/api/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	assert.Contains(t, w.Body.String(), `"database":"unavailable"`)
}

func TestHandleClaimFeatures(t *testing.T) {
	server, _ := createTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/claims/features", jsonBody{
		"claim_text": "Claim DENIED: no prior authorization for procedure E11.9",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Features domain.FeatureVector `json:"features"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Features.HasDenial)
	assert.True(t, resp.Features.HasPriorAuth)
	assert.True(t, resp.Features.HasDiagnosisCode)
	assert.Equal(t, 56, resp.Features.TextLength)
}


func TestHandleClaimFeatures_BadBody(t *testing.T) {
	server, _ := createTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/claims/features", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_INPUT")
}

func TestHandleShareOutcome_ApprovedString(t *testing.T) {
	server, store := createTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/outcomes", jsonBody{
		"denial_reason": "not medically necessary",
		"location":      "94103",
		"cohort":        "age_40",
		"claim_amount":  1200.50,
		"outcome":       "Approved",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"shared":true`)

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].Outcome)
	assert.Equal(t, "94103", records[0].Location)
}

func TestHandleShareOutcome_NumericOutcome(t *testing.T) {
	server, store := createTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/outcomes", jsonBody{
		"location": "10001",
		"cohort":   "age_30",
		"outcome":  0,
	})

	require.Equal(t, http.StatusOK, w.Code)

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0, records[0].Outcome)
	assert.Equal(t, "unknown", records[0].DenialReason)
}

func TestHandleShareOutcome_DuplicateIsIdempotent(t *testing.T) {
	server, store := createTestServer(t)

	body := jsonBody{
		"denial_reason": "denied",
		"location":      "94103",
		"cohort":        "age_40",
		"outcome":       "Denied",
	}
	require.Equal(t, http.StatusOK, doJSON(t, server, http.MethodPost, "/api/v1/outcomes", body).Code)
	require.Equal(t, http.StatusOK, doJSON(t, server, http.MethodPost, "/api/v1/outcomes", body).Code)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestHandleBiasReport_NoData(t *testing.T) {
	server, _ := createTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/bias/report", jsonBody{
		"cohort": "age_40", "location": "94103",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No data available yet")
}

func TestHandleBiasReport_AlertPath(t *testing.T) {
	server, store := createTestServer(t)

	// Six distinct denials in one group, zero successes.
	for i := 0; i < 6; i++ {
		require.NoError(t, store.Add(context.Background(), outcome.Input{
			DenialReason: fmt.Sprintf("reason-%d", i),
			Location:     "94103",
			Cohort:       "age_40",
			Outcome:      0,
		}))
	}

	w := doJSON(t, server, http.MethodPost, "/api/v1/bias/report", jsonBody{
		"cohort": "age_40", "location": "94103",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "BIAS ALERT")
	assert.Contains(t, w.Body.String(), `"severity":"alert"`)
}

func TestHandleBiasChart_NotFoundBeforeRender(t *testing.T) {
	server, _ := createTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/v1/bias/chart", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestHandleBiasChart_ServesRenderedPNG(t *testing.T) {
	server, store := createTestServer(t)

	require.NoError(t, store.Add(context.Background(), outcome.Input{
		DenialReason: "denied", Location: "94103", Cohort: "age_40",
	}))
	// A report renders the chart as a side effect.
	require.Equal(t, http.StatusOK, doJSON(t, server, http.MethodPost, "/api/v1/bias/report", jsonBody{
		"cohort": "age_40", "location": "94103",
	}).Code)

	w := doJSON(t, server, http.MethodGet, "/api/v1/bias/chart", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotZero(t, w.Body.Len())
}

func TestHandlePrediction(t *testing.T) {
	server, _ := createTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/predictions", jsonBody{
		"age":           67,
		"location_code": 94103,
		"amount":        3200,
		"features": jsonBody{
			"has_prior_auth": true,
			"text_length":    1800,
			"has_icd_code":   true,
		},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Probability float64 `json:"probability"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.GreaterOrEqual(t, resp.Probability, 0.0)
	assert.LessOrEqual(t, resp.Probability, 100.0)
}

func TestHandleModelTrain(t *testing.T) {
	server, _ := createTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/model/train", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Trained  bool    `json:"trained"`
		Accuracy float64 `json:"accuracy"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Trained)
	assert.GreaterOrEqual(t, resp.Accuracy, 0.0)
	assert.LessOrEqual(t, resp.Accuracy, 1.0)
}

func TestHandleSummary_EmptyText(t *testing.T) {
	server, _ := createTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/summaries", jsonBody{"claim_text": ""})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No text found in claim document.")
}

func TestHandleAppeal_TemplateFallback(t *testing.T) {
	server, _ := createTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/appeals", jsonBody{"claim_text": "denied claim"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Appeal Letter Template Generated by ClaimEquity AI Agent")
}

func TestHandleImpact_StaticFallback(t *testing.T) {
	server, _ := createTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/impact", jsonBody{"claim_amount": 5400.0})

	require.Equal(t, http.StatusOK, w.Code)

	var resp external.Impact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5400.0, resp.OutOfPocket)
	assert.False(t, resp.Live)
}

func TestSecurityHeadersApplied(t *testing.T) {
	server, _ := createTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/health", nil)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}
