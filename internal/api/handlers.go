package api

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gaganv007/claimequity-ai/internal/domain"
	"github.com/gaganv007/claimequity-ai/internal/features"
	"github.com/gaganv007/claimequity-ai/internal/outcome"
	"github.com/gaganv007/claimequity-ai/internal/predictor"
)

// handleHealth reports service and storage health. In postgres mode it also
// pings the connection pool and includes its counters.
func (s *Server) handleHealth(c *gin.Context) {
	status := "healthy"
	storageStatus := "ok"
	if _, err := s.store.Count(c.Request.Context()); err != nil {
		status = "degraded"
		storageStatus = "unavailable"
		s.log.WithError(err).Warn("Storage health check failed")
	}

	body := gin.H{
		"status":    status,
		"storage":   storageStatus,
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	}

	if s.db != nil {
		databaseStatus := "ok"
		if err := s.db.Health(c.Request.Context()); err != nil {
			status = "degraded"
			databaseStatus = "unavailable"
			s.log.WithError(err).Warn("Database pool health check failed")
		}
		body["status"] = status
		body["database"] = databaseStatus
		body["database_pool"] = s.db.PoolStats()
	}

	c.JSON(http.StatusOK, body)
}

type claimFeaturesRequest struct {
	ClaimText string `json:"claim_text"`
}

// handleClaimFeatures extracts structured signals from claim text.
func (s *Server) handleClaimFeatures(c *gin.Context) {
	var req claimFeaturesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "Request body must be JSON with a claim_text field", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"features": features.Extract(req.ClaimText)})
}

type shareOutcomeRequest struct {
	DenialReason string          `json:"denial_reason"`
	Location     string          `json:"location"`
	Cohort       string          `json:"cohort"`
	ClaimAmount  float64         `json:"claim_amount"`
	Outcome      json.RawMessage `json:"outcome"`
}

// parseOutcome accepts the outcome as "Approved"/"Denied" (the form the web
// client sends) or as a bare 0/1. Anything else counts as denied.
func parseOutcome(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if asString == "Approved" {
			return 1
		}
		return 0
	}
	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil && asNumber == 1 {
		return 1
	}
	return 0
}

// handleShareOutcome records an opt-in anonymized outcome. A storage failure
// still returns 200: the submission is voluntary community data and the
// client can do nothing useful with a hard error.
func (s *Server) handleShareOutcome(c *gin.Context) {
	var req shareOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "Request body must be JSON", err)
		return
	}

	in := outcome.Input{
		DenialReason: req.DenialReason,
		Location:     req.Location,
		Cohort:       req.Cohort,
		ClaimAmount:  req.ClaimAmount,
		Outcome:      parseOutcome(req.Outcome),
	}

	if err := s.store.Add(c.Request.Context(), in); err != nil {
		s.log.WithError(err).Warn("Failed to store shared outcome")
		c.JSON(http.StatusOK, gin.H{
			"shared":  false,
			"message": "Thanks for sharing. We could not record your data right now, but your report still helps.",
		})
		return
	}

	s.analytics.Track("outcome_shared", "", map[string]interface{}{
		"cohort":   in.Cohort,
		"location": in.Location,
	})

	c.JSON(http.StatusOK, gin.H{
		"shared":  true,
		"message": "Thank you for contributing to bias detection.",
	})
}

type biasReportRequest struct {
	Cohort   string `json:"cohort"`
	Location string `json:"location"`
}

// handleBiasReport recomputes cohort aggregates and evaluates the caller's
// group against the alert thresholds.
func (s *Server) handleBiasReport(c *gin.Context) {
	var req biasReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "Request body must be JSON with cohort and location fields", err)
		return
	}

	report, err := s.biasSvc.Report(c.Request.Context(), req.Cohort, req.Location)
	if err != nil {
		s.internalError(c, "Failed to generate bias report", err)
		return
	}

	s.analytics.Track("bias_report_requested", "", map[string]interface{}{
		"cohort":   req.Cohort,
		"location": req.Location,
		"severity": string(report.Severity),
	})

	c.JSON(http.StatusOK, report)
}

// handleBiasChart serves the most recently rendered chart image.
func (s *Server) handleBiasChart(c *gin.Context) {
	path := s.config.Bias.ChartPath
	if _, err := os.Stat(path); err != nil {
		apiErr := domain.NewAPIError(domain.ErrNotFound,
			"No bias chart has been generated yet", "",
			c.GetString("correlation_id"))
		c.JSON(http.StatusNotFound, apiErr)
		return
	}
	c.File(path)
}

type predictionRequest struct {
	Age          float64              `json:"age"`
	LocationCode float64              `json:"location_code"`
	Amount       float64              `json:"amount"`
	Features     domain.FeatureVector `json:"features"`
}

// handlePrediction scores an appeal's success probability.
func (s *Server) handlePrediction(c *gin.Context) {
	var req predictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "Request body must be JSON", err)
		return
	}

	model := s.scorer.Load(c.Request.Context())
	probability := s.scorer.Predict(model,
		predictor.UserData{
			Age:          req.Age,
			LocationCode: req.LocationCode,
			Amount:       req.Amount,
		},
		predictor.ClaimSignals{
			HasPriorAuth:     req.Features.HasPriorAuth,
			TextLength:       req.Features.TextLength,
			HasDiagnosisCode: req.Features.HasDiagnosisCode,
		})

	c.JSON(http.StatusOK, gin.H{"probability": probability})
}

// handleModelTrain retrains the scorer and reports held-out accuracy.
func (s *Server) handleModelTrain(c *gin.Context) {
	_, accuracy := s.scorer.TrainFromConfiguredData(c.Request.Context())

	s.analytics.Track("model_trained", "", map[string]interface{}{
		"accuracy": accuracy,
	})

	c.JSON(http.StatusOK, gin.H{
		"trained":  true,
		"accuracy": accuracy,
	})
}

type summaryRequest struct {
	ClaimText string `json:"claim_text"`
}

// handleSummary runs the summarizer strategy chain.
func (s *Server) handleSummary(c *gin.Context) {
	var req summaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "Request body must be JSON with a claim_text field", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary": s.summarizer.Summarize(c.Request.Context(), req.ClaimText),
	})
}

type appealRequest struct {
	ClaimText string `json:"claim_text"`
}

// handleAppeal drafts an appeal letter, falling back to the local template.
func (s *Server) handleAppeal(c *gin.Context) {
	var req appealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "Request body must be JSON with a claim_text field", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"letter": s.appeals.Write(c.Request.Context(), req.ClaimText),
	})
}

type impactRequest struct {
	ClaimAmount float64 `json:"claim_amount"`
}

// handleImpact estimates the financial consequence of the denial.
func (s *Server) handleImpact(c *gin.Context) {
	var req impactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "Request body must be JSON with a claim_amount field", err)
		return
	}

	c.JSON(http.StatusOK, s.finance.Estimate(c.Request.Context(), req.ClaimAmount))
}

func (s *Server) badRequest(c *gin.Context, message string, err error) {
	apiErr := domain.NewAPIError(domain.ErrInvalidInput, message, err.Error(),
		c.GetString("correlation_id"))
	c.JSON(http.StatusBadRequest, apiErr)
}

func (s *Server) internalError(c *gin.Context, message string, err error) {
	s.log.WithError(err).Error(message)
	apiErr := domain.NewAPIError(domain.ErrInternalServer, message, "",
		c.GetString("correlation_id"))
	c.JSON(http.StatusInternalServerError, apiErr)
}
