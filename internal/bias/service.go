package bias

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gaganv007/claimequity-ai/internal/domain"
	"github.com/gaganv007/claimequity-ai/internal/outcome"
)

// Report is the composed result of aggregation plus alert evaluation.
// ChartPath is empty when no chart could be produced (no data, or a
// rendering failure that was downgraded).
type Report struct {
	Message    string   `json:"message"`
	Severity   Severity `json:"severity"`
	MatchFound bool     `json:"match_found"`
	ChartPath  string   `json:"chart_path,omitempty"`
}

// Service composes the outcome store, the aggregator, the chart renderer,
// and the alerter into the bias-report operation.
type Service struct {
	store      outcome.Store
	chart      *ChartRenderer
	thresholds Thresholds
	logger     *logrus.Logger
}

// NewService creates a bias report service. All collaborators are injected;
// there is no ambient storage or model state.
func NewService(store outcome.Store, chart *ChartRenderer, th Thresholds, logger *logrus.Logger) *Service {
	return &Service{
		store:      store,
		chart:      chart,
		thresholds: th,
		logger:     logger,
	}
}

// Report reads the full outcome set, recomputes the cohort aggregates,
// regenerates the chart, and evaluates the user's cohort against the
// aggregates. Aggregation is a pure function of the current record set, so
// repeated calls over identical data are deterministic.
//
// Storage read failures never escape as errors: the caller gets a report
// carrying an explanatory message, per the best-effort contract of
// anonymized data.
func (s *Service) Report(ctx context.Context, cohort, location string) (*Report, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read outcome store for bias report")
		return &Report{
			Message:  "Bias data is temporarily unavailable. Please try again later.",
			Severity: SeverityNone,
		}, nil
	}

	aggs := Aggregate(records)

	chartPath := ""
	if len(aggs) > 0 {
		path, err := s.chart.Render(aggs)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to render bias chart")
		} else {
			chartPath = path
		}
	}

	assessment := Evaluate(aggs, domain.NewGroupKey(cohort, location), s.thresholds)

	s.logger.WithFields(logrus.Fields{
		"cohort":   cohort,
		"location": location,
		"groups":   len(aggs),
		"severity": assessment.Severity,
	}).Info("Bias report generated")

	return &Report{
		Message:    assessment.Message,
		Severity:   assessment.Severity,
		MatchFound: assessment.MatchFound,
		ChartPath:  chartPath,
	}, nil
}
