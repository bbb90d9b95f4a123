package bias

import (
	"fmt"

	"github.com/gaganv007/claimequity-ai/internal/domain"
)

// Severity classifies an assessment message.
type Severity string

const (
	SeverityAlert Severity = "alert"
	SeverityInfo  Severity = "info"
	SeverityNone  Severity = "none"
)

// Thresholds is the fixed two-tier alert policy. Values come from
// configuration so product can tune them without a code change.
type Thresholds struct {
	// MinAlertCount is the record count a group must exceed before an
	// alert can fire.
	MinAlertCount int
	// MaxAlertSuccessRate is the success percentage a group must fall
	// below before an alert can fire.
	MaxAlertSuccessRate float64
}

// DefaultThresholds mirrors the policy the product shipped with:
// more than 5 records and under a 30% success rate.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinAlertCount:       5,
		MaxAlertSuccessRate: 30.0,
	}
}

// Assessment is the user-facing result of matching a cohort against the
// aggregated statistics.
type Assessment struct {
	Message    string   `json:"message"`
	Severity   Severity `json:"severity"`
	MatchFound bool     `json:"match_found"`
}

// Evaluate matches the user's cohort/location key against the aggregates
// and classifies the result. Empty aggregates and a missing match are
// normal, expected states with dedicated messages, never errors.
func Evaluate(aggs []CohortAggregate, userKey domain.GroupKey, th Thresholds) Assessment {
	if len(aggs) == 0 {
		return Assessment{
			Message:  "No data available yet. Share anonymized data to build bias detection.",
			Severity: SeverityNone,
		}
	}

	for _, agg := range aggs {
		if !agg.Key.Matches(userKey) {
			continue
		}

		count := agg.DenialCount
		successPct := agg.SuccessRate * 100

		if count > th.MinAlertCount && successPct < th.MaxAlertSuccessRate {
			return Assessment{
				Message: fmt.Sprintf(
					"BIAS ALERT: High denial rate (%d denials, %.1f%% success) detected in your demographic group (%s, %s).",
					count, successPct, userKey.Cohort, userKey.Location),
				Severity:   SeverityAlert,
				MatchFound: true,
			}
		}
		return Assessment{
			Message: fmt.Sprintf(
				"Pattern detected: %d denials in your group with %.1f%% success rate.",
				count, successPct),
			Severity:   SeverityInfo,
			MatchFound: true,
		}
	}

	return Assessment{
		Message:  "No specific patterns detected for your demographic group yet.",
		Severity: SeverityNone,
	}
}
