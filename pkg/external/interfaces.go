// Package external contains clients for the optional collaborator services:
// LLM-backed claim summarization and appeal-letter generation, financial
// impact estimation, and analytics event tracking. Every client degrades to
// a local fallback so the engine keeps working with no keys configured.
package external

import "context"

// SummaryStrategy produces a plain-English summary of claim text. Strategies
// are tried in order; a failing strategy hands off to the next one.
type SummaryStrategy interface {
	Name() string
	Summarize(ctx context.Context, text string) (string, error)
}

// AppealWriter drafts an appeal letter for a denied claim.
type AppealWriter interface {
	Write(ctx context.Context, claimText string) string
}

// Impact is a financial impact estimate for a denied claim.
type Impact struct {
	OutOfPocket float64 `json:"out_of_pocket"`
	Message     string  `json:"message"`
	Live        bool    `json:"live"`
}

// FinanceClient estimates the financial impact of a denial.
type FinanceClient interface {
	Estimate(ctx context.Context, claimAmount float64) Impact
}

// Analytics records product events. Implementations are fire-and-forget and
// must never surface errors to callers.
type Analytics interface {
	Track(eventType, userID string, properties map[string]interface{})
}
