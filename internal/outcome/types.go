// Package outcome provides the append-only store of anonymized claim
// outcomes that feeds bias pattern aggregation. Records are deduplicated by
// a short content hash of their identifying fields so a single submitter
// cannot inflate counts for one synthetic identity.
package outcome

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// unknownValue is the sentinel stored for missing string fields. Anonymized
// submissions are best-effort data; nothing is rejected for being incomplete.
const unknownValue = "unknown"

// hashLength is the number of hex characters kept from the content digest.
// Changing it breaks dedup compatibility with previously stored rows.
const hashLength = 16

// Record is one anonymized outcome submission. Immutable once stored.
type Record struct {
	ID           int64     `json:"id,omitempty"`
	ContentHash  string    `json:"content_hash"`
	DenialReason string    `json:"denial_reason"`
	Location     string    `json:"location"`
	Cohort       string    `json:"cohort"`
	ClaimAmount  float64   `json:"claim_amount"`
	Outcome      int       `json:"outcome"` // 1 approved, 0 denied
	RecordedAt   time.Time `json:"recorded_at"`
}

// Input carries the caller-supplied fields of a submission before defaults
// and the content hash are applied.
type Input struct {
	DenialReason string
	Location     string
	Cohort       string
	ClaimAmount  float64
	Outcome      int
}

// toRecord applies the missing-field defaults and computes the dedup hash.
func (in Input) toRecord() Record {
	r := Record{
		DenialReason: in.DenialReason,
		Location:     in.Location,
		Cohort:       in.Cohort,
		ClaimAmount:  in.ClaimAmount,
		Outcome:      in.Outcome,
	}
	if r.DenialReason == "" {
		r.DenialReason = unknownValue
	}
	if r.Location == "" {
		r.Location = unknownValue
	}
	if r.Cohort == "" {
		r.Cohort = unknownValue
	}
	if r.ClaimAmount < 0 {
		r.ClaimAmount = 0
	}
	if r.Outcome != 1 {
		r.Outcome = 0
	}
	r.ContentHash = ShortDigest(r.Location, r.Cohort, r.DenialReason)
	return r
}

// ShortDigest computes the truncated content hash used as the dedup key.
// The concatenation order (location, cohort, reason) is part of the stored
// data contract and must not change.
func ShortDigest(location, cohort, reason string) string {
	sum := sha256.Sum256([]byte(location + cohort + reason))
	return hex.EncodeToString(sum[:])[:hashLength]
}

// Store defines the interface for outcome storage operations.
type Store interface {
	// Add inserts a record, silently ignoring duplicates of the same
	// (location, cohort, reason) triple. A returned error is a storage
	// failure; callers downgrade it to a warning rather than failing the
	// request.
	Add(ctx context.Context, in Input) error

	// List returns every stored record. Order is unspecified; the
	// aggregator does not depend on it.
	List(ctx context.Context) ([]Record, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int64, error)

	// Close closes the store and releases resources.
	Close() error
}
