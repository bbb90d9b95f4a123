package domain

// Core value types shared by the feature extractor, bias engine, and scorer.

// FeatureVector holds the structured signals derived from free-form claim
// text. It is ephemeral: computed per request, never persisted.
type FeatureVector struct {
	TextLength       int  `json:"text_length"`
	HasDiagnosisCode bool `json:"has_icd_code"`
	HasPriorAuth     bool `json:"has_prior_auth"`
	HasDenial        bool `json:"has_denial"`
	HasAppeal        bool `json:"has_appeal"`
}

// GroupKey identifies a demographic cohort at a location. Keys are free-form
// strings compared by exact equality; any future normalization (trimming,
// case folding, zip formatting) belongs here, not in the aggregation code.
type GroupKey struct {
	Cohort   string `json:"cohort"`
	Location string `json:"location"`
}

// NewGroupKey builds a grouping key from raw cohort and location strings.
func NewGroupKey(cohort, location string) GroupKey {
	return GroupKey{Cohort: cohort, Location: location}
}

// Matches reports whether two keys identify the same cohort/location group.
func (k GroupKey) Matches(other GroupKey) bool {
	return k.Cohort == other.Cohort && k.Location == other.Location
}

// Label renders the key the way charts and alert messages display it.
func (k GroupKey) Label() string {
	return k.Cohort + " - " + k.Location
}
