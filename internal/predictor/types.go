// Package predictor implements the appeal success scorer: a small logistic
// classifier trained from historical outcomes or a seeded synthetic
// generator, persisted as a JSON artifact and cached in memory.
package predictor

// NumFeatures is the width of the model's feature row.
const NumFeatures = 7

// Feature column order is fixed; the persisted model depends on it.
// Columns: age, location_code, claim_amount, has_prior_auth,
// denial_reason_code, text_length, has_icd_code.
var featureColumns = [NumFeatures]string{
	"age",
	"location_code",
	"claim_amount",
	"has_prior_auth",
	"denial_reason_code",
	"text_length",
	"has_icd_code",
}

// Example is one labeled training row.
type Example struct {
	Features [NumFeatures]float64
	Label    int // 1 = appeal succeeded
}

// UserData carries the claimant-supplied predictors. Non-positive numeric
// fields are treated as absent and replaced by the documented defaults
// (age 50, location code 10000, amount 5000).
type UserData struct {
	Age          float64
	LocationCode float64
	Amount       float64
}

// ClaimSignals carries the text-derived predictors. A non-positive text
// length is treated as absent and defaults to 1000; flags default to false.
type ClaimSignals struct {
	HasPriorAuth     bool
	TextLength       int
	HasDiagnosisCode bool
}

// Prediction-time defaults for absent fields.
const (
	defaultAge              = 50
	defaultLocationCode     = 10000
	defaultAmount           = 5000
	defaultTextLength       = 1000
	defaultDenialReasonCode = 1
)

// featureRow assembles the fixed-order feature row used at prediction time.
func featureRow(user UserData, signals ClaimSignals) [NumFeatures]float64 {
	age := user.Age
	if age <= 0 {
		age = defaultAge
	}
	locationCode := user.LocationCode
	if locationCode <= 0 {
		locationCode = defaultLocationCode
	}
	amount := user.Amount
	if amount <= 0 {
		amount = defaultAmount
	}
	textLength := float64(signals.TextLength)
	if textLength <= 0 {
		textLength = defaultTextLength
	}

	row := [NumFeatures]float64{
		age,
		locationCode,
		amount,
		0,
		defaultDenialReasonCode,
		textLength,
		0,
	}
	if signals.HasPriorAuth {
		row[3] = 1
	}
	if signals.HasDiagnosisCode {
		row[6] = 1
	}
	return row
}
