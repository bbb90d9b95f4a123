// Package features derives structured signals from free-form claim text.
// The signals feed the appeal predictor and are shown to users before they
// opt in to sharing an anonymized outcome.
package features

import (
	"strings"
	"unicode/utf8"

	"github.com/gaganv007/claimequity-ai/internal/domain"
)

// Extract builds a feature vector from raw claim text. It never fails; empty
// input yields the zero vector. TextLength counts characters, not bytes, so
// multibyte text in pasted denial letters scores the same as its ASCII
// equivalent.
//
// The diagnosis-code check is a deliberately narrow heuristic: the literal
// "ICD" in any case, plus the two example codes "E11" and "I10" matched
// case-sensitively. It is not an ICD-10 format matcher; widening it would
// shift feature values under the trained model.
func Extract(text string) domain.FeatureVector {
	upper := strings.ToUpper(text)
	lower := strings.ToLower(text)

	return domain.FeatureVector{
		TextLength: utf8.RuneCountInString(text),
		HasDiagnosisCode: strings.Contains(upper, "ICD") ||
			strings.Contains(text, "E11") ||
			strings.Contains(text, "I10"),
		HasPriorAuth: strings.Contains(lower, "prior auth") ||
			strings.Contains(lower, "authorization"),
		HasDenial: strings.Contains(lower, "denied") ||
			strings.Contains(lower, "denial"),
		HasAppeal: strings.Contains(lower, "appeal"),
	}
}
