// File path: internal/recommend/types.go

// Package recommend turns retrieved cases into an actionable diagnosis. A
// generator drafts the advice when one is available; a two-tier parser
// structures whatever comes back, and deterministic fallbacks cover every
// failure so callers always receive a complete recommendation.
package recommend

// Confidence and urgency levels carried on every recommendation.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"

	UrgencyHigh   = "high"
	UrgencyMedium = "medium"
	UrgencyLow    = "low"
)

// SimilarCase is one retrieved case attached to a recommendation for
// transparency. Similarity is pre-formatted to two decimals.
type SimilarCase struct {
	Crop       string `json:"crop"`
	Condition  string `json:"condition"`
	Similarity string `json:"similarity"`
}

// Recommendation is the complete diagnosis payload. Every field is always
// populated; consumers never need to null-check.
type Recommendation struct {
	PrimaryDiagnosis   string        `json:"primary_diagnosis"`
	Confidence         string        `json:"confidence"`
	Recommendations    []string      `json:"recommendations"`
	PreventiveMeasures []string      `json:"preventive_measures"`
	FertilizerAdvice   string        `json:"fertilizer_advice"`
	Urgency            string        `json:"urgency"`
	LLMAnalysis        string        `json:"llm_analysis"`
	SimilarCases       []SimilarCase `json:"similar_cases,omitempty"`
	ModelUsed          string        `json:"model_used,omitempty"`
}
