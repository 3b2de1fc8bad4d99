// File path: internal/recommend/parser_test.go
package recommend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseWellFormedJSON(t *testing.T) {
	raw := `{
		"primary_diagnosis": "Tomato - Leaf Mold",
		"confidence": "high",
		"recommendations": ["Remove infected leaves", "Apply copper fungicide"],
		"preventive_measures": ["Improve ventilation"],
		"fertilizer_advice": "Balanced NPK 10-10-10",
		"urgency": "high"
	}`
	rec := ParseGeneratorResponse(raw)
	require.Equal(t, "Tomato - Leaf Mold", rec.PrimaryDiagnosis)
	require.Equal(t, ConfidenceHigh, rec.Confidence)
	require.Equal(t, []string{"Remove infected leaves", "Apply copper fungicide"}, rec.Recommendations)
	require.Equal(t, UrgencyHigh, rec.Urgency)
	require.Equal(t, raw, rec.LLMAnalysis)
}

func TestParseJSONEmbeddedInProse(t *testing.T) {
	raw := "Here is my analysis:\n```json\n" +
		`{"primary_diagnosis": "Healthy Tomato leaf", "confidence": "high", "recommendations": ["Water regularly"], "preventive_measures": ["Mulch the soil"], "fertilizer_advice": "Compost monthly"}` +
		"\n```\nLet me know if you need more detail."
	rec := ParseGeneratorResponse(raw)
	require.Equal(t, "Healthy Tomato leaf", rec.PrimaryDiagnosis)
	require.Equal(t, []string{"Water regularly"}, rec.Recommendations)
	require.Equal(t, UrgencyMedium, rec.Urgency, "missing urgency defaults to medium")
	require.Equal(t, raw, rec.LLMAnalysis, "raw text preserved when llm_analysis absent")
}

func TestParseFillsMissingFields(t *testing.T) {
	raw := `{"primary_diagnosis": "Corn - Common Rust"}`
	rec := ParseGeneratorResponse(raw)
	require.Equal(t, "Corn - Common Rust", rec.PrimaryDiagnosis)
	require.Equal(t, missingFieldText, rec.Confidence)
	require.Equal(t, []string{missingFieldText}, rec.Recommendations)
	require.Equal(t, []string{missingFieldText}, rec.PreventiveMeasures)
	require.Equal(t, missingFieldText, rec.FertilizerAdvice)
	require.Equal(t, UrgencyMedium, rec.Urgency)
}

func TestParseFallsBackToTextOnBrokenJSON(t *testing.T) {
	raw := "{this is not json}\nTreatment steps:\n- Prune infected branches"
	rec := ParseGeneratorResponse(raw)
	require.Equal(t, "AI analysis completed", rec.PrimaryDiagnosis)
	require.Equal(t, []string{"Prune infected branches"}, rec.Recommendations)
}

func TestStructureFreeTextSections(t *testing.T) {
	text := `Based on the analysis, here is my advice.

Treatment steps:
- Prune infected branches
- Spray neem oil weekly

Prevention tips:
- Rotate crops each season
- Water at the base of the plant

Fertilizer: use NPK 20-20-20 every two weeks.

This situation is urgent and needs immediate attention.`
	rec := StructureFreeText(text)
	require.Equal(t, "AI analysis completed", rec.PrimaryDiagnosis)
	require.Equal(t, ConfidenceMedium, rec.Confidence)
	require.Equal(t, []string{"Prune infected branches", "Spray neem oil weekly"}, rec.Recommendations)
	require.Equal(t, []string{"Rotate crops each season", "Water at the base of the plant"}, rec.PreventiveMeasures)
	require.Equal(t, "Fertilizer: use NPK 20-20-20 every two weeks.", rec.FertilizerAdvice)
	require.Equal(t, UrgencyHigh, rec.Urgency)
	require.Equal(t, text, rec.LLMAnalysis)
}

func TestStructureFreeTextDefaults(t *testing.T) {
	rec := StructureFreeText("")
	require.Equal(t, []string{"Follow agricultural best practices for the identified condition"}, rec.Recommendations)
	require.Equal(t, []string{"Maintain good plant hygiene", "Monitor plants regularly"}, rec.PreventiveMeasures)
	require.Equal(t, "Apply balanced fertilizer as recommended", rec.FertilizerAdvice)
	require.Equal(t, UrgencyMedium, rec.Urgency)
}

func TestStructureFreeTextCapsLists(t *testing.T) {
	text := "Treatment plan:\n"
	for i := 0; i < 10; i++ {
		text += "- step\n"
	}
	rec := StructureFreeText(text)
	require.Len(t, rec.Recommendations, maxListItems)
}

func TestExtractJSONBlockIgnoresBracesInStrings(t *testing.T) {
	raw := `prefix {"primary_diagnosis": "odd {value}", "confidence": "low"} suffix`
	block, ok := extractJSONBlock(raw)
	require.True(t, ok)
	require.Equal(t, `{"primary_diagnosis": "odd {value}", "confidence": "low"}`, block)
}

func TestExtractJSONBlockNoObject(t *testing.T) {
	_, ok := extractJSONBlock("no braces here at all")
	require.False(t, ok)
}
