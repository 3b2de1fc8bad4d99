// File path: internal/recommend/parser.go
package recommend

import (
	"encoding/json"
	"strings"

	"github.com/agrostack/cropdoctor/internal/common"
	"github.com/agrostack/cropdoctor/internal/common/telemetry"
)

const missingFieldText = "Not specified in LLM response"

// generatorPayload mirrors the JSON contract the system prompt asks the
// generator to follow. Urgency and llm_analysis are optional; the rest get
// placeholder text when absent.
type generatorPayload struct {
	PrimaryDiagnosis   string   `json:"primary_diagnosis"`
	Confidence         string   `json:"confidence"`
	Recommendations    []string `json:"recommendations"`
	PreventiveMeasures []string `json:"preventive_measures"`
	FertilizerAdvice   string   `json:"fertilizer_advice"`
	Urgency            string   `json:"urgency"`
	LLMAnalysis        string   `json:"llm_analysis"`
}

// ParseGeneratorResponse structures raw generator output. Tier one pulls a
// JSON object out of the text (models often wrap it in prose or code
// fences); tier two classifies the text line by line. Either way the caller
// gets a fully populated recommendation.
func ParseGeneratorResponse(raw string) Recommendation {
	block, ok := extractJSONBlock(raw)
	if !ok {
		telemetry.RecordParse(false)
		return StructureFreeText(raw)
	}
	var payload generatorPayload
	if err := json.Unmarshal([]byte(block), &payload); err != nil {
		common.Logger().Warn("recommend: generator JSON did not parse, structuring as text", "error", err)
		telemetry.RecordParse(false)
		return StructureFreeText(raw)
	}
	rec := Recommendation{
		PrimaryDiagnosis:   payload.PrimaryDiagnosis,
		Confidence:         payload.Confidence,
		Recommendations:    payload.Recommendations,
		PreventiveMeasures: payload.PreventiveMeasures,
		FertilizerAdvice:   payload.FertilizerAdvice,
		Urgency:            payload.Urgency,
		LLMAnalysis:        payload.LLMAnalysis,
	}
	if rec.PrimaryDiagnosis == "" {
		rec.PrimaryDiagnosis = missingFieldText
	}
	if rec.Confidence == "" {
		rec.Confidence = missingFieldText
	}
	if len(rec.Recommendations) == 0 {
		rec.Recommendations = []string{missingFieldText}
	}
	if len(rec.PreventiveMeasures) == 0 {
		rec.PreventiveMeasures = []string{missingFieldText}
	}
	if rec.FertilizerAdvice == "" {
		rec.FertilizerAdvice = missingFieldText
	}
	if rec.Urgency == "" {
		rec.Urgency = UrgencyMedium
	}
	if rec.LLMAnalysis == "" {
		rec.LLMAnalysis = raw
	}
	telemetry.RecordParse(true)
	return rec
}

// extractJSONBlock finds the first balanced top-level JSON object in text.
// Braces inside string literals do not count toward the balance.
func extractJSONBlock(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	// Unbalanced; take the widest brace span and let json.Unmarshal decide.
	end := strings.LastIndexByte(text, '}')
	if end > start {
		return text[start : end+1], true
	}
	return "", false
}

const maxListItems = 6

// StructureFreeText classifies prose line by line into a recommendation.
// Keyword headers open a section, bullet lines feed the open section, and
// urgency words escalate the whole response.
func StructureFreeText(text string) Recommendation {
	var recommendations []string
	var preventiveMeasures []string
	fertilizerAdvice := "Apply balanced fertilizer as recommended"
	urgency := UrgencyMedium

	section := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case containsAny(lower, "treatment", "recommend", "apply"):
			section = "recommendations"
		case containsAny(lower, "prevent", "avoid", "maintain"):
			section = "preventive_measures"
		case containsAny(lower, "fertilizer", "nutrient", "npk"):
			fertilizerAdvice = line
			section = ""
		case containsAny(lower, "urgent", "immediate", "critical"):
			urgency = UrgencyHigh
			section = ""
		case strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*"):
			clean := strings.TrimSpace(strings.TrimLeft(line, "-•* "))
			switch section {
			case "recommendations":
				recommendations = append(recommendations, clean)
			case "preventive_measures":
				preventiveMeasures = append(preventiveMeasures, clean)
			}
		}
	}

	if len(recommendations) == 0 {
		recommendations = []string{"Follow agricultural best practices for the identified condition"}
	}
	if len(preventiveMeasures) == 0 {
		preventiveMeasures = []string{"Maintain good plant hygiene", "Monitor plants regularly"}
	}
	if len(recommendations) > maxListItems {
		recommendations = recommendations[:maxListItems]
	}
	if len(preventiveMeasures) > maxListItems {
		preventiveMeasures = preventiveMeasures[:maxListItems]
	}

	return Recommendation{
		PrimaryDiagnosis:   "AI analysis completed",
		Confidence:         ConfidenceMedium,
		Recommendations:    recommendations,
		PreventiveMeasures: preventiveMeasures,
		FertilizerAdvice:   fertilizerAdvice,
		Urgency:            urgency,
		LLMAnalysis:        text,
	}
}

func containsAny(s string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
