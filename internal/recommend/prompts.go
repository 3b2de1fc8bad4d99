// File path: internal/recommend/prompts.go
package recommend

import (
	"fmt"
	"strings"

	"github.com/agrostack/cropdoctor/internal/retriever"
)

// highConfidenceThreshold separates "high" from "medium" confidence on the
// top similarity score.
const highConfidenceThreshold = 0.7

// maxSimilarCases caps how many retrieved cases get quoted in prompts and
// echoed back on the recommendation.
const maxSimilarCases = 3

// SystemPrompt frames the generator as an agricultural advisor and pins the
// JSON response contract.
const SystemPrompt = `You are an expert agricultural AI specializing in plant disease diagnosis and treatment recommendations.

When providing treatment recommendations, always respond in valid JSON format with these exact fields:
{
    "primary_diagnosis": "clear diagnosis statement",
    "confidence": "high/medium/low",
    "recommendations": ["list of 4-6 specific treatment steps"],
    "preventive_measures": ["list of 4-6 prevention strategies"],
    "fertilizer_advice": "specific fertilizer recommendation",
    "urgency": "low/medium/high"
}

Provide practical, science-based advice that farmers can implement. Consider:
- Immediate actions needed
- Chemical vs organic treatment options
- Environmental management
- Safety precautions
- Cost-effective solutions
- Local availability of treatments

Always prioritize farmer safety and environmental sustainability.`

// similarCasesContext renders the top retrieved cases one per line.
func similarCasesContext(matches []retriever.Result) string {
	var b strings.Builder
	for i, match := range matches {
		if i >= maxSimilarCases {
			break
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "Case %d: %s with %s (similarity: %.2f)", i+1, match.Crop, match.Condition, match.Score)
	}
	return b.String()
}

// confidenceForScore maps the top similarity score to a confidence level.
func confidenceForScore(score float32) string {
	if score > highConfidenceThreshold {
		return ConfidenceHigh
	}
	return ConfidenceMedium
}

func noMatchPrompt(cropHint string) string {
	crop := cropHint
	if crop == "" {
		crop = "Unknown"
	}
	return fmt.Sprintf(`No specific disease matches found for the plant image analysis.
Crop type: %s

Please provide general plant health recommendations in JSON format:
{
    "primary_diagnosis": "Unable to identify specific disease",
    "confidence": "low",
    "recommendations": ["list of 3-5 treatment steps"],
    "preventive_measures": ["list of 3-5 prevention strategies"],
    "fertilizer_advice": "specific fertilizer recommendation",
    "urgency": "low/medium/high"
}`, crop)
}

func maintenancePrompt(crop string, matches []retriever.Result) string {
	return fmt.Sprintf(`Analysis shows a healthy %s leaf with high confidence.
Similar healthy cases found:
%s

Please provide maintenance recommendations in JSON format:
{
    "primary_diagnosis": "Healthy %s leaf",
    "confidence": "high",
    "recommendations": ["list of 3-5 maintenance practices"],
    "preventive_measures": ["list of 3-5 disease prevention strategies"],
    "fertilizer_advice": "specific fertilizer recommendation for healthy %s",
    "urgency": "low"
}`, crop, similarCasesContext(matches), crop, crop)
}

func treatmentPrompt(crop, condition string, topScore float32, matches []retriever.Result) string {
	confidence := confidenceForScore(topScore)
	return fmt.Sprintf(`Plant disease diagnosis based on image analysis and database matching:

Primary diagnosis: %s - %s
Confidence level: %s

Similar cases found in database:
%s

Please provide comprehensive treatment recommendations in JSON format:
{
    "primary_diagnosis": "%s - %s",
    "confidence": "%s",
    "recommendations": ["list of 4-6 specific treatment steps"],
    "preventive_measures": ["list of 4-6 prevention strategies"],
    "fertilizer_advice": "specific fertilizer recommendation for this condition",
    "urgency": "low/medium/high based on disease severity"
}

Consider:
- Immediate treatment actions
- Chemical/organic treatment options
- Environmental management
- Timing of treatments
- Safety precautions
- Follow-up monitoring`, crop, condition, confidence, similarCasesContext(matches), crop, condition, confidence)
}
