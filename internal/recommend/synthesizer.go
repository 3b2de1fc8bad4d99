// File path: internal/recommend/synthesizer.go
package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/agrostack/cropdoctor/internal/common"
	"github.com/agrostack/cropdoctor/internal/common/telemetry"
	"github.com/agrostack/cropdoctor/internal/llm"
	"github.com/agrostack/cropdoctor/internal/retriever"
)

const defaultGenerateTimeout = 60 * time.Second

// Synthesizer produces recommendations from retrieved evidence. The
// generator is optional: a nil provider, a timeout, or garbage output all
// land on a deterministic fallback, so Recommend never fails.
type Synthesizer struct {
	provider llm.Provider
	timeout  time.Duration
}

// NewSynthesizer wires a generator provider; nil is allowed and means
// fallback-only operation.
func NewSynthesizer(provider llm.Provider, timeout time.Duration) *Synthesizer {
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	return &Synthesizer{provider: provider, timeout: timeout}
}

// GeneratorAvailable reports whether a generator backend is configured.
func (s *Synthesizer) GeneratorAvailable() bool {
	return s != nil && s.provider != nil
}

// Recommend synthesizes a recommendation from retrieved matches. Four paths:
// no evidence with a generator, no evidence without one, evidence with a
// generator, evidence without one. The evidence paths attach the quoted
// similar cases; the no-evidence paths do not.
func (s *Synthesizer) Recommend(ctx context.Context, matches []retriever.Result, cropHint string) Recommendation {
	if len(matches) == 0 {
		if s.provider != nil {
			if rec, ok := s.generate(ctx, noMatchPrompt(cropHint)); ok {
				return rec
			}
		}
		return noMatchFallback()
	}

	top := matches[0]
	crop := cropHint
	if crop == "" {
		crop = top.Crop
	}

	if s.provider != nil {
		var prompt string
		if top.IsHealthy {
			prompt = maintenancePrompt(crop, matches)
		} else {
			prompt = treatmentPrompt(crop, top.Condition, top.Score, matches)
		}
		if rec, ok := s.generate(ctx, prompt); ok {
			rec.SimilarCases = similarCases(matches)
			return rec
		}
	}
	return evidenceFallback(crop, top.Condition, matches)
}

// generate runs one generator exchange under the synthesizer timeout and
// parses whatever comes back. Any failure returns ok=false so the caller
// falls through to the deterministic path.
func (s *Synthesizer) generate(ctx context.Context, prompt string) (Recommendation, bool) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := llm.Generate(ctx, s.provider, SystemPrompt, prompt)
	telemetry.RecordGenerate(err == nil, time.Since(start))
	if err != nil {
		common.Logger().Warn("recommend: generator call failed, using fallback", "error", err)
		return Recommendation{}, false
	}
	rec := ParseGeneratorResponse(result.Text)
	rec.ModelUsed = result.Model
	return rec, true
}

func similarCases(matches []retriever.Result) []SimilarCase {
	cases := make([]SimilarCase, 0, maxSimilarCases)
	for i, match := range matches {
		if i >= maxSimilarCases {
			break
		}
		cases = append(cases, SimilarCase{
			Crop:       match.Crop,
			Condition:  match.Condition,
			Similarity: fmt.Sprintf("%.2f", match.Score),
		})
	}
	return cases
}

// noMatchFallback covers the case with neither evidence nor a generator.
func noMatchFallback() Recommendation {
	return Recommendation{
		PrimaryDiagnosis:   "Unable to identify specific disease",
		Confidence:         ConfidenceLow,
		Recommendations:    []string{"Consult with a local agricultural expert"},
		PreventiveMeasures: []string{"Maintain good crop hygiene", "Ensure proper spacing"},
		FertilizerAdvice:   "Use balanced NPK fertilizer as per soil test",
		Urgency:            UrgencyMedium,
		LLMAnalysis:        "LLM analysis not available",
	}
}

// evidenceFallback names the top match directly when the generator cannot.
func evidenceFallback(crop, condition string, matches []retriever.Result) Recommendation {
	return Recommendation{
		PrimaryDiagnosis: fmt.Sprintf("%s - %s", crop, condition),
		Confidence:       ConfidenceMedium,
		SimilarCases:     similarCases(matches),
		Recommendations: []string{
			"Remove affected plant parts",
			"Apply appropriate treatment based on disease type",
			"Improve environmental conditions",
			"Monitor plant closely for changes",
		},
		PreventiveMeasures: []string{
			"Ensure proper plant spacing",
			"Maintain good air circulation",
			"Avoid overhead watering",
			"Practice crop rotation",
		},
		FertilizerAdvice: fmt.Sprintf("Apply balanced fertilizer suitable for %s", crop),
		Urgency:          UrgencyMedium,
		LLMAnalysis:      "LLM analysis not available - using fallback recommendations",
	}
}
