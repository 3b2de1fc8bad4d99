// File path: internal/recommend/symptoms.go
package recommend

import "os"

// AnalyzeImageSymptoms produces a textual symptom description for an
// uploaded leaf image. Vision-based symptom detection is not wired yet, so
// the description is generic; it still gives the retrieval query something
// to work with when the caller supplies no symptoms of their own.
func AnalyzeImageSymptoms(imagePath string) string {
	if imagePath != "" {
		if _, err := os.Stat(imagePath); err != nil {
			return "Unable to analyze image automatically. Please describe the symptoms you observe."
		}
	}
	return "Plant leaf showing potential disease symptoms. " +
		"Analyzing for spots, discoloration, wilting, or other abnormalities. " +
		"Please provide additional context about the crop type and observed symptoms."
}
