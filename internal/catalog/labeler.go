// File path: internal/catalog/labeler.go
package catalog

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	bananaPrefixRe  = regexp.MustCompile(`(?i)^(?:resized_)?banana[_-](.+)$`)
	goodIllPrefixRe = regexp.MustCompile(`(?i)^(good|ill)[_\s-]+(.+)$`)
	leafTokenRe     = regexp.MustCompile(`(?i)^[_\s-]*leaf[_\s-]*`)
	punctRe         = regexp.MustCompile(`[_(),/]+`)
	spaceRe         = regexp.MustCompile(`\s+`)
)

// Labeler normalizes the corpus's inconsistent folder-naming conventions into
// canonical labels. The alias tables carry built-in defaults and can be
// extended from a YAML override file.
type Labeler struct {
	cropAliases  map[string]string
	defaultCrops map[string]string
}

// NewLabeler returns a Labeler seeded with the built-in alias tables. Alias
// keys are stored in normalized form, since crops are only looked up after
// punctuation has been stripped.
func NewLabeler() *Labeler {
	l := &Labeler{
		cropAliases: make(map[string]string),
		defaultCrops: map[string]string{
			"brown spot":            "Rice",
			"leaf smut":             "Rice",
			"bacterial leaf blight": "Rice",
		},
	}
	l.addCropAlias("pepper, bell", "Bell pepper")
	l.addCropAlias("corn (maize)", "Corn")
	return l
}

func (l *Labeler) addCropAlias(key, canonical string) {
	l.cropAliases[strings.ToLower(normalizeFragment(key))] = canonical
}

type aliasFile struct {
	CropAliases  map[string]string `yaml:"crop_aliases"`
	DefaultCrops map[string]string `yaml:"disease_default_crops"`
}

// LoadOverrides merges alias entries from a YAML file into the built-in
// tables. Keys are matched case-insensitively.
func (l *Labeler) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read alias overrides: %w", err)
	}
	var overrides aliasFile
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse alias overrides: %w", err)
	}
	for key, value := range overrides.CropAliases {
		l.addCropAlias(key, strings.TrimSpace(value))
	}
	for key, value := range overrides.DefaultCrops {
		l.defaultCrops[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return nil
}

// Parse resolves a class folder name into its canonical label. The matching
// rules are ordered; the first that applies wins:
//
//  1. "Crop___Condition" (triple underscore)
//  2. "RESIZED_BANANA_*" / "BANANA_*" banana sets
//  3. "Sugarcane*" with a leading "leaf" token stripped from the condition
//  4. "good_"/"ill_" health-prefixed crops
//  5. "Crop_Condition" (first single underscore)
//  6. disease-only names mapped through the default-crop table
func (l *Labeler) Parse(folderName string) Label {
	name := strings.TrimRight(strings.TrimSpace(folderName), "_")
	lower := strings.ToLower(name)

	var crop, condition string
	switch {
	case strings.Contains(name, "___"):
		parts := strings.SplitN(name, "___", 2)
		crop = l.canonCrop(normalizeFragment(parts[0]))
		condition = normalizeFragment(parts[1])
	case bananaPrefixRe.MatchString(name):
		crop = "Banana"
		condition = "unknown"
		if m := bananaPrefixRe.FindStringSubmatch(name); m != nil {
			condition = normalizeFragment(m[1])
		}
	case strings.HasPrefix(lower, "sugarcane"):
		crop = "Sugarcane"
		rest := name[len("sugarcane"):]
		condition = normalizeFragment(leafTokenRe.ReplaceAllString(rest, ""))
		if condition == "" {
			condition = "unknown"
		}
	case goodIllPrefixRe.MatchString(name):
		m := goodIllPrefixRe.FindStringSubmatch(name)
		crop = l.canonCrop(normalizeFragment(m[2]))
		if strings.EqualFold(m[1], "good") {
			condition = "healthy"
		} else {
			condition = "diseased"
		}
	case strings.Contains(name, "_"):
		parts := strings.SplitN(name, "_", 2)
		crop = l.canonCrop(normalizeFragment(parts[0]))
		condition = normalizeFragment(parts[1])
	default:
		condition = normalizeFragment(name)
		crop = l.defaultCrops[strings.ToLower(condition)]
		if crop == "" {
			crop = "Unknown"
		}
	}

	crop = l.canonCrop(crop)
	return Label{
		Crop:      crop,
		Condition: condition,
		IsHealthy: isHealthyCondition(condition),
		ClassName: crop + " - " + condition,
	}
}

func (l *Labeler) canonCrop(crop string) string {
	if canonical, ok := l.cropAliases[strings.ToLower(normalizeFragment(crop))]; ok {
		return canonical
	}
	return crop
}

func normalizeFragment(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = punctRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func isHealthyCondition(condition string) bool {
	switch strings.ToLower(condition) {
	case "healthy", "leaf healthy", "good":
		return true
	}
	return false
}
