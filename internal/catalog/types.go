// File path: internal/catalog/types.go

// Package catalog models the labeled leaf-image corpus: one Entry per image,
// persisted in a SQLite table that stays row-aligned with the vector index
// through the shared entry id.
package catalog

import "fmt"

// Entry is one indexed corpus image. The id is assigned sequentially during
// an index build and is carried verbatim in the vector index, so the pair of
// artifacts can be cross-checked at load time.
type Entry struct {
	ID        int64  `db:"id" json:"id"`
	ClassName string `db:"class_name" json:"class_name"`
	Crop      string `db:"crop" json:"crop"`
	Condition string `db:"condition" json:"condition"`
	IsHealthy bool   `db:"is_healthy" json:"is_healthy"`
	ImagePath string `db:"image_path" json:"image_path"`
	Text      string `db:"text" json:"text"`
}

// DescriptiveText renders the sentence that gets embedded for a class label.
// The wording is load-bearing: query-time similarity depends on the indexed
// text staying stable across rebuilds.
func DescriptiveText(label Label) string {
	healthy := "no"
	if label.IsHealthy {
		healthy = "yes"
	}
	return fmt.Sprintf(
		"Crop: %s. Condition: %s. This is a leaf image labeled '%s'. Healthy: %s.",
		label.Crop, label.Condition, label.ClassName, healthy,
	)
}

// Label is the canonical (crop, condition, health) triple extracted from a
// class folder name.
type Label struct {
	Crop      string
	Condition string
	IsHealthy bool
	ClassName string
}
