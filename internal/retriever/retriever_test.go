// File path: internal/retriever/retriever_test.go
package retriever

import (
	"context"
	"strings"
	"testing"

	"github.com/agrostack/cropdoctor/internal/catalog"
	"github.com/agrostack/cropdoctor/internal/vector"
)

// keywordEmbedder maps texts to a tiny fixed vector space so similarity is
// predictable: dim 0 tracks disease words, dim 1 healthy words, dim 2 the
// crop name.
type keywordEmbedder struct{}

func (keywordEmbedder) Embed(_ context.Context, input []string) ([][]float32, error) {
	out := make([][]float32, 0, len(input))
	for _, text := range input {
		lower := strings.ToLower(text)
		vec := make([]float32, 3)
		for _, word := range []string{"mold", "spots", "yellow"} {
			if strings.Contains(lower, word) {
				vec[0]++
			}
		}
		for _, word := range []string{"healthy", "good"} {
			if strings.Contains(lower, word) {
				vec[1]++
			}
		}
		if strings.Contains(lower, "tomato") {
			vec[2]++
		}
		out = append(out, vec)
	}
	return out, nil
}

func buildFixture(t *testing.T) *Retriever {
	t.Helper()
	labels := []catalog.Label{
		{Crop: "Tomato", Condition: "Healthy", IsHealthy: true, ClassName: "Tomato - Healthy"},
		{Crop: "Tomato", Condition: "Leaf Mold", ClassName: "Tomato - Leaf Mold"},
		{Crop: "Tomato", Condition: "Healthy", IsHealthy: true, ClassName: "Tomato - Healthy"},
		{Crop: "Tomato", Condition: "Leaf Mold", ClassName: "Tomato - Leaf Mold"},
		{Crop: "Tomato", Condition: "Healthy", IsHealthy: true, ClassName: "Tomato - Healthy"},
	}
	embedder := keywordEmbedder{}
	idx := vector.New("keyword-test", 3)
	entries := make([]catalog.Entry, 0, len(labels))
	for i, label := range labels {
		text := catalog.DescriptiveText(label)
		if !label.IsHealthy {
			text += " Symptoms include yellow spots and mold on leaves."
		}
		vecs, err := embedder.Embed(context.Background(), []string{text})
		if err != nil {
			t.Fatalf("embed fixture: %v", err)
		}
		id := int64(i + 1)
		if err := idx.Add(id, vecs[0]); err != nil {
			t.Fatalf("add vector: %v", err)
		}
		entries = append(entries, catalog.Entry{
			ID:        id,
			ClassName: label.ClassName,
			Crop:      label.Crop,
			Condition: label.Condition,
			IsHealthy: label.IsHealthy,
			Text:      text,
		})
	}
	r, err := New(idx, entries, embedder)
	if err != nil {
		t.Fatalf("build retriever: %v", err)
	}
	return r
}

func TestSearchRanksDiseasedCaseFirst(t *testing.T) {
	r := buildFixture(t)
	if !r.Ready() {
		t.Fatal("expected retriever to be ready")
	}
	results := r.Search(context.Background(), "yellow spots on tomato leaves", 3)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Condition != "Leaf Mold" {
		t.Fatalf("expected Leaf Mold first, got %q", results[0].Condition)
	}
	if results[0].IsHealthy {
		t.Fatal("top match should be a diseased case")
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Fatalf("results not sorted by descending score at %d", i)
		}
	}
}

func TestSearchHonorsTopK(t *testing.T) {
	r := buildFixture(t)
	results := r.Search(context.Background(), "tomato", 2)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	results = r.Search(context.Background(), "tomato", 50)
	if len(results) != 5 {
		t.Fatalf("expected all 5 results, got %d", len(results))
	}
}

func TestNewRejectsMisalignedArtifacts(t *testing.T) {
	idx := vector.New("keyword-test", 3)
	if err := idx.Add(1, []float32{1, 0, 0}); err != nil {
		t.Fatalf("add vector: %v", err)
	}
	if err := idx.Add(2, []float32{0, 1, 0}); err != nil {
		t.Fatalf("add vector: %v", err)
	}

	entries := []catalog.Entry{{ID: 1, ClassName: "Tomato - Healthy"}}
	if _, err := New(idx, entries, keywordEmbedder{}); err == nil {
		t.Fatal("expected count mismatch error")
	}

	entries = append(entries, catalog.Entry{ID: 99, ClassName: "Tomato - Leaf Mold"})
	if _, err := New(idx, entries, keywordEmbedder{}); err == nil {
		t.Fatal("expected missing id error")
	}
}

func TestLoadWithoutEmbedderIsNotReady(t *testing.T) {
	r := Load(context.Background(), "does-not-matter", nil, nil)
	if r.Ready() {
		t.Fatal("expected not ready without an embedder")
	}
	if results := r.Search(context.Background(), "anything", 3); len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestNotReadyRetrieverReturnsEmpty(t *testing.T) {
	r := &Retriever{loadErr: vector.ErrIndexNotFound, embedder: keywordEmbedder{}}
	if r.Ready() {
		t.Fatal("expected not ready")
	}
	if results := r.Search(context.Background(), "anything", 3); len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
	info := r.Info()
	if info.Ready || info.LoadError == "" {
		t.Fatalf("unexpected info: %+v", info)
	}
}
