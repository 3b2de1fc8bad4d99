// File path: internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agrostack/cropdoctor/internal/recommend"
	"github.com/agrostack/cropdoctor/internal/retriever"
)

type stubSearcher struct {
	ready     bool
	results   []retriever.Result
	lastQuery string
	lastTopK  int
}

func (s *stubSearcher) Search(_ context.Context, query string, topK int) []retriever.Result {
	s.lastQuery = query
	s.lastTopK = topK
	if !s.ready {
		return nil
	}
	if len(s.results) > topK {
		return s.results[:topK]
	}
	return s.results
}

func (s *stubSearcher) Ready() bool { return s.ready }

func (s *stubSearcher) Info() retriever.Info {
	return retriever.Info{Ready: s.ready, Documents: len(s.results)}
}

type stubRecommender struct {
	lastMatches int
	lastCrop    string
}

func (s *stubRecommender) GeneratorAvailable() bool { return false }

func (s *stubRecommender) Recommend(_ context.Context, matches []retriever.Result, cropHint string) recommend.Recommendation {
	s.lastMatches = len(matches)
	s.lastCrop = cropHint
	return recommend.Recommendation{
		PrimaryDiagnosis:   "Tomato - Leaf Mold",
		Confidence:         recommend.ConfidenceMedium,
		Recommendations:    []string{"Remove affected plant parts"},
		PreventiveMeasures: []string{"Ensure proper plant spacing"},
		FertilizerAdvice:   "Apply balanced fertilizer suitable for Tomato",
		Urgency:            recommend.UrgencyMedium,
		LLMAnalysis:        "LLM analysis not available",
	}
}

func newTestServer(ready bool) (*Server, *stubSearcher, *stubRecommender) {
	searcher := &stubSearcher{
		ready: ready,
		results: []retriever.Result{
			{Score: 0.91, Crop: "Tomato", Condition: "Leaf Mold", ClassName: "Tomato - Leaf Mold"},
			{Score: 0.62, Crop: "Tomato", Condition: "Early Blight", ClassName: "Tomato - Early Blight"},
		},
	}
	recommender := &stubRecommender{}
	return NewServer(searcher, recommender), searcher, recommender
}

func TestSearchEndpoint(t *testing.T) {
	srv, searcher, _ := newTestServer(true)
	req := httptest.NewRequest(http.MethodGet, "/v1/search?q=yellow+spots&limit=1", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Query   string             `json:"query"`
		Results []retriever.Result `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Query != "yellow spots" {
		t.Fatalf("unexpected query echo: %q", payload.Query)
	}
	if len(payload.Results) != 1 {
		t.Fatalf("expected limit to cap results, got %d", len(payload.Results))
	}
	if searcher.lastTopK != 1 {
		t.Fatalf("expected topK 1, got %d", searcher.lastTopK)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	srv, _, _ := newTestServer(true)
	req := httptest.NewRequest(http.MethodGet, "/v1/search", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDiagnoseEndpoint(t *testing.T) {
	srv, searcher, recommender := newTestServer(true)
	body := `{"symptoms": "yellow spots on leaves", "crop": "Tomato", "top_k": 2}`
	req := httptest.NewRequest(http.MethodPost, "/v1/diagnose", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Query          string                   `json:"query"`
		Matches        int                      `json:"matches"`
		Recommendation recommend.Recommendation `json:"recommendation"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(payload.Query, "Tomato leaf.") {
		t.Fatalf("crop hint missing from query: %q", payload.Query)
	}
	if payload.Matches != 2 {
		t.Fatalf("expected 2 matches, got %d", payload.Matches)
	}
	if payload.Recommendation.PrimaryDiagnosis != "Tomato - Leaf Mold" {
		t.Fatalf("unexpected diagnosis: %q", payload.Recommendation.PrimaryDiagnosis)
	}
	if recommender.lastCrop != "Tomato" {
		t.Fatalf("crop hint not forwarded, got %q", recommender.lastCrop)
	}
	if searcher.lastTopK != 2 {
		t.Fatalf("expected topK 2, got %d", searcher.lastTopK)
	}
}

func TestDiagnoseWithoutSymptomsUsesImageDescription(t *testing.T) {
	srv, searcher, _ := newTestServer(true)
	body := `{"image_path": ""}`
	req := httptest.NewRequest(http.MethodPost, "/v1/diagnose", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(searcher.lastQuery, "potential disease symptoms") {
		t.Fatalf("expected generic symptom description, got %q", searcher.lastQuery)
	}
}

func TestDiagnoseRejectsBadBody(t *testing.T) {
	srv, _, _ := newTestServer(true)
	req := httptest.NewRequest(http.MethodPost, "/v1/diagnose", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDiagnoseDegradesWhenSearcherNotReady(t *testing.T) {
	srv, _, recommender := newTestServer(false)
	body := `{"symptoms": "spots"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/diagnose", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 even when not ready, got %d", rec.Code)
	}
	if recommender.lastMatches != 0 {
		t.Fatalf("expected no matches forwarded, got %d", recommender.lastMatches)
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(true)
	req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Service string         `json:"service"`
		Ready   bool           `json:"ready"`
		Index   retriever.Info `json:"index"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Service != "cropdoctor" || !payload.Ready {
		t.Fatalf("unexpected status payload: %+v", payload)
	}
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(true)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz response: %d %q", rec.Code, rec.Body.String())
	}
}
