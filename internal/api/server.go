// File path: internal/api/server.go

// Package api exposes the retrieval and recommendation services over HTTP.
package api

import (
	"context"
	"encoding/json"
	"expvar"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/agrostack/cropdoctor/internal/common"
	"github.com/agrostack/cropdoctor/internal/recommend"
	"github.com/agrostack/cropdoctor/internal/retriever"
)

// Searcher is the slice of the retriever the handlers need.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) []retriever.Result
	Ready() bool
	Info() retriever.Info
}

// Recommender synthesizes a recommendation from retrieved matches.
type Recommender interface {
	Recommend(ctx context.Context, matches []retriever.Result, cropHint string) recommend.Recommendation
	GeneratorAvailable() bool
}

type Server struct {
	router      chi.Router
	searcher    Searcher
	recommender Recommender
}

// NewServer wires the handlers around an already-constructed searcher and
// recommender. Both are required; a not-ready searcher is fine, the status
// endpoint reports it and searches come back empty.
func NewServer(searcher Searcher, recommender Recommender) *Server {
	srv := &Server{
		router:      chi.NewRouter(),
		searcher:    searcher,
		recommender: recommender,
	}
	srv.routes()
	common.Logger().Info("api: server ready")
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the router wrapped with request tracing.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "cropdoctor")
}

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")
	s.router.Use(recoverMiddleware)
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Handle("/debug/vars", expvar.Handler())

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Post("/diagnose", s.handleDiagnose)
		r.Get("/status", s.handleStatus)
		r.Get("/logs", s.handleLogs)
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				common.Logger().Error("api: panic recovered", "panic", rec, "path", r.URL.Path)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
