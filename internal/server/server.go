// Package server exposes a written MVV bundle over a read-only HTTP API.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/sells-group/mvv-cli/internal/artifact"
	"github.com/sells-group/mvv-cli/internal/model"
)

const shutdownTimeout = 5 * time.Second

var companyIDPattern = regexp.MustCompile(`^company_\d+$`)

// CategorySummary is one entry of the category listing.
type CategorySummary struct {
	Name      string `json:"name"`
	Companies int    `json:"companies"`
}

// Server serves one immutable bundle.
type Server struct {
	bundle *model.Bundle
	raw    []byte
	router chi.Router
}

// New builds a Server for b. The bundle must not be modified afterwards.
func New(b *model.Bundle) (*Server, error) {
	var buf bytes.Buffer
	if err := artifact.EncodeJSON(&buf, b); err != nil {
		return nil, eris.Wrap(err, "server: encode bundle")
	}

	s := &Server{bundle: b, raw: buf.Bytes()}
	s.router = s.routes()
	return s, nil
}

// Load reads the bundle written at path and builds a Server for it.
func Load(path string) (*Server, error) {
	b, err := artifact.ReadJSON(path)
	if err != nil {
		return nil, eris.Wrap(err, "server: load bundle")
	}
	return New(b)
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/bundle", s.handleBundle)
	r.Get("/categories", s.handleCategories)
	r.Get("/categories/{name}", s.handleCategory)
	r.Get("/companies/{id}", s.handleCompany)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"companies":    s.bundle.CompleteMVVCompanies,
		"processed_at": s.bundle.ProcessedAt,
	})
}

func (s *Server) handleBundle(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(s.raw) //nolint:errcheck
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	out := make([]CategorySummary, 0, len(s.bundle.Categories))
	for _, name := range s.bundle.Categories {
		out = append(out, CategorySummary{Name: name, Companies: len(s.bundle.ByCategory.Get(name))})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when it is set, leaving the parameter escaped.
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid category name")
			return
		}
		name = unescaped
	}

	companies := s.bundle.ByCategory.Get(name)
	if companies == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

func (s *Server) handleCompany(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !companyIDPattern.MatchString(id) {
		writeError(w, http.StatusBadRequest, "invalid company id")
		return
	}

	res := gjson.GetBytes(s.raw, `companies.#(id=="`+id+`")`)
	if !res.Exists() {
		writeError(w, http.StatusNotFound, "company not found")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(res.Raw)) //nolint:errcheck
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		zap.L().Info("server: listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server: listen")
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes()) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
