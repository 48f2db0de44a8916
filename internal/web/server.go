// Package web serves the translation form, the JSON API and operational endpoints.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/pricofy/translation-judge/internal/domain"
	"github.com/pricofy/translation-judge/internal/router"
)

//go:embed templates/*.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// maxFormBytes bounds a submitted form or JSON body.
const maxFormBytes = 1 << 20

// Handler is the workflow the server exposes.
type Handler interface {
	Handle(ctx context.Context, req domain.Request) *domain.Response
	HandleDispatch(ctx context.Context, req domain.DispatchRequest) *domain.DispatchResponse
}

// page is the data rendered into index.html.
type page struct {
	domain.Response
	TargetLang string
	Mode       string
	Languages  []router.Language
	Modes      []string
}

// Server wires routes to the handler.
type Server struct {
	handler Handler
	logger  *log.Logger
	metrics http.Handler
	router  *mux.Router
}

// New builds the routes. metricsHandler may be nil to disable /metrics.
func New(h Handler, logger *log.Logger, metricsHandler http.Handler) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		handler: h,
		logger:  logger,
		metrics: metricsHandler,
		router:  mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/", s.handleSubmit).Methods(http.MethodPost)
	s.router.HandleFunc("/api/dispatch", s.handleDispatch).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, &domain.Response{}, "", domain.ModeMock.String())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	req := domain.Request{
		SourceText:     r.PostFormValue("source_text"),
		TargetLang:     r.PostFormValue("target_lang"),
		Mode:           r.PostFormValue("mode"),
		Step:           r.PostFormValue("step"),
		TranslatedText: r.PostFormValue("translated_text"),
	}
	resp := s.handler.Handle(r.Context(), req)
	s.render(w, resp, req.TargetLang, req.Mode)
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var req domain.DispatchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.handler.HandleDispatch(r.Context(), req))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) render(w http.ResponseWriter, resp *domain.Response, targetLang, mode string) {
	langs := router.GetSupportedLanguages()
	if targetLang == "" {
		targetLang = langs[0].Label
	}
	data := page{
		Response:   *resp,
		TargetLang: targetLang,
		Mode:       mode,
		Languages:  langs,
		Modes:      []string{domain.ModeMock.String(), domain.ModeNoAuth.String(), domain.ModeAuth.String()},
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("failed to render page", "err", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed", time.Since(start),
		)
	})
}
