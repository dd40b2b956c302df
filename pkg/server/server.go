// Package server exposes the postcard pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz              liveness
//	GET  /templates            configured templates
//	POST /postcards            {"template": id, "destination": d} -> postcard.Result
//	GET  /preview/{template}   freshly rendered JPEG, no cache or upload
//	GET  /files/*              files written by a DirUploader
//
// Failures are answered with {"code": ..., "message": ...} and logged once
// by the handler that produced them.
package server

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/compose"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/phrases"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/postcard"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/render"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/template"
)

// Generator runs the get-or-create pipeline. *postcard.Service implements it.
type Generator interface {
	Generate(ctx context.Context, tpl template.Template, bank *phrases.Bank, destination string) (postcard.Result, error)
}

// Options configures a Server.
type Options struct {
	Generator   Generator
	Renderer    postcard.Renderer // used by /preview
	Composer    *compose.Composer // nil uses compose.New()
	Templates   *template.Set
	Bank        *phrases.Bank
	FilesDir    string // served under /files when set
	JPEGQuality int
	Logger      *log.Logger
}

// Server is the HTTP surface.
type Server struct {
	opts   Options
	logger *log.Logger
	router chi.Router

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds the router.
func New(opts Options) *Server {
	if opts.Composer == nil {
		opts.Composer = compose.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{opts: opts, logger: logger.WithPrefix("http")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/templates", s.handleTemplates)
	r.Post("/postcards", s.handleCreate)
	r.Get("/preview/{template}", s.handlePreview)
	if opts.FilesDir != "" {
		r.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(opts.FilesDir))))
	}
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return errors.Wrap(errors.ErrCodeNetwork, err, "listen %s", addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "shutdown")
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method, "path", r.URL.Path, "status", ww.Status(),
			"took", time.Since(start).Round(time.Millisecond), "id", middleware.GetReqID(r.Context()))
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Templates.Templates)
}

type createRequest struct {
	Template    string `json:"template"`    // empty picks a random template
	Destination string `json:"destination"` // passed to the uploader
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	tpl, err := s.template(req.Template)
	if err != nil {
		s.fail(w, r, err, "template", req.Template)
		return
	}

	res, err := s.opts.Generator.Generate(r.Context(), tpl, s.opts.Bank, req.Destination)
	if err != nil {
		s.fail(w, r, err, "template", tpl.ID, "destination", req.Destination)
		return
	}
	status := http.StatusCreated
	if res.Cached {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "template")
	tpl, err := s.opts.Templates.Get(id)
	if err != nil {
		s.fail(w, r, err, "template", id)
		return
	}

	text := strings.TrimSpace(r.URL.Query().Get("text"))
	var hash string
	if text == "" {
		g, err := s.opts.Composer.Compose(s.opts.Bank, tpl.Image, tpl.Font)
		if err != nil {
			s.fail(w, r, err, "template", id)
			return
		}
		text, hash = g.Text, g.Hash
	} else {
		hash = s.opts.Composer.Hash(tpl.Image, tpl.Font, text)
	}

	img, _, err := s.opts.Renderer.Postcard(tpl, text)
	if err != nil {
		s.fail(w, r, err, "template", id, "text", text)
		return
	}
	data, err := render.JPEG(img, s.opts.JPEGQuality)
	if err != nil {
		s.fail(w, r, err, "template", id)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("X-Postcard-Hash", hash)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) template(id string) (template.Template, error) {
	if id != "" {
		return s.opts.Templates.Get(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.Templates.Pick(s.rng), nil
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeCompose, errors.ErrCodeLayout, errors.ErrCodeInvalidTemplate:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeCacheUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrCodeUpload, errors.ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, keyvals ...any) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	args := append([]any{"method", r.Method, "path", r.URL.Path, "code", code, "err", err}, keyvals...)
	s.logger.Error("request failed", args...)

	writeJSON(w, StatusFor(code), errorResponse{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
