package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/DeafMist/policy-depot/internal/config"
	"github.com/DeafMist/policy-depot/internal/logger"
	"github.com/DeafMist/policy-depot/internal/policyapi"
	"github.com/DeafMist/policy-depot/internal/presenter"
)

type policyFetcher interface {
	Fetch(ctx context.Context, id string) policyapi.Result
}

func main() {
	_ = godotenv.Load()

	log := logger.New("web")
	cfg, err := config.LoadWeb()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	pages, err := presenter.NewHTML()
	if err != nil {
		log.Error("load templates", slog.Any("err", err))
		os.Exit(1)
	}

	srv := &server{
		log:      log,
		policies: policyapi.New(cfg.BaseURL, cfg.APIKey),
		pages:    pages,
	}

	// No WriteTimeout: a lookup is allowed to take as long as the upstream call does.
	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("web server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

type server struct {
	log      *slog.Logger
	policies policyFetcher
	pages    *presenter.HTML
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleIndex)
	r.Get("/policy/{id}", s.handlePolicy)
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.lookup(w, r, r.URL.Query().Get("id"))
}

func (s *server) handlePolicy(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	s.lookup(w, r, raw)
}

// lookup runs at most one fetch for the submitted identifier and renders the page.
func (s *server) lookup(w http.ResponseWriter, r *http.Request, raw string) {
	id := policyapi.NormalizeIdentifier(raw)
	if id == "" {
		s.render(w, http.StatusOK, presenter.PromptView())
		return
	}

	lookupID := uuid.NewString()
	start := time.Now()
	res := s.policies.Fetch(r.Context(), id)
	kind := res.Kind()

	s.log.Info("policy lookup",
		slog.String("lookup_id", lookupID),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("identifier", id),
		slog.Int("upstream_status", res.StatusCode),
		slog.String("kind", kind.String()),
		slog.Duration("took", time.Since(start)),
	)

	s.render(w, pageStatus(kind), presenter.ViewFor(id, res))
}

func (s *server) render(w http.ResponseWriter, status int, view presenter.PageView) {
	var buf bytes.Buffer
	if err := s.pages.Page(&buf, view); err != nil {
		s.log.Error("render page", slog.Any("err", err))
		http.Error(w, presenter.ErrorMessage, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func pageStatus(kind policyapi.Kind) int {
	switch kind {
	case policyapi.KindDocument:
		return http.StatusOK
	case policyapi.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}
