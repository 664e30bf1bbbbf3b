// Package server exposes collage generation over HTTP.
//
// Routes:
//
//	GET /collage?user=rj&period=Week&dimension=3x3&size=Small&format=png
//	GET /options
//	GET /healthz
//	GET /metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jfmyers9/collagefm/internal/collage"
	"github.com/jfmyers9/collagefm/internal/history"
	"github.com/rs/zerolog"
)

// Generator renders collages. *collage.Generator implements it.
type Generator interface {
	Generate(ctx context.Context, req collage.Request) (*collage.Collage, error)
}

// Recorder stores run outcomes. *history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, run history.Run) (int64, error)
}

// Server serves collages over HTTP.
type Server struct {
	generator Generator
	tables    *collage.Tables
	recorder  Recorder
	metrics   *Metrics
	logger    zerolog.Logger
}

// New creates a Server. recorder and metrics may be nil.
func New(generator Generator, tables *collage.Tables, recorder Recorder, metrics *Metrics, logger zerolog.Logger) *Server {
	return &Server{
		generator: generator,
		tables:    tables,
		recorder:  recorder,
		metrics:   metrics,
		logger:    logger.With().Str("component", "server").Logger(),
	}
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(s.logger, s.metrics))

	router.Get("/healthz", s.healthz)
	router.Get("/options", s.options)
	router.Get("/collage", s.collage)
	if s.metrics != nil {
		router.Handle("/metrics", s.metrics.Handler())
	}

	return router
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

type optionTable struct {
	Default string   `json:"default"`
	Labels  []string `json:"labels"`
}

type optionsResponse struct {
	Period    optionTable `json:"period"`
	Dimension optionTable `json:"dimension"`
	ImageSize optionTable `json:"image-size"`
}

func (s *Server) options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, optionsResponse{
		Period:    optionTable{Default: s.tables.Period.Default(), Labels: s.tables.Period.Labels()},
		Dimension: optionTable{Default: s.tables.Dimension.Default(), Labels: s.tables.Dimension.Labels()},
		ImageSize: optionTable{Default: s.tables.ImageSize.Default(), Labels: s.tables.ImageSize.Labels()},
	})
}

type errorResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func (s *Server) collage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := collage.Request{
		Username:  q.Get("user"),
		Period:    valueOr(q.Get("period"), s.tables.Period.Default()),
		Dimension: valueOr(q.Get("dimension"), s.tables.Dimension.Default()),
		ImageSize: valueOr(q.Get("size"), s.tables.ImageSize.Default()),
	}

	format := collage.FormatPNG
	switch q.Get("format") {
	case "", "png":
	case "jpg", "jpeg":
		format = collage.FormatJPEG
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Kind: "BadRequest", Error: "format must be png or jpeg"})
		return
	}

	start := time.Now()
	c, err := s.generator.Generate(r.Context(), req)
	elapsed := time.Since(start)

	s.observe(r.Context(), req, c, err, elapsed)

	if err != nil {
		if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
			// Client went away
			return
		}
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error().Err(err).Str("user", req.Username).Msg("Collage failed")
		}
		writeJSON(w, status, errorResponse{Kind: collage.Outcome(err), Error: err.Error()})
		return
	}

	if format == collage.FormatJPEG {
		w.Header().Set("Content-Type", "image/jpeg")
	} else {
		w.Header().Set("Content-Type", "image/png")
	}
	w.Header().Set("Cache-Control", "no-store")
	if err := collage.Encode(w, c.Image, format); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode collage")
	}
}

// observe records a run in metrics and history.
func (s *Server) observe(ctx context.Context, req collage.Request, c *collage.Collage, err error, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.Runs.WithLabelValues(collage.Outcome(err)).Inc()
		if err == nil {
			s.metrics.RunDuration.WithLabelValues(req.Dimension).Observe(elapsed.Seconds())
		}
	}

	if s.recorder == nil {
		return
	}
	// The request context may already be canceled
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, rerr := s.recorder.Record(recordCtx, history.NewRun(req, c, err, "", elapsed)); rerr != nil {
		s.logger.Warn().Err(rerr).Msg("Failed to record run")
	}
}

// statusFor maps a pipeline failure onto an HTTP status.
func statusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}

	switch collage.KindOf(err) {
	case collage.KindUnknownOption:
		return http.StatusBadRequest
	case collage.KindInvalidUser:
		return http.StatusNotFound
	case collage.KindNoRecentPlays, collage.KindNoImagesAvailable:
		return http.StatusUnprocessableEntity
	case collage.KindRequestFailed, collage.KindNetworkError,
		collage.KindResponseMalformed, collage.KindImageFetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
