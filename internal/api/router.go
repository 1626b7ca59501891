package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/huntgraph/internal/config"
	"github.com/gyaneshwarpardhi/huntgraph/internal/graph"
	"github.com/gyaneshwarpardhi/huntgraph/internal/render"
	"github.com/gyaneshwarpardhi/huntgraph/internal/session"
	"github.com/gyaneshwarpardhi/huntgraph/internal/viewstate"
)

// Options configures the HTTP handler.
type Options struct {
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Handler holds all HTTP handler dependencies.
type Handler struct {
	sess   *session.Session
	loader *config.Loader
	log    *slog.Logger
	stream *streamServer
}

// New creates an HTTP handler and registers all routes. loader may be nil,
// in which case the config reload endpoint is not mounted.
func New(sess *session.Session, loader *config.Loader, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	h := &Handler{
		sess:   sess,
		loader: loader,
		log:    opts.Logger,
		stream: newStreamServer(sess, opts.AllowedOrigins, opts.Logger),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(loggingMiddleware(opts.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/graph", h.getView)
		r.Get("/graph/full", h.getSnapshot)
		r.Post("/filters/{classification}/toggle", h.toggleFilter)
		r.Post("/nodes/{id}/click", h.clickNode)
		r.Post("/background/click", h.clickBackground)
		r.Post("/refresh", h.refresh)
		r.Get("/glyphs", h.glyphs)
		r.Get("/stream", h.stream.ServeHTTP)
		if loader != nil {
			r.Post("/config/reload", h.reloadConfig)
		}
	})
	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// GET /v1/graph: current view, UI state and fetch status.
func (h *Handler) getView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.Current())
}

// GET /v1/graph/full: the unfiltered snapshot, including rejected items.
func (h *Handler) getSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := h.sess.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"nodes":      snap.Nodes,
		"links":      snap.Edges,
		"rejected":   snap.Rejected,
		"fetched_at": snap.FetchedAt,
	})
}

// POST /v1/filters/{classification}/toggle
func (h *Handler) toggleFilter(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "classification")
	c, ok := graph.LookupClassification(name)
	if !ok {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown classification %q", name))
		return
	}
	h.sess.Dispatch(viewstate.ToggleClassification{Classification: c})
	writeJSON(w, http.StatusOK, h.sess.Current())
}

// POST /v1/nodes/{id}/click
func (h *Handler) clickNode(w http.ResponseWriter, r *http.Request) {
	id := graph.NodeID(chi.URLParam(r, "id"))
	if _, err := h.sess.ClickNode(id); err != nil {
		if errors.Is(err, session.ErrUnknownNode) {
			writeError(w, r, http.StatusNotFound, fmt.Sprintf("node %q not found", id))
			return
		}
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.sess.Current())
}

// POST /v1/background/click
func (h *Handler) clickBackground(w http.ResponseWriter, r *http.Request) {
	h.sess.Dispatch(viewstate.ClickBackground{})
	writeJSON(w, http.StatusOK, h.sess.Current())
}

// POST /v1/refresh: manual retry. A failed fetch keeps the previous view.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.sess.Refresh(r.Context()); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":  err.Error(),
			"status": h.sess.Status(),
		})
		return
	}
	writeJSON(w, http.StatusOK, h.sess.Current())
}

// GET /v1/glyphs?scale=2: draw operations for each visible node.
func (h *Handler) glyphs(w http.ResponseWriter, r *http.Request) {
	scale := 1.0
	if raw := r.URL.Query().Get("scale"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid scale %q", raw))
			return
		}
		scale = v
	}
	view, d := h.sess.Frame()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scale":  scale,
		"glyphs": render.Glyphs(view.Nodes, d, scale),
	})
}

// POST /v1/config/reload: re-read the config file; render settings apply live.
func (h *Handler) reloadConfig(w http.ResponseWriter, r *http.Request) {
	if _, err := h.loader.Reload(); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, config.ErrInvalid) {
			status = http.StatusUnprocessableEntity
		}
		h.log.Warn("config reload rejected", "path", h.loader.Path(), "err", err)
		writeError(w, r, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded": true,
		"path":     h.loader.Path(),
	})
}

// GET /healthz: always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz: 503 until a fetch succeeds, if the last one failed.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	st := h.sess.Status()
	if !h.sess.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":     "unavailable",
			"last_error": st.LastError,
			"breaker":    st.Breaker,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "ready",
		"stale":           st.Stale(),
		"last_fetched_at": st.LastFetchedAt,
		"breaker":         st.Breaker,
	})
}
