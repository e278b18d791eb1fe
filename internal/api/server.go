// Package api serves a running game over local HTTP.
// GET endpoints are public and read-only. Actions are POSTs, rate limited
// per client IP. Speed and reset changes require a bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/probably-a-wizard/internal/catalog"
	"github.com/talgya/probably-a-wizard/internal/economy"
	"github.com/talgya/probably-a-wizard/internal/engine"
	"github.com/talgya/probably-a-wizard/internal/metrics"
)

const maxBodyBytes = 64 << 10

// Server serves one session over HTTP.
type Server struct {
	Session  *engine.Session
	Metrics  *metrics.Recorder
	Addr     string
	AdminKey string // Bearer token for speed and reset. Empty = disabled.

	limiter *RateLimiter
	hub     *Hub
	srv     *http.Server
	cancel  context.CancelFunc
	unsub   func()
}

// NewServer wires a server for sess. perSecond and burst configure the
// per-IP action limiter.
func NewServer(sess *engine.Session, rec *metrics.Recorder, addr, adminKey string, perSecond float64, burst int) *Server {
	return &Server{
		Session:  sess,
		Metrics:  rec,
		Addr:     addr,
		AdminKey: adminKey,
		limiter:  NewRateLimiter(perSecond, burst),
		hub:      NewHub(),
	}
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/state", s.handleState)
	mux.HandleFunc("GET /api/v1/catalog", s.handleCatalog)
	mux.HandleFunc("GET /api/v1/notifications", s.handleNotifications)
	mux.HandleFunc("POST /api/v1/notifications", RateLimitMiddleware(s.limiter, s.handleTakeNotifications))
	mux.HandleFunc("GET /api/v1/actions", s.handleActionList)
	mux.HandleFunc("POST /api/v1/act/{action}", RateLimitMiddleware(s.limiter, s.handleAct))
	mux.HandleFunc("GET /api/v1/ws", s.handleWS)

	mux.HandleFunc("GET /api/v1/speed", s.handleSpeed)
	mux.HandleFunc("POST /api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("POST /api/v1/reset", s.adminOnly(s.handleReset))

	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}
	return corsMiddleware(mux)
}

// Start begins serving in a goroutine and forwards session events to
// websocket clients until Shutdown.
func (s *Server) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.hub.Run(ctx)
	s.unsub = s.Session.Subscribe(s.hub.PublishEvent)

	go func() {
		t := time.NewTicker(10 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.limiter.Cleanup()
			}
		}
	}()

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops accepting requests and disconnects websocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.unsub != nil {
		s.unsub()
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	return nil
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// WIZARD_CORS_ORIGINS is a comma-separated list added to the localhost dev
// servers, which are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("WIZARD_CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no WIZARD_API_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

type statusResponse struct {
	engine.Status
	Uptime    string `json:"uptime"`
	WSClients int    `json:"wsClients"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.Session.Status()
	writeJSON(w, statusResponse{
		Status:    st,
		Uptime:    humanize.RelTime(st.StartedAt, time.Now(), "", ""),
		WSClients: s.hub.Clients(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Session.Snapshot())
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, catalog.Describe())
}

// handleNotifications peeks at pending notifications without consuming them.
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	var notes []economy.Notification
	s.Session.View(func(st *economy.State) { notes = st.PendingNotifications() })
	writeJSON(w, nonNil(notes))
}

func (s *Server) handleTakeNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, nonNil(s.Session.TakeNotifications()))
}

func (s *Server) handleActionList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, Actions())
}

func (s *Server) handleAct(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	name := r.PathValue("action")
	res, err := Apply(s.Session, name, req)
	switch {
	case errors.Is(err, ErrUnknownAction):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	clock := s.Session.Clock()
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		clock.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": clock.Speed()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.Session.Reset(r.Context()); err != nil {
		slog.Error("reset failed to clear saves", "error", err)
		http.Error(w, "reset applied but saves could not be cleared", http.StatusInternalServerError)
		return
	}
	writeJSON(w, economy.Result{OK: true})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	snap := s.Session.Snapshot()
	s.hub.Serve(w, r, &Message{Type: "state", Payload: snap})
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}
