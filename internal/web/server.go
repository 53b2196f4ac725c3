package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/propdesk/propdesk/internal/config"
	"github.com/propdesk/propdesk/internal/domain"
	"github.com/propdesk/propdesk/internal/filestore"
	"github.com/propdesk/propdesk/internal/metrics"
	"github.com/propdesk/propdesk/internal/service"
)

const sessionCookieName = "propdesk_session"

type Server struct {
	auth         *service.AuthService
	props        *service.PropertyService
	files        filestore.Store
	cfg          *config.Config
	mux          *http.ServeMux
	logger       *slog.Logger
	loginLimiter *ipLimiter
}

func NewServer(auth *service.AuthService, props *service.PropertyService, files filestore.Store, cfg *config.Config, logger *slog.Logger) *Server {
	s := &Server{
		auth:         auth,
		props:        props,
		files:        files,
		cfg:          cfg,
		mux:          http.NewServeMux(),
		logger:       logger,
		loginLimiter: newIPLimiter(1, 5),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /login", s.handleLoginPage)
	s.mux.HandleFunc("POST /login", s.handleLogin)
	s.mux.HandleFunc("POST /logout", s.handleLogout)

	s.mux.Handle("GET /{$}", s.requireAuth(s.handleListProperties))
	s.mux.Handle("POST /property", s.requireAuth(s.handleCreateProperty))
	s.mux.Handle("GET /property/{id}", s.requireAuth(s.handlePropertyDetail))
	s.mux.Handle("POST /property/{id}", s.requireAuth(s.handleUpdateProperty))
	s.mux.Handle("POST /property/{id}/delete", s.requireAuth(s.handleDeleteProperty))

	s.mux.Handle("POST /property/{id}/documents", s.requireAuth(s.handleAddDocument))
	s.mux.Handle("POST /documents/{id}/delete", s.requireAuth(s.handleDeleteDocument))
	s.mux.Handle("GET /download/{filename}", s.requireAuth(s.handleDownload))

	s.mux.Handle("POST /property/{id}/maps", s.requireAuth(s.handleAddMapsLink))
	s.mux.Handle("POST /maps/{id}/delete", s.requireAuth(s.handleDeleteMapsLink))

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

type contextKey string

const userContextKey contextKey = "user"

// requireAuth resolves the session cookie to a user and puts it on the request
// context. Unauthenticated requests are redirected to the login page.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if c, err := r.Cookie(sessionCookieName); err == nil {
			token = c.Value
		}

		u, err := s.auth.ValidateToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrAuthRequired) {
				s.redirectFlash(w, r, "/login", flashInfo, "Please log in to access this page.")
				return
			}
			s.serverError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, u)))
	})
}

func userFrom(r *http.Request) *domain.User {
	u, _ := r.Context().Value(userContextKey).(*domain.User)
	return u
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'self'; img-src 'self' data:; connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.HTTPRequests.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// serverError logs the error and reports a generic 500 without leaking detail.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
