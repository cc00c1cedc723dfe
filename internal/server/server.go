// Package server provides the HTTP API for the interview assistant: the
// interviewee session flow and the JWT-protected interviewer roster.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/interview-assistant/internal/config"
	"github.com/jonathan/interview-assistant/internal/ingestion"
	"github.com/jonathan/interview-assistant/internal/interview"
	"github.com/jonathan/interview-assistant/internal/metrics"
	"github.com/jonathan/interview-assistant/internal/questions"
	"github.com/jonathan/interview-assistant/internal/roster"
	"github.com/jonathan/interview-assistant/internal/scoring"
	"github.com/jonathan/interview-assistant/internal/server/middleware"
	"github.com/jonathan/interview-assistant/internal/server/ratelimit"
	"github.com/jonathan/interview-assistant/internal/state"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 30 * time.Second

// ResumeIngester extracts text and contact fields from an uploaded résumé.
type ResumeIngester interface {
	Ingest(ctx context.Context, filename, contentType string, r io.Reader) (*ingestion.Result, error)
}

// Deps are the collaborators the server is wired with. Nil Roster keeps the
// roster in memory; nil State disables persistence; nil Ingester disables
// uploads.
type Deps struct {
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
	State     state.Store
	Roster    roster.Store
	Ingester  ResumeIngester
	Questions questions.Source
	Scorer    scoring.Scorer
	Clock     interview.Clock
}

// Server represents the HTTP server
type Server struct {
	cfg         *config.Config
	httpServer  *http.Server
	handler     http.Handler
	logger      *zap.Logger
	metrics     *metrics.Metrics
	registry    *Registry
	roster      roster.Store
	ingester    ResumeIngester
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService // nil when JWT_SECRET is unset
	passwords   *config.PasswordConfig
}

// New creates a new server instance.
func New(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New(deps.Logger)
	}
	if deps.Roster == nil {
		deps.Roster = roster.NewMemoryStore()
	}

	passwords, err := cfg.Password()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}

	s := &Server{
		cfg:         cfg,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		roster:      deps.Roster,
		ingester:    deps.Ingester,
		rateLimiter: ratelimit.NewLimiter(ratelimit.FromConfig(cfg.RateLimit)),
		passwords:   passwords,
	}

	if jwtCfg, err := cfg.JWT(); err != nil {
		s.logger.Warn("interviewer dashboard disabled", zap.Error(err))
	} else {
		s.jwtService = NewJWTService(jwtCfg)
	}

	s.registry = NewRegistry(RegistryOptions{
		State:     deps.State,
		Roster:    deps.Roster,
		Questions: deps.Questions,
		Scorer:    deps.Scorer,
		Clock:     deps.Clock,
		Metrics:   deps.Metrics,
		Logger:    deps.Logger,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Interviewee session flow
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /sessions/{id}/reset", s.handleResetSession)
	mux.HandleFunc("POST /sessions/{id}/resume", s.handleUploadResume)
	mux.HandleFunc("PUT /sessions/{id}/profile", s.handleSaveProfile)
	mux.HandleFunc("POST /sessions/{id}/chat", s.handleChat)
	mux.HandleFunc("PUT /sessions/{id}/ui", s.handleUpdateUI)

	// Interview loop
	mux.HandleFunc("POST /sessions/{id}/interview/start", s.handleStartInterview)
	mux.HandleFunc("POST /sessions/{id}/interview/answer", s.handleSubmitAnswer)
	mux.HandleFunc("PUT /sessions/{id}/interview/draft", s.handleSaveDraft)
	mux.HandleFunc("POST /sessions/{id}/interview/timer", s.handleStartTimer)
	mux.HandleFunc("GET /sessions/{id}/interview/timer", s.handleTimerStream)
	mux.HandleFunc("POST /sessions/{id}/scoring", s.handleRequestScoring)
	mux.HandleFunc("POST /sessions/{id}/snapshot", s.handleSaveSnapshot)

	// Interviewer dashboard
	mux.HandleFunc("POST /interviewer/login", s.handleLogin)
	mux.Handle("GET /roster", s.requireInterviewer(s.handleListRoster))
	mux.Handle("GET /roster/{id}", s.requireInterviewer(s.handleGetRosterEntry))
	mux.Handle("DELETE /roster/{id}", s.requireInterviewer(s.handleDeleteRosterEntry))
	mux.Handle("DELETE /roster", s.requireInterviewer(s.handleClearRoster))

	s.handler = s.metrics.Middleware(routePattern, s.withRateLimit(s.withLogging(s.withCORS(mux))))
	s.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		// Scoring and timer streams can run long; handlers bound themselves.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Registry returns the live session registry.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting", zap.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// Timer streams end once their sessions are closed.
		s.registry.Close()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.rateLimiter.Stop()
	s.logger.Info("server stopped")
	return err
}

// Close releases background resources without serving.
func (s *Server) Close() {
	s.registry.Close()
	s.rateLimiter.Stop()
}

// routePattern labels metrics by the matched mux pattern.
func routePattern(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	return r.Pattern
}

// requireInterviewer guards a dashboard handler with the bearer token check.
func (s *Server) requireInterviewer(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.jwtService == nil {
			s.errorResponse(w, http.StatusServiceUnavailable, (&ErrUnavailable{Feature: "interviewer dashboard"}).Error())
			return
		}
		middleware.AuthMiddleware(s.jwtService.AsTokenValidator())(h).ServeHTTP(w, r)
	})
}

// withCORS adds CORS headers for the configured origins.
func (s *Server) withCORS(next http.Handler) http.Handler {
	allowAll := slices.Contains(s.cfg.AllowedOrigins, "*")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.cfg.AllowedOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging logs every request with its status and latency.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wrote {
		w.status = code
		w.wrote = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// clientID uses the IP address from RemoteAddr.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int((info.RetryAfter + time.Second - 1) / time.Second)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", clientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.registry.Len(),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// fail maps err to a status code and writes it.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		s.logger.Error("request failed", zap.Error(err))
		s.errorResponse(w, status, "internal error")
		return
	}
	s.errorResponse(w, status, validationMessage(err))
}

// validatable is implemented by the request types.
type validatable interface {
	Validate() error
}

// decodeJSON reads a size-limited JSON body into v and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, v validatable) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &ErrValidation{Field: "body", Message: strings.TrimPrefix(err.Error(), "json: ")}
	}
	return v.Validate()
}
