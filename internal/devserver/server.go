// Package devserver is a local implementation of the feedback service: one
// endpoint generates feedback for a session, one stores it, one reads it
// back. It exists so the interview client can be run end to end offline.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/interview/internal/answers"
	"github.com/abhisek/interview/internal/schema"
	"github.com/abhisek/interview/internal/store"
)

const tracerName = "github.com/abhisek/interview/internal/devserver"

// maxBody bounds request bodies.
const maxBody = 1 << 20

// Server serves the feedback endpoints.
type Server struct {
	generator Generator
	docs      store.FeedbackRepo
	token     string
	logger    *slog.Logger

	mu   sync.Mutex
	keys map[string]string // Idempotency-Key → stored id
}

// Option configures a Server.
type Option func(*Server)

// WithToken requires this exact bearer token. Without it any non-empty
// bearer token is accepted.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a Server.
func New(gen Generator, docs store.FeedbackRepo, opts ...Option) *Server {
	s := &Server{
		generator: gen,
		docs:      docs,
		keys:      make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/exam/genrateFeedback", s.handleGenerate)
	mux.HandleFunc("POST /v1/exam/store", s.handleStore)
	mux.HandleFunc("GET /v1/exam/feedback/{id}", s.handleGet)
	return s.withAuth(s.withTracing(mux))
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("feedback service listening", "addr", ln.Addr().String())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	}
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" || (s.token != "" && token != s.token) {
			writeError(w, http.StatusUnauthorized, "missing or invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withTracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := otel.Tracer(tracerName).Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.response.status_code", rec.status))
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"idempotency_key", r.Header.Get("Idempotency-Key"),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body")
		return
	}
	if err := schema.Validate(GenerateRequestSchema, body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		Data answers.Session `json:"data"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	generated, err := s.generator.Generate(r.Context(), req.Data)
	if err != nil {
		s.logger.Warn("feedback generation failed", "error", err)
		writeError(w, http.StatusBadGateway, "feedback generation failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(generated)
}

func (s *Server) handleStore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Data) == 0 || string(req.Data) == "null" {
		writeError(w, http.StatusBadRequest, "data is required")
		return
	}

	key := r.Header.Get("Idempotency-Key")
	if key != "" {
		s.mu.Lock()
		id, seen := s.keys[key]
		s.mu.Unlock()
		if seen {
			writeJSON(w, http.StatusCreated, map[string]string{"_id": id})
			return
		}
	}

	id, err := s.docs.Save(r.Context(), req.Data)
	if err != nil {
		s.logger.Error("store feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "could not store feedback")
		return
	}
	if key != "" {
		s.mu.Lock()
		s.keys[key] = id
		s.mu.Unlock()
	}
	writeJSON(w, http.StatusCreated, map[string]string{"_id": id})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error("read feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "could not read feedback")
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, "feedback not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"_id":       doc.ID,
		"createdAt": doc.CreatedAt.UTC().Format(time.RFC3339),
		"data":      json.RawMessage(doc.Body),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
