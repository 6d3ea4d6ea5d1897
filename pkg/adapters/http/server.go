package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/agentscene"
	"github.com/aretw0/agentscene/internal/logging"
	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves a workspace of editors over HTTP.
type Server struct {
	Workspace *agentscene.Workspace
	Streams   *StreamManager

	metrics http.Handler
	token   string
	logger  *slog.Logger
	detach  []func()
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithToken requires "Authorization: Bearer <token>" on every editor route.
func WithToken(token string) Option {
	return func(s *Server) {
		s.token = token
	}
}

// New creates the server and starts forwarding graph events of every editor to SSE streams.
// Call Close to stop forwarding.
func New(ws *agentscene.Workspace, opts ...Option) *Server {
	s := &Server{
		Workspace: ws,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)

	for _, name := range ws.Names() {
		ed, err := ws.Editor(name)
		if err != nil {
			continue
		}
		editor := name
		s.detach = append(s.detach, ed.Subscribe(func(_ context.Context, evt domain.GraphEvent) {
			payload, err := json.Marshal(evt)
			if err != nil {
				s.logger.Error("Failed to encode graph event", "err", err)
				return
			}
			s.Streams.Broadcast(editor, string(evt.Type)+"\n"+string(payload))
		}))
	}
	return s
}

// Close stops forwarding graph events.
func (s *Server) Close() {
	for _, fn := range s.detach {
		fn()
	}
	s.detach = nil
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", s.GetSpec)
	r.Get("/menu", s.GetMenu)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.token != "", s.token))
		r.Get("/editors", s.ListEditors)
		r.Route("/editors/{editor}", func(r chi.Router) {
			r.Get("/scenes", s.ListScenes)
			r.Post("/scenes/{index}", s.LoadScene)
			r.Get("/graph", s.GetGraph)
			r.Get("/graph.mmd", s.GetGraphMermaid)
			r.Get("/outputs", s.GetOutputs)
			r.Post("/nodes", s.CreateNode)
			r.Delete("/nodes/{id}", s.RemoveNode)
			r.Post("/connections", s.CreateConnection)
			r.Delete("/connections/{id}", s.RemoveConnection)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

// NewHandler is a shortcut for New(ws, opts...).Handler().
func NewHandler(ws *agentscene.Workspace, opts ...Option) http.Handler {
	return New(ws, opts...).Handler()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AuthMiddleware validates a Bearer token when enabled.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != token {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("Request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, errorBody(err.Error()))
}

func (s *Server) editor(w http.ResponseWriter, r *http.Request) (*agentscene.Editor, bool) {
	ed, err := s.Workspace.Editor(chi.URLParam(r, "editor"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return ed, true
}

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

type requestError struct {
	msg string
}

func (e *requestError) Error() string {
	return e.msg
}
