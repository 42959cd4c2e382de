// Package server exposes the dialogue engine over HTTP and WebSocket: session
// creation, message turns, catalog search, knowledge reload and stats.
package server

import (
	"bufio"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lead-dialogue-engine/internal/knowledge"
	"github.com/lead-dialogue-engine/internal/session"
)

// maxMessageLen bounds a single chat message. Anything longer is not a chat
// message, it is someone pasting a document.
const maxMessageLen = 2000

// Server wires the session registry and the knowledge snapshot into an HTTP
// handler tree.
type Server struct {
	registry *session.Registry
	kb       *knowledge.Snapshot
	kbPath   string
	logger   *zap.Logger
	router   *mux.Router
	upgrader websocket.Upgrader
	limiter  *rateLimiter
	started  time.Time
}

// New builds the server. kbPath is the knowledge YAML file reloaded by
// POST /api/knowledge/reload; empty disables reloading.
func New(registry *session.Registry, kb *knowledge.Snapshot, kbPath string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		registry: registry,
		kb:       kb,
		kbPath:   kbPath,
		logger:   logger.Named("server"),
		router:   mux.NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The widget is embedded on customer sites, origins vary.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		limiter: newRateLimiter(rateLimitPerMinute, rateLimitBurst),
		started: time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/lead", s.handleGetLead).Methods(http.MethodGet)
	api.HandleFunc("/message", s.handleMessage).Methods(http.MethodPost)
	api.HandleFunc("/products/search", s.handleProductSearch).Methods(http.MethodGet)
	api.HandleFunc("/knowledge/reload", s.handleKnowledgeReload).Methods(http.MethodPost)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	s.router.HandleFunc("/ws/chat", s.handleChatSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
}

// Handler returns the full middleware-wrapped handler tree.
func (s *Server) Handler() http.Handler {
	h := s.rateLimit(s.router)
	h = s.logging(h)
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(false))(h)
	h = handlers.CompressHandler(h)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	return h
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.Info("http request",
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
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack keeps the WebSocket upgrade working through the logging wrapper.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hj, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hj.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}
