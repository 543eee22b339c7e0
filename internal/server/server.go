package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/franckalain/lymegrove/internal/auth"
	"github.com/franckalain/lymegrove/internal/catalog"
	"github.com/franckalain/lymegrove/internal/clock"
	"github.com/franckalain/lymegrove/internal/feedback"
	"github.com/franckalain/lymegrove/internal/intake"
	"github.com/franckalain/lymegrove/internal/models"
	"github.com/franckalain/lymegrove/internal/scan"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ScanStore is the read side of scan history.
type ScanStore interface {
	GetScan(ctx context.Context, id, userID string) (*models.Scan, error)
	ListScans(ctx context.Context, userID string, limit int) ([]*models.Scan, error)
	CountScans(ctx context.Context, userID string) (int, error)
	DeleteScan(ctx context.Context, id, userID string) error
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type Server struct {
	scans    *scan.Service
	store    ScanStore
	feedback *feedback.Recorder
	intake   *intake.Service
	catalog  *catalog.Catalog
	tokens   *auth.Tokens
	clock    clock.Clock
	logger   *zap.Logger

	maxUploadBytes  int64
	shutdownTimeout time.Duration

	upgrader websocket.Upgrader
	clients  sync.Map
	handler  http.Handler
}

type Option func(*Server)

func WithScanService(svc *scan.Service) Option {
	return func(s *Server) { s.scans = svc }
}

func WithScanStore(store ScanStore) Option {
	return func(s *Server) { s.store = store }
}

func WithFeedbackRecorder(r *feedback.Recorder) Option {
	return func(s *Server) { s.feedback = r }
}

func WithIntake(svc *intake.Service) Option {
	return func(s *Server) { s.intake = svc }
}

// WithCatalog sets the species table used to resolve schedule requests.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Server) { s.catalog = c }
}

func WithTokens(t *auth.Tokens) Option {
	return func(s *Server) { s.tokens = t }
}

func WithClock(c clock.Clock) Option {
	return func(s *Server) { s.clock = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) { s.maxUploadBytes = n }
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

func New(opts ...Option) *Server {
	s := &Server{
		catalog:         catalog.Default(),
		clock:           clock.Real{},
		logger:          zap.NewNop(),
		maxUploadBytes:  10 << 20,
		shutdownTimeout: 10 * time.Second,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	switch {
	case s.scans == nil:
		panic("scan service is required")
	case s.store == nil:
		panic("scan store is required")
	case s.feedback == nil:
		panic("feedback recorder is required")
	case s.intake == nil:
		panic("intake service is required")
	case s.tokens == nil:
		panic("token verifier is required")
	}

	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/analyze", s.optionalAuth(s.handleAnalyze))
	mux.HandleFunc("POST /api/contact", s.handleContact)
	mux.HandleFunc("POST /api/gdpr", s.handleGDPR)
	mux.HandleFunc("POST /api/feedback", s.handleFeedback)
	mux.HandleFunc("POST /api/schedule", s.handleSchedule)
	mux.HandleFunc("GET /api/scans", s.requireAuth(s.handleListScans))
	mux.HandleFunc("GET /api/scans/{id}", s.requireAuth(s.handleGetScan))
	mux.HandleFunc("DELETE /api/scans/{id}", s.requireAuth(s.handleDeleteScan))
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)

	return withMiddleware(mux, s.logger)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("starting server", zap.String("addr", ln.Addr().String()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		// Hijacked websocket connections are not tracked by http.Server.
		s.closeClients()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
