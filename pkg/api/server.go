// Package api serves a read-only HTTP view of a running engine. Order entry
// stays on the command stream.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/uhyunpark/ordermatch/pkg/engine"
	"github.com/uhyunpark/ordermatch/pkg/report"
	"github.com/uhyunpark/ordermatch/pkg/storage"
)

const (
	defaultTradeLimit = 50
	maxTradeLimit     = 1000
)

// Source is what the server reads from. *engine.Engine satisfies it.
type Source interface {
	Symbol() string
	Depth() string
	RecentTrades(limit int) ([]storage.TradeRecord, error)
	Stats() engine.Stats
}

// Server handles the REST inspection endpoints
type Server struct {
	src     Source
	router  *mux.Router
	origins []string
	log     *zap.SugaredLogger
}

// NewServer creates a new API server
func NewServer(src Source, origins []string, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{
		src:     src,
		router:  mux.NewRouter(),
		origins: origins,
		log:     logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/depth", s.handleDepth).Methods("GET")
	api.HandleFunc("/trades", s.handleTrades).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the router wrapped in the CORS policy.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("api_listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// ==============================
// REST Handlers
// ==============================

// handleDepth returns the same text a PRINT command produces.
func (s *Server) handleDepth(w http.ResponseWriter, r *http.Request) {
	respondText(w, s.src.Depth())
}

// handleTrades returns recent TRADE lines, newest first.
func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	limit := defaultTradeLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "invalid limit", "limit must be a positive integer")
			return
		}
		limit = min(n, maxTradeLimit)
	}

	trades, err := s.src.RecentTrades(limit)
	if err != nil {
		s.log.Errorw("api_trades_failed", "err", err)
		respondError(w, http.StatusInternalServerError, "trade tape unavailable", err.Error())
		return
	}

	lines := make([]string, len(trades))
	for i, t := range trades {
		lines[i] = report.TradeLine(t.Trade())
	}
	respondText(w, strings.Join(lines, report.LineSeparator))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.src.Stats())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, HealthResponse{Status: "ok", Symbol: s.src.Symbol()})
}

// ==============================
// Helper Functions
// ==============================

func respondText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(body))
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Message: message,
	})
}
