package metrics

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server exposes /metrics and /healthz.
type Server struct {
	status func() any
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server. status, when set, is embedded in health
// responses.
func NewServer(status func() any, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{status: status, logger: logger}
}

// Start listens on addr and serves until Stop. It returns the bound address
// once the listener is up.
func (s *Server) Start(addr string) (net.Addr, <-chan error, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	s.server = &http.Server{
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	s.logger.Info("Serving metrics", zap.String("addr", listener.Addr().String()))
	return listener.Addr(), errc, nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("Stopping metrics server")
	return s.server.Shutdown(ctx)
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status": "healthy",
		"time":   time.Now().UTC(),
	}
	if s.status != nil {
		body["domains"] = s.status()
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to write response", zap.Error(err))
	}
}
