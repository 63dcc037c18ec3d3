package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mikey/llm-lead-responder/internal/core"
	"github.com/mikey/llm-lead-responder/internal/logging"
	"go.uber.org/zap"
)

// maxLogEntries caps the entries returned by GET /logs
const maxLogEntries = 50

// CycleRunner is the part of the service the control surface drives
type CycleRunner interface {
	RunCycle(ctx context.Context) (*core.CycleReport, error)
	Stats(ctx context.Context) (core.Stats, error)
}

// Server is the HTTP control surface
type Server struct {
	runner     CycleRunner
	ring       *logging.Ring
	logger     *zap.Logger
	listenAddr string
	server     *http.Server
	now        func() time.Time
}

// NewServer creates a new control surface server
func NewServer(
	runner CycleRunner,
	ring *logging.Ring,
	logger *zap.Logger,
	listenAddr string,
	readTimeout time.Duration,
	writeTimeout time.Duration,
) *Server {
	s := &Server{
		runner:     runner,
		ring:       ring,
		logger:     logger,
		listenAddr: listenAddr,
		now:        time.Now,
	}
	s.server = &http.Server{
		Addr:         listenAddr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /logs", s.handleLogs)
	mux.HandleFunc("POST /test", s.handleTrigger)
	mux.HandleFunc("POST /monitor", s.handleTrigger)
	return mux
}

// Start starts listening in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listenAddr, err)
	}

	s.logger.Info("HTTP server started", zap.String("address", ln.Addr().String()))

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	stats, err := s.runner.Stats(r.Context())
	if err != nil {
		s.logger.Error("Failed to read stats", zap.Error(err))
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "running",
		"name":        "lead-responder",
		"description": "Classifies unread mail as business leads, drafts replies and labels each message",
		"endpoints": map[string]string{
			"GET /":         "service descriptor",
			"GET /health":   "health check",
			"GET /logs":     fmt.Sprintf("last %d log entries", maxLogEntries),
			"POST /test":    "run one poll cycle now",
			"POST /monitor": "run one poll cycle now",
		},
		"stats": map[string]interface{}{
			"processedEmails": stats.ProcessedEmails,
			"totalLogs":       s.ring.Total(),
			"cyclesRun":       stats.CyclesRun,
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats, err := s.runner.Stats(r.Context())
	if err != nil {
		s.logger.Error("Failed to read stats", zap.Error(err))
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"timestamp":       s.now(),
		"processedEmails": stats.ProcessedEmails,
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  s.ring.Recent(maxLogEntries),
		"total": s.ring.Total(),
	})
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("Manual poll cycle triggered", zap.String("path", r.URL.Path))

	// A disconnecting client must not abort a cycle half way through
	report, err := s.runner.RunCycle(context.WithoutCancel(r.Context()))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrCycleInProgress) {
			status = http.StatusConflict
		}
		s.logger.Error("Poll cycle failed", zap.Error(err))
		s.writeJSON(w, status, map[string]interface{}{
			"success":   false,
			"error":     err.Error(),
			"timestamp": s.now(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"timestamp":      s.now(),
		"processedCount": report.ProcessedCount,
		"results":        report.Results,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("Failed to write response", zap.Error(err))
	}
}
