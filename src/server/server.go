package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"

	"diagramdb/src/directors"
	"diagramdb/src/engine"
	"diagramdb/src/settings"

	"github.com/gorilla/mux"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Server is the HTTP front of the diagram store.
type Server struct {
	Host     string
	Port     int
	Listener net.Listener
	Running  bool

	router     *mux.Router
	httpServer *http.Server
	services   *directors.ServiceManager
	journal    *engine.Journal
	settings   *settings.Arguments
	logger     *zap.SugaredLogger

	mu sync.Mutex
	wg sync.WaitGroup
}

// InitServer builds the store, the services and the router from config.
func InitServer(config *settings.Arguments, logger *zap.SugaredLogger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	writer := engine.NewAtomicFileWriter(config.VerifyWrites, logger)
	store, err := engine.NewDocumentStore(config.DataDir, writer, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create document store: %w", err)
	}

	var journal *engine.Journal
	var recorder engine.Recorder
	if config.JournalEnabled {
		journalDir := config.JournalDir
		if journalDir == "" {
			journalDir = filepath.Join(config.DataDir, "journal")
		}
		journal, err = engine.NewJournal(journalDir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		recorder = journal

		if config.JournalRetentionDays > 0 {
			removed, err := journal.CleanupOldJournals(config.JournalRetentionDays)
			if err != nil {
				logger.Warnw("Failed to clean up old journals", "dir", journalDir, "error", err)
			} else if removed > 0 {
				logger.Infow("Removed old journal files", "dir", journalDir, "removed", removed)
			}
		}
	}

	services := directors.InitServiceManager(store, recorder, logger)

	return NewServer(config, services, journal, logger), nil
}

// NewServer creates a server over already constructed services. journal may be nil.
func NewServer(config *settings.Arguments, services *directors.ServiceManager, journal *engine.Journal, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	s := &Server{
		Host:     config.Host,
		Port:     config.Port,
		router:   mux.NewRouter(),
		services: services,
		journal:  journal,
		settings: config,
		logger:   logger,
	}
	s.setupRoutes()
	s.setupMiddleware()

	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for incoming connections
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("error starting server on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.Listener = listener
	s.Running = true
	s.mu.Unlock()

	s.logger.Infow("Diagram store listening", "addr", listener.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorw("HTTP server stopped unexpectedly", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server, waiting for in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.Running = false
	s.mu.Unlock()

	err := s.httpServer.Shutdown(ctx)
	s.wg.Wait()

	if s.journal != nil {
		err = multierr.Append(err, s.journal.Close())
	}

	s.logger.Info("Server shutdown complete")
	_ = s.logger.Sync()

	return err
}
