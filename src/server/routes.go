package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()

	// Diagrams
	api.HandleFunc("/diagrams", s.listDiagrams).Methods(http.MethodGet)
	api.HandleFunc("/diagrams/{id}", s.getDiagram).Methods(http.MethodGet)
	api.HandleFunc("/diagrams/{id}", s.saveDiagram).Methods(http.MethodPost)
	api.HandleFunc("/diagrams/{id}", s.replaceDiagram).Methods(http.MethodPut)
	api.HandleFunc("/diagrams/{id}", s.updateDiagram).Methods(http.MethodPatch)
	api.HandleFunc("/diagrams/{id}", s.deleteDiagram).Methods(http.MethodDelete)

	// Item collections nested in a diagram
	api.HandleFunc("/diagrams/{id}/{collection}", s.listItems).Methods(http.MethodGet)
	api.HandleFunc("/diagrams/{id}/{collection}", s.addItem).Methods(http.MethodPost)
	api.HandleFunc("/diagrams/{id}/{collection}", s.clearItems).Methods(http.MethodDelete)
	api.HandleFunc("/diagrams/{id}/{collection}/{itemId}", s.getItem).Methods(http.MethodGet)
	api.HandleFunc("/diagrams/{id}/{collection}/{itemId}", s.putItem).Methods(http.MethodPut)
	api.HandleFunc("/diagrams/{id}/{collection}/{itemId}", s.deleteItem).Methods(http.MethodDelete)

	// Items addressed without their diagram
	api.HandleFunc("/items/{collection}/{itemId}", s.updateItemByID).Methods(http.MethodPatch)
	api.HandleFunc("/items/{collection}/{itemId}/owner", s.findItemOwner).Methods(http.MethodGet)

	// Config
	api.HandleFunc("/config", s.getConfig).Methods(http.MethodGet)
	api.HandleFunc("/config", s.saveConfig).Methods(http.MethodPost, http.MethodPut)

	// Diagram filters
	api.HandleFunc("/diagram-filters/{id}", s.getFilter).Methods(http.MethodGet)
	api.HandleFunc("/diagram-filters/{id}", s.saveFilter).Methods(http.MethodPost, http.MethodPut)
	api.HandleFunc("/diagram-filters/{id}", s.deleteFilter).Methods(http.MethodDelete)

	// Whole-store archive
	api.HandleFunc("/archive", s.exportArchive).Methods(http.MethodGet)
	api.HandleFunc("/archive", s.importArchive).Methods(http.MethodPost)
}

func (s *Server) setupMiddleware() {
	s.router.Use(s.recoverMiddleware)
	s.router.Use(s.requestLogMiddleware)
	s.router.Use(s.bodyLimitMiddleware)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// requestLogMiddleware tags every request with an id and logs its outcome.
func (s *Server) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", requestID)

		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}

		log := s.logger.Infow
		if status >= http.StatusInternalServerError {
			log = s.logger.Errorw
		}
		log("Handled request",
			"requestId", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", rec.bytes,
			"duration", time.Since(start))
	})
}

func (s *Server) bodyLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.settings.MaxBodyBytes > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				s.logger.Errorw("Handler panic", "method", r.Method, "path", r.URL.Path, "panic", p)
				s.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", "")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
