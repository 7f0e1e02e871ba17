package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"diagramdb/src/engine"
	"diagramdb/src/helpers"
	"diagramdb/src/models"
)

// Status is the outcome reported in error bodies.
type Status string

const (
	StatusError Status = "error"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Missing []string `json:"missing,omitempty"`
	Status  Status   `json:"status"`
}

// OwnerResponse answers item-owner lookups and updates addressed by item id.
type OwnerResponse struct {
	DiagramID string      `json:"diagramId"`
	Item      interface{} `json:"item,omitempty"`
}

// ImportResponse reports how many documents an archive restored.
type ImportResponse struct {
	Imported int `json:"imported"`
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorw("Failed to encode JSON response", "error", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message, details string) {
	response := ErrorResponse{
		Error:   message,
		Message: details,
		Status:  StatusError,
	}
	s.writeJSONResponse(w, statusCode, response)
}

// writeServiceError maps store and service errors onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error, action string) {
	var validation *engine.ValidationError
	var maxBytes *http.MaxBytesError

	switch {
	case errors.As(err, &validation):
		s.writeJSONResponse(w, http.StatusBadRequest, ErrorResponse{
			Error:   validation.Error(),
			Message: action,
			Missing: validation.Missing,
			Status:  StatusError,
		})
	case errors.Is(err, engine.ErrNotFound), errors.Is(err, engine.ErrUnknownCollection):
		s.writeErrorResponse(w, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, helpers.ErrInvalidKey), errors.Is(err, helpers.ErrEmptyKey):
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid id", err.Error())
	case errors.Is(err, engine.ErrDuplicateItem):
		s.writeErrorResponse(w, http.StatusConflict, "Item already exists", err.Error())
	case errors.As(err, &maxBytes):
		s.writeErrorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large", "")
	case errors.Is(err, engine.ErrWriteVerification):
		s.logger.Errorw(action, "error", err)
		s.writeErrorResponse(w, http.StatusInternalServerError, "Failed to verify saved document", action)
	default:
		s.logger.Errorw(action, "error", err)
		s.writeErrorResponse(w, http.StatusInternalServerError, action, "")
	}
}

// decodeBody reads a JSON object from the request body.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) (models.Document, bool) {
	doc, err := engine.DecodeDocumentFrom(r.Body)
	if err != nil {
		var maxBytes *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytes):
			s.writeErrorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large", "")
		case errors.Is(err, io.EOF):
			s.writeErrorResponse(w, http.StatusBadRequest, "Request body is empty", "")
		default:
			s.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		}
		return nil, false
	}
	return doc, true
}
