package server

import (
	"net/http"
	"strings"

	"diagramdb/src/engine"

	"github.com/gorilla/mux"
)

func (s *Server) listDiagrams(w http.ResponseWriter, r *http.Request) {
	diagrams, err := s.services.DiagramService.ListDiagrams()
	if err != nil {
		s.writeServiceError(w, err, "Failed to list diagrams")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, diagrams)
}

func (s *Server) getDiagram(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	stored, err := s.services.DiagramService.GetDiagram(id)
	if err != nil {
		s.writeServiceError(w, err, "Failed to read diagram")
		return
	}

	w.Header().Set("ETag", stored.ETag)
	if etagMatches(r.Header.Values("If-None-Match"), stored.ETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	s.writeJSONResponse(w, http.StatusOK, stored.Document)
}

func (s *Server) saveDiagram(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	patch, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	stored, err := s.services.DiagramService.SaveDiagram(id, patch)
	s.writeStoredDiagram(w, stored, err, "Failed to save diagram")
}

func (s *Server) replaceDiagram(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	doc, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	stored, err := s.services.DiagramService.ReplaceDiagram(id, doc)
	s.writeStoredDiagram(w, stored, err, "Failed to replace diagram")
}

func (s *Server) updateDiagram(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	attributes, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	stored, err := s.services.DiagramService.UpdateDiagram(id, attributes)
	s.writeStoredDiagram(w, stored, err, "Failed to update diagram")
}

func (s *Server) deleteDiagram(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.services.DiagramService.DeleteDiagram(id); err != nil {
		s.writeServiceError(w, err, "Failed to delete diagram")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeStoredDiagram(w http.ResponseWriter, stored *engine.StoredDocument, err error, action string) {
	if err != nil {
		s.writeServiceError(w, err, action)
		return
	}
	w.Header().Set("ETag", stored.ETag)
	s.writeJSONResponse(w, http.StatusOK, stored.Document)
}

// etagMatches applies the weak comparison of If-None-Match: any listed tag, weak or
// strong, or "*" matches.
func etagMatches(headers []string, etag string) bool {
	for _, header := range headers {
		for _, candidate := range strings.Split(header, ",") {
			candidate = strings.TrimSpace(candidate)
			if candidate == "*" {
				return true
			}
			if strings.TrimPrefix(candidate, "W/") == etag {
				return true
			}
		}
	}
	return false
}
