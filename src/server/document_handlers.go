package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	config, err := s.services.ConfigService.GetConfig()
	if err != nil {
		s.writeServiceError(w, err, "Failed to read config")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, config)
}

func (s *Server) saveConfig(w http.ResponseWriter, r *http.Request) {
	config, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	if err := s.services.ConfigService.SaveConfig(config); err != nil {
		s.writeServiceError(w, err, "Failed to save config")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getFilter(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	filter, err := s.services.FilterService.GetFilter(id)
	if err != nil {
		s.writeServiceError(w, err, "Failed to read diagram filter")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, filter)
}

func (s *Server) saveFilter(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	filter, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	if err := s.services.FilterService.SaveFilter(id, filter); err != nil {
		s.writeServiceError(w, err, "Failed to save diagram filter")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteFilter(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.services.FilterService.DeleteFilter(id); err != nil {
		s.writeServiceError(w, err, "Failed to delete diagram filter")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
