package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	items, err := s.services.CollectionService.ListItems(vars["id"], vars["collection"])
	if err != nil {
		s.writeServiceError(w, err, "Failed to list items")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, items)
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	item, err := s.services.CollectionService.GetItem(vars["id"], vars["collection"], vars["itemId"])
	if err != nil {
		s.writeServiceError(w, err, "Failed to read item")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, item)
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	item, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	added, err := s.services.CollectionService.AddItem(vars["id"], vars["collection"], item)
	if err != nil {
		s.writeServiceError(w, err, "Failed to add item")
		return
	}
	s.writeJSONResponse(w, http.StatusCreated, added)
}

func (s *Server) putItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	item, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	stored, created, err := s.services.CollectionService.PutItem(vars["id"], vars["collection"], vars["itemId"], item)
	if err != nil {
		s.writeServiceError(w, err, "Failed to store item")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.writeJSONResponse(w, status, stored)
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := s.services.CollectionService.DeleteItem(vars["id"], vars["collection"], vars["itemId"]); err != nil {
		s.writeServiceError(w, err, "Failed to delete item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearItems(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := s.services.CollectionService.ClearItems(vars["id"], vars["collection"]); err != nil {
		s.writeServiceError(w, err, "Failed to clear items")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) findItemOwner(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	owner, err := s.services.CollectionService.FindOwner(vars["collection"], vars["itemId"])
	if err != nil {
		s.writeServiceError(w, err, "Failed to find item owner")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, OwnerResponse{DiagramID: owner})
}

func (s *Server) updateItemByID(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	attributes, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	owner, item, err := s.services.CollectionService.UpdateItemByID(vars["collection"], vars["itemId"], attributes)
	if err != nil {
		s.writeServiceError(w, err, "Failed to update item")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, OwnerResponse{DiagramID: owner, Item: item})
}
