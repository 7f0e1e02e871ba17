package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
)

const bsonContentType = "application/bson"

func (s *Server) exportArchive(w http.ResponseWriter, r *http.Request) {
	data, archive, err := s.services.ArchiveService.Export()
	if err != nil {
		s.writeServiceError(w, err, "Failed to export archive")
		return
	}

	w.Header().Set("Content-Type", bsonContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "diagrams-"+archive.ArchiveID+".bson"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warnw("Failed to write archive response", "archiveId", archive.ArchiveID, "error", err)
	}
}

func (s *Server) importArchive(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeServiceError(w, err, "Failed to read archive")
		return
	}
	if len(data) == 0 {
		s.writeErrorResponse(w, http.StatusBadRequest, "Request body is empty", "")
		return
	}

	imported, err := s.services.ArchiveService.Import(data)
	if err != nil {
		s.writeServiceError(w, err, "Failed to import archive")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, ImportResponse{Imported: imported})
}
