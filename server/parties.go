package server

import (
	"net/http"
	"strconv"

	"github.com/docflow/docflow/contract"
)

// handleParties serves the party collection: POST creates a party,
// GET lists parties with optional role filtering.
func (s *Server) handleParties(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var p contract.Party
		if readJSON(w, r, &p) != nil {
			return
		}
		created, err := s.contracts.CreateParty(p)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		limit, offset, ok := paginationParams(w, r)
		if !ok {
			return
		}
		parties, err := s.contracts.ListParties(r.URL.Query().Get("role"), limit, offset)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"parties": parties})

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handlePartyByID serves GET, PUT and DELETE for a single party
func (s *Server) handlePartyByID(w http.ResponseWriter, r *http.Request) {
	parts := extractPathParts(r.URL.Path, "/api/parties/")
	if len(parts) != 1 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "party id required")
		return
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "party id must be an integer")
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := s.contracts.GetParty(id)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)

	case http.MethodPut:
		var p contract.Party
		if readJSON(w, r, &p) != nil {
			return
		}
		p.ID = id
		updated, err := s.contracts.UpdateParty(p)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := s.contracts.DeleteParty(id); err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "party deleted"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
