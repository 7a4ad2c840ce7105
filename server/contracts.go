package server

import (
	"net/http"
	"strconv"

	"github.com/docflow/docflow/contract"
)

// handleContracts serves the contract collection: POST registers a
// contract by explicit requisites, GET lists contracts newest first.
func (s *Server) handleContracts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var c contract.Contract
		if readJSON(w, r, &c) != nil {
			return
		}
		created, err := s.contracts.CreateContract(c)
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
		contracts, err := s.contracts.ListContracts(limit, offset)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"contracts": contracts})

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleContractByID serves GET /api/contracts/{id} and
// GET /api/contracts/{id}/documents
func (s *Server) handleContractByID(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	parts := extractPathParts(r.URL.Path, "/api/contracts/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "contract id required")
		return
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "contract id must be an integer")
		return
	}

	switch {
	case len(parts) == 1:
		c, err := s.contracts.GetContract(id)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)

	case len(parts) == 2 && parts[1] == "documents":
		docs, err := s.contracts.ListContractDocuments(id)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})

	default:
		writeError(w, http.StatusNotFound, "unknown contract endpoint")
	}
}

// handleDocuments lists documents across all contracts, optionally
// filtered by doc_type
func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	limit, offset, ok := paginationParams(w, r)
	if !ok {
		return
	}
	docs, err := s.contracts.ListDocuments(r.URL.Query().Get("doc_type"), limit, offset)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

// paginationParams parses limit/offset query parameters, responding
// with 400 on malformed values
func paginationParams(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	for _, param := range []struct {
		name string
		dest *int
	}{
		{"limit", &limit},
		{"offset", &offset},
	} {
		raw := r.URL.Query().Get(param.name)
		if raw == "" {
			continue
		}
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, param.name+" must be a non-negative integer")
			return 0, 0, false
		}
		*param.dest = parsed
	}
	return limit, offset, true
}
