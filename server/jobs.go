package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/docflow/docflow/errors"
)

// handleJobs serves the job collection: POST submits a document for
// extraction, GET lists tracked jobs newest first.
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleJobSubmit(w, r)
	case http.MethodGet:
		s.handleJobList(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleJobSubmit accepts a document as multipart form data (field
// "file") or as a raw body with an X-Document-Name header, and
// responds 202 with the pending job record.
func (s *Server) handleJobSubmit(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.readDocument(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.manager.Submit(name, data)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.logger.Infow("Job accepted", "job_id", shortID(rec.ID), "document", name)
	writeJSON(w, http.StatusAccepted, rec)
}

func (s *Server) handleJobList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": s.manager.List(limit),
	})
}

// handleJobByID serves a single job: GET polls status, POST to
// .../cancel requests cancellation.
func (s *Server) handleJobByID(w http.ResponseWriter, r *http.Request) {
	parts := extractPathParts(r.URL.Path, "/api/jobs/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "job id required")
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		rec, err := s.manager.GetStatus(id)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)

	case len(parts) == 2 && parts[1] == "cancel":
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		rec, err := s.manager.Cancel(id)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		s.logger.Infow("Job cancellation accepted", "job_id", shortID(id), "status", rec.Status)
		writeJSON(w, http.StatusOK, rec)

	case len(parts) == 2 && parts[1] == "register":
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		s.handleJobRegister(w, id)

	default:
		writeError(w, http.StatusNotFound, "unknown job endpoint")
	}
}

// handleJobRegister persists a completed extraction into the contract
// registry
func (s *Server) handleJobRegister(w http.ResponseWriter, id string) {
	rec, err := s.manager.GetStatus(id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if rec.Result == nil {
		writeError(w, http.StatusConflict, "job has no extraction result to register")
		return
	}

	c, err := s.contracts.RegisterExtraction(rec.Result.Fields, rec.DocumentName)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.logger.Infow("Extraction registered", "job_id", shortID(id), "contract_id", c.ID)
	writeJSON(w, http.StatusCreated, c)
}

// readDocument pulls the uploaded document out of the request, from a
// multipart form when one is present and from the raw body otherwise
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	maxBytes := s.cfg.Jobs.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return "", nil, errors.Wrap(errors.ErrInvalidRequest, "malformed multipart form")
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, errors.Wrap(errors.ErrInvalidRequest, "multipart form is missing a \"file\" field")
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return "", nil, errors.Wrap(errors.ErrInvalidRequest, "failed to read uploaded file")
		}
		return header.Filename, data, nil
	}

	name := r.Header.Get("X-Document-Name")
	if name == "" {
		return "", nil, errors.Wrap(errors.ErrInvalidRequest, "X-Document-Name header required for raw uploads")
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrInvalidRequest, "failed to read request body")
	}
	return name, data, nil
}
