package server

import (
	"net/http"

	"github.com/docflow/docflow/errors"
)

// httpStatus maps domain sentinel errors to HTTP status codes
func httpStatus(err error) int {
	switch {
	case errors.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.IsInvalidRequestError(err):
		return http.StatusBadRequest
	case errors.IsResourceExhaustedError(err):
		return http.StatusTooManyRequests
	case errors.IsAlreadyTerminalError(err):
		return http.StatusConflict
	case errors.Is(err, errors.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError translates a domain error into a JSON error
// response. Internal errors are logged with their full chain but only
// a generic message leaves the process.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Errorw("Internal error", "error", err)
		writeError(w, status, "Internal server error")
		return
	}
	writeError(w, status, err.Error())
}
