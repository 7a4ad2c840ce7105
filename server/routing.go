package server

import "net/http"

// routes assembles the API surface. All endpoints live under /api/ and
// speak JSON; /api/jobs/ws upgrades to WebSocket.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", s.handleHealth)

	mux.HandleFunc("/api/jobs", s.handleJobs)
	mux.HandleFunc("/api/jobs/ws", s.handleJobStream)
	mux.HandleFunc("/api/jobs/", s.handleJobByID)

	mux.HandleFunc("/api/parties", s.handleParties)
	mux.HandleFunc("/api/parties/", s.handlePartyByID)

	mux.HandleFunc("/api/contracts", s.handleContracts)
	mux.HandleFunc("/api/contracts/", s.handleContractByID)

	mux.HandleFunc("/api/documents", s.handleDocuments)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
