package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

// handleJobStream upgrades to WebSocket and pushes a job record to the
// client every time the record changes. Clients that fall behind miss
// intermediate updates but always see the terminal one eventually.
func (s *Server) handleJobStream(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: s.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("Failed to upgrade WebSocket", "error", err)
		return
	}
	defer conn.Close()

	s.logger.Infow("Job stream client connected", "remote", r.RemoteAddr)

	updates := s.manager.Subscribe()
	defer s.manager.Unsubscribe(updates)

	// Drain client frames so close and pong handling keep working
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case rec := <-updates:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(rec); err != nil {
				s.logger.Debugw("Job stream write failed, dropping client",
					"remote", r.RemoteAddr, "error", err)
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			s.logger.Infow("Job stream client disconnected", "remote", r.RemoteAddr)
			return
		case <-r.Context().Done():
			return
		}
	}
}

// checkOrigin allows requests whose Origin matches the configured
// allowlist. An allowlist entry of "*" admits every origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
