package httpapi

import (
	"net/http"

	"foundgames-backend-go/internal/metrics"
	"foundgames-backend-go/internal/services"

	"github.com/gorilla/websocket"
)

func (s *Server) AdminSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := services.Summary(r.Context(), s.DB)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

func (s *Server) SystemStats(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, services.CaptureHostStats(s.Config.MetricsDiskPath))
}

// EventsSocket streams admin events. Browsers cannot set headers on a
// websocket handshake, so the access token comes in the query string.
func (s *Server) EventsSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	claims, err := s.Tokens.ParseAccess(token)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	profile, err := s.Profiles.GetProfile(r.Context(), claims.ProfileID)
	if err != nil || !profile.IsAdmin() {
		WriteError(w, http.StatusForbidden, "Forbidden: Admin privileges required")
		return
	}
	upgrader := websocket.Upgrader{CheckOrigin: s.allowedOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.Events.Add(conn)
	metrics.EventClientsGauge.Inc()
	defer func() {
		metrics.EventClientsGauge.Dec()
		s.Events.Remove(conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) allowedOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.Config.CorsOrigins) == 0 {
		return true
	}
	for _, allowed := range s.Config.CorsOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
