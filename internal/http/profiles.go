package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type AssignRoleRequest struct {
	Role string `json:"role"`
}

func (s *Server) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.Profiles.ListProfiles(r.Context(), strings.TrimSpace(r.URL.Query().Get("search")))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	items := make([]ProfileDTO, 0, len(profiles))
	for _, p := range profiles {
		items = append(items, profileDTO(p))
	}
	WriteJSON(w, http.StatusOK, ItemsResponse[ProfileDTO]{Items: items})
}

func (s *Server) SetProfileRole(w http.ResponseWriter, r *http.Request) {
	var req AssignRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	profile, err := s.Profiles.SetRole(r.Context(), CurrentProfileID(r), chi.URLParam(r, "id"), strings.ToLower(strings.TrimSpace(req.Role)))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, profileDTO(profile))
}
