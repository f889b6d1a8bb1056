package httpapi

import (
	"net/http"
	"strings"

	"foundgames-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

func (s *Server) ListBuildings(w http.ResponseWriter, r *http.Request) {
	buildings, err := services.ListBuildings(r.Context(), s.DB)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	items := make([]BuildingDTO, 0, len(buildings))
	for _, b := range buildings {
		items = append(items, buildingDTO(b))
	}
	WriteJSON(w, http.StatusOK, ItemsResponse[BuildingDTO]{Items: items})
}

// CreateBuilding accepts an optional id; posting an existing id updates it.
func (s *Server) CreateBuilding(w http.ResponseWriter, r *http.Request) {
	var req struct {
		services.BuildingInput
		ID string `json:"id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	s.saveBuilding(w, r, strings.TrimSpace(req.ID), req.BuildingInput)
}

func (s *Server) UpdateBuilding(w http.ResponseWriter, r *http.Request) {
	var req services.BuildingInput
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	s.saveBuilding(w, r, chi.URLParam(r, "id"), req)
}

func (s *Server) saveBuilding(w http.ResponseWriter, r *http.Request, id string, in services.BuildingInput) {
	if strings.TrimSpace(in.Name) == "" {
		WriteError(w, http.StatusBadRequest, "Building name is required")
		return
	}
	building, created, err := services.SaveBuilding(r.Context(), s.DB, id, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	WriteJSON(w, status, buildingDTO(building))
}

func (s *Server) DeleteBuilding(w http.ResponseWriter, r *http.Request) {
	if err := services.DeleteBuilding(r.Context(), s.DB, chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
