package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"foundgames-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func residentFilter(r *http.Request) services.ResidentFilter {
	q := r.URL.Query()
	return services.ResidentFilter{
		Search:     strings.TrimSpace(q.Get("search")),
		BuildingID: strings.TrimSpace(q.Get("buildingId")),
		Status:     strings.TrimSpace(q.Get("status")),
	}
}

func (s *Server) ListResidents(w http.ResponseWriter, r *http.Request) {
	rows, err := services.ListResidents(r.Context(), s.DB, residentFilter(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, ItemsResponse[ResidentDTO]{Items: residentRows(rows)})
}

// ExportResidents streams the filtered resident list as CSV.
func (s *Server) ExportResidents(w http.ResponseWriter, r *http.Request) {
	rows, err := services.ListResidents(r.Context(), s.DB, residentFilter(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, services.ExportFilename(time.Now())))
	w.WriteHeader(http.StatusOK)
	if err := services.WriteResidentsCSV(w, rows); err != nil {
		s.Log.Warn("resident export interrupted", zap.Error(err))
	}
}

func (s *Server) CreateResident(w http.ResponseWriter, r *http.Request) {
	var req services.ResidentInput
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	resident, err := services.CreateResident(r.Context(), s.DB, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, residentDTO(resident, ""))
}

func (s *Server) UpdateResident(w http.ResponseWriter, r *http.Request) {
	var req services.ResidentInput
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	resident, err := services.UpdateResident(r.Context(), s.DB, chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, residentDTO(resident, ""))
}
