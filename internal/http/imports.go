package httpapi

import (
	"net/http"
	"path/filepath"
	"strings"

	"foundgames-backend-go/internal/metrics"
	"foundgames-backend-go/internal/roster"
	"foundgames-backend-go/internal/services"

	"go.uber.org/zap"
)

const invalidRosterFile = "Invalid file type. Please upload an Excel (.xlsx, .xls) or CSV file."

func (s *Server) maxUploadBytes() int64 {
	mb := s.Config.MaxUploadMB
	if mb <= 0 {
		mb = 10
	}
	return int64(mb) << 20
}

// ImportResidents reconciles an uploaded roster spreadsheet with the
// residents table. buildingId may be "all" to import every building listed
// in the file.
func (s *Server) ImportResidents(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.maxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	buildingID := strings.TrimSpace(r.FormValue("buildingId"))
	if buildingID == "" {
		WriteError(w, http.StatusBadRequest, "Building is required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()
	filename := filepath.Base(header.Filename)
	if !roster.SupportedFile(filename) {
		WriteError(w, http.StatusBadRequest, invalidRosterFile)
		return
	}

	rows, err := roster.ReadRows(file, filename)
	if err != nil {
		s.Log.Warn("roster file unreadable", zap.String("file", filename), zap.Error(err))
		WriteJSON(w, http.StatusUnprocessableEntity, roster.Result{
			Success: false,
			Message: "Unable to read the uploaded file: " + err.Error(),
		})
		return
	}

	result := s.Importer.Import(r.Context(), roster.ImportRequest{
		BuildingID: buildingID,
		ImportedBy: CurrentProfileID(r),
		FileName:   filename,
		Parsed:     roster.Parse(rows),
	})
	if !result.Success {
		WriteJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	stats := result.Stats
	metrics.RecordImport(stats.NewResidents, stats.UpdatedResidents, stats.SkippedRows, stats.Errors)
	s.Events.Publish(services.EventImportFinished, map[string]interface{}{
		"importLogId": result.ImportLogID,
		"buildingId":  buildingID,
		"fileName":    filename,
		"stats":       stats,
	})
	WriteJSON(w, http.StatusOK, result)
}

func (s *Server) ImportHistory(w http.ResponseWriter, r *http.Request) {
	items, err := services.RecentImports(r.Context(), s.DB, s.Log)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, ItemsResponse[services.ImportHistoryItem]{Items: items})
}
