package services

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const importHistoryLimit = 10

type ImportHistoryItem struct {
	ID           string    `json:"id" db:"id"`
	BuildingID   *string   `json:"buildingId" db:"building_id"`
	BuildingName string    `json:"buildingName" db:"building_name"`
	ImportedBy   string    `json:"importedBy" db:"imported_by"`
	ImporterName *string   `json:"importerName" db:"importer_name"`
	FileName     string    `json:"fileName" db:"file_name"`
	RecordCount  int       `json:"recordCount" db:"record_count"`
	SuccessCount int       `json:"successCount" db:"success_count"`
	ErrorCount   int       `json:"errorCount" db:"error_count"`
	ErrorDetails []string  `json:"errorDetails" db:"-"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`

	RawDetails string `json:"-" db:"error_details"`
}

// RecentImports returns the latest import logs, newest first. Imports that
// covered every building report "All buildings". Unreadable error details are
// logged and reported as an empty list.
func RecentImports(ctx context.Context, db *sqlx.DB, log *zap.Logger) ([]ImportHistoryItem, error) {
	if log == nil {
		log = zap.NewNop()
	}
	items := []ImportHistoryItem{}
	err := db.SelectContext(ctx, &items, `
SELECT l.id, l.building_id, COALESCE(b.name, 'All buildings') AS building_name,
       l.imported_by, NULLIF(p.name, '') AS importer_name, l.file_name,
       l.record_count, l.success_count, l.error_count,
       COALESCE(l.error_details::text, '') AS error_details, l.created_at
FROM import_logs l
LEFT JOIN buildings b ON b.id = l.building_id
LEFT JOIN profiles p ON p.id = l.imported_by
ORDER BY l.created_at DESC
LIMIT $1`, importHistoryLimit)
	if err != nil {
		return nil, err
	}
	for i := range items {
		details, err := decodeImportErrors(items[i].RawDetails)
		if err != nil {
			log.Warn("malformed import error details", zap.String("import_log_id", items[i].ID), zap.Error(err))
		}
		items[i].ErrorDetails = details
	}
	return items, nil
}
