package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foundgames-backend-go/internal/models"

	"go.uber.org/zap"
)

// AllBuildings widens the reconciliation scope to every building in the file.
const AllBuildings = "all"

var ErrNotFound = errors.New("not found")

// Store is the persistence surface the importer needs. Implementations must
// treat ActiveResidents as a read of currently active rows only.
type Store interface {
	ListBuildings(ctx context.Context) ([]models.Building, error)
	GetBuilding(ctx context.Context, id string) (models.Building, error)
	ActiveResidents(ctx context.Context, buildingID, roomNumber string) ([]models.Resident, error)
	RenameResident(ctx context.Context, id, fullName string, at time.Time) error
	DeactivateResident(ctx context.Context, id string, moveOut time.Time) error
	InsertResident(ctx context.Context, resident models.Resident) (string, error)
	CreateImportLog(ctx context.Context, entry models.ImportLog) (string, error)
	FinishImportLog(ctx context.Context, id string, successCount, errorCount int, details []string) error
}

type ImportRequest struct {
	BuildingID string
	ImportedBy string
	FileName   string
	Parsed     ParseResult
}

type Stats struct {
	TotalProcessed   int `json:"totalProcessed"`
	NewResidents     int `json:"newResidents"`
	UpdatedResidents int `json:"updatedResidents"`
	SkippedRows      int `json:"skippedRows"`
	Errors           int `json:"errors"`
}

type Result struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	Stats       *Stats   `json:"stats,omitempty"`
	Errors      []string `json:"errors,omitempty"`
	ImportLogID string   `json:"importLogId,omitempty"`
}

type outcome int

const (
	outcomeNew outcome = iota
	outcomeUpdated
	outcomeSkipped
)

// Importer reconciles parsed roster entries against the active residents of
// each room. Rows are processed one at a time; a failing row is recorded and
// the batch continues.
type Importer struct {
	Store Store
	Log   *zap.Logger
	Now   func() time.Time
}

func (im *Importer) Import(ctx context.Context, req ImportRequest) Result {
	log := im.logger().With(zap.String("building_id", req.BuildingID), zap.String("file", req.FileName))
	entries := req.Parsed.Entries
	stats := Stats{
		TotalProcessed: len(entries),
		SkippedRows:    len(req.Parsed.Skipped),
	}
	for _, skip := range req.Parsed.Skipped {
		log.Debug("row skipped", zap.Int("row", skip.Row), zap.String("reason", skip.Reason))
	}
	if len(entries) == 0 {
		return Result{
			Success: false,
			Message: "No valid resident data found in the file. Check the file format.",
		}
	}

	scope := strings.TrimSpace(req.BuildingID)
	nameToID := map[string]string{}
	var buildingRef *string
	if scope != AllBuildings {
		selected, err := im.Store.GetBuilding(ctx, scope)
		if err != nil {
			return Result{Success: false, Message: "Building not found: " + err.Error()}
		}
		buildingRef = &selected.ID
		nameToID[buildingKey(selected.Name)] = selected.ID
	}
	buildings, err := im.Store.ListBuildings(ctx)
	if err != nil {
		log.Warn("list buildings failed, continuing with selected building", zap.Error(err))
	}
	for _, b := range buildings {
		if _, exists := nameToID[buildingKey(b.Name)]; !exists {
			nameToID[buildingKey(b.Name)] = b.ID
		}
	}

	logID, err := im.Store.CreateImportLog(ctx, models.ImportLog{
		BuildingID:  buildingRef,
		ImportedBy:  req.ImportedBy,
		FileName:    req.FileName,
		RecordCount: len(entries),
	})
	if err != nil {
		log.Error("create import log", zap.Error(err))
	}

	now := im.now()
	errs := []string{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			errs = append(errs, "Import interrupted: "+err.Error())
			stats.Errors++
			break
		}
		result, err := im.reconcile(ctx, entry, scope, nameToID, now)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Error processing %s: %s", entry.Name, err.Error()))
			stats.Errors++
			log.Warn("row failed", zap.Int("row", entry.Row), zap.String("resident", entry.Name), zap.Error(err))
			continue
		}
		switch result {
		case outcomeNew:
			stats.NewResidents++
		case outcomeUpdated:
			stats.UpdatedResidents++
		case outcomeSkipped:
			stats.SkippedRows++
		}
	}

	if logID != "" {
		if err := im.Store.FinishImportLog(ctx, logID, stats.NewResidents+stats.UpdatedResidents, stats.Errors, errs); err != nil {
			log.Error("finish import log", zap.String("import_log_id", logID), zap.Error(err))
		}
	}

	log.Info("roster import finished",
		zap.Int("processed", stats.TotalProcessed),
		zap.Int("new", stats.NewResidents),
		zap.Int("updated", stats.UpdatedResidents),
		zap.Int("skipped", stats.SkippedRows),
		zap.Int("errors", stats.Errors),
	)

	result := Result{
		Success: true,
		Message: fmt.Sprintf("Processed %d residents: %d new, %d updated, %d errors, %d skipped",
			stats.TotalProcessed, stats.NewResidents, stats.UpdatedResidents, stats.Errors, stats.SkippedRows),
		Stats:       &stats,
		ImportLogID: logID,
	}
	if len(errs) > 0 {
		result.Errors = errs
	}
	return result
}

func (im *Importer) reconcile(ctx context.Context, entry Entry, scope string, nameToID map[string]string, now time.Time) (outcome, error) {
	buildingID, ok := nameToID[buildingKey(entry.BuildingName)]
	if !ok {
		if scope == AllBuildings {
			return 0, fmt.Errorf("unknown building %q", entry.BuildingName)
		}
		buildingID = scope
	}
	if scope != AllBuildings && buildingID != scope {
		return outcomeSkipped, nil
	}

	existing, err := im.Store.ActiveResidents(ctx, buildingID, entry.RoomNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to query existing residents: %w", err)
	}
	for _, resident := range existing {
		if SimilarName(resident.FullName, entry.Name) {
			if err := im.Store.RenameResident(ctx, resident.ID, entry.Name, now); err != nil {
				return 0, fmt.Errorf("failed to update resident: %w", err)
			}
			return outcomeUpdated, nil
		}
	}

	today := dateOnly(now)
	for _, resident := range existing {
		if err := im.Store.DeactivateResident(ctx, resident.ID, today); err != nil {
			return 0, fmt.Errorf("failed to deactivate resident %s: %w", resident.FullName, err)
		}
	}
	if _, err := im.Store.InsertResident(ctx, models.Resident{
		FullName:   entry.Name,
		RoomNumber: entry.RoomNumber,
		BuildingID: buildingID,
		IsActive:   true,
		MoveInDate: &today,
	}); err != nil {
		return 0, fmt.Errorf("failed to insert resident: %w", err)
	}
	return outcomeNew, nil
}

func (im *Importer) logger() *zap.Logger {
	if im.Log == nil {
		return zap.NewNop()
	}
	return im.Log
}

func (im *Importer) now() time.Time {
	if im.Now == nil {
		return time.Now().UTC()
	}
	return im.Now().UTC()
}

func buildingKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
