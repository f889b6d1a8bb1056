package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"foundgames-backend-go/internal/models"
	"foundgames-backend-go/internal/roster"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// RosterStore persists roster imports and serves the resident directory used
// by automatic verification.
type RosterStore struct {
	DB *sqlx.DB
}

const residentColumns = `id, full_name, room_number, building_id, is_active, move_in_date, move_out_date, created_at, updated_at`

func (s RosterStore) ListBuildings(ctx context.Context) ([]models.Building, error) {
	return ListBuildings(ctx, s.DB)
}

func (s RosterStore) GetBuilding(ctx context.Context, id string) (models.Building, error) {
	var b models.Building
	err := s.DB.GetContext(ctx, &b, `SELECT `+buildingColumns+` FROM buildings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Building{}, roster.ErrNotFound
	}
	return b, err
}

func (s RosterStore) ActiveResidents(ctx context.Context, buildingID, roomNumber string) ([]models.Resident, error) {
	items := []models.Resident{}
	err := s.DB.SelectContext(ctx, &items, `
SELECT `+residentColumns+` FROM residents
WHERE building_id = $1 AND room_number = $2 AND is_active
ORDER BY created_at`, buildingID, roomNumber)
	return items, err
}

func (s RosterStore) BuildingResidents(ctx context.Context, buildingID string) ([]models.Resident, error) {
	items := []models.Resident{}
	err := s.DB.SelectContext(ctx, &items, `
SELECT `+residentColumns+` FROM residents
WHERE building_id = $1 AND is_active
ORDER BY room_number, full_name`, buildingID)
	return items, err
}

func (s RosterStore) RenameResident(ctx context.Context, id, fullName string, at time.Time) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE residents SET full_name = $1, updated_at = $2 WHERE id = $3`, fullName, at, id)
	return err
}

func (s RosterStore) DeactivateResident(ctx context.Context, id string, moveOut time.Time) error {
	_, err := s.DB.ExecContext(ctx, `
UPDATE residents SET is_active = FALSE, move_out_date = $1, updated_at = now()
WHERE id = $2`, moveOut.Format(dateLayout), id)
	return err
}

func (s RosterStore) InsertResident(ctx context.Context, r models.Resident) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now
	_, err := s.DB.NamedExecContext(ctx, `
INSERT INTO residents (id, full_name, room_number, building_id, is_active, move_in_date, move_out_date, created_at, updated_at)
VALUES (:id, :full_name, :room_number, :building_id, :is_active, :move_in_date, :move_out_date, :created_at, :updated_at)
`, r)
	if err != nil {
		return "", err
	}
	return r.ID, nil
}

func (s RosterStore) CreateImportLog(ctx context.Context, entry models.ImportLog) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = time.Now().UTC()
	_, err := s.DB.NamedExecContext(ctx, `
INSERT INTO import_logs (id, building_id, imported_by, file_name, record_count, success_count, error_count, error_details, created_at)
VALUES (:id, :building_id, :imported_by, :file_name, :record_count, 0, 0, NULL, :created_at)
`, entry)
	if err != nil {
		return "", err
	}
	return entry.ID, nil
}

func (s RosterStore) FinishImportLog(ctx context.Context, id string, successCount, errorCount int, details []string) error {
	raw, err := encodeImportErrors(details)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
UPDATE import_logs SET success_count = $1, error_count = $2, error_details = $3
WHERE id = $4`, successCount, errorCount, raw, id)
	return err
}

type importErrors struct {
	Errors []string `json:"errors"`
}

// encodeImportErrors renders error_details as {"errors":[...]}, or NULL when
// the import had no errors.
func encodeImportErrors(details []string) (interface{}, error) {
	if len(details) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(importErrors{Errors: details})
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func decodeImportErrors(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var wrapped importErrors
	if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
		return []string{}, err
	}
	if wrapped.Errors == nil {
		return []string{}, nil
	}
	return wrapped.Errors, nil
}
