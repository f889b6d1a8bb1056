package services

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"foundgames-backend-go/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	ResidentStatusActive   = "active"
	ResidentStatusInactive = "inactive"
	ResidentStatusAll      = "all"
	dateLayout             = "2006-01-02"
)

type ResidentFilter struct {
	Search     string
	BuildingID string
	Status     string
}

type ResidentRow struct {
	models.Resident
	BuildingName string `db:"building_name"`
}

type ResidentInput struct {
	FullName    string  `json:"fullName"`
	RoomNumber  string  `json:"roomNumber"`
	BuildingID  string  `json:"buildingId"`
	IsActive    *bool   `json:"isActive"`
	MoveInDate  *string `json:"moveInDate"`
	MoveOutDate *string `json:"moveOutDate"`
}

func ListResidents(ctx context.Context, db *sqlx.DB, f ResidentFilter) ([]ResidentRow, error) {
	where := []string{}
	args := []interface{}{}
	switch strings.ToLower(strings.TrimSpace(f.Status)) {
	case "", ResidentStatusActive:
		where = append(where, "r.is_active")
	case ResidentStatusInactive:
		where = append(where, "NOT r.is_active")
	case ResidentStatusAll:
	default:
		return nil, ErrBadRequest("Status must be active, inactive or all")
	}
	if b := strings.TrimSpace(f.BuildingID); b != "" && b != "all" {
		args = append(args, b)
		where = append(where, fmt.Sprintf("r.building_id = $%d", len(args)))
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("(lower(r.full_name) LIKE $%d OR lower(r.room_number) LIKE $%d)", len(args), len(args)))
	}
	query := `
SELECT r.id, r.full_name, r.room_number, r.building_id, r.is_active, r.move_in_date, r.move_out_date,
       r.created_at, r.updated_at, COALESCE(b.name, 'Unknown') AS building_name
FROM residents r
LEFT JOIN buildings b ON b.id = r.building_id`
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY r.full_name"

	rows := []ResidentRow{}
	err := db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}

// ExportFilename is the download name for a CSV export taken at t.
func ExportFilename(t time.Time) string {
	return "residents-" + t.UTC().Format(dateLayout) + ".csv"
}

func WriteResidentsCSV(w io.Writer, rows []ResidentRow) error {
	out := csv.NewWriter(w)
	if err := out.Write([]string{"Name", "Building", "Room", "Status", "Move In Date", "Move Out Date"}); err != nil {
		return err
	}
	for _, r := range rows {
		status := "Inactive"
		if r.IsActive {
			status = "Active"
		}
		if err := out.Write([]string{
			r.FullName,
			r.BuildingName,
			r.RoomNumber,
			status,
			formatDate(r.MoveInDate),
			formatDate(r.MoveOutDate),
		}); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// CreateResident adds a resident by hand. An active resident replaces the
// current occupants of the room.
func CreateResident(ctx context.Context, db *sqlx.DB, in ResidentInput) (models.Resident, error) {
	r, err := residentFromInput(in)
	if err != nil {
		return models.Resident{}, err
	}
	r.ID = uuid.NewString()
	now := time.Now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Resident{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := ensureBuildingExists(ctx, tx, r.BuildingID); err != nil {
		return models.Resident{}, err
	}
	if r.IsActive {
		if err := vacateRoom(ctx, tx, r.BuildingID, r.RoomNumber, "", now); err != nil {
			return models.Resident{}, err
		}
	}
	if _, err := tx.NamedExecContext(ctx, `
INSERT INTO residents (id, full_name, room_number, building_id, is_active, move_in_date, move_out_date, created_at, updated_at)
VALUES (:id, :full_name, :room_number, :building_id, :is_active, :move_in_date, :move_out_date, :created_at, :updated_at)
`, r); err != nil {
		return models.Resident{}, err
	}
	return r, tx.Commit()
}

func UpdateResident(ctx context.Context, db *sqlx.DB, id string, in ResidentInput) (models.Resident, error) {
	r, err := residentFromInput(in)
	if err != nil {
		return models.Resident{}, err
	}
	r.ID = id
	now := time.Now().UTC()
	r.UpdatedAt = now

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Resident{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := ensureBuildingExists(ctx, tx, r.BuildingID); err != nil {
		return models.Resident{}, err
	}
	if r.IsActive {
		if err := vacateRoom(ctx, tx, r.BuildingID, r.RoomNumber, id, now); err != nil {
			return models.Resident{}, err
		}
	}
	res, err := tx.NamedExecContext(ctx, `
UPDATE residents SET full_name = :full_name, room_number = :room_number, building_id = :building_id,
  is_active = :is_active, move_in_date = :move_in_date, move_out_date = :move_out_date, updated_at = :updated_at
WHERE id = :id
`, r)
	if err != nil {
		return models.Resident{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Resident{}, ErrNotFound("Resident not found")
	}
	if err := tx.Commit(); err != nil {
		return models.Resident{}, err
	}
	return getResident(ctx, db, id)
}

func residentFromInput(in ResidentInput) (models.Resident, error) {
	r := models.Resident{
		FullName:   strings.TrimSpace(in.FullName),
		RoomNumber: strings.TrimSpace(in.RoomNumber),
		BuildingID: strings.TrimSpace(in.BuildingID),
		IsActive:   true,
	}
	if r.FullName == "" || r.RoomNumber == "" || r.BuildingID == "" {
		return models.Resident{}, ErrBadRequest("Name, room number and building are required")
	}
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}
	var err error
	if r.MoveInDate, err = parseDate(in.MoveInDate); err != nil {
		return models.Resident{}, ErrBadRequest("Move in date must be YYYY-MM-DD")
	}
	if r.MoveOutDate, err = parseDate(in.MoveOutDate); err != nil {
		return models.Resident{}, ErrBadRequest("Move out date must be YYYY-MM-DD")
	}
	return r, nil
}

func ensureBuildingExists(ctx context.Context, tx *sqlx.Tx, id string) error {
	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM buildings WHERE id = $1)`, id); err != nil {
		return err
	}
	if !exists {
		return ErrBadRequest("Building not found")
	}
	return nil
}

func vacateRoom(ctx context.Context, tx *sqlx.Tx, buildingID, room, keepID string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
UPDATE residents SET is_active = FALSE, move_out_date = $1, updated_at = $2
WHERE building_id = $3 AND room_number = $4 AND is_active AND id <> $5
`, at.Format(dateLayout), at, buildingID, room, keepID)
	return err
}

func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func getResident(ctx context.Context, db *sqlx.DB, id string) (models.Resident, error) {
	var r models.Resident
	err := db.GetContext(ctx, &r, `
SELECT id, full_name, room_number, building_id, is_active, move_in_date, move_out_date, created_at, updated_at
FROM residents WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Resident{}, ErrNotFound("Resident not found")
	}
	return r, err
}
