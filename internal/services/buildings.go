package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"foundgames-backend-go/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const buildingColumns = `id, name, address, city, state, zip, is_active, created_at, updated_at`

type BuildingInput struct {
	Name     string  `json:"name"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
	State    *string `json:"state"`
	Zip      *string `json:"zip"`
	IsActive *bool   `json:"isActive"`
}

func ListBuildings(ctx context.Context, db *sqlx.DB) ([]models.Building, error) {
	items := []models.Building{}
	err := db.SelectContext(ctx, &items, `SELECT `+buildingColumns+` FROM buildings ORDER BY name`)
	return items, err
}

func GetBuilding(ctx context.Context, db *sqlx.DB, id string) (models.Building, error) {
	var b models.Building
	err := db.GetContext(ctx, &b, `SELECT `+buildingColumns+` FROM buildings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Building{}, ErrNotFound("Building not found")
	}
	return b, err
}

// SaveBuilding inserts a building, or replaces the one with the given id.
func SaveBuilding(ctx context.Context, db *sqlx.DB, id string, in BuildingInput) (models.Building, bool, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Building{}, false, ErrBadRequest("Building name is required")
	}
	created := id == ""
	if created {
		id = uuid.NewString()
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	now := time.Now().UTC()
	var b models.Building
	err := db.GetContext(ctx, &b, `
INSERT INTO buildings (id, name, address, city, state, zip, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8)
ON CONFLICT (id) DO UPDATE SET
  name = EXCLUDED.name,
  address = EXCLUDED.address,
  city = EXCLUDED.city,
  state = EXCLUDED.state,
  zip = EXCLUDED.zip,
  is_active = EXCLUDED.is_active,
  updated_at = EXCLUDED.updated_at
RETURNING `+buildingColumns, id, name, trimmed(in.Address), trimmed(in.City), trimmed(in.State), trimmed(in.Zip), active, now)
	if isUniqueViolation(err) {
		return models.Building{}, false, ErrConflict("A building with this name already exists")
	}
	if err != nil {
		return models.Building{}, false, err
	}
	return b, created, nil
}

// DeleteBuilding removes a building and, through the foreign key, its
// residents. Import logs keep their history with a null building.
func DeleteBuilding(ctx context.Context, db *sqlx.DB, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM buildings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound("Building not found")
	}
	return nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
