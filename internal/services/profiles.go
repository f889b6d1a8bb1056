package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"strings"
	"time"

	"foundgames-backend-go/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ProfileService struct {
	DB *sqlx.DB
}

const profileColumns = `id, name, email, password_hash, role, created_at, updated_at`

func (s ProfileService) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	var p models.Profile
	err := s.DB.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrNotFound("Profile not found")
	}
	return p, err
}

func (s ProfileService) GetProfileByEmail(ctx context.Context, email string) (models.Profile, error) {
	var p models.Profile
	err := s.DB.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM profiles WHERE lower(email) = $1`, normalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrNotFound("Profile not found")
	}
	return p, err
}

// Authenticate returns the profile for valid credentials. Every failure has
// the same message so callers cannot probe which emails exist.
func (s ProfileService) Authenticate(ctx context.Context, email, password string) (models.Profile, error) {
	if normalizeEmail(email) == "" || strings.TrimSpace(password) == "" {
		return models.Profile{}, ErrBadRequest("Authentication failed")
	}
	p, err := s.GetProfileByEmail(ctx, email)
	if err != nil {
		if _, ok := AsServiceError(err); ok {
			return models.Profile{}, ErrUnauthorized("Authentication failed")
		}
		return models.Profile{}, err
	}
	if !VerifyPassword(password, p.PasswordHash) {
		return models.Profile{}, ErrUnauthorized("Authentication failed")
	}
	return p, nil
}

type AdminSetupInput struct {
	SetupKey string `json:"setupKey"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SetupAdmin creates an admin profile when the caller knows the configured
// setup key.
func (s ProfileService) SetupAdmin(ctx context.Context, configuredKey string, in AdminSetupInput) (models.Profile, error) {
	if configuredKey == "" {
		return models.Profile{}, ErrConfig("Admin setup is not configured")
	}
	if subtle.ConstantTimeCompare([]byte(in.SetupKey), []byte(configuredKey)) != 1 {
		return models.Profile{}, ErrForbidden("Invalid setup key")
	}
	email := normalizeEmail(in.Email)
	if email == "" || len(in.Password) < 8 {
		return models.Profile{}, ErrBadRequest("Email and a password of at least 8 characters are required")
	}
	var exists bool
	if err := s.DB.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM profiles WHERE lower(email) = $1)`, email); err != nil {
		return models.Profile{}, err
	}
	if exists {
		return models.Profile{}, ErrConflict("User already exists")
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return models.Profile{}, err
	}
	now := time.Now().UTC()
	p := models.Profile{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err = s.DB.NamedExecContext(ctx, `
INSERT INTO profiles (id, name, email, password_hash, role, created_at, updated_at)
VALUES (:id, :name, :email, :password_hash, :role, :created_at, :updated_at)
`, p)
	if err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

func (s ProfileService) ListProfiles(ctx context.Context, search string) ([]models.Profile, error) {
	items := []models.Profile{}
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		err := s.DB.SelectContext(ctx, &items, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at DESC`)
		return items, err
	}
	err := s.DB.SelectContext(ctx, &items, `
SELECT `+profileColumns+` FROM profiles
WHERE lower(email) LIKE $1 OR lower(name) LIKE $1
ORDER BY created_at DESC
`, "%"+search+"%")
	return items, err
}

// SetRole assigns a role. An admin cannot demote themselves, which keeps at
// least one admin able to reach the console.
func (s ProfileService) SetRole(ctx context.Context, actorID, profileID, role string) (models.Profile, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role != models.RoleAdmin && role != models.RoleMember {
		return models.Profile{}, ErrBadRequest("Role must be admin or member")
	}
	if actorID == profileID && role != models.RoleAdmin {
		return models.Profile{}, ErrBadRequest("You cannot remove your own admin role")
	}
	res, err := s.DB.ExecContext(ctx, `UPDATE profiles SET role = $1, updated_at = $2 WHERE id = $3`, role, time.Now().UTC(), profileID)
	if err != nil {
		return models.Profile{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Profile{}, ErrNotFound("Profile not found")
	}
	return s.GetProfile(ctx, profileID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
