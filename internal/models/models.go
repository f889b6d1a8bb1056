package models

import (
	"encoding/json"
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Building struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Address   *string   `db:"address"`
	City      *string   `db:"city"`
	State     *string   `db:"state"`
	Zip       *string   `db:"zip"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Resident struct {
	ID          string     `db:"id"`
	FullName    string     `db:"full_name"`
	RoomNumber  string     `db:"room_number"`
	BuildingID  string     `db:"building_id"`
	IsActive    bool       `db:"is_active"`
	MoveInDate  *time.Time `db:"move_in_date"`
	MoveOutDate *time.Time `db:"move_out_date"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

type ImportLog struct {
	ID           string          `db:"id"`
	BuildingID   *string         `db:"building_id"`
	ImportedBy   string          `db:"imported_by"`
	FileName     string          `db:"file_name"`
	RecordCount  int             `db:"record_count"`
	SuccessCount int             `db:"success_count"`
	ErrorCount   int             `db:"error_count"`
	ErrorDetails json.RawMessage `db:"error_details"`
	CreatedAt    time.Time       `db:"created_at"`
}

type Profile struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

type VerificationRequest struct {
	ID                string    `db:"id"`
	FirstName         string    `db:"first_name"`
	LastName          string    `db:"last_name"`
	Building          string    `db:"building"`
	RoomNumber        string    `db:"room_number"`
	Email             string    `db:"email"`
	DiscordUsername   string    `db:"discord_username"`
	MinecraftUsername string    `db:"minecraft_username"`
	Status            string    `db:"status"`
	DocumentKey       *string   `db:"document_key"`
	DecisionNote      *string   `db:"decision_note"`
	ReviewedBy        *string   `db:"reviewed_by"`
	SubmittedAt       time.Time `db:"submitted_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}
