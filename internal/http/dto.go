package httpapi

import (
	"time"

	"foundgames-backend-go/internal/models"
	"foundgames-backend-go/internal/services"
)

type ProfileDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func profileDTO(p models.Profile) ProfileDTO {
	return ProfileDTO{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
	}
}

type BuildingDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address"`
	City      *string   `json:"city"`
	State     *string   `json:"state"`
	Zip       *string   `json:"zip"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func buildingDTO(b models.Building) BuildingDTO {
	return BuildingDTO{
		ID:        b.ID,
		Name:      b.Name,
		Address:   b.Address,
		City:      b.City,
		State:     b.State,
		Zip:       b.Zip,
		IsActive:  b.IsActive,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

type ResidentDTO struct {
	ID           string     `json:"id"`
	FullName     string     `json:"fullName"`
	RoomNumber   string     `json:"roomNumber"`
	BuildingID   string     `json:"buildingId"`
	BuildingName string     `json:"buildingName,omitempty"`
	IsActive     bool       `json:"isActive"`
	MoveInDate   *string    `json:"moveInDate"`
	MoveOutDate  *string    `json:"moveOutDate"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

func residentDTO(r models.Resident, buildingName string) ResidentDTO {
	updated := r.UpdatedAt
	return ResidentDTO{
		ID:           r.ID,
		FullName:     r.FullName,
		RoomNumber:   r.RoomNumber,
		BuildingID:   r.BuildingID,
		BuildingName: buildingName,
		IsActive:     r.IsActive,
		MoveInDate:   dateString(r.MoveInDate),
		MoveOutDate:  dateString(r.MoveOutDate),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    &updated,
	}
}

type VerificationDTO struct {
	ID                string    `json:"id"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Building          string    `json:"building"`
	RoomNumber        string    `json:"roomNumber"`
	Email             string    `json:"email"`
	DiscordUsername   string    `json:"discordUsername"`
	MinecraftUsername string    `json:"minecraftUsername"`
	Status            string    `json:"status"`
	HasDocument       bool      `json:"hasDocument"`
	DecisionNote      *string   `json:"decisionNote"`
	ReviewedBy        *string   `json:"reviewedBy"`
	SubmittedAt       time.Time `json:"submittedAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func verificationDTO(v models.VerificationRequest) VerificationDTO {
	return VerificationDTO{
		ID:                v.ID,
		FirstName:         v.FirstName,
		LastName:          v.LastName,
		Building:          v.Building,
		RoomNumber:        v.RoomNumber,
		Email:             v.Email,
		DiscordUsername:   v.DiscordUsername,
		MinecraftUsername: v.MinecraftUsername,
		Status:            v.Status,
		HasDocument:       v.DocumentKey != nil,
		DecisionNote:      v.DecisionNote,
		ReviewedBy:        v.ReviewedBy,
		SubmittedAt:       v.SubmittedAt,
		UpdatedAt:         v.UpdatedAt,
	}
}

type ItemsResponse[T any] struct {
	Items []T `json:"items"`
}

func residentRows(rows []services.ResidentRow) []ResidentDTO {
	items := make([]ResidentDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, residentDTO(row.Resident, row.BuildingName))
	}
	return items
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format("2006-01-02")
	return &formatted
}
