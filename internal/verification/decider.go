package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode"

	"foundgames-backend-go/internal/models"
	"foundgames-backend-go/internal/roster"
)

const (
	ModeRoster = "roster"
	ModeRemote = "remote"
)

type Decision struct {
	Approved bool
	Reason   string
}

// Decider chooses between automatic approval and manual review.
type Decider interface {
	Decide(ctx context.Context, applicant Applicant) (Decision, error)
}

// ResidentDirectory is the read side of the residents roster.
type ResidentDirectory interface {
	ListBuildings(ctx context.Context) ([]models.Building, error)
	BuildingResidents(ctx context.Context, buildingID string) ([]models.Resident, error)
}

// RosterDecider approves applicants found among the active residents of the
// building and room they claim.
type RosterDecider struct {
	Directory ResidentDirectory
}

func (d RosterDecider) Decide(ctx context.Context, applicant Applicant) (Decision, error) {
	buildings, err := d.Directory.ListBuildings(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("list buildings: %w", err)
	}
	want := Slugify(applicant.Building)
	var building *models.Building
	for i := range buildings {
		if Slugify(buildings[i].Name) == want || buildings[i].ID == applicant.Building {
			building = &buildings[i]
			break
		}
	}
	if building == nil {
		return Decision{Reason: "unknown building"}, nil
	}
	if !building.IsActive {
		return Decision{Reason: "building is not active"}, nil
	}

	residents, err := d.Directory.BuildingResidents(ctx, building.ID)
	if err != nil {
		return Decision{}, fmt.Errorf("list residents: %w", err)
	}
	room := NormalizeRoom(applicant.RoomNumber)
	name := applicant.FullName()
	roomFound := false
	for _, r := range residents {
		if !r.IsActive || NormalizeRoom(r.RoomNumber) != room {
			continue
		}
		roomFound = true
		if roster.SimilarName(r.FullName, name) {
			return Decision{Approved: true, Reason: "matched active resident"}, nil
		}
	}
	if !roomFound {
		return Decision{Reason: "no active resident in room"}, nil
	}
	return Decision{Reason: "name does not match room occupant"}, nil
}

// RemoteDecider asks an external verifier. The verifier may answer with a
// bare JSON boolean or an object with a "verified" field.
type RemoteDecider struct {
	URL    string
	APIKey string
	HTTP   *http.Client
}

func (d RemoteDecider) Decide(ctx context.Context, applicant Applicant) (Decision, error) {
	if strings.TrimSpace(d.URL) == "" {
		return Decision{}, errors.New("remote verifier url is not configured")
	}
	body, err := json.Marshal(applicant)
	if err != nil {
		return Decision{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(body))
	if err != nil {
		return Decision{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if d.APIKey != "" {
		req.Header.Set("X-API-Key", d.APIKey)
	}
	client := d.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Decision{}, fmt.Errorf("remote verifier: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return Decision{}, fmt.Errorf("read verifier response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Decision{}, fmt.Errorf("remote verifier returned %d", resp.StatusCode)
	}
	verified, err := parseVerdict(raw)
	if err != nil {
		return Decision{}, err
	}
	if verified {
		return Decision{Approved: true, Reason: "remote verifier approved"}, nil
	}
	return Decision{Reason: "remote verifier declined"}, nil
}

func parseVerdict(raw []byte) (bool, error) {
	var bare bool
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}
	var wrapped struct {
		Verified *bool `json:"verified"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil || wrapped.Verified == nil {
		return false, fmt.Errorf("unexpected verifier response: %s", strings.TrimSpace(string(raw)))
	}
	return *wrapped.Verified, nil
}

// Slugify lowercases and joins letter/digit runs with dashes, so "Midtown
// East" and "midtown-east" compare equal.
func Slugify(value string) string {
	lower := strings.ToLower(strings.TrimSpace(value))
	var b strings.Builder
	lastDash := false
	for _, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// NormalizeRoom compares rooms ignoring case and leading zeros, so "301"
// matches a roster room of "0301".
func NormalizeRoom(room string) string {
	room = strings.ToUpper(strings.TrimSpace(room))
	trimmed := strings.TrimLeft(room, "0")
	if trimmed == "" && room != "" {
		return "0"
	}
	return trimmed
}
