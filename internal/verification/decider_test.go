package verification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"foundgames-backend-go/internal/models"
)

type fakeDirectory struct {
	buildings []models.Building
	residents map[string][]models.Resident
	err       error
}

func (f fakeDirectory) ListBuildings(ctx context.Context) ([]models.Building, error) {
	return f.buildings, f.err
}

func (f fakeDirectory) BuildingResidents(ctx context.Context, buildingID string) ([]models.Resident, error) {
	return f.residents[buildingID], nil
}

func sampleApplicant() Applicant {
	return Applicant{
		FirstName:         "Alex",
		LastName:          "Marshall",
		Building:          "turtle-bay",
		RoomNumber:        "301",
		Email:             "alex@example.com",
		DiscordUsername:   "alexm",
		MinecraftUsername: "AlexCraft",
	}
}

func TestRosterDecider(t *testing.T) {
	dir := fakeDirectory{
		buildings: []models.Building{
			{ID: "b1", Name: "Turtle Bay", IsActive: true},
			{ID: "b2", Name: "Midtown East", IsActive: true},
		},
		residents: map[string][]models.Resident{
			"b1": {{ID: "r1", FullName: "Alexander Marshall", RoomNumber: "0301", BuildingID: "b1", IsActive: true}},
		},
	}
	d := RosterDecider{Directory: dir}
	ctx := context.Background()

	decision, err := d.Decide(ctx, sampleApplicant())
	if err != nil || !decision.Approved {
		t.Fatalf("expected approval, got %+v %v", decision, err)
	}

	other := sampleApplicant()
	other.FirstName, other.LastName = "Jane", "Doe"
	if decision, _ := d.Decide(ctx, other); decision.Approved {
		t.Fatalf("different name should not be approved")
	}

	wrongRoom := sampleApplicant()
	wrongRoom.RoomNumber = "302"
	if decision, _ := d.Decide(ctx, wrongRoom); decision.Approved || decision.Reason != "no active resident in room" {
		t.Fatalf("unexpected decision %+v", decision)
	}

	unknown := sampleApplicant()
	unknown.Building = "chelsea"
	if decision, _ := d.Decide(ctx, unknown); decision.Approved || decision.Reason != "unknown building" {
		t.Fatalf("unexpected decision %+v", decision)
	}

	failing := RosterDecider{Directory: fakeDirectory{err: errors.New("db down")}}
	if _, err := failing.Decide(ctx, sampleApplicant()); err == nil {
		t.Fatalf("expected directory error")
	}
}

func TestRemoteDecider(t *testing.T) {
	responses := []string{`true`, `{"verified": false}`, `{"other": 1}`}
	call := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var got Applicant
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil || got.Email != "alex@example.com" {
			t.Errorf("unexpected payload %+v %v", got, err)
		}
		_, _ = w.Write([]byte(responses[call]))
		call++
	}))
	defer srv.Close()

	d := RemoteDecider{URL: srv.URL, APIKey: "secret", HTTP: srv.Client()}
	ctx := context.Background()

	decision, err := d.Decide(ctx, sampleApplicant())
	if err != nil || !decision.Approved {
		t.Fatalf("expected bare true to approve, got %+v %v", decision, err)
	}
	decision, err = d.Decide(ctx, sampleApplicant())
	if err != nil || decision.Approved {
		t.Fatalf("expected wrapped false to decline, got %+v %v", decision, err)
	}
	if _, err := d.Decide(ctx, sampleApplicant()); err == nil {
		t.Fatalf("expected error for malformed verdict")
	}

	unauthorized := RemoteDecider{URL: srv.URL, HTTP: srv.Client()}
	if _, err := unauthorized.Decide(ctx, sampleApplicant()); err == nil {
		t.Fatalf("expected error on non-2xx")
	}
}

func TestSlugifyAndRoom(t *testing.T) {
	if Slugify("Midtown East") != "midtown-east" || Slugify(" Brooklyn  Heights ") != "brooklyn-heights" {
		t.Fatalf("unexpected slug")
	}
	if NormalizeRoom("0301") != NormalizeRoom("301") {
		t.Fatalf("leading zeros should be ignored")
	}
	if NormalizeRoom("000") != "0" || NormalizeRoom("12b") != "12B" {
		t.Fatalf("unexpected room normalization")
	}
}
