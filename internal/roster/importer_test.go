package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"foundgames-backend-go/internal/models"
)

const (
	turtleBayID = "b-turtle"
	chelseaID   = "b-chelsea"
)

type memoryStore struct {
	buildings         []models.Building
	residents         []models.Resident
	logs              []models.ImportLog
	finished          map[string][]string
	failInsertFor     string
	failDeactivateFor string
	nextID            int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		buildings: []models.Building{
			{ID: turtleBayID, Name: "Turtle Bay", IsActive: true},
			{ID: chelseaID, Name: "Chelsea", IsActive: true},
		},
		finished: map[string][]string{},
	}
}

func (m *memoryStore) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *memoryStore) ListBuildings(ctx context.Context) ([]models.Building, error) {
	return m.buildings, nil
}

func (m *memoryStore) GetBuilding(ctx context.Context, id string) (models.Building, error) {
	for _, b := range m.buildings {
		if b.ID == id {
			return b, nil
		}
	}
	return models.Building{}, ErrNotFound
}

func (m *memoryStore) ActiveResidents(ctx context.Context, buildingID, roomNumber string) ([]models.Resident, error) {
	var out []models.Resident
	for _, r := range m.residents {
		if r.IsActive && r.BuildingID == buildingID && r.RoomNumber == roomNumber {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryStore) RenameResident(ctx context.Context, id, fullName string, at time.Time) error {
	for i := range m.residents {
		if m.residents[i].ID == id {
			m.residents[i].FullName = fullName
			m.residents[i].UpdatedAt = at
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryStore) DeactivateResident(ctx context.Context, id string, moveOut time.Time) error {
	if m.failDeactivateFor != "" && id == m.failDeactivateFor {
		return errors.New("deactivate refused")
	}
	for i := range m.residents {
		if m.residents[i].ID == id {
			m.residents[i].IsActive = false
			m.residents[i].MoveOutDate = &moveOut
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryStore) InsertResident(ctx context.Context, resident models.Resident) (string, error) {
	if m.failInsertFor != "" && resident.FullName == m.failInsertFor {
		return "", errors.New("insert refused")
	}
	resident.ID = m.id("r")
	m.residents = append(m.residents, resident)
	return resident.ID, nil
}

func (m *memoryStore) CreateImportLog(ctx context.Context, entry models.ImportLog) (string, error) {
	entry.ID = m.id("log")
	m.logs = append(m.logs, entry)
	return entry.ID, nil
}

func (m *memoryStore) FinishImportLog(ctx context.Context, id string, successCount, errorCount int, details []string) error {
	for i := range m.logs {
		if m.logs[i].ID == id {
			m.logs[i].SuccessCount = successCount
			m.logs[i].ErrorCount = errorCount
			m.finished[id] = details
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryStore) active(buildingID, room string) []models.Resident {
	out, _ := m.ActiveResidents(context.Background(), buildingID, room)
	return out
}

func fixedNow() time.Time {
	return time.Date(2025, time.March, 14, 15, 30, 0, 0, time.UTC)
}

func importRows(t *testing.T, store *memoryStore, buildingID string, rows [][]string) Result {
	t.Helper()
	im := &Importer{Store: store, Now: fixedNow}
	return im.Import(context.Background(), ImportRequest{
		BuildingID: buildingID,
		ImportedBy: "admin-1",
		FileName:   "roster.xlsx",
		Parsed:     Parse(rows),
	})
}

func TestImportReplacesPreviousOccupant(t *testing.T) {
	store := newMemoryStore()
	store.residents = append(store.residents, models.Resident{
		ID: "r-old", FullName: "Jane Doe", RoomNumber: "0301", BuildingID: turtleBayID, IsActive: true,
	})

	res := importRows(t, store, turtleBayID, [][]string{
		{"", "525LEX-0301-1", "I [M] 525Lex - NYIT - Marshall, Alexander"},
	})
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Stats.NewResidents != 1 || res.Stats.UpdatedResidents != 0 || res.Stats.Errors != 0 {
		t.Fatalf("unexpected stats %+v", res.Stats)
	}
	active := store.active(turtleBayID, "0301")
	if len(active) != 1 || active[0].FullName != "Alexander Marshall" {
		t.Fatalf("expected only Alexander Marshall active, got %+v", active)
	}
	if active[0].MoveInDate == nil || !active[0].MoveInDate.Equal(time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected move-in date %v", active[0].MoveInDate)
	}
	old := store.residents[0]
	importDay := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
	if old.IsActive || old.MoveOutDate == nil || !old.MoveOutDate.Equal(importDay) {
		t.Fatalf("expected previous occupant moved out on %v, got %+v", importDay, old)
	}
	if res.Message != "Processed 1 residents: 1 new, 0 updated, 0 errors, 0 skipped" {
		t.Fatalf("unexpected message %q", res.Message)
	}
}

func TestImportAbortsRowWhenDeactivationFails(t *testing.T) {
	store := newMemoryStore()
	store.failDeactivateFor = "r-old"
	store.residents = append(store.residents, models.Resident{
		ID: "r-old", FullName: "Jane Doe", RoomNumber: "0301", BuildingID: turtleBayID, IsActive: true,
	})

	res := importRows(t, store, turtleBayID, [][]string{
		{"", "525LEX-0301-1", "I [M] 525Lex - NYIT - Marshall, Alexander"},
	})
	if !res.Success {
		t.Fatalf("row errors should not fail the import, got %+v", res)
	}
	if res.Stats.Errors != 1 || res.Stats.NewResidents != 0 {
		t.Fatalf("unexpected stats %+v", res.Stats)
	}
	if len(res.Errors) != 1 || !strings.HasPrefix(res.Errors[0], "Error processing Alexander Marshall:") {
		t.Fatalf("unexpected errors %v", res.Errors)
	}
	if len(store.residents) != 1 {
		t.Fatalf("no resident should be inserted, got %+v", store.residents)
	}
	active := store.active(turtleBayID, "0301")
	if len(active) != 1 || active[0].ID != "r-old" {
		t.Fatalf("expected previous occupant to stay the only active resident, got %+v", active)
	}
}

func TestImportUpdatesSimilarName(t *testing.T) {
	store := newMemoryStore()
	store.residents = append(store.residents, models.Resident{
		ID: "r-alex", FullName: "Alex Marshall", RoomNumber: "0301", BuildingID: turtleBayID, IsActive: true,
	})

	res := importRows(t, store, turtleBayID, [][]string{
		{"", "525LEX-0301-1", "I [M] 525Lex - NYIT - Marshall, Alexander"},
	})
	if res.Stats.UpdatedResidents != 1 || res.Stats.NewResidents != 0 {
		t.Fatalf("unexpected stats %+v", res.Stats)
	}
	if len(store.residents) != 1 || store.residents[0].FullName != "Alexander Marshall" || !store.residents[0].IsActive {
		t.Fatalf("expected rename in place, got %+v", store.residents)
	}
}

func TestImportIsIdempotent(t *testing.T) {
	store := newMemoryStore()
	rows := [][]string{
		{"", "525LEX-0301-1", "I [M] 525Lex - NYIT - Marshall, Alexander"},
		{"", "525LEX-0302-1", "I [F] 525Lex - NYU - Rivera, Camila"},
	}
	first := importRows(t, store, turtleBayID, rows)
	if first.Stats.NewResidents != 2 {
		t.Fatalf("expected 2 new residents, got %+v", first.Stats)
	}
	second := importRows(t, store, turtleBayID, rows)
	if second.Stats.NewResidents != 0 || second.Stats.UpdatedResidents != 2 {
		t.Fatalf("expected re-import to update only, got %+v", second.Stats)
	}
	if len(store.residents) != 2 {
		t.Fatalf("expected 2 resident rows, got %d", len(store.residents))
	}
}

func TestImportSkipsOtherBuildingsInSingleScope(t *testing.T) {
	store := newMemoryStore()
	res := importRows(t, store, turtleBayID, [][]string{
		{"", "525LEX-0301-1", "I [M] 525Lex - NYIT - Marshall, Alexander"},
		{"", "160W24-1204-2", "I [F] 160W24 - FIT - Rivera, Camila"},
		{"", "525LEX-0301-1", "O [M] 525Lex - NYIT - Doe, John"},
	})
	if res.Stats.NewResidents != 1 || res.Stats.SkippedRows != 2 {
		t.Fatalf("unexpected stats %+v", res.Stats)
	}
	if len(store.active(chelseaID, "1204")) != 0 {
		t.Fatalf("out-of-scope building should not be touched")
	}
	if store.logs[0].BuildingID == nil || *store.logs[0].BuildingID != turtleBayID {
		t.Fatalf("expected import log scoped to selected building")
	}
}

func TestImportAllBuildings(t *testing.T) {
	store := newMemoryStore()
	res := importRows(t, store, AllBuildings, [][]string{
		{"", "525LEX-0301-1", "I [M] 525Lex - NYIT - Marshall, Alexander"},
		{"", "160W24-1204-2", "I [F] 160W24 - FIT - Rivera, Camila"},
		{"", "186HALL-0101-1", "I [F] 186Hall - Pratt - Nguyen, Linh"},
	})
	if res.Stats.NewResidents != 2 || res.Stats.Errors != 1 {
		t.Fatalf("unexpected stats %+v", res.Stats)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "Linh Nguyen") {
		t.Fatalf("expected unknown building error for Linh Nguyen, got %v", res.Errors)
	}
	if store.logs[0].BuildingID != nil {
		t.Fatalf("expected all-buildings import log without building")
	}
}

func TestImportContinuesAfterRowError(t *testing.T) {
	store := newMemoryStore()
	store.failInsertFor = "Alexander Marshall"
	res := importRows(t, store, turtleBayID, [][]string{
		{"", "525LEX-0301-1", "I [M] 525Lex - NYIT - Marshall, Alexander"},
		{"", "525LEX-0302-1", "I [F] 525Lex - NYU - Rivera, Camila"},
	})
	if !res.Success {
		t.Fatalf("row errors should not fail the import")
	}
	if res.Stats.Errors != 1 || res.Stats.NewResidents != 1 {
		t.Fatalf("unexpected stats %+v", res.Stats)
	}
	if !strings.HasPrefix(res.Errors[0], "Error processing Alexander Marshall:") {
		t.Fatalf("unexpected error detail %q", res.Errors[0])
	}
	log := store.logs[0]
	if log.SuccessCount != 1 || log.ErrorCount != 1 || len(store.finished[log.ID]) != 1 {
		t.Fatalf("import log not finalized: %+v", log)
	}
}

func TestImportWithoutEntriesFails(t *testing.T) {
	store := newMemoryStore()
	res := importRows(t, store, turtleBayID, [][]string{{"header", "only"}})
	if res.Success || res.Stats != nil {
		t.Fatalf("expected failure without stats, got %+v", res)
	}
	if len(store.logs) != 0 {
		t.Fatalf("no import log should be written")
	}
}

func TestImportUnknownSelectedBuilding(t *testing.T) {
	store := newMemoryStore()
	res := importRows(t, store, "missing", [][]string{
		{"", "525LEX-0301-1", "I [M] 525Lex - NYIT - Marshall, Alexander"},
	})
	if res.Success || !strings.HasPrefix(res.Message, "Building not found") {
		t.Fatalf("unexpected result %+v", res)
	}
}
