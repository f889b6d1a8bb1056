package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"foundgames-backend-go/internal/discord"
	"foundgames-backend-go/internal/models"

	"github.com/gorilla/websocket"
)

func TestDiscordError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{discord.ErrUsernameRequired, http.StatusBadRequest, "Username is required"},
		{fmt.Errorf("%w: missing bot token", discord.ErrNotConfigured), http.StatusServiceUnavailable, "Discord verification is not properly configured"},
		{fmt.Errorf("%w: missing guild id", discord.ErrNotConfigured), http.StatusServiceUnavailable, "Discord server ID is not properly configured"},
		{discord.ErrUnauthorized, http.StatusBadGateway, "Discord authentication failed. Please contact an administrator."},
		{&discord.APIError{StatusCode: 429}, http.StatusBadGateway, "Discord API error: 429"},
		{errors.New("dial tcp: timeout"), http.StatusBadGateway, "Failed to check Discord username"},
	}
	for _, tc := range cases {
		svcErr, ok := AsServiceError(DiscordError(tc.err))
		if !ok {
			t.Fatalf("expected ServiceError for %v", tc.err)
		}
		if svcErr.Status != tc.status || svcErr.Message != tc.msg {
			t.Fatalf("%v: got %d %q", tc.err, svcErr.Status, svcErr.Message)
		}
	}
	if DiscordError(nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}

type stubChecker struct {
	exists bool
	err    error
}

func (s stubChecker) MemberExists(ctx context.Context, username string) (bool, error) {
	return s.exists, s.err
}

func TestCheckDiscord(t *testing.T) {
	svc := &VerificationService{Discord: stubChecker{exists: true}}
	ok, err := svc.CheckDiscord(context.Background(), "steve")
	if err != nil || !ok {
		t.Fatalf("expected member found, got %v %v", ok, err)
	}

	svc = &VerificationService{}
	if _, err := svc.CheckDiscord(context.Background(), "steve"); err == nil {
		t.Fatalf("expected config error without a client")
	}

	svc = &VerificationService{Discord: stubChecker{err: discord.ErrUnauthorized}}
	_, err = svc.CheckDiscord(context.Background(), "steve")
	if svcErr, ok := AsServiceError(err); !ok || svcErr.Status != http.StatusBadGateway {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestWriteResidentsCSV(t *testing.T) {
	moveIn := time.Date(2024, time.August, 20, 0, 0, 0, 0, time.UTC)
	rows := []ResidentRow{
		{Resident: models.Resident{FullName: "Marshall, Alexander Jr", RoomNumber: "0301", IsActive: true, MoveInDate: &moveIn}, BuildingName: "Turtle Bay"},
		{Resident: models.Resident{FullName: "Jane Doe", RoomNumber: "1204", IsActive: false}, BuildingName: "Chelsea"},
	}
	var buf bytes.Buffer
	if err := WriteResidentsCSV(&buf, rows); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	want := "Name,Building,Room,Status,Move In Date,Move Out Date\n" +
		"\"Marshall, Alexander Jr\",Turtle Bay,0301,Active,2024-08-20,\n" +
		"Jane Doe,Chelsea,1204,Inactive,,\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}
	if got := ExportFilename(time.Date(2025, time.March, 1, 23, 0, 0, 0, time.UTC)); got != "residents-2025-03-01.csv" {
		t.Fatalf("unexpected filename %q", got)
	}
}

func TestResidentFromInput(t *testing.T) {
	in := ResidentInput{FullName: " Jane Doe ", RoomNumber: "12", BuildingID: "b1"}
	r, err := residentFromInput(in)
	if err != nil || r.FullName != "Jane Doe" || !r.IsActive {
		t.Fatalf("unexpected resident %+v %v", r, err)
	}
	bad := "03/01/2025"
	in.MoveInDate = &bad
	if _, err := residentFromInput(in); err == nil {
		t.Fatalf("expected date validation error")
	}
	if _, err := residentFromInput(ResidentInput{FullName: "x"}); err == nil {
		t.Fatalf("expected required field error")
	}
}

func TestEventHubBroadcast(t *testing.T) {
	hub := NewEventHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	registered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Add(conn)
		close(registered)
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()
	<-registered

	hub.Publish(EventImportFinished, map[string]int{"new": 3})
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	if err := client.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != EventImportFinished || hub.Clients() != 1 {
		t.Fatalf("unexpected event %+v clients=%d", ev, hub.Clients())
	}
}
