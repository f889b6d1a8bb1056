package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func membersJSON(names ...string) string {
	parts := make([]string, 0, len(names))
	for i, name := range names {
		parts = append(parts, fmt.Sprintf(`{"user":{"id":"%d","username":%q}}`, i+1, name))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestMemberExists(t *testing.T) {
	var gotAuth, gotPath, gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(membersJSON("Steve", "alex_mc")))
	}))
	defer srv.Close()

	client := &Client{BaseURL: srv.URL, BotToken: "tok", GuildID: "guild-1", HTTP: srv.Client()}
	exists, err := client.MemberExists(context.Background(), "ALEX_MC")
	if err != nil {
		t.Fatalf("member exists: %v", err)
	}
	if !exists {
		t.Fatalf("expected case-insensitive match")
	}
	if gotAuth != "Bot tok" {
		t.Fatalf("unexpected authorization header %q", gotAuth)
	}
	if gotPath != "/guilds/guild-1/members" || gotLimit != "1000" {
		t.Fatalf("unexpected request %s limit=%s", gotPath, gotLimit)
	}

	exists, err = client.MemberExists(context.Background(), "herobrine")
	if err != nil || exists {
		t.Fatalf("expected not found without error, got %v %v", exists, err)
	}
}

func TestMemberExistsChecksFirstThousandOnly(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("after") != "" {
			_, _ = w.Write([]byte(membersJSON("member1001")))
			return
		}
		names := make([]string, memberLimit)
		for i := range names {
			names[i] = fmt.Sprintf("member%d", i+1)
		}
		_, _ = w.Write([]byte(membersJSON(names...)))
	}))
	defer srv.Close()

	client := &Client{BaseURL: srv.URL, BotToken: "tok", GuildID: "g", HTTP: srv.Client()}
	exists, err := client.MemberExists(context.Background(), "member1001")
	if err != nil {
		t.Fatalf("member exists: %v", err)
	}
	if exists {
		t.Fatalf("member beyond the first 1000 should not be found")
	}
	if calls != 1 {
		t.Fatalf("expected a single request, got %d", calls)
	}
}

func TestMemberExistsErrors(t *testing.T) {
	unauthorized := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer unauthorized.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer broken.Close()

	ctx := context.Background()

	if _, err := (&Client{BotToken: "t", GuildID: "g"}).MemberExists(ctx, "  "); !errors.Is(err, ErrUsernameRequired) {
		t.Fatalf("expected ErrUsernameRequired, got %v", err)
	}
	if _, err := (&Client{GuildID: "g"}).MemberExists(ctx, "steve"); !errors.Is(err, ErrNotConfigured) || !strings.Contains(err.Error(), "bot token") {
		t.Fatalf("expected missing token error, got %v", err)
	}
	if _, err := (&Client{BotToken: "t"}).MemberExists(ctx, "steve"); !errors.Is(err, ErrNotConfigured) || !strings.Contains(err.Error(), "guild id") {
		t.Fatalf("expected missing guild error, got %v", err)
	}

	client := &Client{BaseURL: unauthorized.URL, BotToken: "bad", GuildID: "g", HTTP: unauthorized.Client()}
	if _, err := client.MemberExists(ctx, "steve"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	client = &Client{BaseURL: broken.URL, BotToken: "t", GuildID: "g", HTTP: broken.Client()}
	_, err := client.MemberExists(ctx, "steve")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway || apiErr.Body != "upstream down" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}
