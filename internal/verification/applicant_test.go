package verification

import (
	"errors"
	"testing"
)

func TestApplicantValidate(t *testing.T) {
	if err := sampleApplicant().Validate(); err != nil {
		t.Fatalf("expected valid applicant, got %v", err)
	}

	bad := Applicant{
		FirstName:         "A",
		LastName:          "B",
		RoomNumber:        "",
		Email:             "not-an-email",
		DiscordUsername:   "x",
		MinecraftUsername: "ab",
	}
	err := bad.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"firstName", "lastName", "building", "roomNumber", "email", "discordUsername", "minecraftUsername"} {
		if verr.Fields[field] == "" {
			t.Fatalf("expected error for %s", field)
		}
	}
}

func TestApplicantNormalize(t *testing.T) {
	a := Applicant{FirstName: "  Alex ", LastName: " Marshall", Email: " Alex@Example.COM "}.Normalize()
	if a.FullName() != "Alex Marshall" || a.Email != "alex@example.com" {
		t.Fatalf("unexpected normalization %+v", a)
	}
}

func TestValidEmail(t *testing.T) {
	for _, ok := range []string{"a@b.co", "first.last@found.study"} {
		if !validEmail(ok) {
			t.Fatalf("expected %q valid", ok)
		}
	}
	for _, bad := range []string{"", "a@b", "Alex <a@b.co>", "@b.co"} {
		if validEmail(bad) {
			t.Fatalf("expected %q invalid", bad)
		}
	}
}
