package verification

import (
	"net/mail"
	"sort"
	"strings"
	"unicode/utf8"
)

// Applicant is the data a resident submits to get whitelisted.
type Applicant struct {
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Building          string `json:"building"`
	RoomNumber        string `json:"roomNumber"`
	Email             string `json:"email"`
	DiscordUsername   string `json:"discordUsername"`
	MinecraftUsername string `json:"minecraftUsername"`
}

// ValidationError carries one message per invalid field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, " ")
}

// Normalize trims every field and lowercases the email.
func (a Applicant) Normalize() Applicant {
	return Applicant{
		FirstName:         strings.TrimSpace(a.FirstName),
		LastName:          strings.TrimSpace(a.LastName),
		Building:          strings.TrimSpace(a.Building),
		RoomNumber:        strings.TrimSpace(a.RoomNumber),
		Email:             strings.ToLower(strings.TrimSpace(a.Email)),
		DiscordUsername:   strings.TrimSpace(a.DiscordUsername),
		MinecraftUsername: strings.TrimSpace(a.MinecraftUsername),
	}
}

func (a Applicant) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Validate returns a *ValidationError when any field is invalid.
func (a Applicant) Validate() error {
	fields := map[string]string{}
	if utf8.RuneCountInString(a.FirstName) < 2 {
		fields["firstName"] = "First name must be at least 2 characters."
	}
	if utf8.RuneCountInString(a.LastName) < 2 {
		fields["lastName"] = "Last name must be at least 2 characters."
	}
	if a.Building == "" {
		fields["building"] = "Please select your FOUND building."
	}
	if a.RoomNumber == "" {
		fields["roomNumber"] = "Room number is required."
	}
	if utf8.RuneCountInString(a.DiscordUsername) < 2 {
		fields["discordUsername"] = "Discord username is required."
	}
	if utf8.RuneCountInString(a.MinecraftUsername) < 3 {
		fields["minecraftUsername"] = "Minecraft username must be at least 3 characters."
	}
	if !validEmail(a.Email) {
		fields["email"] = "Please enter a valid email address."
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validEmail(value string) bool {
	if value == "" {
		return false
	}
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return false
	}
	return addr.Address == value && strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@"):], ".")
}
