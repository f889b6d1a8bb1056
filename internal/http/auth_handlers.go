package httpapi

import (
	"net/http"
	"strings"

	"foundgames-backend-go/internal/models"
	"foundgames-backend-go/internal/services"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type TokenResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresAt    int64       `json:"expiresAt"`
	Profile      *ProfileDTO `json:"profile"`
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	profile, err := s.Profiles.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeTokens(w, r, profile)
}

func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Authentication failed")
		return
	}
	profileID, err := s.Tokens.ParseRefresh(req.RefreshToken)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	profile, err := s.Profiles.GetProfile(r.Context(), profileID)
	if err != nil {
		if _, ok := services.AsServiceError(err); ok {
			WriteError(w, http.StatusUnauthorized, "Authentication failed")
			return
		}
		s.writeServiceError(w, r, err)
		return
	}
	s.writeTokens(w, r, profile)
}

// AdminSetup bootstraps an admin profile with the configured setup key.
func (s *Server) AdminSetup(w http.ResponseWriter, r *http.Request) {
	var req services.AdminSetupInput
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" || strings.TrimSpace(req.SetupKey) == "" {
		WriteError(w, http.StatusBadRequest, "Email, password and setup key are required")
		return
	}
	profile, err := s.Profiles.SetupAdmin(r.Context(), s.Config.AdminSetupKey, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	dto := profileDTO(profile)
	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Admin user created successfully",
		"profile": dto,
	})
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := s.Profiles.GetProfile(r.Context(), CurrentProfileID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, profileDTO(profile))
}

func (s *Server) writeTokens(w http.ResponseWriter, r *http.Request, profile models.Profile) {
	pair, err := s.Tokens.Issue(profile.ID, profile.Email, profile.Role)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	dto := profileDTO(profile)
	WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
		Profile:      &dto,
	})
}
