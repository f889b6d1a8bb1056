package httpapi

import (
	"net/http"
)

var serverRules = []string{
	"Be respectful to all players",
	"No griefing or stealing from other players",
	"No excessive profanity or inappropriate content",
	"No hacking, cheating, or using exploits",
	"Report any issues to the server admins on Discord",
}

type ServerInfoResponse struct {
	Name       string   `json:"name"`
	Edition    string   `json:"edition"`
	Version    string   `json:"version"`
	Address    string   `json:"address"`
	DiscordURL string   `json:"discordInviteUrl,omitempty"`
	Rules      []string `json:"rules"`
}

func (s *Server) ServerInfo(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, ServerInfoResponse{
		Name:       "FOUND Games",
		Edition:    "Java Edition",
		Version:    s.Config.MinecraftServerVersion,
		Address:    s.Config.MinecraftServerAddress,
		DiscordURL: s.Config.DiscordInviteURL,
		Rules:      serverRules,
	})
}
