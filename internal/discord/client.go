package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://discord.com/api/v10"
	memberLimit    = 1000
)

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrNotConfigured    = errors.New("discord is not configured")
	ErrUnauthorized     = errors.New("discord rejected the bot token")
)

// APIError is returned for non-2xx responses other than 401.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord api error: %d", e.StatusCode)
}

type Client struct {
	BaseURL  string
	BotToken string
	GuildID  string
	HTTP     *http.Client
}

type member struct {
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

func New(baseURL, botToken, guildID string) *Client {
	return &Client{
		BaseURL:  baseURL,
		BotToken: botToken,
		GuildID:  guildID,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
	}
}

// MemberExists reports whether a member with the given username belongs to
// the configured guild. Usernames compare case-insensitively. Only the first
// 1000 guild members are listed.
func (c *Client) MemberExists(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, ErrUsernameRequired
	}
	if strings.TrimSpace(c.BotToken) == "" {
		return false, fmt.Errorf("%w: missing bot token", ErrNotConfigured)
	}
	if strings.TrimSpace(c.GuildID) == "" {
		return false, fmt.Errorf("%w: missing guild id", ErrNotConfigured)
	}

	members, err := c.listMembers(ctx)
	if err != nil {
		return false, err
	}
	for _, m := range members {
		if strings.EqualFold(m.User.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) listMembers(ctx context.Context) ([]member, error) {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	query := url.Values{}
	query.Set("limit", fmt.Sprint(memberLimit))
	endpoint := base + "/guilds/" + url.PathEscape(c.GuildID) + "/members?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bot "+c.BotToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("discord request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var members []member
	if err := json.NewDecoder(resp.Body).Decode(&members); err != nil {
		return nil, fmt.Errorf("decode discord members: %w", err)
	}
	return members, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}
