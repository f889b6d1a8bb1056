package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"`
}

// AccessClaims is what an access token asserts about its holder. The role is
// a hint for clients; admin routes reload the profile before trusting it.
type AccessClaims struct {
	ProfileID string
	Email     string
	Role      string
}

type TokenService struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (t TokenService) Issue(profileID, email, role string) (TokenPair, error) {
	access, exp, err := t.CreateAccessToken(profileID, email, role)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := t.CreateRefreshToken(profileID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

func (t TokenService) CreateAccessToken(profileID, email, role string) (string, int64, error) {
	now := time.Now().UTC()
	exp := now.Add(t.AccessTTL)
	claims := jwt.MapClaims{
		"iss":   t.Issuer,
		"sub":   profileID,
		"typ":   tokenTypeAccess,
		"email": email,
		"role":  role,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
	return signed, exp.Unix(), err
}

func (t TokenService) CreateRefreshToken(profileID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"iss": t.Issuer,
		"sub": profileID,
		"typ": tokenTypeRefresh,
		"iat": now.Unix(),
		"exp": now.Add(t.RefreshTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
}

func (t TokenService) ParseToken(tokenStr string) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.Secret, nil
	}, jwt.WithIssuer(t.Issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return token, claims, err
}

var errWrongTokenType = errors.New("wrong token type")

// ParseAccess validates an access token and returns its claims.
func (t TokenService) ParseAccess(tokenStr string) (AccessClaims, error) {
	token, claims, err := t.ParseToken(tokenStr)
	if err != nil {
		return AccessClaims{}, err
	}
	if !token.Valid || claims["typ"] != tokenTypeAccess {
		return AccessClaims{}, errWrongTokenType
	}
	out := AccessClaims{}
	out.ProfileID, _ = claims["sub"].(string)
	out.Email, _ = claims["email"].(string)
	out.Role, _ = claims["role"].(string)
	if out.ProfileID == "" {
		return AccessClaims{}, errors.New("token has no subject")
	}
	return out, nil
}

// ParseRefresh validates a refresh token and returns the profile id.
func (t TokenService) ParseRefresh(tokenStr string) (string, error) {
	token, claims, err := t.ParseToken(tokenStr)
	if err != nil {
		return "", err
	}
	if !token.Valid || claims["typ"] != tokenTypeRefresh {
		return "", errWrongTokenType
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}
