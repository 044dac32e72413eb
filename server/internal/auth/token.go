package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	kindAccess    = "access"
	kindReconnect = "reconnect"
)

var ErrWrongTokenKind = errors.New("wrong token kind")

// Manager signs and verifies the tokens that stand in for the external
// authentication service: a short-lived access token identifying the host,
// and a reconnect token that serves as the rejoin credential.
type Manager struct {
	secret []byte
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

type Claims struct {
	Username string `json:"username,omitempty"`
	Kind     string `json:"kind"`
	jwt.RegisteredClaims
}

func (m *Manager) GenerateAccessToken(playerID, username string, ttl time.Duration) (string, error) {
	return m.sign(Claims{
		Username: username,
		Kind:     kindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
}

func (m *Manager) GenerateReconnectToken(playerID string, ttl time.Duration) (string, error) {
	return m.sign(Claims{
		Kind: kindReconnect,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
}

// ParseAccessToken verifies an access token and returns the player id and
// username it carries.
func (m *Manager) ParseAccessToken(token string) (string, string, error) {
	claims, err := m.parse(token, kindAccess)
	if err != nil {
		return "", "", err
	}
	return claims.Subject, claims.Username, nil
}

// ParseReconnectToken verifies a reconnect token and returns the player id.
func (m *Manager) ParseReconnectToken(token string) (string, error) {
	claims, err := m.parse(token, kindReconnect)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (m *Manager) parse(token, kind string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Kind != kind {
		return nil, ErrWrongTokenKind
	}
	return claims, nil
}

func (m *Manager) sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}
