package auth

import (
	"fmt"
	"time"

	"card-sorting-go/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Claims bind a client to one dealt game. A restart issues a new session id,
// which makes older tokens stale.
type Claims struct {
	SessionID  string `json:"sid"`
	PlayerName string `json:"name"`
	jwt.RegisteredClaims
}

func GenerateSessionToken(sessionID, playerName string, cfg config.Config) (string, error) {
	if cfg.SessionSecret == "" {
		return "", fmt.Errorf("SESSION_SECRET is required")
	}
	if sessionID == "" {
		return "", fmt.Errorf("session id is required")
	}
	now := time.Now().UTC()
	claims := Claims{
		SessionID:  sessionID,
		PlayerName: playerName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.SessionIssuer,
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.SessionTTL)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(cfg.SessionSecret))
}

func ParseSessionToken(tokenString string, cfg config.Config) (*Claims, error) {
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.SessionSecret), nil
	},
		jwt.WithIssuer(cfg.SessionIssuer),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || claims.SessionID == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
