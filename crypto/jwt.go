package crypto

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/NikhilRaikwar/DrawParty/domain"
)

// sessionClaims scope a token to one (player, room) pair. Fields must be
// exported for JSON serialization.
type sessionClaims struct {
	PlayerID string `json:"playerId"`
	RoomID   string `json:"roomId"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secretKey []byte
	now       func() time.Time
}

func NewJWTManager(secretKey string) *JWTManager {
	return &JWTManager{secretKey: []byte(secretKey), now: time.Now}
}

func (m *JWTManager) Generate(playerID, roomID string, ttl time.Duration) (string, error) {
	claims := sessionClaims{
		PlayerID: playerID,
		RoomID:   roomID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(m.now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(m.now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Verify returns the (playerID, roomID) the token was issued for.
func (m *JWTManager) Verify(tokenString string) (string, string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidSession
		}
		return m.secretKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return m.now() }))

	if err != nil {
		return "", "", domain.ErrInvalidSession
	}

	if claims, ok := token.Claims.(*sessionClaims); ok && token.Valid {
		return claims.PlayerID, claims.RoomID, nil
	}

	return "", "", domain.ErrInvalidSession
}
