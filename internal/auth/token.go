package auth

import (
	"fmt"
	"time"

	"github.com/avelichko/ridepool/internal/apperrors"
	"github.com/avelichko/ridepool/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Manager issues and verifies the HS256 bearer tokens the HTTP layer
// exchanges for a Principal.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

func (m *Manager) Issue(user *domain.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(m.ttl).Unix(),
	})
	return token.SignedString(m.secret)
}

func (m *Manager) Parse(tokenString string) (domain.Principal, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return domain.Principal{}, apperrors.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Principal{}, apperrors.ErrUnauthorized
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return domain.Principal{}, apperrors.ErrUnauthorized
	}
	role, _ := claims["role"].(string)

	return domain.Principal{UserID: sub, Role: role}, nil
}
