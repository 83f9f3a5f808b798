package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/parcelwatch/parcel-tracker/internal/core/domain"
)

// AuthService exchanges the single operator password for a signed API token.
// There is no user registry: the tracker is a single-operator service and
// the credential lives in configuration as a bcrypt hash.
type AuthService struct {
	passwordHash string
	jwtSecret    string
	tokenTTL     time.Duration
}

func NewAuthService(passwordHash, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{passwordHash: passwordHash, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// IssueToken verifies the password against the configured hash and returns
// a signed JWT with the operator role.
func (s *AuthService) IssueToken(_ context.Context, password string) (string, error) {
	if password == "" || s.passwordHash == "" {
		return "", domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)) != nil {
		return "", domain.ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"role": "operator",
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
