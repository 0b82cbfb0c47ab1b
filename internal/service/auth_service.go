package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"insightapi/internal/model"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService validates service-to-service JWTs for the stats endpoints.
// When no signing key is configured the service runs with auth disabled.
type AuthService struct {
	signingKey []byte
}

// NewAuthService creates a new auth service. An empty key disables auth.
func NewAuthService(signingKey string) *AuthService {
	return &AuthService{signingKey: []byte(signingKey)}
}

// Enabled reports whether token validation is active
func (s *AuthService) Enabled() bool {
	return len(s.signingKey) > 0
}

// IssueServiceToken creates a token for a calling service
func (s *AuthService) IssueServiceToken(serviceName string, ttl time.Duration) (string, error) {
	claims := &model.ServiceClaims{
		ServiceName: serviceName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}

// ValidateServiceToken validates a service JWT and returns its claims
func (s *AuthService) ValidateServiceToken(tokenString string) (*model.ServiceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.ServiceClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.ServiceClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
