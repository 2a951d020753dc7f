package auth

import (
	"context"
	"fmt"
)

// Service validates bearer tokens. Issuing tokens belongs to the login flow,
// which lives outside this service.
type Service struct {
	jwt *JWTManager
}

func NewService(jwtManager *JWTManager) *Service {
	return &Service{jwt: jwtManager}
}

func (s *Service) ValidateAccessToken(_ context.Context, accessToken string) (AccessClaims, error) {
	if s == nil || s.jwt == nil {
		return AccessClaims{}, fmt.Errorf("auth service is not configured")
	}
	return s.jwt.ParseAccessToken(accessToken)
}
