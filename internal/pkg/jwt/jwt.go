package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Service verifies bearer tokens issued by the external auth system. This
// service never issues tokens; it shares the HS256 secret with the issuer
// and reads the user_id, company_id, and role claims.
type Service struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewService(secretKey string) *Service {
	return &Service{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (s *Service) JWTAuth() *jwtauth.JWTAuth {
	return s.tokenAuth
}
