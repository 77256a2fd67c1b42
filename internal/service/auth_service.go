package service

import (
	"crypto/subtle"

	"uas_practice_backend/internal/config"
	"uas_practice_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
)

// AuthService issues admin tokens. There are no learner accounts: learners
// practice anonymously, only the catalog admin authenticates, with a single
// shared access code.
type AuthService struct {
	Config *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{Config: cfg}
}

func (s *AuthService) AdminLogin(accessCode string) (string, error) {
	if !s.verifyAccessCode(accessCode) {
		return "", util.ErrInvalidAccessCode
	}
	return util.GenerateAdminJWT(s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
}

func (s *AuthService) verifyAccessCode(code string) bool {
	if hash := s.Config.Admin.AccessCodeHash; hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
	}
	plain := s.Config.Admin.AccessCode
	if plain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(plain), []byte(code)) == 1
}
