package service

import (
	"errors"
	"testing"
	"time"

	"uas_practice_backend/internal/config"
	"uas_practice_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
)

func authConfig(code, hash string) *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:     "0123456789abcdef0123456789abcdef",
			ExpireTime: time.Hour,
		},
		Admin: config.AdminConfig{
			AccessCode:     code,
			AccessCodeHash: hash,
		},
	}
}

func TestAdminLoginPlainCode(t *testing.T) {
	svc := NewAuthService(authConfig("letmein", ""))

	token, err := svc.AdminLogin("letmein")
	if err != nil {
		t.Fatalf("AdminLogin() error = %v", err)
	}
	claims, err := util.ParseJWT(token, svc.Config.JWT.Secret)
	if err != nil {
		t.Fatalf("ParseJWT() error = %v", err)
	}
	if claims.Role != util.RoleAdmin {
		t.Errorf("role = %q, want %q", claims.Role, util.RoleAdmin)
	}

	if _, err := svc.AdminLogin("guess"); !errors.Is(err, util.ErrInvalidAccessCode) {
		t.Errorf("wrong code error = %v, want %v", err, util.ErrInvalidAccessCode)
	}
}

func TestAdminLoginHashedCode(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	// the plain code is ignored once a hash is configured
	svc := NewAuthService(authConfig("letmein", string(hash)))

	if _, err := svc.AdminLogin("s3cret"); err != nil {
		t.Fatalf("AdminLogin() error = %v", err)
	}
	if _, err := svc.AdminLogin("letmein"); !errors.Is(err, util.ErrInvalidAccessCode) {
		t.Errorf("plain code accepted despite configured hash: %v", err)
	}
}

func TestAdminLoginNoCodeConfigured(t *testing.T) {
	svc := NewAuthService(authConfig("", ""))
	if _, err := svc.AdminLogin(""); !errors.Is(err, util.ErrInvalidAccessCode) {
		t.Errorf("empty config accepted a login: %v", err)
	}
}
