package service

import (
	"errors"
	"testing"
	"time"

	"github.com/summitprep/satprep-backend/internal/config"
)

func testAuthService() *AuthService {
	return NewAuthService(&config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4, // MinCost keeps the test fast
	}, nil)
}

func TestPasswordHashing(t *testing.T) {
	svc := testAuthService()

	hash, err := svc.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("password stored in plaintext")
	}

	if err := svc.CheckPassword(hash, "hunter22"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := svc.CheckPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
}

func TestStudentTokenRoundTrip(t *testing.T) {
	svc := testAuthService()

	token, err := svc.GenerateStudentToken(42, "kid@example.com")
	if err != nil {
		t.Fatalf("GenerateStudentToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.TokenType != TokenTypeStudent {
		t.Errorf("token type = %q, want student", claims.TokenType)
	}
	if claims.UserID != 42 || claims.Email != "kid@example.com" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestAdminTokenRoundTrip(t *testing.T) {
	svc := testAuthService()

	perms := []string{"students:read", "coupons:write"}
	token, err := svc.GenerateAdminToken(7, 1, perms)
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.TokenType != TokenTypeAdmin {
		t.Errorf("token type = %q, want admin", claims.TokenType)
	}
	if claims.UserID != 7 || claims.RoleID != 1 {
		t.Errorf("claims = %+v", claims)
	}
	if len(claims.Permissions) != 2 {
		t.Errorf("permissions = %v, want %v", claims.Permissions, perms)
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc := testAuthService()

	token, err := svc.GenerateStudentToken(1, "a@b.com")
	if err != nil {
		t.Fatalf("GenerateStudentToken: %v", err)
	}

	other := NewAuthService(&config.Config{
		JWTSecret:  "different-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}, nil)

	if _, err := other.ValidateToken(token); err == nil {
		t.Error("token signed with another secret accepted")
	}
	if _, err := svc.ValidateToken(token + "x"); err == nil {
		t.Error("tampered token accepted")
	}
}
