package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestAuth(t *testing.T) (*testEnv, *AuthService) {
	env := newTestEnv(t)
	return env, NewAuthService(env.userRepo, "test-secret", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	_, auth := newTestAuth(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "ada@example.com", "hunter22", "Ada")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.PasswordHash == "hunter22" {
		t.Fatal("password stored in plain text")
	}

	token, logged, err := auth.Login(ctx, "ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logged.ID != user.ID {
		t.Errorf("logged in as %s, want %s", logged.ID, user.ID)
	}

	userID, err := auth.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if userID != user.ID {
		t.Errorf("token carries %s, want %s", userID, user.ID)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	_, auth := newTestAuth(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "ada@example.com", "hunter22", "Ada"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := auth.Register(ctx, "ada@example.com", "other-pass", "Imposter"); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate register = %v, want ErrConflict", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	_, auth := newTestAuth(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "not-an-email", "hunter22", "Ada"); err == nil {
		t.Error("invalid email accepted")
	}
	if _, err := auth.Register(ctx, "ada@example.com", "short", "Ada"); err == nil {
		t.Error("short password accepted")
	}
	if _, err := auth.Register(ctx, "ada@example.com", "hunter22", ""); err == nil {
		t.Error("empty name accepted")
	}
}

func TestLoginFailures(t *testing.T) {
	_, auth := newTestAuth(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "ada@example.com", "hunter22", "Ada"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := auth.Login(ctx, "ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := auth.Login(ctx, "nobody@example.com", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email = %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	_, auth := newTestAuth(t)
	if _, err := auth.VerifyToken("not.a.token"); err == nil {
		t.Error("garbage token accepted")
	}
}
