package auth

import (
	"testing"

	"github.com/mrbata-dev/Product-Stock/internal/config"
	"github.com/mrbata-dev/Product-Stock/internal/datamodels/user"
)

func TestTokenRoundTrip(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "test-secret"}
	u := &user.User{
		ID:    "u-1",
		Email: "alice@example.com",
		Role:  user.RoleAdmin,
	}

	token, err := GenerateToken(cfg, u)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "u-1" || claims.Email != "alice@example.com" || claims.Role != user.RoleAdmin {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(&config.JWTConfig{Secret: "secret-a"}, &user.User{ID: "u-1"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken(&config.JWTConfig{Secret: "secret-b"}, token); err == nil {
		t.Fatal("expected parse to fail with wrong secret")
	}
}
