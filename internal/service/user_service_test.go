package service

import (
	"context"
	"testing"

	"github.com/mrbata-dev/Product-Stock/internal/auth"
	"github.com/mrbata-dev/Product-Stock/internal/config"
	"github.com/mrbata-dev/Product-Stock/internal/datamodels/user"
	"github.com/mrbata-dev/Product-Stock/internal/repository/postgres"
)

var testJWT = &config.JWTConfig{Secret: "test-secret"}

func newUserService(t *testing.T) (*UserService, user.Repository) {
	t.Helper()
	db := newTestDB(t)
	repo := postgres.NewUserRepository(db)
	return NewUserService(repo, testJWT), repo
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		userName string
		email    string
		password string
		wantMsg  string
	}{
		{"missing fields", "", "a@b.com", "secret1", "All fields are required (name, email, password)"},
		{"short name", "A", "a@b.com", "secret1", "Name must be at least 2 characters long"},
		{"bad email", "Alice", "not-an-email", "secret1", "Please enter a valid email address"},
		{"short password", "Alice", "a@b.com", "abc", "Password must be at least 6 characters long"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tc.userName, tc.email, tc.password)
			status, msg := HTTPStatus(err)
			if status != 400 || msg != tc.wantMsg {
				t.Fatalf("got status=%d msg=%q, want 400 %q", status, msg, tc.wantMsg)
			}
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "Alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	// 邮箱大小写不同也算重复
	_, err := svc.Signup(ctx, "Alice Again", "ALICE@example.com", "secret123")
	status, msg := HTTPStatus(err)
	if status != 409 || msg != "User already exists with this email address" {
		t.Fatalf("got status=%d msg=%q", status, msg)
	}
}

func TestSignupHashesPasswordAndDefaultsRole(t *testing.T) {
	svc, repo := newUserService(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, "Bob", "Bob@Example.com", "secret123")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if u.Email != "bob@example.com" {
		t.Fatalf("email not lowercased: %q", u.Email)
	}
	if u.Password == "secret123" || u.Password == "" {
		t.Fatal("password must be stored hashed")
	}
	if u.Role != user.RoleUser {
		t.Fatalf("default role = %q", u.Role)
	}
	if _, err := repo.GetByEmail(ctx, "bob@example.com"); err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
}

func TestLoginFlow(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "Carol", "carol@example.com", "secret123"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	// 未知邮箱
	_, _, err := svc.Login(ctx, "nobody@example.com", "secret123")
	if status, _ := HTTPStatus(err); status != 401 {
		t.Fatalf("unknown email should be 401, got %d", status)
	}

	// 错误密码
	_, _, err = svc.Login(ctx, "carol@example.com", "wrongpass")
	status, msg := HTTPStatus(err)
	if status != 401 || msg != "Invalid password" {
		t.Fatalf("got status=%d msg=%q", status, msg)
	}

	// 正确凭据签发可解析的 JWT
	token, u, err := svc.Login(ctx, "carol@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := auth.ParseToken(testJWT, token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != u.ID || claims.Email != "carol@example.com" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestLoginRejectsDeactivated(t *testing.T) {
	svc, repo := newUserService(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, "Dave", "dave@example.com", "secret123")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	u.IsActive = false
	if err := repo.Update(ctx, u); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, _, err = svc.Login(ctx, "dave@example.com", "secret123")
	status, msg := HTTPStatus(err)
	if status != 401 || msg != "Your account has been deactivated. Please contact support" {
		t.Fatalf("got status=%d msg=%q", status, msg)
	}
}

func TestOAuthLoginUpsertsByEmail(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	// 第一次登录创建用户，无密码
	token, u, err := svc.OAuthLogin(ctx, "Eve@Example.com", "Eve")
	if err != nil {
		t.Fatalf("oauth login: %v", err)
	}
	if token == "" || u.Email != "eve@example.com" || u.Password != "" {
		t.Fatalf("unexpected oauth user: %+v", u)
	}

	// 第二次登录复用同一账号
	_, again, err := svc.OAuthLogin(ctx, "eve@example.com", "Eve")
	if err != nil {
		t.Fatalf("second oauth login: %v", err)
	}
	if again.ID != u.ID {
		t.Fatal("oauth login created a duplicate user")
	}

	// 密码登录对无密码账号直接拒绝
	_, _, err = svc.Login(ctx, "eve@example.com", "whatever123")
	status, msg := HTTPStatus(err)
	if status != 401 || msg != "User does not have a password set" {
		t.Fatalf("got status=%d msg=%q", status, msg)
	}
}

func TestListCustomers(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "Frank Miller", "frank@example.com", "secret123"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Signup(ctx, "Grace Kim", "grace@other.com", "secret123"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	list, err := svc.ListCustomers(ctx, "frank", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Email != "frank@example.com" {
		t.Fatalf("search result: %+v", list)
	}

	list, err = svc.ListCustomers(ctx, "", "USER")
	if err != nil {
		t.Fatalf("list by role: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 users, got %d", len(list))
	}

	_, err = svc.ListCustomers(ctx, "", "WIZARD")
	if status, _ := HTTPStatus(err); status != 400 {
		t.Fatalf("unknown role should be 400, got %d", status)
	}
}
