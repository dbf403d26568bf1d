package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mrbata-dev/Product-Stock/internal/auth"
	"github.com/mrbata-dev/Product-Stock/internal/config"
	"github.com/mrbata-dev/Product-Stock/internal/datamodels/user"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// bcrypt 成本与原实现保持一致
const bcryptCost = 12

// UserService 注册 / 登录 / 客户列表
type UserService struct {
	repo user.Repository
	jwt  *config.JWTConfig
}

// NewUserService 创建用户服务
func NewUserService(repo user.Repository, jwt *config.JWTConfig) *UserService {
	return &UserService{repo: repo, jwt: jwt}
}

// Signup 注册新用户，校验全部通过后才落库
func (s *UserService) Signup(ctx context.Context, name, email, password string) (*user.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, ErrValidation("All fields are required (name, email, password)")
	}
	if len(strings.TrimSpace(name)) < 2 {
		return nil, ErrValidation("Name must be at least 2 characters long")
	}
	if !emailRegex.MatchString(email) {
		return nil, ErrValidation("Please enter a valid email address")
	}
	if len(password) < 6 {
		return nil, ErrValidation("Password must be at least 6 characters long")
	}

	email = strings.ToLower(email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrConflict("User already exists with this email address")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: string(hash),
		Role:     user.RoleUser,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login 凭据登录，成功返回 JWT 与用户
func (s *UserService) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	if email == "" || password == "" {
		return "", nil, ErrValidation("Email and password are required")
	}
	if !emailRegex.MatchString(email) {
		return "", nil, ErrValidation("Invalid email format")
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, ErrUnauthorized("No user found with this email address")
	}
	if err != nil {
		return "", nil, err
	}
	if !u.IsActive {
		return "", nil, ErrUnauthorized("Your account has been deactivated. Please contact support")
	}
	if u.Password == "" {
		return "", nil, ErrUnauthorized("User does not have a password set")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return "", nil, ErrUnauthorized("Invalid password")
	}

	token, err := auth.GenerateToken(s.jwt, u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// OAuthLogin 第三方登录：按邮箱查找或创建用户，再签发同样的 JWT
func (s *UserService) OAuthLogin(ctx context.Context, email, name string) (string, *user.User, error) {
	email = strings.ToLower(email)
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		u = &user.User{
			ID:       uuid.NewString(),
			Name:     name,
			Email:    email,
			Role:     user.RoleUser,
			IsActive: true,
		}
		if err := s.repo.Create(ctx, u); err != nil {
			return "", nil, err
		}
	} else if err != nil {
		return "", nil, err
	}
	if !u.IsActive {
		return "", nil, ErrUnauthorized("Your account has been deactivated. Please contact support")
	}

	token, err := auth.GenerateToken(s.jwt, u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// ListCustomers 客户列表，支持搜索与角色过滤；未知角色值直接拒绝
func (s *UserService) ListCustomers(ctx context.Context, search, role string) ([]user.Summary, error) {
	var r user.Role
	if role != "" && role != "all" {
		if !user.ValidRole(role) {
			return nil, ErrValidation("Unknown role: " + role)
		}
		r = user.Role(role)
	}
	return s.repo.Search(ctx, search, r)
}
