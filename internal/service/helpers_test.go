package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mrbata-dev/Product-Stock/internal/datamodels/user"
	"github.com/mrbata-dev/Product-Stock/internal/repository/postgres"
)

// newTestDB 每个测试一个内存库。内存库绑定单个连接，
// 连接池必须限制为 1，否则其他连接看不到已建的表。
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := postgres.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role user.Role) *user.User {
	t.Helper()
	u := &user.User{
		ID:       uuid.NewString(),
		Name:     "Test User",
		Email:    strings.ToLower(uuid.NewString()[:8]) + "@example.com",
		Password: "$2a$12$placeholderplaceholderplaceholderplacehole",
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// stubStore 对象存储替身，可配置为总是失败
type stubStore struct {
	fail    bool
	removed []string
}

func (s *stubStore) Remove(path string) error {
	if s.fail {
		return errors.New("storage unavailable")
	}
	s.removed = append(s.removed, path)
	return nil
}

func (s *stubStore) ObjectPath(url string) string {
	parts := strings.Split(strings.TrimRight(url, "/"), "/")
	if len(parts) == 0 {
		return url
	}
	return parts[len(parts)-1]
}

// newProductStack 组装一套完整的商品服务依赖
func newProductStack(t *testing.T, store ObjectStore) (*gorm.DB, *ProductService, *CategoryService, *NotificationService) {
	t.Helper()
	db := newTestDB(t)
	categorySvc := NewCategoryService(postgres.NewCategoryRepository(db))
	notificationSvc := NewNotificationService(postgres.NewNotificationRepository(db))
	productSvc := NewProductService(db,
		postgres.NewProductRepository(db),
		postgres.NewCategoryRepository(db),
		notificationSvc, store)
	return db, productSvc, categorySvc, notificationSvc
}

func validInput(sku string, stock int) *ProductInput {
	return &ProductInput{
		Title:       "Classic White Sneakers",
		Description: "Timeless low-top sneakers.",
		Price:       decimal.NewFromFloat(79.99),
		Stock:       stock,
		SKU:         sku,
		Brand:       "Stride",
		Gender:      "unisex",
		Images:      []string{"https://cdn.example.com/storage/v1/object/public/uploads/a.jpg"},
		Sizes:       []string{"41", "42"},
	}
}

func mustCreateProduct(t *testing.T, svc *ProductService, userID string, in *ProductInput) string {
	t.Helper()
	p, err := svc.Create(context.Background(), userID, in)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p.ID
}
