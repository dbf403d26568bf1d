package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrbata-dev/Product-Stock/internal/datamodels/category"
	"github.com/mrbata-dev/Product-Stock/internal/datamodels/notification"
	"github.com/mrbata-dev/Product-Stock/internal/datamodels/product"
)

// ObjectStore 对象存储抽象，商品删除时清理图片用
type ObjectStore interface {
	Remove(path string) error
	ObjectPath(url string) string
}

// ProductInput 商品创建/更新入参
type ProductInput struct {
	Title               string          `json:"title"`
	Description         string          `json:"description"`
	Price               decimal.Decimal `json:"price"`
	DiscountPercentage  decimal.Decimal `json:"discountPercentage"`
	Stock               int             `json:"stock"`
	SKU                 string          `json:"sku"`
	Brand               string          `json:"brand"`
	Gender              string          `json:"gender"`
	WarrantyInformation string          `json:"warrantyInformation"`
	ReturnPolicy        string          `json:"returnPolicy"`
	ShippingInformation string          `json:"shippingInformation"`
	Images              []string        `json:"images"`
	Sizes               []string        `json:"sizes"`
	CategoryIDs         []string        `json:"categoryIds"`
}

// ListResult 商品分页结果
type ListResult struct {
	Products    []*product.Product `json:"products"`
	TotalCount  int64              `json:"totalCount"`
	CurrentPage int                `json:"currentPage"`
	TotalPages  int                `json:"totalPages"`
	HasNextPage bool               `json:"hasNextPage"`
	HasPrevPage bool               `json:"hasPrevPage"`
}

// DeleteResult 删除结果。数据库删除是原子的，
// 对象存储清理是尽力而为，失败只记入 Warnings。
type DeleteResult struct {
	Warnings []string `json:"warnings,omitempty"`
}

const maxImagesPerProduct = 5

var slugSpaceRe = regexp.MustCompile(`\s+`)

// ProductService 商品管理。写入直接走事务，读取走仓储。
type ProductService struct {
	db            *gorm.DB
	products      product.Repository
	categories    category.Repository
	notifications *NotificationService
	store         ObjectStore
}

// NewProductService 创建商品服务
func NewProductService(db *gorm.DB, products product.Repository, categories category.Repository,
	notifications *NotificationService, store ObjectStore) *ProductService {
	return &ProductService{
		db:            db,
		products:      products,
		categories:    categories,
		notifications: notifications,
		store:         store,
	}
}

// Create 创建商品。title/sku/images 必填，图片最多 5 张，
// slug 与 meta 字段由 sku/title 派生，全部写入在同一事务内完成。
func (s *ProductService) Create(ctx context.Context, userID string, in *ProductInput) (*product.Product, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.SKU) == "" || len(in.Images) == 0 {
		return nil, ErrValidation("Missing required fields: title, sku, images.")
	}
	if err := validateProductFields(in); err != nil {
		return nil, err
	}

	cats, err := s.resolveCategories(ctx, in.CategoryIDs)
	if err != nil {
		return nil, err
	}

	p := &product.Product{
		ID:     uuid.NewString(),
		UserID: userID,
	}
	applyInput(p, in, cats)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(p).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrConflict("A product with this SKU already exists.")
		}
		GetMonitor().RecordDBError()
		return nil, err
	}

	GetMonitor().RecordProductWrite()
	s.notifications.Reconcile(ctx, p.ID, p.Title, p.Stock)
	return s.products.GetByID(ctx, p.ID)
}

// Update 全量替换式更新：先删旧尺码/图片再按入参重建，分类关联整体替换。
// 任何一步失败整个事务回滚，商品保持原状。只有属主可以改。
func (s *ProductService) Update(ctx context.Context, userID, productID string, in *ProductInput) (*product.Product, error) {
	existing, err := s.products.GetByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound("Product not found")
	}
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, ErrUnauthorized("You are not allowed to modify this product")
	}

	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrValidation("Title is required.")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, ErrValidation("Description is required.")
	}
	if err := validateProductFields(in); err != nil {
		return nil, err
	}

	// 分类解析放在事务外，解析失败时不碰任何数据
	cats, err := s.resolveCategories(ctx, in.CategoryIDs)
	if err != nil {
		return nil, err
	}

	p := &product.Product{ID: productID, UserID: existing.UserID}
	applyInput(p, in, cats)
	// sku、slug 与 meta 字段只在创建时派生，更新保持原值
	p.SKU = existing.SKU
	p.Slug = existing.Slug
	p.MetaTitle = existing.MetaTitle
	p.MetaDescription = existing.MetaDescription
	p.MetaKeywords = existing.MetaKeywords
	p.CreatedAt = existing.CreatedAt

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&product.Size{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productID).Delete(&product.Image{}).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return err
		}
		if len(p.Images) > 0 {
			if err := tx.Create(&p.Images).Error; err != nil {
				return err
			}
		}
		if len(p.Sizes) > 0 {
			if err := tx.Create(&p.Sizes).Error; err != nil {
				return err
			}
		}
		return tx.Model(p).Association("Categories").Replace(cats)
	})
	if err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}

	GetMonitor().RecordProductWrite()
	s.notifications.Reconcile(ctx, p.ID, p.Title, p.Stock)
	return s.products.GetByID(ctx, productID)
}

// Delete 删除商品。通知、尺码、图片、商品本体在同一事务内删除，
// 之后逐张清理对象存储，清理失败不影响结果，只带回警告。
func (s *ProductService) Delete(ctx context.Context, productID string) (*DeleteResult, error) {
	existing, err := s.products.GetByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound("Product not found")
	}
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&notification.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productID).Delete(&product.Size{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productID).Delete(&product.Image{}).Error; err != nil {
			return err
		}
		if err := tx.Model(existing).Association("Categories").Clear(); err != nil {
			return err
		}
		return tx.Delete(&product.Product{}, "id = ?", productID).Error
	})
	if err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}

	GetMonitor().RecordProductDelete()

	result := &DeleteResult{}
	if s.store != nil {
		for _, img := range existing.Images {
			path := s.store.ObjectPath(img.URL)
			if path == "" {
				continue
			}
			if err := s.store.Remove(path); err != nil {
				GetMonitor().RecordStorageError()
				zap.L().Warn("failed to remove product image from storage",
					zap.String("product_id", productID),
					zap.String("path", path),
					zap.Error(err))
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Failed to delete image %s from storage", path))
			}
		}
	}
	return result, nil
}

// Get 按 ID 取商品，带图片、尺码、分类
func (s *ProductService) Get(ctx context.Context, id string) (*product.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound("Product not found")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List 商品分页列表
func (s *ProductService) List(ctx context.Context, f *product.ListFilter) (*ListResult, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 10
	}
	list, total, err := s.products.List(ctx, f)
	if err != nil {
		return nil, err
	}
	totalPages := int((total + int64(f.Limit) - 1) / int64(f.Limit))
	return &ListResult{
		Products:    list,
		TotalCount:  total,
		CurrentPage: f.Page,
		TotalPages:  totalPages,
		HasNextPage: f.Page < totalPages,
		HasPrevPage: f.Page > 1,
	}, nil
}

// TotalCount 商品总数
func (s *ProductService) TotalCount(ctx context.Context) (int64, error) {
	return s.products.CountAll(ctx)
}

// LowStockCount 低库存商品数（stock <= 5）
func (s *ProductService) LowStockCount(ctx context.Context) (int64, error) {
	return s.products.CountLowStock(ctx, LowStockThreshold)
}

// MockRevenue 营收占位：10000~60000 的随机数。
// TODO: 接入订单表后改为真实营收汇总。
func (s *ProductService) MockRevenue() int64 {
	return int64(rand.Intn(50000) + 10000)
}

// resolveCategories 批量解析分类 ID，有任何一个不存在整体失败
func (s *ProductService) resolveCategories(ctx context.Context, ids []string) ([]*category.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cats, err := s.categories.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(cats) != len(ids) {
		return nil, ErrValidation("One or more categories do not exist.")
	}
	return cats, nil
}

func validateProductFields(in *ProductInput) error {
	if len(in.Images) > maxImagesPerProduct {
		return ErrValidation("Maximum 5 images allowed.")
	}
	if !product.ValidGender(in.Gender) {
		return ErrValidation("Invalid gender value. Allowed: male, female, unisex.")
	}
	if !in.Price.IsPositive() {
		return ErrValidation("Price must be greater than 0.")
	}
	if in.DiscountPercentage.IsNegative() || in.DiscountPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return ErrValidation("Discount percentage must be between 0 and 100.")
	}
	if in.Stock < 0 {
		return ErrValidation("Stock cannot be negative.")
	}
	return nil
}

// applyInput 把入参写到商品模型上，并派生 slug 与 meta 字段
func applyInput(p *product.Product, in *ProductInput, cats []*category.Category) {
	p.Title = strings.TrimSpace(in.Title)
	p.Description = in.Description
	p.Price = in.Price
	p.DiscountPercentage = in.DiscountPercentage
	p.Stock = in.Stock
	p.SKU = strings.TrimSpace(in.SKU)
	p.Brand = strings.TrimSpace(in.Brand)
	p.Gender = product.Gender(in.Gender)
	p.WarrantyInformation = in.WarrantyInformation
	p.ReturnPolicy = in.ReturnPolicy
	p.ShippingInformation = in.ShippingInformation

	p.Slug = makeSlug(p.SKU)
	p.MetaTitle = makeMetaTitle(p.Title, p.Brand)
	p.MetaDescription = makeMetaDescription(p.Description)
	p.MetaKeywords = makeMetaKeywords(p.Title, p.Brand)

	p.Images = make([]product.Image, 0, len(in.Images))
	for _, url := range in.Images {
		p.Images = append(p.Images, product.Image{
			ID:        uuid.NewString(),
			URL:       url,
			ProductID: p.ID,
		})
	}
	p.Sizes = make([]product.Size, 0, len(in.Sizes))
	for _, sz := range in.Sizes {
		sz = strings.ToUpper(strings.TrimSpace(sz))
		if sz == "" {
			continue
		}
		p.Sizes = append(p.Sizes, product.Size{
			ID:        uuid.NewString(),
			Size:      sz,
			ProductID: p.ID,
		})
	}
	p.Categories = make([]category.Category, 0, len(cats))
	for _, c := range cats {
		p.Categories = append(p.Categories, *c)
	}
}

// makeSlug sku 转小写、连续空白折叠成 "-"
func makeSlug(sku string) string {
	return slugSpaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(sku)), "-")
}

func makeMetaTitle(title, brand string) string {
	if brand == "" {
		brand = "Shop"
	}
	return title + " | " + brand
}

// makeMetaDescription 超过 150 个字符截断并补省略号，按 rune 计数
func makeMetaDescription(desc string) string {
	r := []rune(desc)
	if len(r) <= 150 {
		return desc
	}
	return string(r[:150]) + "..."
}

// makeMetaKeywords 标题、品牌加固定推广词，空值跳过
func makeMetaKeywords(title, brand string) string {
	parts := make([]string, 0, 4)
	for _, s := range []string{title, brand, "buy online", "best price"} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// isDuplicateKey 识别唯一键冲突（postgres 23505 / sqlite UNIQUE）
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
