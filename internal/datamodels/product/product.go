package product

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mrbata-dev/Product-Stock/internal/datamodels/category"
)

// Gender 商品性别枚举，封闭取值，空串表示未设置
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderUnisex Gender = "unisex"
)

// ValidGender 校验性别取值（允许空）
func ValidGender(g string) bool {
	switch Gender(g) {
	case "", GenderMale, GenderFemale, GenderUnisex:
		return true
	}
	return false
}

// Product 商品模型
type Product struct {
	ID                  string          `gorm:"size:36;primaryKey" json:"id"`
	Title               string          `gorm:"size:255;not null" json:"title"`
	Description         string          `gorm:"type:text" json:"description"`
	Price               decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"price"`
	DiscountPercentage  decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"discountPercentage"`
	Stock               int             `gorm:"not null;default:0" json:"stock"`
	SKU                 string          `gorm:"column:sku;uniqueIndex;size:100;not null" json:"sku"`
	Brand               string          `gorm:"size:128" json:"brand"`
	Gender              Gender          `gorm:"size:16" json:"gender"`
	WarrantyInformation string          `gorm:"size:255" json:"warrantyInformation"`
	ReturnPolicy        string          `gorm:"size:255" json:"returnPolicy"`
	ShippingInformation string          `gorm:"size:255" json:"shippingInformation"`
	Slug                string          `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	MetaTitle           string          `gorm:"size:255" json:"metaTitle"`
	MetaDescription     string          `gorm:"size:255" json:"metaDescription"`
	MetaKeywords        string          `gorm:"size:255" json:"metaKeywords"`
	UserID              string          `gorm:"size:36;index;not null" json:"userId"`

	Images     []Image             `gorm:"constraint:OnDelete:CASCADE" json:"images"`
	Sizes      []Size              `gorm:"constraint:OnDelete:CASCADE" json:"sizes"`
	Categories []category.Category `gorm:"many2many:product_categories" json:"category"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Image 商品图片（对象存储中的公开 URL）
type Image struct {
	ID        string    `gorm:"size:36;primaryKey" json:"id"`
	URL       string    `gorm:"size:512;not null" json:"url"`
	ProductID string    `gorm:"size:36;index;not null" json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Size 商品尺码，写入时统一大写
type Size struct {
	ID        string `gorm:"size:36;primaryKey" json:"id"`
	Size      string `gorm:"size:32;not null" json:"size"`
	ProductID string `gorm:"size:36;index;not null" json:"productId"`
}

// SortOrder 列表排序方式
type SortOrder string

const (
	SortLatest    SortOrder = "latest"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
)

// ListFilter 商品列表查询条件
type ListFilter struct {
	Page     int
	Limit    int
	Category string // 分类 title
	Gender   string
	Brand    string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Discount bool // 仅折扣商品（discount_percentage > 0）
	InStock  bool // 仅有货商品（stock > 0）
	Sort     SortOrder
}

// Repository 商品仓储接口
type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	// List 返回符合条件的分页结果与总数
	List(ctx context.Context, f *ListFilter) ([]*Product, int64, error)
	CountAll(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context, threshold int) (int64, error)
}
