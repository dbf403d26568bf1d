package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrbata-dev/Product-Stock/internal/datamodels/product"
)

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepo{db: db}
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*product.Product, error) {
	var p product.Product
	if err := r.db.WithContext(ctx).
		Preload("Images").
		Preload("Sizes").
		Preload("Categories").
		First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, f *product.ListFilter) ([]*product.Product, int64, error) {
	page := f.Page
	if page <= 0 {
		page = 1
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}

	q := r.db.WithContext(ctx).Model(&product.Product{})
	if f.Category != "" {
		// 通过 many2many 连接表按分类 title 过滤
		q = q.Joins("JOIN product_categories pc ON pc.product_id = products.id").
			Joins("JOIN categories c ON c.id = pc.category_id").
			Where("c.title = ?", f.Category)
	}
	if f.Gender != "" {
		q = q.Where("gender = ?", f.Gender)
	}
	if f.Brand != "" {
		q = q.Where("brand = ?", f.Brand)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", f.MaxPrice)
	}
	if f.Discount {
		q = q.Where("discount_percentage > 0")
	}
	if f.InStock {
		q = q.Where("stock > 0")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch f.Sort {
	case product.SortPriceLow:
		q = q.Order("price ASC")
	case product.SortPriceHigh:
		q = q.Order("price DESC")
	default:
		q = q.Order("products.created_at DESC")
	}

	var list []*product.Product
	if err := q.
		Offset((page - 1) * limit).
		Limit(limit).
		Preload("Images").
		Preload("Categories").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *productRepo) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&product.Product{}).Count(&count).Error
	return count, err
}

func (r *productRepo) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&product.Product{}).
		Where("stock <= ?", threshold).
		Count(&count).Error
	return count, err
}
