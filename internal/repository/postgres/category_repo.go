package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrbata-dev/Product-Stock/internal/datamodels/category"
)

type categoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) category.Repository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) ListAll(ctx context.Context) ([]*category.Category, error) {
	var list []*category.Category
	if err := r.db.WithContext(ctx).
		Order("title ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *categoryRepo) GetByTitle(ctx context.Context, title string) (*category.Category, error) {
	var c category.Category
	if err := r.db.WithContext(ctx).
		Where("title = ?", title).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) GetByIDs(ctx context.Context, ids []string) ([]*category.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []*category.Category
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *categoryRepo) Create(ctx context.Context, c *category.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}
