package category

import (
	"context"
	"time"
)

// Category 商品分类模型，title 全局唯一
type Category struct {
	ID        string    `gorm:"size:36;primaryKey" json:"id"`
	Title     string    `gorm:"uniqueIndex;size:128;not null" json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository 分类仓储接口
type Repository interface {
	ListAll(ctx context.Context) ([]*Category, error)
	GetByTitle(ctx context.Context, title string) (*Category, error)
	// GetByIDs 批量解析分类，缺失任何一个都视为失败由上层处理
	GetByIDs(ctx context.Context, ids []string) ([]*Category, error)
	Create(ctx context.Context, c *Category) error
}
