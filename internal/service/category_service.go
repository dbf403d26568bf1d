package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrbata-dev/Product-Stock/internal/datamodels/category"
)

// CategoryService 分类管理
type CategoryService struct {
	repo category.Repository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo category.Repository) *CategoryService {
	return &CategoryService{repo: repo}
}

// List 全部分类，按 title 升序
func (s *CategoryService) List(ctx context.Context) ([]*category.Category, error) {
	return s.repo.ListAll(ctx)
}

// Create 新建分类，title 去掉首尾空白后不能为空也不能重复
func (s *CategoryService) Create(ctx context.Context, title string) (*category.Category, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrValidation("Title is required")
	}

	if _, err := s.repo.GetByTitle(ctx, title); err == nil {
		return nil, ErrValidation("Category already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c := &category.Category{
		ID:    uuid.NewString(),
		Title: title,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
