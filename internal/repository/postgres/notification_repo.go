package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mrbata-dev/Product-Stock/internal/datamodels/notification"
	"github.com/mrbata-dev/Product-Stock/internal/datamodels/product"
)

type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓储
func NewNotificationRepository(db *gorm.DB) notification.Repository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) GetUnreadByProduct(ctx context.Context, productID string) (*notification.Notification, error) {
	var n notification.Notification
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND read = ?", productID, false).
		First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) DeleteByProduct(ctx context.Context, productID string) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&notification.Notification{}).Error
}

func (r *notificationRepo) ListUnread(ctx context.Context) ([]*notification.View, error) {
	var rows []*notification.Notification
	if err := r.db.WithContext(ctx).
		Where("read = ?", false).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*notification.View, 0, len(rows))
	for _, n := range rows {
		v := &notification.View{
			ID:        n.ID,
			ProductID: n.ProductID,
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
		var p product.Product
		if err := r.db.WithContext(ctx).
			Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC").Limit(1) }).
			First(&p, "id = ?", n.ProductID).Error; err == nil {
			v.Product.Title = p.Title
			if len(p.Images) > 0 {
				v.Product.ImageURL = p.Images[0].URL
			}
		}
		out = append(out, v)
	}
	return out, nil
}
