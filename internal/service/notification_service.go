package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mrbata-dev/Product-Stock/internal/datamodels/notification"
)

// LowStockThreshold 低库存阈值，stock <= 5 触发提醒
const LowStockThreshold = 5

// NotificationService 维护低库存通知与商品库存的一致性
type NotificationService struct {
	repo notification.Repository
}

// NewNotificationService 创建通知服务
func NewNotificationService(repo notification.Repository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Reconcile 库存协调规则：商品每次写入后调用，保证
//   - stock > 5 时该商品没有任何通知（补货后旧提醒一并清掉）
//   - stock <= 5 时恰好有一条未读通知，重复调用不会产生第二条
//
// 只作为副作用执行：任何失败都记日志后吞掉，绝不影响商品本身的写入。
func (s *NotificationService) Reconcile(ctx context.Context, productID, title string, stock int) {
	if err := s.reconcile(ctx, productID, title, stock); err != nil {
		GetMonitor().RecordNotificationError()
		zap.L().Warn("stock notification reconcile failed",
			zap.String("product_id", productID),
			zap.Int("stock", stock),
			zap.Error(err))
	}
}

func (s *NotificationService) reconcile(ctx context.Context, productID, title string, stock int) error {
	if stock > LowStockThreshold {
		return s.repo.DeleteByProduct(ctx, productID)
	}

	existing, err := s.repo.GetUnreadByProduct(ctx, productID)
	if err != nil {
		return err
	}
	if existing != nil {
		// 同一次缺货事件不重复提醒
		return nil
	}
	return s.repo.Create(ctx, &notification.Notification{
		ProductID: productID,
		Message:   fmt.Sprintf("Stock for %s is critically low at %d units.", title, stock),
		Read:      false,
	})
}

// ListUnread 通知面板数据：未读通知加商品标题与首图
func (s *NotificationService) ListUnread(ctx context.Context) ([]*notification.View, error) {
	return s.repo.ListUnread(ctx)
}
