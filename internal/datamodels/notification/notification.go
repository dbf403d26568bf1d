package notification

import (
	"context"
	"time"
)

// Notification 低库存提醒。协调规则保证同一商品最多存在一条未读记录，
// 该约束由业务逻辑维护，数据库层面没有唯一索引。
type Notification struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	ProductID string    `gorm:"size:36;index;not null" json:"productId"`
	Message   string    `gorm:"size:255;not null" json:"message"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// View 通知面板条目：通知本体加上商品标题与首图
type View struct {
	ID        uint64    `json:"id"`
	ProductID string    `json:"productId"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
	Product   struct {
		Title    string `json:"title"`
		ImageURL string `json:"imageUrl"`
	} `json:"product"`
}

// Repository 通知仓储接口
type Repository interface {
	GetUnreadByProduct(ctx context.Context, productID string) (*Notification, error)
	Create(ctx context.Context, n *Notification) error
	// DeleteByProduct 删除该商品的全部通知，已读未读都清
	DeleteByProduct(ctx context.Context, productID string) error
	// ListUnread 未读通知按创建时间倒序，并带上商品标题与首图
	ListUnread(ctx context.Context) ([]*View, error)
}
