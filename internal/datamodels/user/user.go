package user

import (
	"context"
	"time"
)

// Role 用户角色，封闭枚举，未知值一律拒绝
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleStaff   Role = "STAFF"
	RoleUser    Role = "USER"
)

// ValidRole 判断角色取值是否合法
func ValidRole(r string) bool {
	switch Role(r) {
	case RoleAdmin, RoleManager, RoleStaff, RoleUser:
		return true
	}
	return false
}

// User 用户模型
type User struct {
	ID        string `gorm:"size:36;primaryKey"`
	Name      string `gorm:"size:128;not null"`
	Email     string `gorm:"uniqueIndex;size:255;not null"` // 统一小写存储
	Password  string `gorm:"size:255"`                      // bcrypt 哈希；OAuth 用户可为空
	Role      Role   `gorm:"size:16;not null;default:'USER';index"`
	Phone     string `gorm:"size:32"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary 客户列表视图返回的字段子集
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Phone     string    `json:"phone"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository 用户仓储接口
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	// Search 按名称/邮箱模糊匹配并可选过滤角色，按创建时间倒序
	Search(ctx context.Context, keyword string, role Role) ([]Summary, error)
}
