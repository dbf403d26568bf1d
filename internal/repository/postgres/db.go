package postgres

import (
	"log"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mrbata-dev/Product-Stock/internal/config"
	"github.com/mrbata-dev/Product-Stock/internal/datamodels/category"
	"github.com/mrbata-dev/Product-Stock/internal/datamodels/notification"
	"github.com/mrbata-dev/Product-Stock/internal/datamodels/product"
	"github.com/mrbata-dev/Product-Stock/internal/datamodels/user"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Init 初始化全局 GORM 实例并自动迁移表结构
func Init(cfg *config.PostgresConfig) *gorm.DB {
	once.Do(func() {
		var err error
		db, err = gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to connect postgres: %v", err)
		}

		if err = AutoMigrate(db); err != nil {
			log.Fatalf("auto migrate failed: %v", err)
		}
	})
	return db
}

// AutoMigrate 迁移全部业务表，测试环境可直接对内存库调用
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&category.Category{},
		&product.Product{},
		&product.Image{},
		&product.Size{},
		&notification.Notification{},
	)
}

// DB 获取全局 DB
func DB() *gorm.DB {
	return db
}
