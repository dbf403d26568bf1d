package redis

import (
	"log"
	"sync"
	"time"

	radix "github.com/mediocregopher/radix/v3"

	"github.com/mrbata-dev/Product-Stock/internal/config"
)

var (
	client radix.Client
	once   sync.Once
)

// Init 初始化 Redis 连接池，池大小来自配置
func Init(cfg *config.RedisConfig) radix.Client {
	once.Do(func() {
		size := cfg.PoolSize
		if size <= 0 {
			size = 10
		}
		pool, err := radix.NewPool("tcp", cfg.Addr, size,
			radix.PoolPingInterval(30*time.Second))
		if err != nil {
			log.Fatalf("failed to connect redis %s: %v", cfg.Addr, err)
		}
		client = pool
	})
	return client
}

// Client 获取 Redis 客户端
func Client() radix.Client {
	return client
}
