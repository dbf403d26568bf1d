package middleware

import (
	"fmt"
	"strconv"

	radix "github.com/mediocregopher/radix/v3"

	"github.com/mrbata-dev/Product-Stock/internal/config"
)

const loginAttemptKey = "login:attempts:%s" // email

// LoginLimiter 登录限流器。计数放在 Redis 并带 TTL，
// 多实例部署时共享同一份计数，单实例重启也不会清零。
type LoginLimiter struct {
	redis         radix.Client
	maxAttempts   int
	windowSeconds int
}

// NewLoginLimiter 创建登录限流器
func NewLoginLimiter(redis radix.Client, cfg *config.RateLimitConfig) *LoginLimiter {
	max := cfg.LoginAttempts
	if max <= 0 {
		max = 5
	}
	window := cfg.LoginWindowSeconds
	if window <= 0 {
		window = 300
	}
	return &LoginLimiter{
		redis:         redis,
		maxAttempts:   max,
		windowSeconds: window,
	}
}

// Allow 检查该邮箱是否还允许尝试登录。
// INCR 原子累加，首次计数时设置过期时间；Redis 不可用时放行，限流只是兜底。
func (l *LoginLimiter) Allow(email string) bool {
	if l.redis == nil {
		return true
	}
	key := fmt.Sprintf(loginAttemptKey, email)
	var used int
	if err := l.redis.Do(radix.Cmd(&used, "INCR", key)); err != nil {
		return true
	}
	if used == 1 {
		_ = l.redis.Do(radix.Cmd(nil, "EXPIRE", key, strconv.Itoa(l.windowSeconds)))
	}
	return used <= l.maxAttempts
}

// Reset 登录成功后清空计数
func (l *LoginLimiter) Reset(email string) {
	if l.redis == nil {
		return
	}
	key := fmt.Sprintf(loginAttemptKey, email)
	_ = l.redis.Do(radix.Cmd(nil, "DEL", key))
}
