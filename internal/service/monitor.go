package service

import (
	"sync"
	"time"
)

// Monitor 监控服务，统计副作用失败与请求量，便于排查
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	DBErrors           int64
	StorageErrors      int64
	NotificationErrors int64

	// 业务统计
	ProductWrites  int64
	ProductDeletes int64
	LoginThrottled int64

	// 时间统计
	LastDBError      time.Time
	LastStorageError time.Time
	LastWriteTime    time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

// RecordDBError 记录数据库错误
func (m *Monitor) RecordDBError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors++
	m.LastDBError = time.Now()
}

// RecordStorageError 记录对象存储清理失败
func (m *Monitor) RecordStorageError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StorageErrors++
	m.LastStorageError = time.Now()
}

// RecordNotificationError 记录通知副作用失败
func (m *Monitor) RecordNotificationError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotificationErrors++
}

// RecordProductWrite 记录商品创建/更新
func (m *Monitor) RecordProductWrite() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProductWrites++
	m.LastWriteTime = time.Now()
}

// RecordProductDelete 记录商品删除
func (m *Monitor) RecordProductDelete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProductDeletes++
}

// RecordLoginThrottled 记录被限流的登录尝试
func (m *Monitor) RecordLoginThrottled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoginThrottled++
}

// GetStats 获取统计信息
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"errors": map[string]interface{}{
			"db":           m.DBErrors,
			"storage":      m.StorageErrors,
			"notification": m.NotificationErrors,
		},
		"activity": map[string]interface{}{
			"product_writes":  m.ProductWrites,
			"product_deletes": m.ProductDeletes,
			"login_throttled": m.LoginThrottled,
		},
		"last_events": map[string]interface{}{
			"db_error":      m.LastDBError,
			"storage_error": m.LastStorageError,
			"last_write":    m.LastWriteTime,
		},
	}
}

// Reset 重置统计（用于测试）
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors = 0
	m.StorageErrors = 0
	m.NotificationErrors = 0
	m.ProductWrites = 0
	m.ProductDeletes = 0
	m.LoginThrottled = 0
}
