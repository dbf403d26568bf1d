package storage

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	storage_go "github.com/supabase-community/storage-go"

	"github.com/mrbata-dev/Product-Stock/internal/config"
)

var (
	client *Client
	once   sync.Once
)

// Client 封装 Supabase 存储桶操作，商品图片的上传与清理都走这里。
type Client struct {
	api    *storage_go.Client
	bucket string
}

// Init 初始化对象存储客户端
func Init(cfg *config.StorageConfig) *Client {
	once.Do(func() {
		api := storage_go.NewClient(strings.TrimRight(cfg.URL, "/")+"/storage/v1", cfg.SecretKey, nil)
		client = &Client{api: api, bucket: cfg.Bucket}
	})
	return client
}

// Get 获取全局存储客户端
func Get() *Client {
	return client
}

// Upload 上传单个对象并返回公开访问 URL
func (c *Client) Upload(path string, body []byte, contentType string) (string, error) {
	_, err := c.api.UploadFile(c.bucket, path, bytes.NewReader(body), storage_go.FileOptions{
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	resp := c.api.GetPublicUrl(c.bucket, path)
	if resp.SignedURL == "" {
		return "", fmt.Errorf("no public url for %s", path)
	}
	return resp.SignedURL, nil
}

// Remove 删除单个对象，path 为桶内路径
func (c *Client) Remove(path string) error {
	if _, err := c.api.RemoveFile(c.bucket, []string{path}); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// ObjectPath 从公开 URL 还原桶内路径
func (c *Client) ObjectPath(url string) string {
	return ObjectPath(url)
}

// ObjectPath 从公开 URL 还原桶内路径（取最后一段）
func ObjectPath(url string) string {
	parts := strings.Split(strings.TrimRight(url, "/"), "/")
	if len(parts) == 0 {
		return url
	}
	return parts[len(parts)-1]
}
