package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"marinews/internal/domain/model"
	"marinews/internal/infrastructure/database"
	"marinews/internal/infrastructure/logger"
)

// defaultCacheTTL 抓取结果缓存的默认有效期
const defaultCacheTTL = 10 * time.Minute

// FetchCacheService 定义抓取结果缓存接口
// 缓存键由(目标主题, 最大天数)组合派生，在有效期内重复调用直接返回上次结果
type FetchCacheService interface {
	// Get 读取缓存的抓取结果，未命中或已过期时第二个返回值为false
	Get(topic string, maxAgeDays int) ([]model.Article, bool)

	// Set 写入抓取结果
	Set(topic string, maxAgeDays int, articles []model.Article) error

	// CleanExpired 清理过期缓存
	CleanExpired() error

	// Close 关闭底层存储
	Close() error
}

// sqliteFetchCache 基于SQLite的抓取结果缓存实现
type sqliteFetchCache struct {
	db   database.Database
	repo database.CacheRepository
	ttl  time.Duration
}

// NewFetchCacheService 创建新的抓取结果缓存服务
func NewFetchCacheService(config model.CacheConfig) (FetchCacheService, error) {
	ttl := defaultCacheTTL
	if config.TTLMinutes > 0 {
		ttl = time.Duration(config.TTLMinutes) * time.Minute
	}

	db := database.NewSQLiteDatabase(config.FilePath)
	if err := db.Init(); err != nil {
		return nil, fmt.Errorf("初始化缓存数据库失败: %w", err)
	}

	return &sqliteFetchCache{
		db:   db,
		repo: database.NewSQLiteCacheRepository(db),
		ttl:  ttl,
	}, nil
}

// cacheKey 基于(主题, 最大天数)生成唯一缓存键
// 空主题表示全量模式，用"*"占位避免和名为空串的主题混淆
func cacheKey(topic string, maxAgeDays int) string {
	if topic == "" {
		topic = "*"
	}
	hasher := sha256.New()
	fmt.Fprintf(hasher, "%s|%d", topic, maxAgeDays)
	return hex.EncodeToString(hasher.Sum(nil))
}

// Get 读取缓存的抓取结果
func (c *sqliteFetchCache) Get(topic string, maxAgeDays int) ([]model.Article, bool) {
	key := cacheKey(topic, maxAgeDays)

	payload, createdAt, found, err := c.repo.GetResult(key)
	if err != nil {
		// 缓存故障不能影响抓取流程，按未命中处理
		logger.Warn("读取缓存失败，按未命中处理", "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	// 检查缓存是否过期
	if time.Since(createdAt) > c.ttl {
		logger.Debug("缓存已过期", "cache_key", key, "created_at", createdAt)
		return nil, false
	}

	var articles []model.Article
	if err := json.Unmarshal([]byte(payload), &articles); err != nil {
		logger.Warn("缓存内容损坏，按未命中处理", "cache_key", key, "error", err)
		return nil, false
	}

	logger.Info("命中抓取结果缓存", "topic", topic, "max_age_days", maxAgeDays, "articles_count", len(articles))
	return articles, true
}

// Set 写入抓取结果
func (c *sqliteFetchCache) Set(topic string, maxAgeDays int, articles []model.Article) error {
	payload, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("序列化抓取结果失败: %w", err)
	}

	return c.repo.SaveResult(cacheKey(topic, maxAgeDays), string(payload), len(articles))
}

// CleanExpired 清理过期缓存
func (c *sqliteFetchCache) CleanExpired() error {
	count, err := c.repo.DeleteExpired(time.Now().Add(-c.ttl))
	if err != nil {
		return fmt.Errorf("清理过期缓存失败: %w", err)
	}
	if count > 0 {
		logger.Info("过期缓存已清理", "deleted", count)
	}
	return nil
}

// Close 关闭底层存储
func (c *sqliteFetchCache) Close() error {
	return c.db.Close()
}
