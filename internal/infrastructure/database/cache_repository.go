package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"marinews/internal/infrastructure/logger"
)

// CacheRepository 定义抓取结果缓存的存储库接口
type CacheRepository interface {
	// GetResult 根据缓存键读取结果，未命中时第三个返回值为false
	GetResult(cacheKey string) (payload string, createdAt time.Time, found bool, err error)
	// SaveResult 保存（或覆盖）一条缓存结果
	SaveResult(cacheKey, payload string, articleCount int) error
	// DeleteExpired 删除给定时间之前创建的缓存结果，返回删除行数
	DeleteExpired(before time.Time) (int64, error)
	// Count 返回缓存结果总数
	Count() (int64, error)
}

// SQLiteCacheRepository 实现CacheRepository接口的SQLite存储库
type SQLiteCacheRepository struct {
	db Database
}

// NewSQLiteCacheRepository 创建一个新的SQLite缓存存储库
func NewSQLiteCacheRepository(db Database) CacheRepository {
	return &SQLiteCacheRepository{
		db: db,
	}
}

// GetResult 根据缓存键读取结果
func (r *SQLiteCacheRepository) GetResult(cacheKey string) (string, time.Time, bool, error) {
	logger.Debug("读取缓存结果", "cache_key", cacheKey)

	query := "SELECT payload, created_at FROM fetch_results WHERE cache_key = ?"
	row := r.db.QueryRow(query, cacheKey)

	var payload, createdAtRaw string
	err := row.Scan(&payload, &createdAtRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, false, nil
	}
	if err != nil {
		logger.Error("查询缓存失败", "error", err)
		return "", time.Time{}, false, fmt.Errorf("查询缓存失败: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339, createdAtRaw)
	if err != nil {
		// 时间戳损坏按未命中处理，后续写入会覆盖该行
		logger.Warn("缓存时间戳损坏，按未命中处理", "cache_key", cacheKey, "raw", createdAtRaw)
		return "", time.Time{}, false, nil
	}

	return payload, createdAt, true, nil
}

// SaveResult 保存（或覆盖）一条缓存结果
func (r *SQLiteCacheRepository) SaveResult(cacheKey, payload string, articleCount int) error {
	logger.Debug("保存缓存结果", "cache_key", cacheKey, "article_count", articleCount)

	query := `
	INSERT INTO fetch_results (cache_key, payload, article_count, created_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(cache_key) DO UPDATE SET
		payload = excluded.payload,
		article_count = excluded.article_count,
		created_at = excluded.created_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.Exec(query, cacheKey, payload, articleCount, now)
	if err != nil {
		logger.Error("保存缓存结果失败", "error", err)
		return fmt.Errorf("保存缓存结果失败: %w", err)
	}

	return nil
}

// DeleteExpired 删除给定时间之前创建的缓存结果
func (r *SQLiteCacheRepository) DeleteExpired(before time.Time) (int64, error) {
	query := "DELETE FROM fetch_results WHERE created_at < ?"
	result, err := r.db.Exec(query, before.UTC().Format(time.RFC3339))
	if err != nil {
		logger.Error("清理过期缓存失败", "error", err)
		return 0, fmt.Errorf("清理过期缓存失败: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("获取删除行数失败: %w", err)
	}

	logger.Debug("过期缓存清理完成", "deleted", count)
	return count, nil
}

// Count 返回缓存结果总数
func (r *SQLiteCacheRepository) Count() (int64, error) {
	var count int64
	err := r.db.QueryRow("SELECT COUNT(*) FROM fetch_results").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("查询缓存数量失败: %w", err)
	}
	return count, nil
}
