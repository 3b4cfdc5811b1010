package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"marinews/internal/infrastructure/logger"
)

// Database 定义数据库接口
type Database interface {
	// Init 初始化数据库
	Init() error
	// Close 关闭数据库连接
	Close() error
	// Exec 执行SQL语句
	Exec(query string, args ...interface{}) (sql.Result, error)
	// Query 查询数据
	Query(query string, args ...interface{}) (*sql.Rows, error)
	// QueryRow 查询单行数据
	QueryRow(query string, args ...interface{}) *sql.Row
}

// SQLiteDatabase 实现Database接口的SQLite数据库
type SQLiteDatabase struct {
	db         *sql.DB
	dbFilePath string
}

// NewSQLiteDatabase 创建一个新的SQLite数据库实例
func NewSQLiteDatabase(dbFilePath string) Database {
	return &SQLiteDatabase{
		dbFilePath: dbFilePath,
	}
}

// Init 初始化SQLite数据库
func (s *SQLiteDatabase) Init() error {
	logger.Info("初始化SQLite数据库", "db_path", s.dbFilePath)

	// 确保数据库文件所在目录存在
	dbDir := filepath.Dir(s.dbFilePath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error("创建数据库目录失败", "error", err)
		return fmt.Errorf("创建数据库目录失败: %w", err)
	}

	// 打开数据库连接
	db, err := sql.Open("sqlite3", s.dbFilePath)
	if err != nil {
		logger.Error("打开数据库连接失败", "error", err)
		return fmt.Errorf("打开数据库连接失败: %w", err)
	}
	s.db = db

	// 测试数据库连接
	if err := db.Ping(); err != nil {
		logger.Error("数据库连接测试失败", "error", err)
		return fmt.Errorf("数据库连接测试失败: %w", err)
	}

	// 创建缓存表
	if err := s.createTables(); err != nil {
		logger.Error("创建数据库表失败", "error", err)
		return fmt.Errorf("创建数据库表失败: %w", err)
	}

	logger.Info("SQLite数据库初始化成功")
	return nil
}

// createTables 创建必要的数据库表
func (s *SQLiteDatabase) createTables() error {
	// 抓取结果缓存表：一行对应一次(主题, 最大天数)组合的完整抓取结果
	cacheTableSQL := `
	CREATE TABLE IF NOT EXISTS fetch_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cache_key TEXT NOT NULL UNIQUE,
		payload TEXT NOT NULL,
		article_count INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_fetch_results_key ON fetch_results(cache_key);
	`

	_, err := s.db.Exec(cacheTableSQL)
	if err != nil {
		logger.Error("创建缓存表失败", "error", err)
		return fmt.Errorf("创建缓存表失败: %w", err)
	}

	return nil
}

// Close 关闭数据库连接
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		logger.Info("关闭数据库连接")
		return s.db.Close()
	}
	return nil
}

// Exec 执行SQL语句
func (s *SQLiteDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return s.db.Exec(query, args...)
}

// Query 查询数据
func (s *SQLiteDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return s.db.Query(query, args...)
}

// QueryRow 查询单行数据
func (s *SQLiteDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return s.db.QueryRow(query, args...)
}
