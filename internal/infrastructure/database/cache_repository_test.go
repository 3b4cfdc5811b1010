package database

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestRepo(t *testing.T) (Database, CacheRepository) {
	t.Helper()
	db := NewSQLiteDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err := db.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, NewSQLiteCacheRepository(db)
}

func TestCacheRepository_SaveAndGet(t *testing.T) {
	_, repo := newTestRepo(t)

	if err := repo.SaveResult("key1", `[{"id":"a"}]`, 1); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}

	payload, createdAt, found, err := repo.GetResult("key1")
	if err != nil {
		t.Fatalf("GetResult() error = %v", err)
	}
	if !found {
		t.Fatal("保存后未找到缓存行")
	}
	if payload != `[{"id":"a"}]` {
		t.Errorf("payload = %q", payload)
	}
	if d := time.Since(createdAt); d < 0 || d > 5*time.Second {
		t.Errorf("created_at不在当前时间附近: %v", createdAt)
	}
}

func TestCacheRepository_GetMissing(t *testing.T) {
	_, repo := newTestRepo(t)

	_, _, found, err := repo.GetResult("absent")
	if err != nil {
		t.Fatalf("GetResult() error = %v", err)
	}
	if found {
		t.Error("未保存的键不应被找到")
	}
}

func TestCacheRepository_UpsertOnConflict(t *testing.T) {
	_, repo := newTestRepo(t)

	if err := repo.SaveResult("key1", "old", 1); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}
	if err := repo.SaveResult("key1", "new", 2); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}

	payload, _, found, err := repo.GetResult("key1")
	if err != nil || !found {
		t.Fatalf("GetResult() found=%v error=%v", found, err)
	}
	if payload != "new" {
		t.Errorf("payload = %q, want \"new\"", payload)
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1（同键覆盖不新增行）", count)
	}
}

func TestCacheRepository_DeleteExpired(t *testing.T) {
	db, repo := newTestRepo(t)

	// 手工插入一条过期行
	old := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	if _, err := db.Exec(
		"INSERT INTO fetch_results (cache_key, payload, article_count, created_at) VALUES (?, ?, ?, ?)",
		"stale", "[]", 0, old,
	); err != nil {
		t.Fatalf("插入过期行失败: %v", err)
	}
	if err := repo.SaveResult("fresh", "[]", 0); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}

	deleted, err := repo.DeleteExpired(time.Now().Add(-10 * time.Minute))
	if err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	_, _, found, _ := repo.GetResult("stale")
	if found {
		t.Error("过期行未被删除")
	}
	_, _, found, _ = repo.GetResult("fresh")
	if !found {
		t.Error("未过期的行被误删")
	}
}
