package service

import (
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"marinews/internal/domain/model"
)

const pipelineTopicsYAML = `topics:
  Ports:
    include:
      - port
      - terminal
  LNG:
    include:
      - lng
`

// pipelineFeedXML 生成包含给定条目的RSS文档，发布时间使用传入的时间
func pipelineFeedXML(items ...string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Test Feed</title>
<link>https://example.com</link>
%s
</channel>
</rss>`, strings.Join(items, "\n"))
}

func feedItem(title, link string, published time.Time) string {
	return fmt.Sprintf(`<item>
<title>%s</title>
<link>%s</link>
<description>%s summary</description>
<pubDate>%s</pubDate>
</item>`, title, link, title, published.Format(time.RFC1123Z))
}

// writePipelineConfigs 写出主题和订阅源配置文件，返回两者路径
func writePipelineConfigs(t *testing.T, feedURLs ...string) (string, string) {
	t.Helper()
	dir := t.TempDir()

	topicsFile := filepath.Join(dir, "topics.yaml")
	if err := os.WriteFile(topicsFile, []byte(pipelineTopicsYAML), 0644); err != nil {
		t.Fatalf("写主题配置失败: %v", err)
	}

	var b strings.Builder
	b.WriteString("feeds:\n")
	for _, u := range feedURLs {
		fmt.Fprintf(&b, "  - %s\n", u)
	}
	feedsFile := filepath.Join(dir, "feeds.yaml")
	if err := os.WriteFile(feedsFile, []byte(b.String()), 0644); err != nil {
		t.Fatalf("写订阅源配置失败: %v", err)
	}

	return topicsFile, feedsFile
}

func pipelineParams(topicsFile, feedsFile string) model.ProcessParams {
	return model.ProcessParams{
		MaxAgeDays: 30,
		TopicsFile: topicsFile,
		FeedsFile:  feedsFile,
		FetchConfig: model.FetchConfig{
			Timeout:          5,
			MaxRetries:       1,
			RetryBackoffBase: 1,
		},
	}
}

func TestFetchArticles_TopicMode(t *testing.T) {
	recent := time.Now().UTC().Add(-time.Hour)
	body := pipelineFeedXML(
		feedItem("Port congestion update", "https://example.com/ports/1", recent),
		feedItem("Charter rates climb", "https://example.com/rates/1", recent),
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	topicsFile, feedsFile := writePipelineConfigs(t, server.URL)
	params := pipelineParams(topicsFile, feedsFile)
	params.Topic = "Ports"

	articles, err := NewNewsPipelineService().FetchArticles(params)
	if err != nil {
		t.Fatalf("FetchArticles() error = %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("len = %d, want 1（只保留命中目标主题的文章）", len(articles))
	}

	a := articles[0]
	if a.Title != "Port congestion update" {
		t.Errorf("Title = %q", a.Title)
	}
	wantID := fmt.Sprintf("%x", sha1.Sum([]byte(a.Title+a.Link)))
	if a.ID != wantID {
		t.Errorf("ID = %s, want %s", a.ID, wantID)
	}
	if len(a.Topics) != 1 || a.Topics[0] != "Ports" {
		t.Errorf("Topics = %v", a.Topics)
	}
	if a.Image != "" {
		t.Errorf("无图条目的Image应为空, got %q", a.Image)
	}
	if a.SourceDomain != "example.com" {
		t.Errorf("SourceDomain = %q", a.SourceDomain)
	}
}

func TestFetchArticles_UncategorizedSentinel(t *testing.T) {
	recent := time.Now().UTC().Add(-time.Hour)
	body := pipelineFeedXML(
		feedItem("LNG carrier delivered", "https://example.com/lng/1", recent),
		feedItem("Crew welfare survey", "https://example.com/crew/1", recent),
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	topicsFile, feedsFile := writePipelineConfigs(t, server.URL)
	params := pipelineParams(topicsFile, feedsFile)

	articles, err := NewNewsPipelineService().FetchArticles(params)
	if err != nil {
		t.Fatalf("FetchArticles() error = %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("len = %d, want 2（全量模式保留所有文章）", len(articles))
	}

	if len(articles[0].Topics) != 1 || articles[0].Topics[0] != "LNG" {
		t.Errorf("第一篇Topics = %v", articles[0].Topics)
	}
	if len(articles[1].Topics) != 1 || articles[1].Topics[0] != model.UncategorizedTopic {
		t.Errorf("未命中主题的文章应打上哨兵主题, got %v", articles[1].Topics)
	}
}

func TestFetchArticles_UndefinedTopic(t *testing.T) {
	topicsFile, feedsFile := writePipelineConfigs(t, "https://example.com/feed")
	params := pipelineParams(topicsFile, feedsFile)
	params.Topic = "Nonexistent"

	_, err := NewNewsPipelineService().FetchArticles(params)
	if err == nil {
		t.Fatal("未定义的目标主题应返回错误")
	}
}

func TestFetchArticles_AgeFilter(t *testing.T) {
	// 边界语义：恰好在上限内的保留，严格超过的丢弃。
	// 截止时间在流水线内部取当前时间计算，无法做到精确相等，
	// 用上限两侧各一分钟的条目夹住边界，把过滤方向钉死
	now := time.Now().UTC()
	body := pipelineFeedXML(
		feedItem("Port expansion recent", "https://example.com/new", now.Add(-time.Hour)),
		feedItem("Port expansion at limit", "https://example.com/edge-in", now.AddDate(0, 0, -30).Add(time.Minute)),
		feedItem("Port expansion past limit", "https://example.com/edge-out", now.AddDate(0, 0, -30).Add(-time.Minute)),
		feedItem("Port expansion stale", "https://example.com/old", now.AddDate(0, 0, -40)),
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	topicsFile, feedsFile := writePipelineConfigs(t, server.URL)
	params := pipelineParams(topicsFile, feedsFile)
	params.Topic = "Ports"

	articles, err := NewNewsPipelineService().FetchArticles(params)
	if err != nil {
		t.Fatalf("FetchArticles() error = %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("len = %d, want 2（上限内保留，超龄丢弃）", len(articles))
	}
	if articles[0].Link != "https://example.com/new" {
		t.Errorf("保留的文章错误: %s", articles[0].Link)
	}
	if articles[1].Link != "https://example.com/edge-in" {
		t.Errorf("上限边缘内侧的文章应被保留, got %s", articles[1].Link)
	}
	for _, a := range articles {
		if a.Link == "https://example.com/edge-out" {
			t.Error("上限边缘外侧的文章应被丢弃")
		}
	}
}

func TestFetchArticles_BadSourceIsolation(t *testing.T) {
	recent := time.Now().UTC().Add(-time.Hour)
	body := pipelineFeedXML(
		feedItem("Terminal automation project", "https://example.com/term/1", recent),
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	// 中间混入一个无法连接的源，不应影响其他源
	topicsFile, feedsFile := writePipelineConfigs(t, server.URL, "http://127.0.0.1:1/feed", server.URL)
	params := pipelineParams(topicsFile, feedsFile)
	params.Topic = "Ports"

	articles, err := NewNewsPipelineService().FetchArticles(params)
	if err != nil {
		t.Fatalf("FetchArticles() error = %v", err)
	}
	if len(articles) != 2 {
		t.Errorf("len = %d, want 2（坏源只跳过自身）", len(articles))
	}
}

func TestFetchArticles_CacheAndRefresh(t *testing.T) {
	recent := time.Now().UTC().Add(-time.Hour)
	firstBody := pipelineFeedXML(
		feedItem("Port call statistics", "https://example.com/stats/1", recent),
	)
	secondBody := pipelineFeedXML(
		feedItem("Port strike looming", "https://example.com/strike/1", recent),
	)

	var mu sync.Mutex
	body := firstBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	topicsFile, feedsFile := writePipelineConfigs(t, server.URL)
	params := pipelineParams(topicsFile, feedsFile)
	params.Topic = "Ports"
	params.CacheConfig = model.CacheConfig{
		Enabled:    true,
		FilePath:   filepath.Join(t.TempDir(), "cache.db"),
		TTLMinutes: 10,
	}

	pipeline := NewNewsPipelineService()

	// 第一次调用：走网络并写入缓存
	articles, err := pipeline.FetchArticles(params)
	if err != nil {
		t.Fatalf("第一次FetchArticles() error = %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "Port call statistics" {
		t.Fatalf("第一次结果错误: %+v", articles)
	}

	// 服务端内容变化后，TTL内的第二次调用仍返回缓存结果
	mu.Lock()
	body = secondBody
	mu.Unlock()

	articles, err = pipeline.FetchArticles(params)
	if err != nil {
		t.Fatalf("第二次FetchArticles() error = %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "Port call statistics" {
		t.Errorf("第二次调用未命中缓存: %+v", articles)
	}

	// 强制刷新绕过缓存读取，拿到最新内容
	params.Refresh = true
	articles, err = pipeline.FetchArticles(params)
	if err != nil {
		t.Fatalf("刷新FetchArticles() error = %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "Port strike looming" {
		t.Errorf("强制刷新未绕过缓存: %+v", articles)
	}

	// 刷新也会覆盖缓存，后续调用返回新结果
	params.Refresh = false
	articles, err = pipeline.FetchArticles(params)
	if err != nil {
		t.Fatalf("刷新后FetchArticles() error = %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "Port strike looming" {
		t.Errorf("刷新后的缓存内容错误: %+v", articles)
	}
}
