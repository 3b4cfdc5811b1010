package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"marinews/internal/domain/model"
	"marinews/internal/infrastructure/logger"
	"marinews/internal/middleware"
)

// 抓取配置默认值
const (
	defaultTimeout          = 15 // 秒
	defaultMaxRetries       = 3
	defaultRetryBackoffBase = 1 // 秒
)

// FetchedEntry 表示一个成功抓取的订阅条目及其来源
type FetchedEntry struct {
	Item   *gofeed.Item
	Source model.FeedSource
}

// FeedService 定义订阅源抓取的领域服务接口
type FeedService interface {
	// FetchEntries 顺序抓取所有订阅源并返回解析出的条目
	// 单个源的任何失败（非法URL、网络错误、解析失败）都只导致该源被跳过，
	// 绝不会中断整批抓取，因此没有错误返回值
	FetchEntries(sources []model.FeedSource, config model.FetchConfig) []FetchedEntry
}

// feedService 实现FeedService接口
type feedService struct {
	validator *Validator
	limiter   *middleware.RateLimiter
	metrics   *middleware.MetricsCollector
}

// NewFeedService 创建一个新的订阅源抓取服务实例
func NewFeedService(metrics *middleware.MetricsCollector, maxRequests int64) FeedService {
	return &feedService{
		validator: NewValidator(),
		limiter:   middleware.NewRateLimiter(maxRequests, time.Hour),
		metrics:   metrics,
	}
}

// FetchEntries 顺序抓取所有订阅源并返回解析出的条目
func (s *feedService) FetchEntries(sources []model.FeedSource, config model.FetchConfig) []FetchedEntry {
	logger.Info("开始抓取订阅源", "sources_count", len(sources))
	defer logger.TimeTrack("FetchEntries")()

	// 设置配置，使用传入的配置或默认值
	timeout := defaultTimeout
	maxRetries := defaultMaxRetries
	retryBackoffBase := defaultRetryBackoffBase

	if config.Timeout > 0 {
		timeout = config.Timeout
	}
	if config.MaxRetries > 0 {
		maxRetries = config.MaxRetries
	}
	if config.RetryBackoffBase > 0 {
		retryBackoffBase = config.RetryBackoffBase
	}

	logger.Debug("抓取配置",
		"timeout_seconds", timeout,
		"max_retries", maxRetries,
		"retry_backoff_base_seconds", retryBackoffBase)

	fp := gofeed.NewParser()
	client := &http.Client{
		Timeout: time.Duration(timeout) * time.Second,
	}

	var entries []FetchedEntry

	// 严格按配置顺序逐个抓取，结果保持源的出现顺序
	for _, source := range sources {
		// 非法URL：跳过该源
		if err := s.validator.ValidateURL(source.URL); err != nil {
			logger.Warn("订阅源URL非法，跳过", "url", source.URL, "error", err)
			s.metrics.RecordSourceSkipped()
			continue
		}

		// 限流：跳过该源
		if !s.limiter.Check() {
			limitErr := &middleware.RateLimitError{Status: s.limiter.GetStatus()}
			logger.Warn("已达到请求数上限，跳过订阅源", "url", source.URL, "error", limitErr)
			s.metrics.RecordSourceSkipped()
			continue
		}

		start := time.Now()
		feed, err := s.fetchOne(fp, client, source, timeout, maxRetries, retryBackoffBase)
		s.metrics.RecordSourceFetch(time.Since(start), err == nil)

		if err != nil {
			// 抓取/解析失败：记录并跳过，不中断整批
			logger.Error("抓取订阅源失败，跳过", "title", source.Title, "url", source.URL, "error", err)
			continue
		}

		if len(feed.Items) == 0 {
			// 解析成功但没有条目，同样按跳过处理
			logger.Warn("订阅源没有条目", "title", source.Title, "url", source.URL)
			continue
		}

		logger.Info("成功抓取订阅源", "title", source.Title, "url", source.URL, "entries_count", len(feed.Items))
		for _, item := range feed.Items {
			entries = append(entries, FetchedEntry{Item: item, Source: source})
		}
	}

	logger.Info("所有订阅源处理完成", "total_entries", len(entries))
	return entries
}

// fetchOne 抓取并解析单个订阅源，带超时和退避重试
func (s *feedService) fetchOne(fp *gofeed.Parser, client *http.Client, source model.FeedSource, timeout, maxRetries, backoffBase int) (*gofeed.Feed, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout*maxRetries)*time.Second)
	defer cancel()

	var feed *gofeed.Feed
	err := middleware.RetryWithBackoff(ctx, maxRetries, time.Duration(backoffBase)*time.Second, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
		if err != nil {
			return fmt.Errorf("创建请求失败: %w", err)
		}
		req.Header.Set("User-Agent", "marinews/1.0 (RSS reader)")

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("HTTP请求失败: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("HTTP状态码异常: %d", resp.StatusCode)
		}

		parsed, err := fp.Parse(resp.Body)
		if err != nil {
			return fmt.Errorf("解析Feed失败: %w", err)
		}

		feed = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}

	return feed, nil
}
