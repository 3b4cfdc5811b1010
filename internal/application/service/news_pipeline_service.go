package service

import (
	"fmt"
	"strings"
	"time"

	"marinews/internal/domain/model"
	"marinews/internal/domain/service"
	"marinews/internal/infrastructure/logger"
	"marinews/internal/middleware"
)

// NewsPipelineService 定义抓取/分类流水线的应用服务接口
type NewsPipelineService interface {
	// FetchArticles 执行一次完整的抓取/分类流程并返回文章列表
	// params.Topic非空时只保留命中该主题的文章；为空时保留全部文章，
	// 未命中任何主题的文章打上哨兵主题"uncategorized"。
	// 两种模式互斥，由调用方选择，单次调用不会混用。
	FetchArticles(params model.ProcessParams) ([]model.Article, error)
}

// newsPipelineService 实现NewsPipelineService接口
type newsPipelineService struct {
	configService service.ConfigService
	metrics       *middleware.MetricsCollector
	log           *logger.ContextLogger
}

// NewNewsPipelineService 创建一个新的流水线服务实例
func NewNewsPipelineService() NewsPipelineService {
	return &newsPipelineService{
		configService: service.NewConfigService(),
		metrics:       middleware.NewMetricsCollector(),
		log:           logger.WithContext("pipeline"),
	}
}

// FetchArticles 执行一次完整的抓取/分类流程
// 配置加载失败是致命错误；单个源和单个条目的异常一律降级处理，保证尽力而为的结果集
func (s *newsPipelineService) FetchArticles(params model.ProcessParams) ([]model.Article, error) {
	s.log.Info("开始处理订阅源", "topic", params.Topic, "max_age_days", params.MaxAgeDays, "refresh", params.Refresh)
	defer logger.TimeTrack("FetchArticles")()

	// 记录初始内存使用情况，抓取期间周期性上报
	logger.LogMemStatsOnce()
	memMonitor := logger.NewMemStatsMonitor(30 * time.Second)
	memMonitor.Start()
	defer memMonitor.Stop()

	// 1. 加载主题规则（失败即终止，不存在部分配置模式）
	rules, err := s.configService.LoadTopicRules(params.TopicsFile)
	if err != nil {
		s.log.Error("加载主题配置失败", "error", err)
		return nil, fmt.Errorf("加载主题配置失败: %w", err)
	}

	// 指定了目标主题但配置中不存在，视为配置错误
	if params.Topic != "" && !topicConfigured(rules, params.Topic) {
		return nil, fmt.Errorf("主题未在配置中定义: %s", params.Topic)
	}

	// 2. 加载订阅源列表
	sources, err := s.configService.LoadFeedSources(params.FeedsFile, params.OpmlFile)
	if err != nil {
		s.log.Error("加载订阅源配置失败", "error", err)
		return nil, fmt.Errorf("加载订阅源配置失败: %w", err)
	}

	// 3. 初始化抓取结果缓存（缓存故障只降级，不中断）
	var cache service.FetchCacheService
	if params.CacheConfig.Enabled {
		cache, err = service.NewFetchCacheService(params.CacheConfig)
		if err != nil {
			s.log.Warn("初始化缓存失败，本次运行不使用缓存", "error", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	// 4. 缓存命中且未要求强制刷新时直接返回
	if cache != nil && !params.Refresh {
		if cached, ok := cache.Get(params.Topic, params.MaxAgeDays); ok {
			s.metrics.RecordCacheHit()
			middleware.LogMetrics(s.metrics)
			return cached, nil
		}
		s.metrics.RecordCacheMiss()
	}

	// 5. 顺序抓取所有订阅源
	feedService := service.NewFeedService(s.metrics, params.FetchConfig.MaxRequests)
	entries := feedService.FetchEntries(sources, params.FetchConfig)

	// 6. 归一化、过滤、分类并构建文章记录，保持源的出现顺序，不做隐式排序
	articles := s.buildArticles(entries, rules, params)

	// 7. 写入缓存（强制刷新也会写入最新结果）
	if cache != nil {
		if err := cache.Set(params.Topic, params.MaxAgeDays, articles); err != nil {
			s.log.Warn("写入缓存失败", "error", err)
		}
		if err := cache.CleanExpired(); err != nil {
			s.log.Warn("清理过期缓存失败", "error", err)
		}
	}

	middleware.LogMetrics(s.metrics)
	s.log.Info("流水线处理完成", "articles_count", len(articles))
	return articles, nil
}

// buildArticles 把抓取到的原始条目转换为归一化的文章记录
func (s *newsPipelineService) buildArticles(entries []service.FetchedEntry, rules []model.TopicRule, params model.ProcessParams) []model.Article {
	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, -params.MaxAgeDays)

	var expired, matched int64
	articles := make([]model.Article, 0, len(entries))

	for _, entry := range entries {
		item := entry.Item

		// 归一化标题和摘要
		title := service.NormalizeText(item.Title)
		summary := service.NormalizeText(item.Description)
		if summary == "" {
			summary = service.NormalizeText(item.Content)
		}
		link := strings.TrimSpace(item.Link)

		// 归一化发布时间：published优先于updated，解析失败回退为当前时间
		publishedAt := s.normalizeEntryDate(item.PublishedParsed, item.UpdatedParsed, item.Published, item.Updated)

		// 年龄硬过滤：恰好等于上限的保留，严格超过的丢弃
		// 在抓取阶段过滤而不是留给展示层，限制下游的内存和工作量
		if publishedAt.Before(cutoff) {
			expired++
			continue
		}

		// 主题分类
		topics := service.Classify(title, summary, rules)

		if params.Topic != "" {
			// 单主题模式：未命中目标主题的条目丢弃
			if !containsTopic(topics, params.Topic) {
				continue
			}
		} else if len(topics) == 0 {
			// 全量模式：未命中任何主题的条目打上哨兵主题
			topics = []string{model.UncategorizedTopic}
		}
		matched++

		articles = append(articles, model.Article{
			ID:           service.ArticleID(title, link),
			Title:        title,
			Summary:      summary,
			Link:         link,
			PublishedAt:  publishedAt,
			Topics:       topics,
			Image:        service.ExtractImage(item),
			SourceDomain: service.SourceDomain(link),
		})
	}

	s.metrics.RecordEntries(int64(len(entries)), int64(len(articles)), expired, matched)
	return articles
}

// normalizeEntryDate 选取条目的发布时间
// gofeed已解析的时间直接采用；否则对原始字符串做宽松解析，失败回退为当前UTC时间
func (s *newsPipelineService) normalizeEntryDate(publishedParsed, updatedParsed *time.Time, publishedRaw, updatedRaw string) time.Time {
	if publishedParsed != nil {
		return publishedParsed.UTC()
	}
	if updatedParsed != nil {
		return updatedParsed.UTC()
	}
	return service.NormalizeDate(publishedRaw, updatedRaw)
}

// topicConfigured 判断主题名是否在规则列表中定义
func topicConfigured(rules []model.TopicRule, name string) bool {
	for _, rule := range rules {
		if rule.Name == name {
			return true
		}
	}
	return false
}

// containsTopic 判断主题列表中是否包含指定主题
func containsTopic(topics []string, name string) bool {
	for _, t := range topics {
		if t == name {
			return true
		}
	}
	return false
}
