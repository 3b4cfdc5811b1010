package service

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/gilliek/go-opml/opml"
	"github.com/spf13/viper"
	"marinews/internal/domain/model"
	"marinews/internal/infrastructure/logger"
)

// googleNewsSearchURL 是Google News搜索订阅地址模板
// 固定的语言/地区参数保证不同查询返回的结果格式一致
const googleNewsSearchURL = "https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en"

// ConfigService 定义主题和订阅源配置的加载接口
// 两个配置文档在程序启动时各加载一次，加载失败是致命错误，不存在部分配置模式
type ConfigService interface {
	// LoadTopicRules 从主题配置文件加载主题规则列表
	LoadTopicRules(topicsFile string) ([]model.TopicRule, error)

	// LoadFeedSources 加载订阅源列表：直接订阅地址、Google News查询展开地址，
	// 以及可选OPML文件中的订阅地址（opmlFile为空时跳过）
	LoadFeedSources(feedsFile, opmlFile string) ([]model.FeedSource, error)
}

// configService 实现ConfigService接口
type configService struct {
	validator *Validator
}

// NewConfigService 创建一个新的配置服务实例
func NewConfigService() ConfigService {
	return &configService{validator: NewValidator()}
}

// topicEntry 对应主题配置文件中单个主题的结构
type topicEntry struct {
	Include []string `mapstructure:"include"`
}

// LoadTopicRules 从主题配置文件加载主题规则列表
func (s *configService) LoadTopicRules(topicsFile string) ([]model.TopicRule, error) {
	logger.Info("开始加载主题配置", "file", topicsFile)

	if err := s.validator.ValidateConfigPath(topicsFile); err != nil {
		return nil, fmt.Errorf("主题配置文件校验失败: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(topicsFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取主题配置文件失败: %w", err)
	}

	var entries map[string]topicEntry
	if err := v.UnmarshalKey("topics", &entries); err != nil {
		return nil, fmt.Errorf("解析主题配置失败: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("主题配置文件中没有定义任何主题: %s", topicsFile)
	}

	// YAML映射不保证顺序，按主题名排序保证迭代顺序确定
	rules := make([]model.TopicRule, 0, len(entries))
	for name, entry := range entries {
		rules = append(rules, model.TopicRule{Name: name, Include: entry.Include})
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Name < rules[j].Name })

	logger.Info("主题配置加载完成", "file", topicsFile, "topics_count", len(rules))
	return rules, nil
}

// LoadFeedSources 加载订阅源列表
func (s *configService) LoadFeedSources(feedsFile, opmlFile string) ([]model.FeedSource, error) {
	logger.Info("开始加载订阅源配置", "file", feedsFile, "opml_file", opmlFile)

	if err := s.validator.ValidateConfigPath(feedsFile); err != nil {
		return nil, fmt.Errorf("订阅源配置文件校验失败: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(feedsFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取订阅源配置文件失败: %w", err)
	}

	var sources []model.FeedSource

	// 1. 直接订阅地址
	for _, feedURL := range v.GetStringSlice("feeds") {
		sources = append(sources, model.FeedSource{URL: feedURL})
	}

	// 2. 可选的OPML订阅文件
	if opmlFile != "" {
		opmlSources, err := s.parseOpml(opmlFile)
		if err != nil {
			return nil, fmt.Errorf("解析OPML文件失败: %w", err)
		}
		sources = append(sources, opmlSources...)
	}

	// 3. Google News查询展开
	for _, query := range v.GetStringSlice("google_news_queries") {
		sources = append(sources, model.FeedSource{
			Title: query,
			URL:   fmt.Sprintf(googleNewsSearchURL, url.QueryEscape(query)),
		})
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("订阅源配置文件中没有定义任何订阅源: %s", feedsFile)
	}

	logger.Info("订阅源配置加载完成", "sources_count", len(sources))
	return sources, nil
}

// parseOpml 解析OPML文件并返回其中的订阅源列表
func (s *configService) parseOpml(opmlFile string) ([]model.FeedSource, error) {
	if err := s.validator.ValidateConfigPath(opmlFile); err != nil {
		return nil, err
	}

	doc, err := opml.NewOPMLFromFile(opmlFile)
	if err != nil {
		return nil, err
	}

	var sources []model.FeedSource
	for _, outline := range doc.Outlines() {
		sources = append(sources, extractOutlineSources(outline)...)
	}

	logger.Info("OPML文件解析完成", "file", opmlFile, "sources_count", len(sources))
	return sources, nil
}

// extractOutlineSources 递归提取outline中的订阅源
func extractOutlineSources(outline opml.Outline) []model.FeedSource {
	var sources []model.FeedSource

	// 带xmlUrl属性的outline就是一个订阅源
	if outline.XMLURL != "" {
		sources = append(sources, model.FeedSource{
			Title: outline.Title,
			URL:   outline.XMLURL,
		})
	}

	// 递归处理子outline
	for _, child := range outline.Outlines {
		sources = append(sources, extractOutlineSources(child)...)
	}

	return sources
}
