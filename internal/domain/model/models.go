package model

import "time"

// UncategorizedTopic 是全量模式下未命中任何主题的文章使用的哨兵主题名
const UncategorizedTopic = "uncategorized"

// ProcessParams 包含一次抓取/分类流程的所有参数
type ProcessParams struct {
	Topic        string       // 目标主题名称（为空表示全量分类模式）
	MaxAgeDays   int          // 文章最大年龄（天）
	Refresh      bool         // 是否绕过缓存强制重新抓取
	TopicsFile   string       // 主题配置文件路径
	FeedsFile    string       // 订阅源配置文件路径
	OpmlFile     string       // 可选的OPML订阅文件路径
	FetchConfig  FetchConfig  // 抓取配置
	CacheConfig  CacheConfig  // 缓存配置
	ExportConfig ExportConfig // 导出配置
}

// FetchConfig 包含订阅源抓取的配置信息
type FetchConfig struct {
	Timeout          int   // 单个源的超时时间（秒）
	MaxRetries       int   // 最大重试次数
	RetryBackoffBase int   // 重试退避基数（秒）
	MaxRequests      int64 // 单次运行允许的最大请求数（0表示不限制）
}

// CacheConfig 包含抓取结果缓存的配置信息
type CacheConfig struct {
	Enabled    bool   // 是否启用缓存
	FilePath   string // 缓存数据库文件路径
	TTLMinutes int    // 缓存有效期（分钟）
}

// ExportConfig 包含Markdown导出的配置信息
type ExportConfig struct {
	TopLimit        int // 导出文章数量上限
	SummaryMaxChars int // 摘要截断长度（字符）
}

// TopicRule 表示一条主题规则：主题名加一组关键词
// 关键词按大小写不敏感的子串方式匹配
type TopicRule struct {
	Name    string   // 主题名称（唯一）
	Include []string // 匹配关键词列表
}

// FeedSource 表示一个订阅源
type FeedSource struct {
	Title string // 源标题（可选，来自OPML或配置）
	URL   string // 订阅地址
}

// Article 表示一篇归一化后的文章
type Article struct {
	ID           string    `json:"id"`            // 内容指纹：sha1(标题+链接)
	Title        string    `json:"title"`         // 纯文本标题
	Summary      string    `json:"summary"`       // 纯文本摘要
	Link         string    `json:"link"`          // 文章链接
	PublishedAt  time.Time `json:"published_at"`  // 归一化后的发布时间（UTC）
	Topics       []string  `json:"topics"`        // 命中的主题列表
	Image        string    `json:"image"`         // 缩略图地址（可能为空）
	SourceDomain string    `json:"source_domain"` // 链接域名（小写，去掉www.前缀）
}
