package service

import (
	"sort"
	"strings"
	"time"

	"marinews/internal/domain/model"
)

// DefaultPageSize 分页默认每页条数
const DefaultPageSize = 20

// ViewOptions 包含展示层的过滤、排序和分页选项
// 所有操作都是对已分类的内存列表的纯函数，不触发任何网络请求
type ViewOptions struct {
	Topic        string    // 按主题过滤（全量模式下使用）
	SourceDomain string    // 按来源域名过滤
	Keyword      string    // 标题/摘要关键词过滤（大小写不敏感子串）
	From         time.Time // 发布时间下界（零值表示不限制）
	To           time.Time // 发布时间上界（零值表示不限制）
	SortBy       string    // 排序方式: date(默认,新在前) | source | title
	Page         int       // 页码，从1开始
	PageSize     int       // 每页条数，默认20
}

// FilterArticles 按选项过滤文章列表，返回新切片
func FilterArticles(articles []model.Article, opts ViewOptions) []model.Article {
	keyword := strings.ToLower(strings.TrimSpace(opts.Keyword))
	domain := strings.ToLower(strings.TrimSpace(opts.SourceDomain))

	filtered := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if opts.Topic != "" && !containsTopic(a.Topics, opts.Topic) {
			continue
		}
		if domain != "" && a.SourceDomain != domain {
			continue
		}
		if keyword != "" {
			blob := strings.ToLower(a.Title + " " + a.Summary)
			if !strings.Contains(blob, keyword) {
				continue
			}
		}
		if !opts.From.IsZero() && a.PublishedAt.Before(opts.From) {
			continue
		}
		if !opts.To.IsZero() && a.PublishedAt.After(opts.To) {
			continue
		}
		filtered = append(filtered, a)
	}
	return filtered
}

// SortArticles 按选项排序，返回排序后的新切片，原列表不变
// 未知的排序方式按date处理
func SortArticles(articles []model.Article, sortBy string) []model.Article {
	sorted := make([]model.Article, len(articles))
	copy(sorted, articles)

	switch sortBy {
	case "source":
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].SourceDomain < sorted[j].SourceDomain
		})
	case "title":
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i].Title) < strings.ToLower(sorted[j].Title)
		})
	default: // date: 新的在前
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
		})
	}
	return sorted
}

// Paginate 取出指定页的文章，返回该页切片和总页数
// 页码越界时返回空切片；pageSize非法时使用默认值
func Paginate(articles []model.Article, page, pageSize int) ([]model.Article, int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}

	totalPages := (len(articles) + pageSize - 1) / pageSize
	if totalPages == 0 {
		return nil, 0
	}
	if page > totalPages {
		return nil, totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(articles) {
		end = len(articles)
	}
	return articles[start:end], totalPages
}
