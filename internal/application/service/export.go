package service

import (
	"fmt"
	"strings"

	"marinews/internal/domain/model"
)

// 导出默认值
const (
	defaultExportTopLimit    = 10
	defaultSummaryMaxChars   = 300
	exportUnscopedTopicLabel = "all"
)

// RenderMarkdown 把选中的文章子集渲染为Markdown文档
// 文档标题后跟每篇文章的编号标题、日期、主题列表、截断摘要和链接
func RenderMarkdown(articles []model.Article, topicLabel string, config model.ExportConfig) string {
	limit := defaultExportTopLimit
	if config.TopLimit > 0 && config.TopLimit < limit {
		limit = config.TopLimit
	}
	maxChars := defaultSummaryMaxChars
	if config.SummaryMaxChars > 0 {
		maxChars = config.SummaryMaxChars
	}

	label := topicLabel
	if label == "" {
		label = exportUnscopedTopicLabel
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Maritime Top %d – %s\n\n", limit, label)

	for i, a := range articles {
		if i >= limit {
			break
		}
		fmt.Fprintf(&b, "## %d. %s\n", i+1, a.Title)
		fmt.Fprintf(&b, "*Date:* %s  \n", a.PublishedAt.Format("2006-01-02"))
		fmt.Fprintf(&b, "*Topics:* %s\n\n", strings.Join(a.Topics, ", "))
		fmt.Fprintf(&b, "%s\n\n", truncateSummary(a.Summary, maxChars))
		fmt.Fprintf(&b, "[Read more](%s)\n\n", a.Link)
	}

	return b.String()
}

// ExportFileName 根据主题标签生成导出文件名
func ExportFileName(topicLabel string) string {
	if topicLabel == "" {
		topicLabel = exportUnscopedTopicLabel
	}
	// 空格替换为连字符，保证文件名友好
	topicLabel = strings.ReplaceAll(topicLabel, " ", "-")
	return fmt.Sprintf("top10-%s.md", topicLabel)
}

// truncateSummary 按字符数截断摘要，截断时追加省略号
func truncateSummary(summary string, maxChars int) string {
	runes := []rune(summary)
	if len(runes) <= maxChars {
		return summary
	}
	return string(runes[:maxChars]) + "..."
}
