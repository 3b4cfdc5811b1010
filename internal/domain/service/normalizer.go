package service

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"marinews/internal/infrastructure/logger"
)

// NormalizeText 去除HTML标签并整理空白，返回纯文本
// 只有当输入同时包含'<'和'>'时才进行HTML解析，纯文本输入原样返回（仅去除首尾空白）
func NormalizeText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	// 廉价的启发式判断，避免对纯文本做无谓的解析
	if !strings.Contains(trimmed, "<") || !strings.Contains(trimmed, ">") {
		return trimmed
	}

	return stripHTMLTags(trimmed)
}

// stripHTMLTags 去除HTML标签，只保留纯文本
func stripHTMLTags(html string) string {
	// 使用goquery解析HTML
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Warn("解析HTML失败，返回原始内容", "error", err)
		return strings.TrimSpace(html)
	}

	// 获取文本内容，去除HTML标签
	text := doc.Text()

	// 清理文本（去除多余的空白字符）
	text = strings.TrimSpace(text)
	// 将连续的空白字符替换为单个空格
	text = strings.Join(strings.Fields(text), " ")

	return text
}

// NormalizeDate 把宽松格式的时间字符串解析为UTC时间
// 依次尝试published和updated字段；不带时区的字符串按UTC处理；
// 解析失败或两个字段都为空时返回当前UTC时间。
// 调用方必须把结果当作"尽力而为"的时间，绝不能因为坏日期中断流程。
func NormalizeDate(published, updated string) time.Time {
	for _, raw := range []string{published, updated} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if t, err := dateparse.ParseIn(raw, time.UTC); err == nil {
			return t.UTC()
		}
		logger.Debug("日期解析失败，尝试下一个候选", "raw", raw)
	}
	return time.Now().UTC()
}
