package service

import (
	"strings"

	"marinews/internal/domain/model"
)

// Classify 对文本执行主题匹配，返回命中的主题名列表（按规则顺序）
// 匹配策略：把标题和摘要拼成一个小写检索串，任意一个关键词是它的子串即命中该主题。
// 注意是子串匹配而不是整词匹配，短关键词可能命中更长单词的内部，
// 这是既定的匹配策略而不是待修复的缺陷。
// 一篇文章可以同时命中零个、一个或多个主题，各主题之间相互独立。
func Classify(title, summary string, rules []model.TopicRule) []string {
	blob := strings.ToLower(title + " " + summary)

	var matched []string
	for _, rule := range rules {
		if matchesRule(blob, rule) {
			matched = append(matched, rule.Name)
		}
	}
	return matched
}

// matchesRule 判断小写检索串是否命中规则中的任意关键词
func matchesRule(lowerBlob string, rule model.TopicRule) bool {
	for _, keyword := range rule.Include {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		if strings.Contains(lowerBlob, keyword) {
			return true
		}
	}
	return false
}
