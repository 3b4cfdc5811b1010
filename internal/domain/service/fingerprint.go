package service

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"
)

// ArticleID 基于(标题, 链接)计算文章的内容指纹
// 相同的标题加链接永远得到相同的ID，用于去重选中状态的键，
// 不用于跨源去重：同一篇报道出现在两个订阅源会产生两条记录
func ArticleID(title, link string) string {
	hasher := sha1.New()
	hasher.Write([]byte(title + link))
	return hex.EncodeToString(hasher.Sum(nil))
}

// SourceDomain 从文章链接提取来源域名：小写，去掉前导"www."
// 链接为空或无法解析时返回空串
func SourceDomain(link string) string {
	if link == "" {
		return ""
	}

	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return ""
	}

	host := strings.ToLower(u.Host)
	// 去掉端口号
	if i := strings.Index(host, ":"); i != -1 {
		host = host[:i]
	}
	return strings.TrimPrefix(host, "www.")
}
