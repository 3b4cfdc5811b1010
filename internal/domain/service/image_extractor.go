package service

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// ExtractImage 从订阅条目中提取缩略图地址
// 按固定优先级依次尝试四种策略，命中即返回，全部未命中返回空串：
//  1. media:content 扩展的第一个url属性
//  2. media:thumbnail 扩展的第一个url属性
//  3. 摘要HTML中的第一个<img src>
//  4. 正文HTML中的第一个<img src>
//
// 任何字段缺失或HTML畸形都不会报错，只会降级为空结果
func ExtractImage(item *gofeed.Item) string {
	if item == nil {
		return ""
	}

	// 1/2. media扩展中的附件和缩略图
	if media, ok := item.Extensions["media"]; ok {
		for _, name := range []string{"content", "thumbnail"} {
			for _, ext := range media[name] {
				if url := ext.Attrs["url"]; url != "" {
					return url
				}
			}
		}
	}

	// 3. 摘要中内嵌的图片标签
	if src := firstImgSrc(item.Description); src != "" {
		return src
	}

	// 4. 正文中内嵌的图片标签
	if src := firstImgSrc(item.Content); src != "" {
		return src
	}

	return ""
}

// firstImgSrc 返回HTML片段中第一个<img>标签的src属性
func firstImgSrc(html string) string {
	if html == "" || !strings.Contains(html, "<") {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	src, _ := doc.Find("img").First().Attr("src")
	return src
}
