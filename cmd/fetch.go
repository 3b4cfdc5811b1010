package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	appservice "marinews/internal/application/service"
	"marinews/internal/infrastructure/logger"
)

var (
	fetchTopic    string
	fetchDays     int
	fetchRefresh  bool
	fetchPage     int
	fetchPageSize int
	fetchSortBy   string
	fetchSource   string
	fetchKeyword  string
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "抓取订阅源并输出分类后的文章列表",
	Long: `抓取配置的全部订阅源，按主题关键词规则对文章分类，
然后按过滤/排序/分页选项在终端输出文章列表。
指定--topic时只保留命中该主题的文章；不指定时输出全部文章，
未命中任何主题的文章归入uncategorized。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline := appservice.NewNewsPipelineService()

		params := buildProcessParams(fetchTopic, fetchDays, fetchRefresh)
		articles, err := pipeline.FetchArticles(params)
		if err != nil {
			logger.Error("抓取文章失败", "error", err)
			return fmt.Errorf("抓取文章失败: %w", err)
		}

		// 展示层：过滤、排序、分页
		view := appservice.FilterArticles(articles, appservice.ViewOptions{
			SourceDomain: fetchSource,
			Keyword:      fetchKeyword,
		})
		view = appservice.SortArticles(view, fetchSortBy)
		page, totalPages := appservice.Paginate(view, fetchPage, fetchPageSize)

		fmt.Printf("%s\n\n", pageSummary(len(view), fetchPage, totalPages))
		for _, a := range page {
			fmt.Printf("[%s] %s\n", a.PublishedAt.Format("2006-01-02"), a.Title)
			fmt.Printf("    主题: %v  来源: %s\n", a.Topics, a.SourceDomain)
			fmt.Printf("    %s\n\n", a.Link)
		}

		return nil
	},
}

// pageSummary 生成列表头的分页摘要
// 页码越界时明确提示，而不是照抄用户输入的页码
func pageSummary(total, requested, totalPages int) string {
	if requested <= 0 {
		requested = 1
	}
	if totalPages == 0 {
		return fmt.Sprintf("共%d篇文章", total)
	}
	if requested > totalPages {
		return fmt.Sprintf("共%d篇文章，页码%d超出范围（共%d页）", total, requested, totalPages)
	}
	return fmt.Sprintf("共%d篇文章，第%d/%d页", total, requested, totalPages)
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	// 本地标志
	fetchCmd.Flags().StringVarP(&fetchTopic, "topic", "t", "", "目标主题（可选，默认输出全部主题）")
	fetchCmd.Flags().IntVarP(&fetchDays, "days", "d", 0, "文章最大天数（默认取配置文件，再默认30）")
	fetchCmd.Flags().BoolVar(&fetchRefresh, "refresh", false, "绕过缓存强制重新抓取")
	fetchCmd.Flags().IntVar(&fetchPage, "page", 1, "页码")
	fetchCmd.Flags().IntVar(&fetchPageSize, "page-size", appservice.DefaultPageSize, "每页条数")
	fetchCmd.Flags().StringVar(&fetchSortBy, "sort", "date", "排序方式: date|source|title")
	fetchCmd.Flags().StringVar(&fetchSource, "source", "", "按来源域名过滤")
	fetchCmd.Flags().StringVar(&fetchKeyword, "keyword", "", "按标题/摘要关键词过滤")
}
