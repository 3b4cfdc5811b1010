package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	appservice "marinews/internal/application/service"
	"marinews/internal/infrastructure/logger"
)

var (
	exportTopic   string
	exportDays    int
	exportRefresh bool
	exportTop     int
	exportFile    string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "抓取文章并导出Top 10 Markdown文档",
	Long: `抓取并分类文章后，取发布时间最新的前N篇（上限10篇）
渲染为Markdown文档并写入文件。
默认输出文件名为 top10-<主题>.md，未指定主题时为 top10-all.md。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline := appservice.NewNewsPipelineService()

		params := buildProcessParams(exportTopic, exportDays, exportRefresh)
		if exportTop > 0 {
			params.ExportConfig.TopLimit = exportTop
		}

		articles, err := pipeline.FetchArticles(params)
		if err != nil {
			logger.Error("抓取文章失败", "error", err)
			return fmt.Errorf("抓取文章失败: %w", err)
		}

		// 选取最新的文章作为导出子集
		sorted := appservice.SortArticles(articles, "date")
		document := appservice.RenderMarkdown(sorted, exportTopic, params.ExportConfig)

		// 确定输出文件路径
		if exportFile == "" {
			exportFile = appservice.ExportFileName(exportTopic)
		}

		// 确保输出目录存在
		outputDir := filepath.Dir(exportFile)
		if outputDir != "." {
			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("创建输出目录失败: %w", err)
			}
		}

		// 输出到文件
		if err := os.WriteFile(exportFile, []byte(document), 0644); err != nil {
			return fmt.Errorf("写入输出文件失败: %w", err)
		}

		logger.Info("导出完成", "output_file", exportFile, "articles_count", len(articles))
		fmt.Printf("文档已保存到: %s\n", exportFile)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	// 本地标志
	exportCmd.Flags().StringVarP(&exportTopic, "topic", "t", "", "目标主题（可选）")
	exportCmd.Flags().IntVarP(&exportDays, "days", "d", 0, "文章最大天数（默认取配置文件，再默认30）")
	exportCmd.Flags().BoolVar(&exportRefresh, "refresh", false, "绕过缓存强制重新抓取")
	exportCmd.Flags().IntVar(&exportTop, "top", 0, "导出文章数量（上限10）")
	exportCmd.Flags().StringVarP(&exportFile, "output", "f", "", "输出文件路径（可选，默认top10-<主题>.md）")
}
