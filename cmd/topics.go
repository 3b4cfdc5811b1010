package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"marinews/internal/domain/service"
)

// topicsCmd represents the topics command
var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "列出配置的主题及其关键词",
	RunE: func(cmd *cobra.Command, args []string) error {
		topicsFile := viper.GetString("rss.topics_file")
		if topicsFile == "" {
			topicsFile = "topics.yaml"
		}

		rules, err := service.NewConfigService().LoadTopicRules(topicsFile)
		if err != nil {
			return fmt.Errorf("加载主题配置失败: %w", err)
		}

		for _, rule := range rules {
			fmt.Printf("%s: %s\n", rule.Name, strings.Join(rule.Include, ", "))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}
