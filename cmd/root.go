package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"marinews/internal/domain/model"
	"marinews/internal/infrastructure/logger"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "marinews",
	Short: "海事新闻聚合与分类工具",
	Long: `MariNews是一个基于Go语言的控制台程序，用于抓取配置的RSS/Atom订阅源，
按关键词规则把每篇文章归入海事主题（港口、航运、LNG等），
并以分页列表或Top 10 Markdown文档的形式输出结果。`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// 设置信号处理
	setupSignalHandler()

	err := rootCmd.Execute()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	// 程序退出前同步日志
	defer logger.Sync()
}

func init() {
	cobra.OnInitialize(initConfig)

	// 全局标志
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径 (默认为 ./config.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// 使用指定的配置文件
		viper.SetConfigFile(cfgFile)
	} else {
		// 在当前目录中查找配置文件
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// 读取配置文件
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("使用配置文件:", viper.ConfigFileUsed())

		// 初始化日志系统
		initLogger()
	} else {
		fmt.Printf("无法读取配置文件: %v\n", err)
	}

	// 读取环境变量
	viper.AutomaticEnv()
}

// initLogger 初始化日志系统
func initLogger() {
	// 从配置文件中读取日志配置
	logConfig := logger.Config{
		Level:      viper.GetString("logger.level"),
		Console:    viper.GetBool("logger.console"),
		FilePath:   viper.GetString("logger.file_path"),
		MaxSize:    viper.GetInt("logger.max_size"),
		MaxBackups: viper.GetInt("logger.max_backups"),
		MaxAge:     viper.GetInt("logger.max_age"),
		Compress:   viper.GetBool("logger.compress"),
	}

	// 初始化日志系统
	if err := logger.Init(logConfig); err != nil {
		fmt.Printf("初始化日志系统失败: %v\n", err)
	}
}

// buildProcessParams 从配置文件和命令行参数组装流水线参数
func buildProcessParams(topic string, days int, refresh bool) model.ProcessParams {
	if days <= 0 {
		days = viper.GetInt("rss.days_back")
	}
	if days <= 0 {
		days = 30
	}

	topicsFile := viper.GetString("rss.topics_file")
	if topicsFile == "" {
		topicsFile = "topics.yaml"
	}
	feedsFile := viper.GetString("rss.feeds_file")
	if feedsFile == "" {
		feedsFile = "feeds.yaml"
	}

	return model.ProcessParams{
		Topic:      topic,
		MaxAgeDays: days,
		Refresh:    refresh,
		TopicsFile: topicsFile,
		FeedsFile:  feedsFile,
		OpmlFile:   viper.GetString("rss.opml_file"),
		FetchConfig: model.FetchConfig{
			Timeout:          viper.GetInt("fetch.timeout"),
			MaxRetries:       viper.GetInt("fetch.max_retries"),
			RetryBackoffBase: viper.GetInt("fetch.retry_backoff_base"),
			MaxRequests:      viper.GetInt64("fetch.max_requests"),
		},
		CacheConfig: model.CacheConfig{
			Enabled:    viper.GetBool("cache.enabled"),
			FilePath:   viper.GetString("cache.file_path"),
			TTLMinutes: viper.GetInt("cache.ttl_minutes"),
		},
		ExportConfig: model.ExportConfig{
			TopLimit:        viper.GetInt("export.top_limit"),
			SummaryMaxChars: viper.GetInt("export.summary_max_chars"),
		},
	}
}

// setupSignalHandler 设置信号处理函数
func setupSignalHandler() {
	c := make(chan os.Signal, 1)
	// 监听 SIGINT (Ctrl+C) 和 SIGTERM 信号
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\n接收到中断信号，正在优雅退出...")
		// 执行清理工作
		logger.Info("程序接收到中断信号，正在清理资源")
		// 同步日志
		logger.Sync()
		// 退出程序
		os.Exit(0)
	}()
}
