package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// 配置文件允许的扩展名
var allowedConfigExts = map[string]bool{
	".yaml": true,
	".yml":  true,
	".opml": true,
}

// Validator 提供输入验证功能
type Validator struct{}

// NewValidator 创建新的验证器实例
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateConfigPath 验证配置文件路径安全性
func (v *Validator) ValidateConfigPath(filePath string) error {
	// 检查文件路径是否为空
	if strings.TrimSpace(filePath) == "" {
		return errors.New("文件路径不能为空")
	}

	// 使用filepath.Clean清理路径
	cleanPath := filepath.Clean(filePath)

	// 检查路径是否包含目录遍历尝试
	if strings.Contains(cleanPath, "..") || strings.Contains(cleanPath, "~") {
		return fmt.Errorf("路径包含非法字符: %s", cleanPath)
	}

	// 检查文件扩展名
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if !allowedConfigExts[ext] {
		return fmt.Errorf("不支持的配置文件格式: %s", cleanPath)
	}

	// 验证文件是否存在且不是目录
	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("文件访问失败: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("路径指向目录而非文件: %s", cleanPath)
	}

	// 验证文件大小合理性（最大10MB限制）
	if info.Size() > 10*1024*1024 {
		return fmt.Errorf("文件过大(>10MB): %s", cleanPath)
	}

	return nil
}

// ValidateURL 验证订阅源URL合法性
// 校验失败只导致该订阅源被跳过，不会中断整体抓取
func (v *Validator) ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return errors.New("URL不能为空")
	}

	// 限制协议类型
	lowerURL := strings.ToLower(rawURL)
	if !strings.HasPrefix(lowerURL, "http://") && !strings.HasPrefix(lowerURL, "https://") {
		return fmt.Errorf("只允许HTTP/HTTPS协议: %s", rawURL)
	}

	// 黑名单检查 - 禁止访问内部网络（回环地址放行，便于本地调试）
	blacklistDomains := []string{
		"0.0.0.0",
		"192.168.", "10.0.", "172.16.", "169.254.",
	}

	for _, banned := range blacklistDomains {
		if strings.Contains(lowerURL, banned) {
			return fmt.Errorf("禁止访问内部网络地址: %s", banned)
		}
	}

	return nil
}
