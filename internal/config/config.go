// Package config 实现 lox.toml 配置文件的加载
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// 常量定义
const (
	ConfigFileName = "lox.toml" // 配置文件名
)

// Config 解释器配置
//
// 所有字段都是可选的，缺失的配置文件等价于默认配置。
type Config struct {
	REPL        REPLConfig        `toml:"repl"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
}

// REPLConfig 交互模式配置
type REPLConfig struct {
	// Prompt 主提示符
	Prompt string `toml:"prompt"`

	// ContinuePrompt 多行续行提示符
	ContinuePrompt string `toml:"continue_prompt"`

	// HistoryFile 历史记录文件（相对家目录），空表示默认
	HistoryFile string `toml:"history_file"`
}

// DiagnosticsConfig 诊断输出配置
type DiagnosticsConfig struct {
	// Color 着色策略: "auto"（默认，探测终端）、"always"、"never"
	Color string `toml:"color"`

	// TabWidth 制表符展开宽度，0 表示默认值 4。
	// 此项只被读取和补齐，诊断输出不使用它，源码行中的制表符总是展开为 4 个空格。
	TabWidth int `toml:"tab_width"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		REPL: REPLConfig{
			Prompt:         ">>> ",
			ContinuePrompt: "... ",
			HistoryFile:    ".lox_history",
		},
		Diagnostics: DiagnosticsConfig{
			Color:    "auto",
			TabWidth: 4,
		},
	}
}

// LoadConfig 从文件加载配置
//
// 缺失的字段用默认值补齐。
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.fillDefaults()
	return config, nil
}

// Load 从指定路径向上查找并加载配置
//
// 找不到配置文件时返回默认配置。
func Load(startPath string) *Config {
	path := FindConfigFile(startPath)
	if path == "" {
		return Default()
	}

	config, err := LoadConfig(path)
	if err != nil {
		// 配置文件损坏按不存在处理，不阻止解释器启动
		return Default()
	}
	return config
}

// fillDefaults 用默认值补齐零值字段
func (c *Config) fillDefaults() {
	def := Default()

	if c.REPL.Prompt == "" {
		c.REPL.Prompt = def.REPL.Prompt
	}
	if c.REPL.ContinuePrompt == "" {
		c.REPL.ContinuePrompt = def.REPL.ContinuePrompt
	}
	if c.REPL.HistoryFile == "" {
		c.REPL.HistoryFile = def.REPL.HistoryFile
	}
	if c.Diagnostics.Color == "" {
		c.Diagnostics.Color = def.Diagnostics.Color
	}
	if c.Diagnostics.TabWidth <= 0 {
		c.Diagnostics.TabWidth = def.Diagnostics.TabWidth
	}
}

// FindConfigFile 从指定路径向上查找配置文件
//
// 返回配置文件的完整路径，找不到则返回空字符串。
func FindConfigFile(startPath string) string {
	info, err := os.Stat(startPath)
	if err != nil {
		return ""
	}

	var dir string
	if info.IsDir() {
		dir = startPath
	} else {
		dir = filepath.Dir(startPath)
	}

	dir, err = filepath.Abs(dir)
	if err != nil {
		return ""
	}

	// 向上查找
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// 已到达根目录
			return ""
		}
		dir = parent
	}
}
