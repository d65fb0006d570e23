package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // 平台时区（如 Asia/Kolkata）不依赖宿主机时区库

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server    ServerConfig              `mapstructure:"server"`    // 服务器配置
	Database  DatabaseConfig            `mapstructure:"database"`  // PostgreSQL配置
	Sync      SyncConfig                `mapstructure:"sync"`      // 聚合调度配置
	Elastic   ElasticConfig             `mapstructure:"elastic"`   // 可选：比赛检索索引
	Platforms map[string]PlatformConfig `mapstructure:"platforms"` // 多平台独立配置（键为小写平台名）
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig PostgreSQL数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN（URL形式）
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// SyncConfig 聚合调度配置
type SyncConfig struct {
	Interval         time.Duration `mapstructure:"interval"`          // 定时聚合间隔，默认6小时
	RunOnStart       bool          `mapstructure:"run_on_start"`      // 启动时立即执行一次
	EnabledPlatforms []string      `mapstructure:"enabled_platforms"` // 启用的平台列表，为空表示全部
}

// ElasticConfig 比赛检索索引配置（URL为空时不启用）
type ElasticConfig struct {
	URL   string `mapstructure:"url"`
	Index string `mapstructure:"index"`
}

// PlatformConfig 单个平台的独立配置
type PlatformConfig struct {
	BaseURL       string   `mapstructure:"base_url"`       // 站点基础地址
	Timeout       int      `mapstructure:"timeout"`        // 请求超时（秒）
	Proxy         string   `mapstructure:"proxy"`          // 代理地址
	UserAgent     string   `mapstructure:"user_agent"`     // 浏览器UA，页面类来源会按客户端返回不同内容
	Timezone      string   `mapstructure:"timezone"`       // 页面时间的时区（如 Asia/Kolkata）
	PagePath      string   `mapstructure:"page_path"`      // 比赛列表页面路径
	APIPath       string   `mapstructure:"api_path"`       // JSON接口路径
	CalendarPath  string   `mapstructure:"calendar_path"`  // 备用日历页路径（LeetCode）
	HelperCommand []string `mapstructure:"helper_command"` // 进程外抓取助手命令（LeetCode，可选）
}

// DefaultUserAgent 未配置UA时使用的浏览器标识
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("sync.interval", 6*time.Hour)
	v.SetDefault("sync.run_on_start", true)
	v.SetDefault("elastic.index", "contests_v1")
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("ELASTIC_URL"); v != "" {
		cfg.Elastic.URL = v
	}
	if l, ok := cfg.Platforms["leetcode"]; ok {
		if v := os.Getenv("LEETCODE_HELPER"); v != "" {
			l.HelperCommand = strings.Fields(v)
		}
		if v := os.Getenv("LEETCODE_PROXY"); v != "" {
			l.Proxy = v
		}
		cfg.Platforms["leetcode"] = l
	}
	if c, ok := cfg.Platforms["codechef"]; ok {
		if v := os.Getenv("CODECHEF_PROXY"); v != "" {
			c.Proxy = v
		}
		cfg.Platforms["codechef"] = c
	}
}

// IsPlatformEnabled 平台是否启用（enabled_platforms 为空时全部启用）
func (c *Config) IsPlatformEnabled(key string) bool {
	if len(c.Sync.EnabledPlatforms) == 0 {
		return true
	}
	for _, p := range c.Sync.EnabledPlatforms {
		if strings.EqualFold(strings.TrimSpace(p), key) {
			return true
		}
	}
	return false
}

// RequestTimeout 平台请求超时，未配置时10秒
func (p *PlatformConfig) RequestTimeout() time.Duration {
	if p.Timeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(p.Timeout) * time.Second
}

// Location 平台页面时间所在时区，未配置或无法加载时用UTC
func (p *PlatformConfig) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Agent 请求使用的UA
func (p *PlatformConfig) Agent() string {
	if strings.TrimSpace(p.UserAgent) == "" {
		return DefaultUserAgent
	}
	return p.UserAgent
}
