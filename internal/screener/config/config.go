package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"token-screener/pkg/logger"
)

// 默认参考资产铸币(WSOL/USDC/USDT 主网地址)
var defaultReferenceMints = []string{
	"So11111111111111111111111111111111111111112",
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
}

// Config 定义整个配置的结构
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Screening ScreeningConfig `mapstructure:"screening"`
}

// LogConfig Log 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ServerConfig 操作服务配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type MonitorConfig struct {
	Enable         bool   `mapstructure:"enable"`
	PrometheusAddr string `mapstructure:"prometheus_addr"`
}

// UpstreamConfig 上游访问配置
type UpstreamConfig struct {
	RpcURL             string `mapstructure:"rpc_url"`
	HistoryURLTemplate string `mapstructure:"history_url_template"`
	RatePerSecond      int    `mapstructure:"rate_per_second"`
	MaxConcurrent      int    `mapstructure:"max_concurrent"`
	TimeoutMs          int    `mapstructure:"timeout_ms"`
	MaxRetries         int    `mapstructure:"max_retries"`
	RetryBaseDelayMs   int    `mapstructure:"retry_base_delay_ms"`
}

// ScreeningConfig 筛选业务配置
type ScreeningConfig struct {
	HistoryPageLimit    int     `mapstructure:"history_page_limit"`
	LargeTransferNative float64 `mapstructure:"large_transfer_native"`
	RevivalMultiplier   float64 `mapstructure:"revival_multiplier"`
	ReferenceMints      string  `mapstructure:"reference_mints"` // 逗号分隔
}

// ReferenceMintList 解析逗号分隔的参考资产铸币列表
func (c ScreeningConfig) ReferenceMintList() []string {
	parts := strings.Split(c.ReferenceMints, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ReferenceMintSet 参考资产铸币集合
func (c ScreeningConfig) ReferenceMintSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, m := range c.ReferenceMintList() {
		set[m] = struct{}{}
	}
	return set
}

// Validate 启动时校验,必填端点缺失直接失败
func (c *Config) Validate() error {
	if c.Upstream.RpcURL == "" {
		return fmt.Errorf("upstream.rpc_url is required")
	}
	if c.Upstream.HistoryURLTemplate == "" {
		return fmt.Errorf("upstream.history_url_template is required")
	}
	if !strings.Contains(c.Upstream.HistoryURLTemplate, "{address}") {
		return fmt.Errorf("upstream.history_url_template must contain the {address} placeholder")
	}
	if c.Upstream.RatePerSecond <= 0 {
		return fmt.Errorf("upstream.rate_per_second must be positive")
	}
	if c.Upstream.MaxConcurrent <= 0 {
		return fmt.Errorf("upstream.max_concurrent must be positive")
	}
	if c.Screening.RevivalMultiplier <= 0 {
		return fmt.Errorf("screening.revival_multiplier must be positive")
	}
	if len(c.Screening.ReferenceMintList()) == 0 {
		return fmt.Errorf("screening.reference_mints is required")
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("monitor.enable", true)
	viper.SetDefault("monitor.prometheus_addr", ":9090")
	viper.SetDefault("upstream.rpc_url", "")
	viper.SetDefault("upstream.history_url_template", "")
	viper.SetDefault("upstream.rate_per_second", 10)
	viper.SetDefault("upstream.max_concurrent", 5)
	viper.SetDefault("upstream.timeout_ms", 10000)
	viper.SetDefault("upstream.max_retries", 3)
	viper.SetDefault("upstream.retry_base_delay_ms", 500)
	viper.SetDefault("screening.history_page_limit", 100)
	viper.SetDefault("screening.large_transfer_native", 50)
	viper.SetDefault("screening.revival_multiplier", 3)
	viper.SetDefault("screening.reference_mints", strings.Join(defaultReferenceMints, ","))
}

func InitConfig() Config {
	var config Config

	setDefaults()

	viper.SetEnvPrefix("SCREENER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 可选的本地覆盖文件,端点仍以环境变量为准
	viper.SetConfigName("config.screener")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config/")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic(fmt.Errorf("fatal error config file: %s", err))
		}
	}

	if err := mapstructure.WeakDecode(viper.AllSettings(), &config); err != nil {
		panic(fmt.Errorf("fatal error config file: %s", err))
	}

	if err := config.Validate(); err != nil {
		panic(fmt.Errorf("invalid configuration: %s", err))
	}

	return config
}

func WatchConfig(config *Config) {
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		newConfig := InitConfig()
		*config = newConfig
		logger.SetLogLevel(config.Log.Level)
	})
}
