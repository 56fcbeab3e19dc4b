// Package config 加载服务配置
//
// 优先级从低到高：默认值、YAML 配置文件（HOSTING_CONFIG 指定路径）、环境变量
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jimyag/hosting/pkg/pterodactyl"
	"gopkg.in/yaml.v3"
)

// DefaultJWTSecret 开发环境使用的默认签名密钥，production 环境禁止使用
const DefaultJWTSecret = "dev-secret-change-in-production"

type Config struct {
	// Env 运行环境，例如 development、production
	// 可以通过环境变量 HOSTING_ENV 或 NODE_ENV 配置
	Env string `yaml:"env"`

	// Address 是 HTTP 服务绑定地址
	// 可以通过环境变量 HOSTING_ADDRESS 配置，也可以只通过 BACKEND_PORT / PORT 指定端口
	Address string `yaml:"address"`

	Database    DatabaseConfig    `yaml:"database"`
	Auth        AuthConfig        `yaml:"auth"`
	Pterodactyl PterodactylConfig `yaml:"pterodactyl"`
	Log         LogConfig         `yaml:"log"`

	// Warnings 加载过程中发现的非致命问题，由调用方输出
	Warnings []string `yaml:"-"`
}

// DatabaseConfig 本地存储配置
type DatabaseConfig struct {
	// Path 是 SQLite 数据库文件路径，环境变量 HOSTING_DATABASE_PATH
	Path string `yaml:"path"`
}

// AuthConfig bearer token 配置
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"` // 环境变量 JWT_SECRET
	TokenTTL  time.Duration `yaml:"token_ttl"`  // 环境变量 HOSTING_TOKEN_TTL，默认 7 天
}

// PterodactylConfig 面板配置
type PterodactylConfig struct {
	BaseURL  string                     `yaml:"base_url"` // 环境变量 PTERO_BASE_URL
	APIKey   string                     `yaml:"api_key"`  // 环境变量 PTERO_API_KEY
	Timeout  time.Duration              `yaml:"timeout"`  // 环境变量 PTERO_TIMEOUT
	Defaults pterodactyl.ServerDefaults `yaml:"defaults"` // 环境变量 PTERO_DEFAULT_*_ID
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"` // 环境变量 HOSTING_LOG_LEVEL
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Env:     "development",
		Address: "0.0.0.0:4000",
		Database: DatabaseConfig{
			Path: getDefaultDatabasePath(),
		},
		Auth: AuthConfig{
			JWTSecret: DefaultJWTSecret,
			TokenTTL:  7 * 24 * time.Hour,
		},
		Pterodactyl: PterodactylConfig{
			BaseURL: "http://localhost",
			Timeout: pterodactyl.DefaultTimeout,
			Defaults: pterodactyl.ServerDefaults{
				EggID:        1,
				NestID:       1,
				LocationID:   1,
				AllocationID: 1,
			},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// New 从配置文件和环境变量加载配置
func New() (*Config, error) {
	return Load(os.Getenv("HOSTING_CONFIG"), os.LookupEnv)
}

// Load 加载配置，path 为空时跳过配置文件
// lookup 用于读取环境变量，便于测试
func Load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Pterodactyl.APIKey == "" {
		cfg.Warnings = append(cfg.Warnings,
			"PTERO_API_KEY is not set, Pterodactyl integration will fail until it is configured")
	}

	return cfg, nil
}

// Validate 检查配置是否可用
func (c *Config) Validate() error {
	var errs []error
	if c.Address == "" {
		errs = append(errs, errors.New("address is required"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.IsProduction() && c.Auth.JWTSecret == DefaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.Pterodactyl.BaseURL == "" {
		errs = append(errs, errors.New("pterodactyl.base_url is required"))
	}
	if c.Pterodactyl.Timeout <= 0 {
		errs = append(errs, errors.New("pterodactyl.timeout must be positive"))
	}
	return errors.Join(errs...)
}

// IsProduction 是否为生产环境
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// applyEnv 使用环境变量覆盖配置
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(target *string, keys ...string) {
		for _, key := range keys {
			if v, ok := lookup(key); ok && v != "" {
				*target = v
				return
			}
		}
	}

	str(&cfg.Env, "HOSTING_ENV", "NODE_ENV")
	str(&cfg.Address, "HOSTING_ADDRESS")
	str(&cfg.Database.Path, "HOSTING_DATABASE_PATH")
	str(&cfg.Auth.JWTSecret, "JWT_SECRET")
	str(&cfg.Pterodactyl.BaseURL, "PTERO_BASE_URL")
	str(&cfg.Pterodactyl.APIKey, "PTERO_API_KEY")
	str(&cfg.Pterodactyl.Defaults.DockerImage, "PTERO_DOCKER_IMAGE")
	str(&cfg.Pterodactyl.Defaults.Startup, "PTERO_STARTUP")
	str(&cfg.Log.Level, "HOSTING_LOG_LEVEL")

	// HOSTING_ADDRESS 优先于只指定端口的 BACKEND_PORT / PORT
	if _, ok := lookup("HOSTING_ADDRESS"); !ok {
		var port string
		str(&port, "BACKEND_PORT", "PORT")
		if port != "" {
			if _, err := strconv.Atoi(port); err != nil {
				return fmt.Errorf("environment variable BACKEND_PORT/PORT must be a number: %q", port)
			}
			cfg.Address = "0.0.0.0:" + port
		}
	}

	ints := []struct {
		key    string
		target *int
	}{
		{"PTERO_DEFAULT_EGG_ID", &cfg.Pterodactyl.Defaults.EggID},
		{"PTERO_DEFAULT_NEST_ID", &cfg.Pterodactyl.Defaults.NestID},
		{"PTERO_DEFAULT_LOCATION_ID", &cfg.Pterodactyl.Defaults.LocationID},
		{"PTERO_DEFAULT_ALLOCATION_ID", &cfg.Pterodactyl.Defaults.AllocationID},
	}
	for _, item := range ints {
		v, ok := lookup(item.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("environment variable %s must be a number: %q", item.key, v)
		}
		*item.target = n
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"PTERO_TIMEOUT", &cfg.Pterodactyl.Timeout},
		{"HOSTING_TOKEN_TTL", &cfg.Auth.TokenTTL},
	}
	for _, item := range durations {
		v, ok := lookup(item.key)
		if !ok || v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("environment variable %s must be a duration: %w", item.key, err)
		}
		*item.target = d
	}

	return nil
}

// getDefaultDatabasePath 默认数据库路径
func getDefaultDatabasePath() string {
	// 1. 使用用户主目录下的 .local/share/hosting
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "hosting", "hosting.db")
	}

	// 2. 如果无法获取主目录，使用当前目录下的 data
	return filepath.Join(".", "data", "hosting.db")
}
