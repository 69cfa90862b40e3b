package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Store     StoreConfig     `mapstructure:"store"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	AWS       AWSConfig       `mapstructure:"aws"`
	Secrets   SecretsConfig   `mapstructure:"secrets"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Feed      FeedConfig      `mapstructure:"feed"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug, release, test
	BaseURL      string        `mapstructure:"base_url"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr 监听地址
func (s ServerConfig) Addr() string { return fmt.Sprintf(":%d", s.Port) }

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, console
}

// StoreConfig 文章存储后端
type StoreConfig struct {
	Backend    string `mapstructure:"backend"` // gorm, dynamodb, redis, badger
	Table      string `mapstructure:"table"`
	BadgerPath string `mapstructure:"badger_path"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // postgres, sqlite
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AWSConfig struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"` // 本地 localstack 等
}

// SecretsConfig 存放 OTP 所需密钥的对象存储位置
type SecretsConfig struct {
	Backend        string `mapstructure:"backend"` // s3, redis
	Bucket         string `mapstructure:"bucket"`
	OwnerKey       string `mapstructure:"owner_key"`
	CredentialsKey string `mapstructure:"credentials_key"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Insecure    bool   `mapstructure:"insecure"`
}

type FeedConfig struct {
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	Limit       int    `mapstructure:"limit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("store.backend", "gorm")
	v.SetDefault("store.table", "posts")
	v.SetDefault("store.badger_path", "data/badger")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "birdnest.db")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("aws.region", "us-east-1")

	v.SetDefault("secrets.backend", "s3")
	v.SetDefault("secrets.bucket", "taybird-birdnest-creds")
	v.SetDefault("secrets.owner_key", "yubikey_key_id")
	v.SetDefault("secrets.credentials_key", "yubico")

	v.SetDefault("ratelimit.rps", 1.0)
	v.SetDefault("ratelimit.burst", 5)

	v.SetDefault("sentry.environment", "production")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.service_name", "birdnest")
	v.SetDefault("tracing.insecure", true)

	v.SetDefault("feed.title", "birdnest")
	v.SetDefault("feed.limit", 10)
}

// Source 一次加载所用的 viper 实例，用于监听配置文件变更
type Source struct {
	v *viper.Viper
}

// Load 从默认路径加载配置
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile 加载配置；path 为空时按默认路径查找，找不到文件则只用默认值和环境变量
func LoadFile(path string) (*Config, error) {
	cfg, _, err := Open(path)
	return cfg, err
}

// Open 与 LoadFile 相同，同时返回配置来源供 Watch 使用
func Open(path string) (*Config, *Source, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BIRDNEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	}

	src := &Source{v: v}
	cfg, err := src.decode()
	if err != nil {
		return nil, nil, err
	}
	return cfg, src, nil
}

func (s *Source) decode() (*Config, error) {
	var cfg Config
	if err := s.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// File 实际读取的配置文件，未使用配置文件时为空
func (s *Source) File() string { return s.v.ConfigFileUsed() }

// Validate 检查枚举型配置项
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "gorm", "dynamodb", "redis", "badger":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	switch c.Secrets.Backend {
	case "s3", "redis":
	default:
		return fmt.Errorf("unknown secrets backend %q", c.Secrets.Backend)
	}
	if c.Store.Table == "" {
		return errors.New("store.table must not be empty")
	}
	if c.Secrets.Bucket == "" {
		return errors.New("secrets.bucket must not be empty")
	}
	return nil
}

// Watch 监听配置文件变更，重新解析成功时回调 onChange，失败时回调 onError 并保留旧配置。
// 未使用配置文件时不做任何事
func (s *Source) Watch(onChange func(*Config), onError func(error)) {
	if s.File() == "" {
		return
	}
	s.v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := s.decode()
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	s.v.WatchConfig()
}
