package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Quiz      QuizConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port           string
	ReadTimeout    int      `mapstructure:"read_timeout"`  // секунды
	WriteTimeout   int      `mapstructure:"write_timeout"` // секунды
	Mode           string   // режим gin: debug, release, test
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	StaticDir      string   `mapstructure:"static_dir"` // каталог с фронтендом, пустой - не раздавать
}

// LogConfig содержит настройки логирования
type LogConfig struct {
	Mode string // dev или prod
}

// QuizConfig содержит настройки приема документов викторин
type QuizConfig struct {
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
	Sample         SampleConfig
}

// SampleConfig описывает источник примера викторины.
// Если RemoteURL пуст, используется только встроенный пример.
type SampleConfig struct {
	RemoteURL       string `mapstructure:"remote_url"`
	FetchTimeoutSec int    `mapstructure:"fetch_timeout_sec"` // 0 - без таймаута
	CacheTTLSec     int    `mapstructure:"cache_ttl_sec"`
}

// FetchTimeout возвращает таймаут загрузки удаленного примера
func (s SampleConfig) FetchTimeout() time.Duration {
	return time.Duration(s.FetchTimeoutSec) * time.Second
}

// CacheTTL возвращает время жизни закешированного удаленного примера
func (s SampleConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSec) * time.Second
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Enabled: без Redis используется in-memory кеш и лимитер выключен
	Enabled bool `mapstructure:"enabled"`

	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт).
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single'. Используется, если Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс
}

// RateLimitConfig содержит настройки ограничения частоты загрузок
type RateLimitConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MaxRequests int  `mapstructure:"max_requests"`
	WindowSec   int  `mapstructure:"window_sec"`
}

// Window возвращает окно подсчета запросов
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSec) * time.Second
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 15)
	vip.SetDefault("server.write_timeout", 15)
	vip.SetDefault("server.mode", "debug")
	vip.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:3000", "http://localhost:8080"})

	vip.SetDefault("log.mode", "dev")

	vip.SetDefault("quiz.max_upload_bytes", 1<<20)
	vip.SetDefault("quiz.sample.fetch_timeout_sec", 0)
	vip.SetDefault("quiz.sample.cache_ttl_sec", 600)

	vip.SetDefault("redis.enabled", false)
	vip.SetDefault("redis.mode", "single")

	vip.SetDefault("rate_limit.enabled", false)
	vip.SetDefault("rate_limit.max_requests", 20)
	vip.SetDefault("rate_limit.window_sec", 60)
}

// Load загружает конфигурацию из .env, файла и переменных окружения
func Load(configPath string) (*Config, error) {
	// .env не обязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния
	setDefaults(vip)

	// Привязываем переменные окружения явно
	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.mode", "GIN_MODE")
	vip.BindEnv("server.static_dir", "SERVER_STATIC_DIR")
	vip.BindEnv("log.mode", "LOG_MODE")

	vip.BindEnv("quiz.max_upload_bytes", "QUIZ_MAX_UPLOAD_BYTES")
	vip.BindEnv("quiz.sample.remote_url", "QUIZ_SAMPLE_REMOTE_URL")
	vip.BindEnv("quiz.sample.fetch_timeout_sec", "QUIZ_SAMPLE_FETCH_TIMEOUT_SEC")
	vip.BindEnv("quiz.sample.cache_ttl_sec", "QUIZ_SAMPLE_CACHE_TTL_SEC")

	vip.BindEnv("redis.enabled", "REDIS_ENABLED")
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	vip.BindEnv("rate_limit.max_requests", "RATE_LIMIT_MAX_REQUESTS")
	vip.BindEnv("rate_limit.window_sec", "RATE_LIMIT_WINDOW_SEC")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// REDIS_ADDRS приходит одной строкой через запятую, возможно с пробелами
	cfg.Redis.Addrs = splitList(strings.Join(cfg.Redis.Addrs, ","))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required (check SERVER_PORT env var)")
	}
	if c.Quiz.MaxUploadBytes <= 0 {
		return fmt.Errorf("quiz.max_upload_bytes must be positive, got %d", c.Quiz.MaxUploadBytes)
	}
	if c.Redis.Enabled && len(c.Redis.Addrs) == 0 && c.Redis.Addr == "" {
		return fmt.Errorf("redis is enabled but no address is configured (check REDIS_ADDR or REDIS_ADDRS env vars)")
	}
	if c.RateLimit.Enabled {
		if !c.Redis.Enabled {
			return fmt.Errorf("rate limiting requires redis (set REDIS_ENABLED=true)")
		}
		if c.RateLimit.MaxRequests <= 0 || c.RateLimit.WindowSec <= 0 {
			return fmt.Errorf("rate limit max_requests and window_sec must be positive")
		}
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
