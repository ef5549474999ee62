package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Database DatabaseConfig `mapstructure:"database"`
	Halo     HaloConfig     `mapstructure:"halo"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host                    string        `mapstructure:"host"`
	Port                    int           `mapstructure:"port"`
	Mode                    string        `mapstructure:"mode"`
	ReadTimeout             time.Duration `mapstructure:"read_timeout"`
	WriteTimeout            time.Duration `mapstructure:"write_timeout"`
	GracefulShutdownTimeout time.Duration `mapstructure:"graceful_shutdown_timeout"`
}

type CacheConfig struct {
	Backend string `mapstructure:"backend"` // "redis" | "memory"
	TTL     int    `mapstructure:"ttl"`     // positive-entry lifetime, seconds
}

// TTLDuration returns the positive-cache lifetime. The negative-cache
// lifetime is fixed at 300s and deliberately not configurable.
func (c CacheConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	DB              string        `mapstructure:"db"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type HaloConfig struct {
	MaxRetries       int    `mapstructure:"max_retries"`
	TimeoutMS        int    `mapstructure:"timeout_ms"`
	ScreenPopBaseURL string `mapstructure:"screen_pop_base_url"`
}

func (c HaloConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

type SecretsConfig struct {
	Backend string              `mapstructure:"backend"` // "file" | "static"
	File    string              `mapstructure:"file"`
	Static  StaticSecretsConfig `mapstructure:"static"`
}

type StaticSecretsConfig struct {
	APIBaseURL   string `mapstructure:"api_base_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	TenantID     string `mapstructure:"tenant_id"`
}

type WebhookConfig struct {
	Secret string `mapstructure:"secret"`
}

type CORSConfig struct {
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
	AllowedMethods   []string      `mapstructure:"allowed_methods"`
	AllowedHeaders   []string      `mapstructure:"allowed_headers"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config.yaml, overlays environment variables, and returns Config.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Environment variable override: DATABASE_REDIS_HOST -> database.redis.host
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short env names kept from the original deployment surface.
	_ = v.BindEnv("cache.ttl", "CACHE_TTL")
	_ = v.BindEnv("halo.max_retries", "MAX_RETRIES")
	_ = v.BindEnv("halo.timeout_ms", "TIMEOUT_MS")
	_ = v.BindEnv("webhook.secret", "WEBHOOK_SECRET")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.graceful_shutdown_timeout", "10s")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", 3600)
	v.SetDefault("halo.max_retries", 3)
	v.SetDefault("halo.timeout_ms", 5000)
	v.SetDefault("secrets.backend", "static")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
