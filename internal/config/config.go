package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/timmy/memebazaar/internal/domain"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Generator   GeneratorConfig   `mapstructure:"generator"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	Realtime    RealtimeConfig    `mapstructure:"realtime"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Users       []domain.User     `mapstructure:"users"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
	// Metrics enables the Prometheus endpoint at MetricsPath.
	Metrics     bool   `mapstructure:"metrics"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type GeneratorConfig struct {
	Model        string        `mapstructure:"model"`
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	ResponseWait time.Duration `mapstructure:"response_wait"`
	// Memo selects where generated texts are memoized: memory or redis.
	Memo string `mapstructure:"memo"`
}

type LeaderboardConfig struct {
	TTL        time.Duration `mapstructure:"ttl"`
	Size       int           `mapstructure:"size"`
	DefaultTop int           `mapstructure:"default_top"`
}

type RealtimeConfig struct {
	// Broker is memory for a single instance or redis to fan out across instances.
	Broker        string `mapstructure:"broker"`
	ChannelPrefix string `mapstructure:"channel_prefix"`
	SendBuffer    int    `mapstructure:"send_buffer"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Load reads configuration from file, .env and environment.
// Parameters:
//   - configPath: explicit config file; empty searches ./configs and the working directory.
// Returns:
//   - *Config: resolved configuration.
//   - error: non-nil if the file exists but cannot be read or decoded.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.mode", "GIN_MODE")
	v.BindEnv("server.cors.allowed_origins", "CORS_ORIGIN")
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("database.key", "DATABASE_KEY")
	v.BindEnv("database.path", "DATABASE_PATH")
	v.BindEnv("generator.api_key", "GEMINI_API_KEY")
	v.BindEnv("generator.base_url", "GENERATOR_BASE_URL")
	v.BindEnv("generator.model", "GENERATOR_MODEL")
	v.BindEnv("realtime.broker", "REALTIME_BROKER")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.metrics", true)
	v.SetDefault("server.metrics_path", "/metrics")
	v.SetDefault("server.cors.allow_all_origins", false)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/memebazaar.db")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("generator.model", "gemini-2.0-flash")
	v.SetDefault("generator.base_url", "https://generativelanguage.googleapis.com/v1beta/openai")
	v.SetDefault("generator.timeout", 15*time.Second)
	v.SetDefault("generator.response_wait", 3*time.Second)
	v.SetDefault("generator.memo", "memory")

	v.SetDefault("leaderboard.ttl", 30*time.Second)
	v.SetDefault("leaderboard.size", 50)
	v.SetDefault("leaderboard.default_top", 10)

	v.SetDefault("realtime.broker", "memory")
	v.SetDefault("realtime.channel_prefix", "memebazaar:events")
	v.SetDefault("realtime.send_buffer", 256)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("users", []map[string]interface{}{
		{"handle": "neon_hacker", "id": 1, "name": "Neon Hacker", "credits": 1000},
		{"handle": "cyber_punk", "id": 2, "name": "Cyber Punk", "credits": 850},
		{"handle": "matrix_lord", "id": 3, "name": "Matrix Lord", "credits": 1200},
		{"handle": "glitch_master", "id": 4, "name": "Glitch Master", "credits": 750},
	})
}
