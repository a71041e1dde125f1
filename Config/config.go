package Config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Auth        AuthConfig     `mapstructure:"auth"`
	Logging     LoggingConfig  `mapstructure:"logging"`
	Sessions    SessionsConfig `mapstructure:"sessions"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Editor      EditorConfig   `mapstructure:"editor"`
}

type ServerConfig struct {
	Address     string   `mapstructure:"address"`
	BodyLimit   int      `mapstructure:"body_limit"`
	CorsOrigins []string `mapstructure:"cors_origins"`
	Templates   string   `mapstructure:"templates"`
}

// DatabaseConfig selects the gorm dialector. Driver is one of sqlite, postgres, mysql.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LoggingConfig struct {
	Level     string   `mapstructure:"level"`
	File      string   `mapstructure:"file"`
	SkipPaths []string `mapstructure:"skip_paths"`
}

// SessionsConfig controls where editor sessions live between requests.
type SessionsConfig struct {
	Backend string        `mapstructure:"backend"` // memory, redis
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type EditorConfig struct {
	// AtomicReplace wraps header update + detail replacement in one transaction.
	AtomicReplace bool `mapstructure:"atomic_replace"`
}

// Load reads config.yaml from path (if present), then environment variables
// prefixed with RIDERBROSS_. A .env file in the working directory is loaded first.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}

	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, errors.Wrap(err, "error reading config file")
		}
		log.Warn().Msg("no config file found, using defaults and environment")
	}

	v.SetEnvPrefix("RIDERBROSS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "unable to unmarshal config")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("server.address", "0.0.0.0:8080")
	// photos travel base64-encoded inside JSON, leave room above the 900KB ceiling
	v.SetDefault("server.body_limit", 16*1024*1024)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.templates", "./Templates")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "riderbross.db")

	v.SetDefault("auth.jwt_secret", "secret")
	v.SetDefault("auth.token_ttl", "24h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "logs/requests.log")
	v.SetDefault("logging.skip_paths", []string{"/health", "/static"})

	v.SetDefault("sessions.backend", "memory")
	v.SetDefault("sessions.ttl", "2h")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("editor.atomic_replace", false)
}
