package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	// PublicBaseURL prefixes every campaign share link.
	PublicBaseURL string

	OTLPEndpoint  string
	SnowflakeNode int64

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	ToolsConfigPath string

	Codes     CodeConfig
	Linking   LinkingConfig
	RateLimit RateLimitConfig
	Bootstrap BootstrapConfig
}

type CodeConfig struct {
	Length      int
	MaxAttempts int
}

type LinkingConfig struct {
	MaxTries int
}

type RateLimitConfig struct {
	Enabled         bool
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CompletionRate  float64
	CompletionBurst int
}

type BootstrapConfig struct {
	CompanyName   string
	CompanyDomain string
	AdminEmail    string
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:           getenv("APP_SERVICE", "pulse"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		PublicBaseURL:     strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		OTLPEndpoint:      getenv("OTLP_ENDPOINT", "localhost:4317"),
		SnowflakeNode:     getenvInt64("SNOWFLAKE_NODE", 1),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "pulse"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBPath:            getenv("DATABASE_PATH", "pulse.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		ToolsConfigPath:   strings.TrimSpace(getenv("TOOLS_CONFIG_PATH", "")),
		Codes: CodeConfig{
			Length:      getenvInt("CODE_LENGTH", 8),
			MaxAttempts: getenvInt("CODE_MAX_ATTEMPTS", 10),
		},
		Linking: LinkingConfig{
			MaxTries: getenvInt("LINKING_MAX_TRIES", 3),
		},
		RateLimit: RateLimitConfig{
			Enabled:         getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:       strings.TrimSpace(getenv("REDIS_ADDR", "")),
			RedisPassword:   strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			RedisDB:         getenvInt("REDIS_DB", 0),
			CompletionRate:  getenvFloat("RATE_LIMIT_COMPLETION_RATE", 1),
			CompletionBurst: getenvInt("RATE_LIMIT_COMPLETION_BURST", 5),
		},
		Bootstrap: BootstrapConfig{
			CompanyName:   strings.TrimSpace(getenv("BOOTSTRAP_COMPANY_NAME", "")),
			CompanyDomain: strings.ToLower(strings.TrimSpace(getenv("BOOTSTRAP_COMPANY_DOMAIN", ""))),
			AdminEmail:    strings.ToLower(strings.TrimSpace(getenv("BOOTSTRAP_ADMIN_EMAIL", ""))),
		},
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
