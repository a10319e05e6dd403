package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	CORS        CORSConfig
	Log         LogConfig
	Recognition RecognitionConfig
	Reports     ReportsConfig
	AuditLog    AuditLogConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RecognitionConfig tunes the face identification pipeline. MatchThreshold is
// the acceptance bound applied to the comparison service's raw distance.
type RecognitionConfig struct {
	ServiceURL       string
	MatchThreshold   float64
	FacesDir         string
	CapturesDir      string
	CompareTimeout   time.Duration
	DownloadTokenTTL time.Duration
}

// ReportsConfig governs attendance summary caching.
type ReportsConfig struct {
	CacheTTL time.Duration
}

// AuditLogConfig configures the background writer for recognition audit rows.
type AuditLogConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Recognition = RecognitionConfig{
		ServiceURL:       v.GetString("RECOGNITION_SERVICE_URL"),
		MatchThreshold:   v.GetFloat64("RECOGNITION_MATCH_THRESHOLD"),
		FacesDir:         v.GetString("RECOGNITION_FACES_DIR"),
		CapturesDir:      v.GetString("RECOGNITION_CAPTURES_DIR"),
		CompareTimeout:   parseDuration(v.GetString("RECOGNITION_COMPARE_TIMEOUT"), 30*time.Second),
		DownloadTokenTTL: parseDuration(v.GetString("RECOGNITION_DOWNLOAD_TOKEN_TTL"), 15*time.Minute),
	}

	cfg.Reports = ReportsConfig{
		CacheTTL: parseDuration(v.GetString("REPORTS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.AuditLog = AuditLogConfig{
		Workers:    v.GetInt("AUDIT_LOG_WORKERS"),
		MaxRetries: v.GetInt("AUDIT_LOG_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("AUDIT_LOG_RETRY_DELAY"), time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "attendance")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "1h")
	v.SetDefault("JWT_ISSUER", "attendance-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("RECOGNITION_SERVICE_URL", "http://localhost:5000")
	v.SetDefault("RECOGNITION_MATCH_THRESHOLD", 0.4)
	v.SetDefault("RECOGNITION_FACES_DIR", "./images/faces")
	v.SetDefault("RECOGNITION_CAPTURES_DIR", "./images/captured")
	v.SetDefault("RECOGNITION_COMPARE_TIMEOUT", "30s")
	v.SetDefault("RECOGNITION_DOWNLOAD_TOKEN_TTL", "15m")

	v.SetDefault("REPORTS_CACHE_TTL", "5m")

	v.SetDefault("AUDIT_LOG_WORKERS", 1)
	v.SetDefault("AUDIT_LOG_MAX_RETRIES", 3)
	v.SetDefault("AUDIT_LOG_RETRY_DELAY", "1s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
