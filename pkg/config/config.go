package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	CORS       CORSConfig
	Log        LogConfig
	Graduation GraduationConfig
	Analytics  AnalyticsConfig
	Recompute  RecomputeConfig
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
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// GraduationConfig holds the credit weighting table and the optional credit floor.
type GraduationConfig struct {
	DefaultCredit   float64
	CreditOverrides map[string]float64
	StrictMode      bool
	MinCredits      float64
}

// AnalyticsConfig governs the graduation summary endpoint and its cache.
type AnalyticsConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// RecomputeConfig sizes the background re-evaluation worker pool.
type RecomputeConfig struct {
	Enabled    bool
	Workers    int
	Retries    int
	BufferSize int
	RetryDelay time.Duration
}

// creditWeightsFile is the on-disk shape of GRADUATION_CREDIT_WEIGHTS_FILE.
type creditWeightsFile struct {
	Default float64            `yaml:"default"`
	Units   map[string]float64 `yaml:"units"`
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
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
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	overrides, err := parseCreditOverrides(v.GetString("GRADUATION_CREDIT_OVERRIDES"))
	if err != nil {
		return nil, err
	}
	cfg.Graduation = GraduationConfig{
		DefaultCredit:   v.GetFloat64("GRADUATION_DEFAULT_CREDIT"),
		CreditOverrides: overrides,
		StrictMode:      v.GetBool("GRADUATION_STRICT_MODE"),
		MinCredits:      v.GetFloat64("GRADUATION_MIN_CREDITS"),
	}
	if path := v.GetString("GRADUATION_CREDIT_WEIGHTS_FILE"); path != "" {
		if err := applyCreditWeightsFile(&cfg.Graduation, path); err != nil {
			return nil, err
		}
	}

	cfg.Analytics = AnalyticsConfig{
		Enabled:  v.GetBool("ENABLE_ANALYTICS"),
		CacheTTL: parseDuration(v.GetString("ANALYTICS_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Recompute = RecomputeConfig{
		Enabled:    v.GetBool("ENABLE_RECOMPUTE"),
		Workers:    v.GetInt("RECOMPUTE_WORKERS"),
		Retries:    v.GetInt("RECOMPUTE_RETRIES"),
		BufferSize: v.GetInt("RECOMPUTE_BUFFER_SIZE"),
		RetryDelay: parseDuration(v.GetString("RECOMPUTE_RETRY_DELAY"), 2*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8000)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "ssps")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("GRADUATION_DEFAULT_CREDIT", 12.5)
	v.SetDefault("GRADUATION_CREDIT_OVERRIDES", "ICT20016:25")
	v.SetDefault("GRADUATION_CREDIT_WEIGHTS_FILE", "")
	v.SetDefault("GRADUATION_STRICT_MODE", false)
	v.SetDefault("GRADUATION_MIN_CREDITS", 300)

	v.SetDefault("ENABLE_ANALYTICS", true)
	v.SetDefault("ANALYTICS_CACHE_TTL", "10m")

	v.SetDefault("ENABLE_RECOMPUTE", true)
	v.SetDefault("RECOMPUTE_WORKERS", 2)
	v.SetDefault("RECOMPUTE_RETRIES", 3)
	v.SetDefault("RECOMPUTE_BUFFER_SIZE", 64)
	v.SetDefault("RECOMPUTE_RETRY_DELAY", "2s")
}

// parseCreditOverrides reads "CODE:weight" pairs separated by commas.
func parseCreditOverrides(raw string) (map[string]float64, error) {
	result := make(map[string]float64)
	for _, pair := range splitAndTrim(raw) {
		code, weight, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("invalid credit override %q: expected CODE:weight", pair)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
		if err != nil || value < 0 {
			return nil, fmt.Errorf("invalid credit weight for %s: %q", code, weight)
		}
		result[strings.ToUpper(strings.TrimSpace(code))] = value
	}
	return result, nil
}

func applyCreditWeightsFile(cfg *GraduationConfig, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read credit weights file: %w", err)
	}
	var file creditWeightsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse credit weights file: %w", err)
	}
	if file.Default > 0 {
		cfg.DefaultCredit = file.Default
	}
	if cfg.CreditOverrides == nil {
		cfg.CreditOverrides = make(map[string]float64, len(file.Units))
	}
	for code, weight := range file.Units {
		if weight < 0 {
			return fmt.Errorf("invalid credit weight for %s in %s", code, path)
		}
		cfg.CreditOverrides[strings.ToUpper(strings.TrimSpace(code))] = weight
	}
	return nil
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
