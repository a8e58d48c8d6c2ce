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

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Payment    PaymentConfig
	Media      MediaConfig
	Timetable  TimetableConfig
	Transcript TranscriptConfig
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
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
	Issuer            string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PaymentConfig holds credentials for the hosted-checkout provider and the
// webhook shared secret used to verify payment notifications.
type PaymentConfig struct {
	SecretKey        string
	WebhookSecret    string
	Currency         string
	FrontendURL      string
	SignatureMaxSkew time.Duration
}

// MediaConfig controls local storage of uploaded files (assignment hand-outs,
// profile photos).
type MediaConfig struct {
	StorageDir    string
	MaxUploadSize int64
}

// TimetableConfig tunes the per-class timetable cache.
type TimetableConfig struct {
	CacheTTL time.Duration
}

// TranscriptConfig carries the institution letterhead printed on transcripts.
type TranscriptConfig struct {
	InstitutionName string
	Program         string
	DirectorName    string
	FooterAddress   string
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
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
		Issuer:            v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Payment = PaymentConfig{
		SecretKey:        v.GetString("STRIPE_SECRET_KEY"),
		WebhookSecret:    v.GetString("STRIPE_WEBHOOK_SECRET"),
		Currency:         v.GetString("PAYMENT_CURRENCY"),
		FrontendURL:      strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
		SignatureMaxSkew: parseDuration(v.GetString("WEBHOOK_SIGNATURE_MAX_SKEW"), 5*time.Minute),
	}

	maxUpload := v.GetInt64("MEDIA_MAX_UPLOAD_SIZE")
	if maxUpload <= 0 {
		maxUpload = 10 * 1024 * 1024
	}
	cfg.Media = MediaConfig{
		StorageDir:    v.GetString("MEDIA_STORAGE_DIR"),
		MaxUploadSize: maxUpload,
	}

	cfg.Timetable = TimetableConfig{
		CacheTTL: parseDuration(v.GetString("TIMETABLE_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Transcript = TranscriptConfig{
		InstitutionName: v.GetString("TRANSCRIPT_INSTITUTION"),
		Program:         v.GetString("TRANSCRIPT_PROGRAM"),
		DirectorName:    v.GetString("TRANSCRIPT_DIRECTOR"),
		FooterAddress:   v.GetString("TRANSCRIPT_FOOTER_ADDRESS"),
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
	v.SetDefault("DB_NAME", "inata")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")
	v.SetDefault("JWT_ISSUER", "inata-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	v.SetDefault("PAYMENT_CURRENCY", "mga")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("WEBHOOK_SIGNATURE_MAX_SKEW", "5m")

	v.SetDefault("MEDIA_STORAGE_DIR", "./media")
	v.SetDefault("MEDIA_MAX_UPLOAD_SIZE", 10*1024*1024)

	v.SetDefault("TIMETABLE_CACHE_TTL", "10m")

	v.SetDefault("TRANSCRIPT_INSTITUTION", "Institut des Arts et des Technologies Avancées")
	v.SetDefault("TRANSCRIPT_PROGRAM", "Informatique")
	v.SetDefault("TRANSCRIPT_DIRECTOR", "")
	v.SetDefault("TRANSCRIPT_FOOTER_ADDRESS", "")
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
