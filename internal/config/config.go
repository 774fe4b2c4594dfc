package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port string

	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string
	S3Bucket     string
	S3Region     string
	S3UseSSL     bool
	S3PublicURLs bool
	CreateBucket bool
	URLExpiry    time.Duration

	DefaultDPI    int
	MaxDPI        int
	MaxPDFBytes   int64
	MaxPages      int
	FetchTimeout  time.Duration
	UploadWorkers int

	RateLimitPerMinute int
	AllowedOrigins     []string

	TelegramBotToken    string
	TelegramAdminChatID int64

	LogLevel string
}

// обязательные переменные — без них сервис не стартует
var required = []string{
	"S3_ENDPOINT",
	"S3_ACCESS_KEY",
	"S3_SECRET_KEY",
	"S3_BUCKET",
}

var defaultOrigins = []string{
	"http://localhost",
	"http://localhost:8080",
	"http://localhost:3000",
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return FromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "80")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("S3_PUBLIC_URLS", false)
	v.SetDefault("S3_CREATE_BUCKET", true)
	v.SetDefault("S3_URL_EXPIRY", 24*time.Hour)
	v.SetDefault("DEFAULT_DPI", 100)
	v.SetDefault("MAX_DPI", 600)
	v.SetDefault("MAX_PDF_BYTES", int64(100<<20))
	v.SetDefault("MAX_PAGES", 3000)
	v.SetDefault("FETCH_TIMEOUT", 60*time.Second)
	v.SetDefault("UPLOAD_WORKERS", 4)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 30)
	v.SetDefault("ALLOWED_ORIGINS", strings.Join(defaultOrigins, ","))
	v.SetDefault("LOG_LEVEL", "info")
}

// FromViper собирает Config из уже настроенного viper и проверяет обязательные поля.
func FromViper(v *viper.Viper) (*Config, error) {
	for _, key := range required {
		if strings.TrimSpace(v.GetString(key)) == "" {
			return nil, fmt.Errorf("%s is not set", key)
		}
	}

	cfg := &Config{
		Port: v.GetString("PORT"),

		S3Endpoint:   v.GetString("S3_ENDPOINT"),
		S3AccessKey:  v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:  v.GetString("S3_SECRET_KEY"),
		S3Bucket:     v.GetString("S3_BUCKET"),
		S3Region:     v.GetString("S3_REGION"),
		S3UseSSL:     v.GetBool("S3_USE_SSL"),
		S3PublicURLs: v.GetBool("S3_PUBLIC_URLS"),
		CreateBucket: v.GetBool("S3_CREATE_BUCKET"),
		URLExpiry:    v.GetDuration("S3_URL_EXPIRY"),

		DefaultDPI:    v.GetInt("DEFAULT_DPI"),
		MaxDPI:        v.GetInt("MAX_DPI"),
		MaxPDFBytes:   v.GetInt64("MAX_PDF_BYTES"),
		MaxPages:      v.GetInt("MAX_PAGES"),
		FetchTimeout:  v.GetDuration("FETCH_TIMEOUT"),
		UploadWorkers: v.GetInt("UPLOAD_WORKERS"),

		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		AllowedOrigins:     splitList(v.GetString("ALLOWED_ORIGINS")),

		TelegramBotToken:    v.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramAdminChatID: v.GetInt64("TELEGRAM_ADMIN_CHAT_ID"),

		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if cfg.DefaultDPI <= 0 {
		return nil, fmt.Errorf("DEFAULT_DPI must be positive, got %d", cfg.DefaultDPI)
	}
	if cfg.MaxDPI < cfg.DefaultDPI {
		return nil, fmt.Errorf("MAX_DPI (%d) is lower than DEFAULT_DPI (%d)", cfg.MaxDPI, cfg.DefaultDPI)
	}
	if cfg.UploadWorkers <= 0 {
		cfg.UploadWorkers = 1
	}
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = 24 * time.Hour
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
