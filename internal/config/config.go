package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	OpenAI    OpenAIConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	Supabase  SupabaseConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type RateLimitConfig struct {
	PerMinute int
}

type StorageConfig struct {
	OutputDir      string
	MaxFileSize    int64
	AllowedFormats []string
	DefaultSize    string
	DefaultQuality string
	CacheDuration  time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	URL string
}

type SupabaseConfig struct {
	URL    string
	KEY    string
	BUCKET string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 120*time.Second),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
			Timeout: getDuration("OPENAI_TIMEOUT", 120*time.Second),
		},
		RateLimit: RateLimitConfig{
			PerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
		},
		Storage: StorageConfig{
			OutputDir:      getEnv("GENERATED_IMAGES_DIR", "generated-images"),
			MaxFileSize:    getEnvAsInt64("MAX_FILE_SIZE", 50*1000*1000),
			AllowedFormats: getEnvAsSlice("ALLOWED_IMAGE_FORMATS", []string{"png", "jpg", "jpeg", "webp"}),
			DefaultSize:    getEnv("DEFAULT_IMAGE_SIZE", "1024x1024"),
			DefaultQuality: getEnv("DEFAULT_IMAGE_QUALITY", "standard"),
			CacheDuration:  getDuration("CACHE_DURATION", 24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			URL: getEnv("RABBITMQ_URL", ""),
		},
		Supabase: SupabaseConfig{
			URL:    getEnv("SUPABASE_URL", ""),
			KEY:    getEnv("SUPABASE_KEY", ""),
			BUCKET: getEnv("SUPABASE_BUCKET", ""),
		},
	}

	if cfg.RateLimit.PerMinute <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", cfg.RateLimit.PerMinute)
	}
	if cfg.OpenAI.APIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set. Upstream calls will fail.")
	}

	return cfg, nil
}

// AllowedContentTypes maps the configured format names to the MIME types
// reported by content sniffing.
func (s StorageConfig) AllowedContentTypes() []string {
	types := make([]string, 0, len(s.AllowedFormats))
	for _, f := range s.AllowedFormats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "jpg", "jpeg":
			types = append(types, "image/jpeg")
		case "png":
			types = append(types, "image/png")
		case "webp":
			types = append(types, "image/webp")
		case "gif":
			types = append(types, "image/gif")
		}
	}
	return types
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsSlice(key string, defaultVal []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
