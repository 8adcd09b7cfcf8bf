package storage

import (
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	storage_go "github.com/supabase-community/storage-go"

	"openai-image-gateway/internal/config"
)

// Service persists generated images to local disk and, when configured,
// mirrors them to Supabase Storage. The redis client backs the resolver's
// URL cache and the health check; both remote backends are optional.
type Service struct {
	outputDir string
	sbClient  *storage_go.Client
	bucket    string
	redis     *redis.Client
}

func New(cfg *config.Config) (*Service, error) {
	if err := os.MkdirAll(cfg.Storage.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	s := &Service{outputDir: cfg.Storage.OutputDir}

	if cfg.Supabase.URL != "" && cfg.Supabase.KEY != "" {
		s.sbClient = storage_go.NewClient(cfg.Supabase.URL+"/storage/v1", cfg.Supabase.KEY, nil)
		s.bucket = cfg.Supabase.BUCKET
	}
	if cfg.Redis.Addr != "" {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	return s, nil
}

// Redis exposes the redis client for collaborators that cache through it.
// Nil when redis is not configured.
func (s *Service) Redis() *redis.Client { return s.redis }

// OutputDir returns the directory generated images are written to.
func (s *Service) OutputDir() string { return s.outputDir }

// BatchTimestamp formats a batch instant the way persisted filenames embed it.
func BatchTimestamp(t time.Time) string {
	return t.Format("20060102_150405")
}
