package storage

import (
	"context"

	storage_go "github.com/supabase-community/storage-go"
)

// HealthCheck reports the status of each optional storage backend.
func (s *Service) HealthCheck(ctx context.Context) map[string]string {
	status := make(map[string]string)

	if s.redis == nil {
		status["redis"] = "not configured"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		status["redis"] = "unhealthy: " + err.Error()
	} else {
		status["redis"] = "healthy"
	}

	if s.sbClient == nil {
		status["supabase"] = "not configured"
	} else if _, err := s.sbClient.ListFiles(s.bucket, "", storage_go.FileSearchOptions{}); err != nil {
		status["supabase"] = "unhealthy: " + err.Error()
	} else {
		status["supabase"] = "healthy"
	}

	return status
}
