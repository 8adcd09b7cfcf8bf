package storage

import (
	"bytes"
	"context"
	"fmt"

	"openai-image-gateway/pkg/utils"
)

// Upload mirrors a generated image to Supabase Storage and returns its public
// URL. Returns "" without error when remote storage is not configured.
func (s *Service) Upload(_ context.Context, data []byte, filename string) (string, error) {
	if s.sbClient == nil {
		return "", nil
	}

	key := utils.GenerateStorageKey(filename)
	if _, err := s.sbClient.UploadFile(s.bucket, key, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to upload to supabase: %w", err)
	}

	publicURL := s.sbClient.GetPublicUrl(s.bucket, key)
	return publicURL.SignedURL, nil
}
