package storage

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"openai-image-gateway/internal/models"
)

// SaveImage decodes a base64 payload and writes it under a deterministic,
// collision-resistant name: generated_{batch}_{index}.{ext}. The batch
// timestamp is shared across a request so the index keeps n>1 results apart.
//
// The write goes to a temp file first and is renamed into place, so a failed
// write never leaves a partial file visible under its final name.
func (s *Service) SaveImage(b64 string, batch time.Time, index int, ext string) (*models.PersistedImage, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}

	filename := fmt.Sprintf("generated_%s_%d.%s", BatchTimestamp(batch), index, ext)
	finalPath := filepath.Join(s.outputDir, filename)

	tmp, err := os.CreateTemp(s.outputDir, ".tmp-generated-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to flush image: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to finalize image file: %w", err)
	}

	return &models.PersistedImage{
		Filename: filename,
		FilePath: finalPath,
	}, nil
}
