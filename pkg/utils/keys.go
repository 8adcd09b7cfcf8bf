package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateStorageKey builds a unique object key for remote storage uploads,
// keeping the original name recognizable.
func GenerateStorageKey(filename string) string {
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)
	timestamp := time.Now().Unix()
	suffix := uuid.New().String()[:8]

	return fmt.Sprintf("generated/%s_%d_%s%s", name, timestamp, suffix, ext)
}
