// Package resolver normalizes heterogeneous image sources (remote URL,
// uploaded file, base64 string) into raw bytes. It validates and passes
// bytes through without re-encoding pixel data.
package resolver

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Resolver struct {
	httpClient *http.Client
	maxSize    int64
	allowed    map[string]struct{}
	redis      *redis.Client // nil disables caching
	cacheTTL   time.Duration
	logger     *zap.Logger
}

func New(maxSize int64, allowedTypes []string, redisClient *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *Resolver {
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[strings.ToLower(t)] = struct{}{}
	}
	return &Resolver{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxSize:    maxSize,
		allowed:    allowed,
		redis:      redisClient,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// FromURL downloads an image with a bounded timeout and size ceiling.
// Successful downloads are cached in redis keyed by URL hash so repeated
// reference URLs skip the network.
func (r *Resolver) FromURL(ctx context.Context, rawURL string) ([]byte, error) {
	cacheKey := fmt.Sprintf("img_url:%x", md5.Sum([]byte(rawURL)))
	if data := r.cacheGet(ctx, cacheKey); data != nil {
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("Accept", "image/webp,image/apng,image/*,*/*;q=0.8")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: rawURL, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxSize+1))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	if int64(len(data)) > r.maxSize {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("image exceeds maximum size of %d bytes", r.maxSize)}
	}
	if len(data) == 0 {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("empty image data")}
	}

	if err := r.checkFormat(data); err != nil {
		return nil, err
	}

	r.cacheSet(ctx, cacheKey, data)
	return data, nil
}

// FromUpload reads an uploaded multipart file, enforcing the size ceiling and
// allowed formats.
func (r *Resolver) FromUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > r.maxSize {
		return nil, &OversizeError{Size: fh.Size, Limit: r.maxSize}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, &UploadError{Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, r.maxSize+1))
	if err != nil {
		return nil, &UploadError{Err: err}
	}
	if int64(len(data)) > r.maxSize {
		return nil, &OversizeError{Limit: r.maxSize}
	}

	if err := r.checkFormat(data); err != nil {
		return nil, err
	}
	return data, nil
}

// FromBase64 decodes a base64 string, tolerating a data-URI prefix.
func (r *Resolver) FromBase64(s string) ([]byte, error) {
	if i := strings.Index(s, ";base64,"); strings.HasPrefix(s, "data:") && i >= 0 {
		s = s[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if err := r.checkFormat(data); err != nil {
		return nil, err
	}
	return data, nil
}

func (r *Resolver) checkFormat(data []byte) error {
	contentType := http.DetectContentType(data)
	if _, ok := r.allowed[strings.ToLower(contentType)]; !ok {
		return &UnsupportedFormatError{ContentType: contentType}
	}
	return nil
}

func (r *Resolver) cacheGet(ctx context.Context, key string) []byte {
	if r.redis == nil {
		return nil
	}
	data, err := r.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("image cache get failed", zap.Error(err))
		}
		return nil
	}
	return data
}

func (r *Resolver) cacheSet(ctx context.Context, key string, data []byte) {
	if r.redis == nil {
		return
	}
	if err := r.redis.Set(ctx, key, data, r.cacheTTL).Err(); err != nil {
		r.logger.Warn("image cache set failed", zap.Error(err))
	}
}
