package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"openai-image-gateway/internal/config"
	"openai-image-gateway/internal/http/middleware"
	"openai-image-gateway/internal/models"
	"openai-image-gateway/internal/ratelimit"
	"openai-image-gateway/internal/services/openai"
	"openai-image-gateway/internal/services/resolver"
	"openai-image-gateway/internal/services/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/models" {
			w.Write([]byte(`{"data":[]}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"created": time.Now().Unix(),
			"data": []map[string]string{
				{"b64_json": base64.StdEncoding.EncodeToString([]byte("generated"))},
			},
		})
	}))
}

func newTestRouter(t *testing.T, upstreamURL string, limit int) *gin.Engine {
	t.Helper()
	logger := zap.NewNop()

	cfg := &config.Config{}
	cfg.Storage.OutputDir = t.TempDir()
	cfg.Storage.MaxFileSize = 1 << 20
	cfg.Storage.AllowedFormats = []string{"png", "jpeg"}
	cfg.Storage.DefaultSize = "1024x1024"
	cfg.Storage.DefaultQuality = "standard"

	store, err := storage.New(cfg)
	require.NoError(t, err)

	res := resolver.New(cfg.Storage.MaxFileSize, cfg.Storage.AllowedContentTypes(), nil, time.Hour, logger)
	client := openai.NewClient(upstreamURL, "test-key", 5*time.Second, logger)
	service := openai.NewService(client, res, store, nil, logger)
	handler := NewImageHandler(service, res, store, logger, cfg)

	limiter := ratelimit.New(limit, time.Minute)

	router := gin.New()
	router.Use(middleware.RateLimit(limiter, logger))
	router.GET("/health", handler.HealthCheck)
	router.POST("/api/v1/images/generate", handler.Generate)
	router.POST("/api/v1/images/variations", handler.Variations)
	router.POST("/api/v1/images/edit", handler.Edit)
	return router
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func variationForm(t *testing.T, model string) (*bytes.Buffer, string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{B: 255, A: 255})
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "input.png")
	require.NoError(t, err)
	part.Write(pngBuf.Bytes())
	writer.WriteField("model", model)
	writer.Close()
	return &body, writer.FormDataContentType()
}

func TestGenerateEndpointSuccessEnvelope(t *testing.T) {
	srv := fakeUpstream(t)
	defer srv.Close()
	router := newTestRouter(t, srv.URL, 100)

	rec := postJSON(router, "/api/v1/images/generate", gin.H{
		"prompt":       "a red barn",
		"model":        "dall-e-2",
		"save_to_disk": false,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.ImageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Images, 1)
	assert.Equal(t, 0, resp.Images[0].Index)
	assert.NotEmpty(t, resp.Images[0].B64JSON)
	assert.Equal(t, "a red barn", resp.RequestParams["prompt"])
}

func TestGenerateEndpointRequiresPrompt(t *testing.T) {
	srv := fakeUpstream(t)
	defer srv.Close()
	router := newTestRouter(t, srv.URL, 100)

	rec := postJSON(router, "/api/v1/images/generate", gin.H{"model": "dall-e-2"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp models.ImageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestVariationsRejectDallE3(t *testing.T) {
	srv := fakeUpstream(t)
	defer srv.Close()
	router := newTestRouter(t, srv.URL, 100)

	body, contentType := variationForm(t, "dall-e-3")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/images/variations", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp models.ImageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "dall-e-2")
	assert.Empty(t, resp.Images)
}

func TestEditRejectsOversizeUploadAsBadRequest(t *testing.T) {
	srv := fakeUpstream(t)
	defer srv.Close()
	router := newTestRouter(t, srv.URL, 100)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "huge.png")
	require.NoError(t, err)
	part.Write(bytes.Repeat([]byte{0xAB}, 1<<20+1))
	writer.WriteField("prompt", "make it smaller")
	writer.WriteField("model", "dall-e-2")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images/edit", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp models.ImageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "exceeds maximum")
}

func TestRateLimitRejectsOverLimit(t *testing.T) {
	srv := fakeUpstream(t)
	defer srv.Close()
	router := newTestRouter(t, srv.URL, 2)

	for i := 0; i < 2; i++ {
		rec := postJSON(router, "/api/v1/images/generate", gin.H{
			"prompt":       "p",
			"model":        "dall-e-2",
			"save_to_disk": false,
		})
		require.Equal(t, http.StatusOK, rec.Code, "request %d should be admitted", i+1)
	}

	rec := postJSON(router, "/api/v1/images/generate", gin.H{
		"prompt":       "p",
		"model":        "dall-e-2",
		"save_to_disk": false,
	})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "requests per minute")
}

func TestHealthExemptFromRateLimit(t *testing.T) {
	srv := fakeUpstream(t)
	defer srv.Close()
	router := newTestRouter(t, srv.URL, 1)

	// Exhaust the limit.
	postJSON(router, "/api/v1/images/generate", gin.H{"prompt": "p", "model": "dall-e-2", "save_to_disk": false})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestHealthReportsUpstreamStatus(t *testing.T) {
	srv := fakeUpstream(t)
	defer srv.Close()
	router := newTestRouter(t, srv.URL, 100)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.Services["openai"])
	assert.Equal(t, "not configured", resp.Services["redis"])
}
