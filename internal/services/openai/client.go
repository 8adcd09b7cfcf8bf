package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client talks to the OpenAI images API over HTTP. Transient failures
// (network errors, 5xx) are retried once with exponential backoff. No
// idempotency key is sent, so a retry of a request that actually reached the
// provider can double-bill; 4xx responses are never retried.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// ImageDatum is one item of an upstream images response.
type ImageDatum struct {
	URL           string `json:"url,omitempty"`
	B64JSON       string `json:"b64_json,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

type imagesResponse struct {
	Created int64        `json:"created"`
	Data    []ImageDatum `json:"data"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// GeneratePayload is the JSON body for /v1/images/generations.
type GeneratePayload struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n,omitempty"`
	Size           string `json:"size,omitempty"`
	Quality        string `json:"quality,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

// EditPayload carries a multipart /v1/images/edits call. Several images are
// only meaningful for gpt-image-1 multi-reference conditioning.
type EditPayload struct {
	Model          string
	Prompt         string
	Images         [][]byte
	Mask           []byte
	N              int
	Size           string
	ResponseFormat string
}

// VariationPayload carries a multipart /v1/images/variations call.
type VariationPayload struct {
	Model          string
	Image          []byte
	N              int
	Size           string
	ResponseFormat string
}

func (c *Client) Generate(ctx context.Context, p *GeneratePayload) ([]ImageDatum, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generation payload: %w", err)
	}
	return c.postImages(ctx, "/v1/images/generations", "application/json", body)
}

func (c *Client) Edit(ctx context.Context, p *EditPayload) ([]ImageDatum, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	imageField := "image"
	if len(p.Images) > 1 {
		imageField = "image[]"
	}
	for i, img := range p.Images {
		part, err := writer.CreateFormFile(imageField, fmt.Sprintf("image_%d.png", i))
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(img); err != nil {
			return nil, err
		}
	}

	if p.Mask != nil {
		maskPart, err := writer.CreateFormFile("mask", "mask.png")
		if err != nil {
			return nil, err
		}
		if _, err := maskPart.Write(p.Mask); err != nil {
			return nil, err
		}
	}

	_ = writer.WriteField("prompt", p.Prompt)
	if p.Model != "" {
		_ = writer.WriteField("model", p.Model)
	}
	if p.N > 0 {
		_ = writer.WriteField("n", fmt.Sprintf("%d", p.N))
	}
	if p.Size != "" {
		_ = writer.WriteField("size", p.Size)
	}
	if p.ResponseFormat != "" {
		_ = writer.WriteField("response_format", p.ResponseFormat)
	}
	writer.Close()

	return c.postImages(ctx, "/v1/images/edits", writer.FormDataContentType(), buf.Bytes())
}

func (c *Client) Variations(ctx context.Context, p *VariationPayload) ([]ImageDatum, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("image", "image.png")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(p.Image); err != nil {
		return nil, err
	}

	if p.Model != "" {
		_ = writer.WriteField("model", p.Model)
	}
	if p.N > 0 {
		_ = writer.WriteField("n", fmt.Sprintf("%d", p.N))
	}
	if p.Size != "" {
		_ = writer.WriteField("size", p.Size)
	}
	if p.ResponseFormat != "" {
		_ = writer.WriteField("response_format", p.ResponseFormat)
	}
	writer.Close()

	return c.postImages(ctx, "/v1/images/variations", writer.FormDataContentType(), buf.Bytes())
}

// ListModels is the lightweight reachability probe used by /health.
func (c *Client) ListModels(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return &UpstreamError{Message: err.Error()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{Status: resp.StatusCode, Message: "models endpoint unavailable"}
	}
	return nil
}

// postImages issues the request, retrying once on transient failure. The
// body is fully buffered so each attempt replays identical bytes.
func (c *Client) postImages(ctx context.Context, path, contentType string, body []byte) ([]ImageDatum, error) {
	const attempts = 2
	backoff := time.Second

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying upstream call",
				zap.String("path", path),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		data, err := c.postOnce(ctx, path, contentType, body)
		if err == nil {
			return data, nil
		}

		var upErr *UpstreamError
		if errors.As(err, &upErr) && upErr.Transient() {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

func (c *Client) postOnce(ctx context.Context, path, contentType string, body []byte) ([]ImageDatum, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &UpstreamError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		upErr := &UpstreamError{Status: resp.StatusCode, Message: string(raw)}
		var parsed apiErrorBody
		if json.Unmarshal(raw, &parsed) == nil && parsed.Error.Message != "" {
			upErr.Message = parsed.Error.Message
			upErr.Code = parsed.Error.Code
		}
		return nil, upErr
	}

	var out imagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &UpstreamError{Status: resp.StatusCode, Message: "failed to decode response: " + err.Error()}
	}
	return out.Data, nil
}
