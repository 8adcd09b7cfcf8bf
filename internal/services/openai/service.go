package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"openai-image-gateway/internal/models"
	"openai-image-gateway/internal/services/events"
	"openai-image-gateway/internal/services/resolver"
	"openai-image-gateway/internal/services/storage"
)

// ErrNoReferences is returned when a reference generation request carries no
// reference images.
var ErrNoReferences = errors.New("at least one reference image is required")

// BadReferenceError reports a reference image that could not be decoded.
type BadReferenceError struct {
	Index int
	Err   error
}

func (e *BadReferenceError) Error() string {
	return fmt.Sprintf("reference image %d: %v", e.Index, e.Err)
}

func (e *BadReferenceError) Unwrap() error { return e.Err }

// EditRequest is a normalized edit operation with resolved image bytes.
type EditRequest struct {
	Prompt         string
	Model          models.Model
	Size           models.ImageSize
	N              int
	ResponseFormat models.ImageFormat
	SaveToDisk     bool
	Image          []byte
	Mask           []byte
}

// VariationRequest is a normalized variation operation. Variations take no
// prompt.
type VariationRequest struct {
	Model          models.Model
	Size           models.ImageSize
	N              int
	ResponseFormat models.ImageFormat
	SaveToDisk     bool
	Image          []byte
}

// ReferenceRequest is a normalized multi-reference generation.
type ReferenceRequest struct {
	Prompt         string
	Model          models.Model
	Size           models.ImageSize
	Quality        models.ImageQuality
	N              int
	ResponseFormat models.ImageFormat
	SaveToDisk     bool
	Images         [][]byte
	SourceURLs     []string
}

// Service orchestrates upstream calls: it validates model capabilities
// before any network round trip, dispatches the call, and merges results,
// persistence paths, and request parameters into the response envelope.
type Service struct {
	client   *Client
	resolver *resolver.Resolver
	storage  *storage.Service
	events   *events.Publisher
	logger   *zap.Logger
}

func NewService(client *Client, res *resolver.Resolver, store *storage.Service, pub *events.Publisher, logger *zap.Logger) *Service {
	return &Service{
		client:   client,
		resolver: res,
		storage:  store,
		events:   pub,
		logger:   logger,
	}
}

// Generate creates images from a text prompt. dall-e-3 only accepts n=1
// upstream, so larger batches fan out into parallel single-image calls;
// result ordering by index holds regardless.
func (s *Service) Generate(ctx context.Context, req *models.GenerateRequest) (*models.ImageResponse, error) {
	if !req.Model.Capabilities().Generate {
		return nil, &CapabilityError{
			Model:     string(req.Model),
			Operation: "generate",
			Reason:    fmt.Sprintf("model %s does not support generation", req.Model),
		}
	}

	var data []ImageDatum
	var err error
	if req.Model == models.ModelDallE3 && req.N > 1 {
		data, err = s.fanOutGenerate(ctx, req)
	} else {
		data, err = s.client.Generate(ctx, &GeneratePayload{
			Model:          string(req.Model),
			Prompt:         req.Prompt,
			N:              req.N,
			Size:           string(req.Size),
			Quality:        string(req.Quality),
			ResponseFormat: upstreamResponseFormat(req.Model),
		})
	}
	if err != nil {
		return nil, err
	}

	images, notes := s.assemble(ctx, data, time.Now(), *req.SaveToDisk, req.ResponseFormat)
	if len(images) == 0 {
		return nil, &UpstreamError{Message: noImagesMessage(notes)}
	}

	s.publishEvent("generate", req.Model, images)

	return successEnvelope(images, notes, map[string]any{
		"model":   req.Model,
		"prompt":  req.Prompt,
		"size":    req.Size,
		"quality": req.Quality,
		"n":       req.N,
	}), nil
}

func (s *Service) fanOutGenerate(ctx context.Context, req *models.GenerateRequest) ([]ImageDatum, error) {
	data := make([]ImageDatum, req.N)
	errs := make([]error, req.N)

	var wg sync.WaitGroup
	for i := 0; i < req.N; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			out, err := s.client.Generate(ctx, &GeneratePayload{
				Model:          string(req.Model),
				Prompt:         req.Prompt,
				N:              1,
				Size:           string(req.Size),
				Quality:        string(req.Quality),
				ResponseFormat: upstreamResponseFormat(req.Model),
			})
			if err != nil {
				errs[slot] = err
				return
			}
			if len(out) == 0 {
				errs[slot] = &UpstreamError{Message: "empty upstream response"}
				return
			}
			data[slot] = out[0]
		}(i)
	}
	wg.Wait()

	failed := 0
	var firstErr error
	for _, e := range errs {
		if e != nil {
			failed++
			if firstErr == nil {
				firstErr = e
			}
		}
	}
	if failed == req.N {
		return nil, firstErr
	}
	if failed > 0 {
		s.logger.Warn("partial batch failure", zap.Int("failed", failed), zap.Int("requested", req.N))
	}
	return data, nil
}

// Edit modifies an existing image with a prompt. A mask is only forwarded to
// inpainting-capable models; anything else fails here, before the network.
func (s *Service) Edit(ctx context.Context, req *EditRequest) (*models.ImageResponse, error) {
	caps := req.Model.Capabilities()
	if !caps.Edit {
		return nil, &CapabilityError{
			Model:     string(req.Model),
			Operation: "edit",
			Reason:    fmt.Sprintf("model %s does not support image edits", req.Model),
		}
	}
	if req.Mask != nil && !caps.Inpainting {
		return nil, &CapabilityError{
			Model:     string(req.Model),
			Operation: "edit",
			Reason:    fmt.Sprintf("mask-based inpainting is not supported by %s", req.Model),
		}
	}

	data, err := s.client.Edit(ctx, &EditPayload{
		Model:          string(req.Model),
		Prompt:         req.Prompt,
		Images:         [][]byte{req.Image},
		Mask:           req.Mask,
		N:              req.N,
		Size:           string(req.Size),
		ResponseFormat: upstreamResponseFormat(req.Model),
	})
	if err != nil {
		return nil, err
	}

	images, notes := s.assemble(ctx, data, time.Now(), req.SaveToDisk, req.ResponseFormat)
	if len(images) == 0 {
		return nil, &UpstreamError{Message: noImagesMessage(notes)}
	}

	s.publishEvent("edit", req.Model, images)

	return successEnvelope(images, notes, map[string]any{
		"model":    req.Model,
		"prompt":   req.Prompt,
		"size":     req.Size,
		"n":        req.N,
		"has_mask": req.Mask != nil,
	}), nil
}

// Vary creates variations of an existing image. Only dall-e-2 supports this.
func (s *Service) Vary(ctx context.Context, req *VariationRequest) (*models.ImageResponse, error) {
	if !req.Model.Capabilities().Variations {
		return nil, &CapabilityError{
			Model:     string(req.Model),
			Operation: "variations",
			Reason:    fmt.Sprintf("variations are not supported by %s; use dall-e-2", req.Model),
		}
	}

	data, err := s.client.Variations(ctx, &VariationPayload{
		Model:          string(req.Model),
		Image:          req.Image,
		N:              req.N,
		Size:           string(req.Size),
		ResponseFormat: upstreamResponseFormat(req.Model),
	})
	if err != nil {
		return nil, err
	}

	images, notes := s.assemble(ctx, data, time.Now(), req.SaveToDisk, req.ResponseFormat)
	if len(images) == 0 {
		return nil, &UpstreamError{Message: noImagesMessage(notes)}
	}

	s.publishEvent("variations", req.Model, images)

	return successEnvelope(images, notes, map[string]any{
		"model": req.Model,
		"size":  req.Size,
		"n":     req.N,
	}), nil
}

// GenerateFromReferences conditions generation on one or more reference
// images via the edit endpoint. Only gpt-image-1 understands multiple
// references.
func (s *Service) GenerateFromReferences(ctx context.Context, req *ReferenceRequest) (*models.ImageResponse, error) {
	if !req.Model.Capabilities().References {
		return nil, &CapabilityError{
			Model:     string(req.Model),
			Operation: "generate_from_references",
			Reason:    fmt.Sprintf("reference-based generation is not supported by %s; use gpt-image-1", req.Model),
		}
	}
	if len(req.Images) == 0 {
		return nil, ErrNoReferences
	}

	prepared := make([][]byte, len(req.Images))
	for i, raw := range req.Images {
		p, err := prepareReference(raw)
		if err != nil {
			return nil, &BadReferenceError{Index: i, Err: err}
		}
		prepared[i] = p
	}

	prompt := enhancedPrompt(req.Prompt, len(prepared))

	data, err := s.client.Edit(ctx, &EditPayload{
		Model:  string(req.Model),
		Prompt: prompt,
		Images: prepared,
		N:      req.N,
		Size:   string(req.Size),
	})
	if err != nil {
		return nil, err
	}

	images, notes := s.assemble(ctx, data, time.Now(), req.SaveToDisk, req.ResponseFormat)
	if len(images) == 0 {
		return nil, &UpstreamError{Message: noImagesMessage(notes)}
	}

	s.publishEvent("generate_from_references", req.Model, images)

	params := map[string]any{
		"model":           req.Model,
		"original_prompt": req.Prompt,
		"enhanced_prompt": prompt,
		"size":            req.Size,
		"n":               req.N,
		"reference_count": len(req.Images),
		"note":            "quality parameter not supported by the edit endpoint",
	}
	if len(req.SourceURLs) > 0 {
		params["reference_urls"] = req.SourceURLs
	}
	return successEnvelope(images, notes, params), nil
}

// statusProbeTimeout bounds the health probe independently of the much
// longer generation timeout, so a hung upstream cannot stall /health.
const statusProbeTimeout = 5 * time.Second

// CheckStatus probes upstream reachability for the health endpoint.
func (s *Service) CheckStatus(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, statusProbeTimeout)
	defer cancel()

	if err := s.client.ListModels(ctx); err != nil {
		s.logger.Warn("upstream status check failed", zap.Error(err))
		return "unhealthy"
	}
	return "healthy"
}

// assemble maps upstream items into response images, downloading URL-only
// payloads, persisting to disk when requested, and collecting notes for any
// item that could not be recovered. A disk failure is recorded on the image
// but never drops it.
func (s *Service) assemble(ctx context.Context, data []ImageDatum, batch time.Time, saveToDisk bool, format models.ImageFormat) ([]models.GeneratedImage, []string) {
	var images []models.GeneratedImage
	var notes []string

	for idx, d := range data {
		b64 := d.B64JSON
		if b64 == "" && d.URL != "" {
			raw, err := s.resolver.FromURL(ctx, d.URL)
			if err != nil {
				s.logger.Warn("failed to download upstream image", zap.Int("index", idx), zap.Error(err))
				notes = append(notes, fmt.Sprintf("image %d could not be downloaded", idx))
				continue
			}
			b64 = base64.StdEncoding.EncodeToString(raw)
		}
		if b64 == "" {
			notes = append(notes, fmt.Sprintf("image %d returned no payload", idx))
			continue
		}

		img := models.GeneratedImage{
			Index:         idx,
			B64JSON:       b64,
			RevisedPrompt: d.RevisedPrompt,
		}

		if saveToDisk {
			persisted, err := s.storage.SaveImage(b64, batch, idx, format.Ext())
			if err != nil {
				s.logger.Warn("failed to persist image", zap.Int("index", idx), zap.Error(err))
				img.SaveError = err.Error()
			} else {
				img.Filename = persisted.Filename
				img.FilePath = persisted.FilePath
				if raw, decErr := base64.StdEncoding.DecodeString(b64); decErr == nil {
					url, upErr := s.storage.Upload(ctx, raw, persisted.Filename)
					if upErr != nil {
						s.logger.Warn("failed to upload image to remote storage", zap.Error(upErr))
					} else {
						img.URL = url
					}
				}
			}
		}

		images = append(images, img)
	}

	return images, notes
}

func (s *Service) publishEvent(operation string, model models.Model, images []models.GeneratedImage) {
	files := make([]string, 0, len(images))
	for _, img := range images {
		if img.Filename != "" {
			files = append(files, img.Filename)
		}
	}
	s.events.PublishGeneration(&models.GenerationEvent{
		RequestID:  uuid.New().String(),
		Operation:  operation,
		Model:      string(model),
		ImageCount: len(images),
		Files:      files,
		CreatedAt:  time.Now(),
	})
}

// upstreamResponseFormat asks dall-e models for base64 payloads; gpt-image-1
// always returns base64 and rejects the parameter.
func upstreamResponseFormat(m models.Model) string {
	if m == models.ModelGPTImage1 {
		return ""
	}
	return "b64_json"
}

func successEnvelope(images []models.GeneratedImage, notes []string, params map[string]any) *models.ImageResponse {
	msg := fmt.Sprintf("Successfully generated %d image(s)", len(images))
	if len(notes) > 0 {
		msg += " (partial batch: " + strings.Join(notes, "; ") + ")"
	}
	return &models.ImageResponse{
		Success:       true,
		Message:       msg,
		Images:        images,
		RequestParams: params,
	}
}

func noImagesMessage(notes []string) string {
	if len(notes) > 0 {
		return "no images could be recovered: " + strings.Join(notes, "; ")
	}
	return "upstream returned no images"
}
