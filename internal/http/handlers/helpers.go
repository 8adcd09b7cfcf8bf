package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"openai-image-gateway/internal/models"
	"openai-image-gateway/internal/services/openai"
	"openai-image-gateway/internal/services/resolver"
)

// resolveReferenceSource turns one image_urls entry into raw bytes. Remote
// URLs are fetched; anything else is treated as base64 (optionally a data
// URI).
func (h *ImageHandler) resolveReferenceSource(c *gin.Context, src string) ([]byte, bool, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		data, err := h.resolver.FromURL(c.Request.Context(), src)
		return data, true, err
	}
	data, err := h.resolver.FromBase64(src)
	return data, false, err
}

func (h *ImageHandler) respondError(c *gin.Context, statusCode int, errMsg, message string) {
	c.JSON(statusCode, models.ImageResponse{
		Success: false,
		Error:   errMsg,
		Message: message,
	})
}

func (h *ImageHandler) respondServiceError(c *gin.Context, err error, message string) {
	h.respondError(c, statusForError(err), err.Error(), message)
}

// statusForError maps the service error taxonomy onto HTTP status codes.
// Capability and resolution failures are the caller's fault; upstream 5xx
// and network failures surface as bad gateway.
func statusForError(err error) int {
	var (
		capErr    *openai.CapabilityError
		refErr    *openai.BadReferenceError
		upErr     *openai.UpstreamError
		fetchErr  *resolver.FetchError
		formatErr *resolver.UnsupportedFormatError
		decodeErr *resolver.DecodeError
		sizeErr   *resolver.OversizeError
		uploadErr *resolver.UploadError
	)

	switch {
	case errors.As(err, &capErr),
		errors.As(err, &refErr),
		errors.As(err, &fetchErr),
		errors.As(err, &formatErr),
		errors.As(err, &decodeErr),
		errors.As(err, &sizeErr),
		errors.As(err, &uploadErr),
		errors.Is(err, openai.ErrNoReferences):
		return http.StatusBadRequest
	case errors.As(err, &upErr):
		if upErr.Status >= 400 && upErr.Status < 500 {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
