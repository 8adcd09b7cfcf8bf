package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"openai-image-gateway/internal/models"
	"openai-image-gateway/internal/services/openai"
)

// Generate handles POST /api/v1/images/generate.
func (h *ImageHandler) Generate(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error(), "Failed to generate image")
		return
	}
	req.ApplyDefaults(h.config.Storage.DefaultSize, h.config.Storage.DefaultQuality)

	resp, err := h.service.Generate(c.Request.Context(), &req)
	if err != nil {
		h.respondServiceError(c, err, "Failed to generate image")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GenerateFromReferences handles POST /api/v1/images/generate-from-references.
// Entries of image_urls may be remote URLs, data URIs, or raw base64.
func (h *ImageHandler) GenerateFromReferences(c *gin.Context) {
	var req models.ReferenceGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error(), "Failed to generate image with references")
		return
	}
	req.ApplyDefaults()

	images := make([][]byte, 0, len(req.ImageURLs))
	var urls []string
	for _, src := range req.ImageURLs {
		data, isURL, err := h.resolveReferenceSource(c, src)
		if err != nil {
			h.logger.Warn("failed to resolve reference image", zap.Error(err))
			h.respondServiceError(c, err, "Failed to resolve reference image")
			return
		}
		if isURL {
			urls = append(urls, src)
		}
		images = append(images, data)
	}

	resp, err := h.service.GenerateFromReferences(c.Request.Context(), &openai.ReferenceRequest{
		Prompt:         req.Prompt,
		Model:          req.Model,
		Size:           req.Size,
		Quality:        req.Quality,
		N:              req.N,
		ResponseFormat: req.ResponseFormat,
		SaveToDisk:     *req.SaveToDisk,
		Images:         images,
		SourceURLs:     urls,
	})
	if err != nil {
		h.respondServiceError(c, err, "Failed to generate image with references")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Edit handles POST /api/v1/images/edit (multipart).
func (h *ImageHandler) Edit(c *gin.Context) {
	var form models.EditForm
	if err := c.ShouldBind(&form); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error(), "Failed to edit image")
		return
	}
	form.ApplyDefaults(h.config.Storage.DefaultSize)

	image, err := h.resolver.FromUpload(form.Image)
	if err != nil {
		h.respondServiceError(c, err, "Failed to read uploaded image")
		return
	}

	var mask []byte
	if form.Mask != nil {
		if mask, err = h.resolver.FromUpload(form.Mask); err != nil {
			h.respondServiceError(c, err, "Failed to read uploaded mask")
			return
		}
	}

	resp, err := h.service.Edit(c.Request.Context(), &openai.EditRequest{
		Prompt:         form.Prompt,
		Model:          form.Model,
		Size:           form.Size,
		N:              form.N,
		ResponseFormat: form.ResponseFormat,
		SaveToDisk:     *form.SaveToDisk,
		Image:          image,
		Mask:           mask,
	})
	if err != nil {
		h.respondServiceError(c, err, "Failed to edit image")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Variations handles POST /api/v1/images/variations (multipart).
func (h *ImageHandler) Variations(c *gin.Context) {
	var form models.VariationForm
	if err := c.ShouldBind(&form); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error(), "Failed to create variations")
		return
	}
	form.ApplyDefaults(h.config.Storage.DefaultSize)

	image, err := h.resolver.FromUpload(form.Image)
	if err != nil {
		h.respondServiceError(c, err, "Failed to read uploaded image")
		return
	}

	resp, err := h.service.Vary(c.Request.Context(), &openai.VariationRequest{
		Model:          form.Model,
		Size:           form.Size,
		N:              form.N,
		ResponseFormat: form.ResponseFormat,
		SaveToDisk:     *form.SaveToDisk,
		Image:          image,
	})
	if err != nil {
		h.respondServiceError(c, err, "Failed to create variations")
		return
	}
	c.JSON(http.StatusOK, resp)
}
