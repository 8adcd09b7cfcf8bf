package models

import "mime/multipart"

// GenerateRequest is the JSON body for POST /api/v1/images/generate.
type GenerateRequest struct {
	Prompt         string       `json:"prompt" binding:"required"`
	Model          Model        `json:"model" binding:"omitempty,oneof=dall-e-2 dall-e-3 gpt-image-1"`
	Size           ImageSize    `json:"size" binding:"omitempty,oneof=1024x1024 1536x1024 1024x1536"`
	Quality        ImageQuality `json:"quality" binding:"omitempty,oneof=low standard high hd"`
	N              int          `json:"n" binding:"omitempty,min=1,max=10"`
	ResponseFormat ImageFormat  `json:"response_format" binding:"omitempty,oneof=png jpeg webp"`
	SaveToDisk     *bool        `json:"save_to_disk"`
}

// ApplyDefaults fills unset fields. save_to_disk defaults to true, which is
// why the field is a pointer.
func (r *GenerateRequest) ApplyDefaults(size, quality string) {
	if r.Model == "" {
		r.Model = ModelDallE3
	}
	if r.Size == "" {
		r.Size = ImageSize(size)
	}
	if r.Quality == "" {
		r.Quality = ImageQuality(quality)
	}
	if r.N == 0 {
		r.N = 1
	}
	if r.ResponseFormat == "" {
		r.ResponseFormat = FormatPNG
	}
	if r.SaveToDisk == nil {
		t := true
		r.SaveToDisk = &t
	}
}

// ReferenceGenerateRequest is the JSON body for
// POST /api/v1/images/generate-from-references. Entries in ImageURLs may be
// remote URLs, data URIs, or raw base64 strings.
type ReferenceGenerateRequest struct {
	Prompt         string       `json:"prompt" binding:"required"`
	ImageURLs      []string     `json:"image_urls" binding:"required,min=1,max=5"`
	Model          Model        `json:"model" binding:"omitempty,oneof=dall-e-2 dall-e-3 gpt-image-1"`
	Size           ImageSize    `json:"size" binding:"omitempty,oneof=1024x1024 1536x1024 1024x1536"`
	Quality        ImageQuality `json:"quality" binding:"omitempty,oneof=low standard high hd"`
	N              int          `json:"n" binding:"omitempty,min=1,max=5"`
	ResponseFormat ImageFormat  `json:"response_format" binding:"omitempty,oneof=png jpeg webp"`
	SaveToDisk     *bool        `json:"save_to_disk"`
}

func (r *ReferenceGenerateRequest) ApplyDefaults() {
	if r.Model == "" {
		r.Model = ModelGPTImage1
	}
	if r.Size == "" {
		r.Size = SizeLandscape
	}
	if r.Quality == "" {
		r.Quality = QualityHigh
	}
	if r.N == 0 {
		r.N = 1
	}
	if r.ResponseFormat == "" {
		r.ResponseFormat = FormatPNG
	}
	if r.SaveToDisk == nil {
		t := true
		r.SaveToDisk = &t
	}
}

// EditForm is the multipart form for POST /api/v1/images/edit.
type EditForm struct {
	Image          *multipart.FileHeader `form:"image" binding:"required"`
	Mask           *multipart.FileHeader `form:"mask"`
	Prompt         string                `form:"prompt" binding:"required"`
	Model          Model                 `form:"model" binding:"omitempty,oneof=dall-e-2 dall-e-3 gpt-image-1"`
	Size           ImageSize             `form:"size" binding:"omitempty,oneof=1024x1024 1536x1024 1024x1536"`
	N              int                   `form:"n" binding:"omitempty,min=1,max=10"`
	ResponseFormat ImageFormat           `form:"response_format" binding:"omitempty,oneof=png jpeg webp"`
	SaveToDisk     *bool                 `form:"save_to_disk"`
}

func (f *EditForm) ApplyDefaults(size string) {
	if f.Model == "" {
		f.Model = ModelDallE2
	}
	if f.Size == "" {
		f.Size = ImageSize(size)
	}
	if f.N == 0 {
		f.N = 1
	}
	if f.ResponseFormat == "" {
		f.ResponseFormat = FormatPNG
	}
	if f.SaveToDisk == nil {
		t := true
		f.SaveToDisk = &t
	}
}

// VariationForm is the multipart form for POST /api/v1/images/variations.
// Variations take no prompt.
type VariationForm struct {
	Image          *multipart.FileHeader `form:"image" binding:"required"`
	Model          Model                 `form:"model" binding:"omitempty,oneof=dall-e-2 dall-e-3 gpt-image-1"`
	Size           ImageSize             `form:"size" binding:"omitempty,oneof=1024x1024 1536x1024 1024x1536"`
	N              int                   `form:"n" binding:"omitempty,min=1,max=10"`
	ResponseFormat ImageFormat           `form:"response_format" binding:"omitempty,oneof=png jpeg webp"`
	SaveToDisk     *bool                 `form:"save_to_disk"`
}

func (f *VariationForm) ApplyDefaults(size string) {
	if f.Model == "" {
		f.Model = ModelDallE2
	}
	if f.Size == "" {
		f.Size = ImageSize(size)
	}
	if f.N == 0 {
		f.N = 1
	}
	if f.ResponseFormat == "" {
		f.ResponseFormat = FormatPNG
	}
	if f.SaveToDisk == nil {
		t := true
		f.SaveToDisk = &t
	}
}
