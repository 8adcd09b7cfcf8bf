package models

import "time"

// GeneratedImage is one image in a successful response. FilePath and URL are
// set only when persistence was requested and succeeded; SaveError carries a
// disk failure without invalidating the image data.
type GeneratedImage struct {
	Index         int    `json:"index"`
	B64JSON       string `json:"b64_json"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
	Filename      string `json:"filename,omitempty"`
	FilePath      string `json:"file_path,omitempty"`
	URL           string `json:"url,omitempty"`
	SaveError     string `json:"save_error,omitempty"`
}

// ImageResponse is the uniform envelope returned by every image endpoint.
type ImageResponse struct {
	Success       bool             `json:"success"`
	Message       string           `json:"message"`
	Images        []GeneratedImage `json:"images,omitempty"`
	RequestParams map[string]any   `json:"request_params,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// PersistedImage reports where a generated image was written.
type PersistedImage struct {
	Filename string `json:"filename"`
	FilePath string `json:"file_path"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}

// GenerationEvent is published to the message broker after a batch completes.
type GenerationEvent struct {
	RequestID  string    `json:"request_id"`
	Operation  string    `json:"operation"`
	Model      string    `json:"model"`
	ImageCount int       `json:"image_count"`
	Files      []string  `json:"files,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
