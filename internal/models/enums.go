package models

// Model identifies an upstream image model.
type Model string

const (
	ModelDallE2    Model = "dall-e-2"
	ModelDallE3    Model = "dall-e-3"
	ModelGPTImage1 Model = "gpt-image-1"
)

func (m Model) Valid() bool {
	switch m {
	case ModelDallE2, ModelDallE3, ModelGPTImage1:
		return true
	}
	return false
}

type ImageSize string

const (
	SizeSquare    ImageSize = "1024x1024"
	SizeLandscape ImageSize = "1536x1024"
	SizePortrait  ImageSize = "1024x1536"
)

type ImageQuality string

const (
	QualityLow      ImageQuality = "low"
	QualityStandard ImageQuality = "standard"
	QualityHigh     ImageQuality = "high" // gpt-image-1
	QualityHD       ImageQuality = "hd"   // dall-e-3
)

type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatJPEG ImageFormat = "jpeg"
	FormatWebP ImageFormat = "webp"
)

// Ext returns the file extension for the format, defaulting to png.
func (f ImageFormat) Ext() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatWebP:
		return "webp"
	default:
		return "png"
	}
}
