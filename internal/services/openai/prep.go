package openai

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	// Register webp decoding so webp references can be flattened.
	_ "golang.org/x/image/webp"
)

// prepareReference decodes a reference image and re-encodes it as PNG with
// any alpha flattened onto a white background, the only input shape the edit
// endpoint accepts reliably across formats.
func prepareReference(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid reference image: %w", err)
	}

	bg := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
	flattened := imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flattened, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode reference image: %w", err)
	}
	return buf.Bytes(), nil
}

// enhancedPrompt folds the reference context into the user prompt, since the
// edit endpoint has no separate instruction channel for references.
func enhancedPrompt(prompt string, refCount int) string {
	if refCount == 1 {
		return fmt.Sprintf("Create a new image based on this reference: %s. Use the style, composition, and visual elements from the reference image as inspiration while generating the requested scene.", prompt)
	}
	return fmt.Sprintf("Create a new image combining elements from %d reference images: %s. Synthesize the visual styles, color palettes, and artistic elements from all references into a cohesive artwork.", refCount, prompt)
}
