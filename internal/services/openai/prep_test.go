package openai

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareReferenceFlattensToPNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.Set(0, 0, color.NRGBA{R: 200, A: 128}) // semi-transparent pixel
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	out, err := prepareReference(buf.Bytes())
	require.NoError(t, err)

	decoded, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 4, decoded.Bounds().Dx())
	assert.Equal(t, 4, decoded.Bounds().Dy())
}

func TestPrepareReferenceRejectsGarbage(t *testing.T) {
	_, err := prepareReference([]byte("not an image"))
	assert.Error(t, err)
}

func TestEnhancedPromptMentionsReferenceCount(t *testing.T) {
	single := enhancedPrompt("a castle", 1)
	assert.Contains(t, single, "a castle")
	assert.Contains(t, single, "reference image")

	multi := enhancedPrompt("a castle", 3)
	assert.Contains(t, multi, "3 reference images")
}
