package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilityMatrix(t *testing.T) {
	assert.True(t, ModelDallE2.Capabilities().Variations)
	assert.True(t, ModelDallE2.Capabilities().Inpainting)
	assert.False(t, ModelDallE2.Capabilities().References)

	assert.True(t, ModelDallE3.Capabilities().Generate)
	assert.False(t, ModelDallE3.Capabilities().Edit)
	assert.False(t, ModelDallE3.Capabilities().Variations)

	assert.True(t, ModelGPTImage1.Capabilities().Edit)
	assert.True(t, ModelGPTImage1.Capabilities().References)
	assert.False(t, ModelGPTImage1.Capabilities().Inpainting)
}

func TestUnknownModelHasNoCapabilities(t *testing.T) {
	assert.Equal(t, Capabilities{}, Model("imagen-9000").Capabilities())
	assert.False(t, Model("imagen-9000").Valid())
}

func TestApplyDefaults(t *testing.T) {
	req := &GenerateRequest{Prompt: "p"}
	req.ApplyDefaults("1024x1024", "standard")

	assert.Equal(t, ModelDallE3, req.Model)
	assert.Equal(t, SizeSquare, req.Size)
	assert.Equal(t, QualityStandard, req.Quality)
	assert.Equal(t, 1, req.N)
	assert.Equal(t, FormatPNG, req.ResponseFormat)
	if assert.NotNil(t, req.SaveToDisk) {
		assert.True(t, *req.SaveToDisk)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	f := false
	req := &GenerateRequest{Prompt: "p", Model: ModelDallE2, N: 4, SaveToDisk: &f}
	req.ApplyDefaults("1024x1024", "standard")

	assert.Equal(t, ModelDallE2, req.Model)
	assert.Equal(t, 4, req.N)
	assert.False(t, *req.SaveToDisk)
}
