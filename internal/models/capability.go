package models

// Capabilities describes which operations and parameters a model supports.
type Capabilities struct {
	Generate   bool
	Edit       bool
	Inpainting bool // mask parameter on edit
	Variations bool
	References bool // multi-image conditioning
}

// Adding a model is a one-line change here; all operation checks read from
// this table before any upstream call is made.
var modelCapabilities = map[Model]Capabilities{
	ModelDallE2: {
		Generate:   true,
		Edit:       true,
		Inpainting: true,
		Variations: true,
	},
	ModelDallE3: {
		Generate: true,
	},
	ModelGPTImage1: {
		Generate:   true,
		Edit:       true,
		References: true,
	},
}

// Capabilities returns the capability set for the model. Unknown models have
// no capabilities.
func (m Model) Capabilities() Capabilities {
	return modelCapabilities[m]
}
