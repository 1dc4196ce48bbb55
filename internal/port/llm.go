package port

// GenerationParams are the fixed sampling parameters for a completion call.
type GenerationParams struct {
	Temperature     float64
	MaxOutputTokens int
	TopP            float64
	TopK            int
}

// Completer generates text from a prompt.
type Completer interface {
	// Complete returns the generated text for the prompt. An empty string
	// with a nil error means the model produced no output.
	Complete(prompt string, params GenerationParams) (string, error)

	// ModelName returns the name of the completion model.
	ModelName() string
}
