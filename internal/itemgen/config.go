package itemgen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators run in order on every generated item; the first
	// failure stops the pipeline.
	Validators []Validator

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0). Generation
	// wants variety, so the default is well above zero.
	Temperature float64

	// MaxExistingPrompts caps how many catalog prompts go into the
	// prompt for deduplication.
	MaxExistingPrompts int
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&AnswerPayloadValidator{},
		},
		MaxTokens:          768,
		Temperature:        0.7,
		MaxExistingPrompts: 20,
	}
}
