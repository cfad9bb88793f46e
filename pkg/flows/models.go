package flows

// Default model identifiers, in provider/model form.
const (
	DefaultTextExtractionModel = "gemini/gemini-2.0-flash"
	DefaultCleaningModel       = "gemini/gemini-2.0-flash"
	DefaultWritingModel        = "openrouter/deepseek/deepseek-r1"
)

// DefaultMaxCharacterCount bounds the generated post length.
const DefaultMaxCharacterCount = 3000

// Models names the chat model used by each generative stage.
type Models struct {
	TextExtraction string `yaml:"text_extraction" mapstructure:"text_extraction"`
	Cleaning       string `yaml:"cleaning" mapstructure:"cleaning"`
	Writing        string `yaml:"writing" mapstructure:"writing"`
}

// DefaultModels returns the stock model selection.
func DefaultModels() Models {
	return Models{
		TextExtraction: DefaultTextExtractionModel,
		Cleaning:       DefaultCleaningModel,
		Writing:        DefaultWritingModel,
	}
}

// Or fills empty fields from def.
func (m Models) Or(def Models) Models {
	if m.TextExtraction == "" {
		m.TextExtraction = def.TextExtraction
	}
	if m.Cleaning == "" {
		m.Cleaning = def.Cleaning
	}
	if m.Writing == "" {
		m.Writing = def.Writing
	}
	return m
}
