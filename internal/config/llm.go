package config

// LLMConfig configures the remark extraction model.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`
}

// HasCredentials reports whether an extraction client can be built.
func (c LLMConfig) HasCredentials() bool {
	return c.APIKey != ""
}
