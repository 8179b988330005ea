package config

// MailConfig configures the timesheet email transport.
type MailConfig struct {
	Provider string `yaml:"provider"` // sendgrid
	APIKey   string `yaml:"api_key"`
	From     string `yaml:"from"`
	Subject  string `yaml:"subject"`
	Body     string `yaml:"body"`
}

// Enabled reports whether the transport has what it needs to send.
func (c MailConfig) Enabled() bool {
	return c.APIKey != "" && c.From != ""
}
