package perception

import (
	"context"
	"fmt"
)

// Extractor isolates the substantive work description from free text.
// Implementations are opaque remote calls; their output is trimmed and
// otherwise trusted.
type Extractor interface {
	ExtractWorkDescription(ctx context.Context, prompt string) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, prompt string) (string, error)

// ExtractWorkDescription calls f.
func (f ExtractorFunc) ExtractWorkDescription(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// WorkPrompt builds the extraction instruction sent for a message. It asks
// for the work done only, excluding status and date words and the literal
// "overwrite"/"update" keywords.
func WorkPrompt(message string) string {
	return fmt.Sprintf(
		"Extract only the work done from this: '%s'. Do not include status or date. Skip overwrite or update in remarks.",
		message,
	)
}
