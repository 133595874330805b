package api

import "fmt"

// ValidationConfig holds configurable limits for request validation.
type ValidationConfig struct {
	MaxMessages    int
	MaxContentSize int
}

// DefaultValidationConfig returns a ValidationConfig with sensible defaults.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MaxMessages:    1000,
		MaxContentSize: 1 * 1024 * 1024, // 1MB of message text
	}
}

// ValidateRequest checks a ChatRequest against transport limits. It returns
// an *APIError describing the first violation, or nil.
//
// Semantic problems (unknown model, no messages, no prompt) are deliberately
// not checked here: those are handled inside the pipe, which reports them as
// displayable strings rather than HTTP errors.
func ValidateRequest(req *ChatRequest, cfg ValidationConfig) *APIError {
	if cfg.MaxMessages > 0 && len(req.Messages) > cfg.MaxMessages {
		return NewInvalidRequestError("messages",
			fmt.Sprintf("messages exceeds maximum of %d", cfg.MaxMessages))
	}

	if cfg.MaxContentSize > 0 {
		total := 0
		for _, msg := range req.Messages {
			total += contentLength(msg.Content)
			if total > cfg.MaxContentSize {
				return NewInvalidRequestError("messages",
					fmt.Sprintf("message content exceeds maximum of %d bytes", cfg.MaxContentSize))
			}
		}
	}

	return nil
}

func contentLength(c MessageContent) int {
	if c.Parts == nil {
		return len(c.Text)
	}
	total := 0
	for _, part := range c.Parts {
		total += len(part.Text) + len(part.URL)
	}
	return total
}
