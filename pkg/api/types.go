package api

import (
	"encoding/json"
	"fmt"
)

// ---------------------------------------------------------------------------
// Message content types
// ---------------------------------------------------------------------------

// ContentPart represents one segment of structured message content.
// The Type field indicates the kind of segment: text or image_url.
type ContentPart struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	URL       string `json:"url,omitempty"`
	MediaType string `json:"media_type,omitempty"`
}

// Content segment types.
const (
	ContentTypeText     = "text"
	ContentTypeImageURL = "image_url"
)

// MessageContent holds message content in either of its two wire forms:
// a bare string or an array of typed parts. Exactly one of Text and Parts
// is meaningful; Parts being non-nil marks the array form.
type MessageContent struct {
	Text  string        `json:"-"`
	Parts []ContentPart `json:"-"`
}

// StringContent creates content in the bare-string wire form.
func StringContent(text string) MessageContent {
	return MessageContent{Text: text}
}

// PartsContent creates content in the part-array wire form.
func PartsContent(parts ...ContentPart) MessageContent {
	if parts == nil {
		parts = []ContentPart{}
	}
	return MessageContent{Parts: parts}
}

// MarshalJSON serializes MessageContent as either a JSON string or a JSON array.
func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.Parts != nil {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

// UnmarshalJSON deserializes MessageContent from either a JSON string or a
// JSON array of parts. Null is treated as empty string content.
func (c *MessageContent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		c.Text = ""
		c.Parts = nil
		return nil
	}

	// Try string first.
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		c.Parts = nil
		return nil
	}

	var parts []ContentPart
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("content must be a string or an array of parts: %w", err)
	}
	c.Text = ""
	c.Parts = parts
	if c.Parts == nil {
		c.Parts = []ContentPart{}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Messages and requests
// ---------------------------------------------------------------------------

// MessageRole represents the role of a message sender.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Message is a single role-tagged entry of a conversation.
type Message struct {
	Role    MessageRole    `json:"role"`
	Content MessageContent `json:"content"`
}

// ChatRequest represents the request body for a pipe invocation: the
// model identifier selected in the calling UI plus the conversation so far.
type ChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream,omitempty"`
	User     string         `json:"user,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ---------------------------------------------------------------------------
// Results and advertised models
// ---------------------------------------------------------------------------

// PipeStatus represents the terminal outcome of a pipe invocation.
type PipeStatus string

const (
	PipeStatusCompleted PipeStatus = "completed"
	PipeStatusFailed    PipeStatus = "failed"
)

// PipeResult is the outcome of one pipe invocation. Content is always a
// displayable string: a markdown image reference on success, an
// "Error: ..." line on failure. The pipe never surfaces an error value.
type PipeResult struct {
	Content string     `json:"content"`
	Status  PipeStatus `json:"status"`
}

// ObjectPipeResponse is the object discriminator of PipeResponse.
const ObjectPipeResponse = "pipe.response"

// PipeResponse is the JSON envelope returned for non-streaming invocations.
type PipeResponse struct {
	ID        string     `json:"id"`
	Object    string     `json:"object"`
	CreatedAt int64      `json:"created_at"`
	Model     string     `json:"model"`
	Content   string     `json:"content"`
	Status    PipeStatus `json:"status"`
}

// ModelInfo is one advertised model menu entry.
type ModelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ModelList is the envelope returned by the model listing endpoint.
type ModelList struct {
	Object string      `json:"object"`
	Data   []ModelInfo `json:"data"`
}

// NewModelList wraps entries in a list envelope, never with a null Data.
func NewModelList(models []ModelInfo) ModelList {
	if models == nil {
		models = []ModelInfo{}
	}
	return ModelList{Object: "list", Data: models}
}
