package api

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMessageContentUnmarshalString(t *testing.T) {
	var c MessageContent
	if err := json.Unmarshal([]byte(`"a cat"`), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if c.Text != "a cat" {
		t.Errorf("Text = %q, want %q", c.Text, "a cat")
	}
	if c.Parts != nil {
		t.Errorf("Parts = %v, want nil for string form", c.Parts)
	}
}

func TestMessageContentUnmarshalParts(t *testing.T) {
	data := `[
		{"type": "text", "text": "a dog"},
		{"type": "image_url", "url": "https://example.com/ref.png"},
		{"type": "text", "text": "wearing a hat"}
	]`

	var c MessageContent
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if c.Parts == nil {
		t.Fatal("Parts = nil, want array form")
	}
	if len(c.Parts) != 3 {
		t.Fatalf("len(Parts) = %d, want 3", len(c.Parts))
	}
	if c.Parts[0].Type != ContentTypeText || c.Parts[0].Text != "a dog" {
		t.Errorf("Parts[0] = %+v, want text part %q", c.Parts[0], "a dog")
	}
	if c.Parts[1].Type != ContentTypeImageURL || c.Parts[1].URL != "https://example.com/ref.png" {
		t.Errorf("Parts[1] = %+v, want image_url part", c.Parts[1])
	}
}

func TestMessageContentUnmarshalNull(t *testing.T) {
	var c MessageContent
	if err := json.Unmarshal([]byte(`null`), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if c.Text != "" || c.Parts != nil {
		t.Errorf("null content = %+v, want empty string form", c)
	}
}

func TestMessageContentUnmarshalInvalid(t *testing.T) {
	var c MessageContent
	err := json.Unmarshal([]byte(`42`), &c)
	if err == nil {
		t.Fatal("Unmarshal(42) succeeded, want error")
	}
	if !strings.Contains(err.Error(), "string or an array") {
		t.Errorf("error = %q, want mention of accepted forms", err)
	}
}

func TestMessageContentMarshalForms(t *testing.T) {
	tests := []struct {
		name    string
		content MessageContent
		want    string
	}{
		{"string form", StringContent("a cat"), `"a cat"`},
		{"empty string form", StringContent(""), `""`},
		{
			"parts form",
			PartsContent(ContentPart{Type: ContentTypeText, Text: "hi"}),
			`[{"type":"text","text":"hi"}]`,
		},
		{"empty parts form", PartsContent(), `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.content)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal = %s, want %s", data, tt.want)
			}
		})
	}
}

func TestChatRequestDecode(t *testing.T) {
	body := `{
		"model": "falai-z-image.custom-tag",
		"stream": true,
		"messages": [
			{"role": "system", "content": "You are an image assistant."},
			{"role": "user", "content": "a lighthouse"},
			{"role": "assistant", "content": "Here it is."},
			{"role": "user", "content": [{"type": "text", "text": "make it night"}]}
		]
	}`

	var req ChatRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if req.Model != "falai-z-image.custom-tag" {
		t.Errorf("Model = %q, want %q", req.Model, "falai-z-image.custom-tag")
	}
	if !req.Stream {
		t.Error("Stream = false, want true")
	}
	if len(req.Messages) != 4 {
		t.Fatalf("len(Messages) = %d, want 4", len(req.Messages))
	}
	if req.Messages[1].Role != RoleUser || req.Messages[1].Content.Text != "a lighthouse" {
		t.Errorf("Messages[1] = %+v, want user string message", req.Messages[1])
	}
	last := req.Messages[3]
	if last.Role != RoleUser || len(last.Content.Parts) != 1 {
		t.Errorf("Messages[3] = %+v, want user parts message", last)
	}
}

func TestPipeResponseWireShape(t *testing.T) {
	resp := PipeResponse{
		ID:        NewPipeID(),
		Object:    ObjectPipeResponse,
		CreatedAt: 1723000000,
		Model:     "falai-recraft-v3",
		Content:   "![Generated Image](https://fal.media/x.png)",
		Status:    PipeStatusCompleted,
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"id", "object", "created_at", "model", "content", "status"} {
		if _, ok := m[key]; !ok {
			t.Errorf("field %q missing from wire form", key)
		}
	}
	if m["object"] != ObjectPipeResponse {
		t.Errorf("object = %q, want %q", m["object"], ObjectPipeResponse)
	}
}

func TestNewModelListNeverNull(t *testing.T) {
	data, err := json.Marshal(NewModelList(nil))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"data":[]`) {
		t.Errorf("empty list marshals to %s, want data:[]", data)
	}
}
