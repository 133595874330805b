package engine

import (
	"strings"

	"github.com/bmertz/falpipe/pkg/api"
)

// ExtractPrompt finds the generation prompt in a conversation. Only the
// most recent user message is consulted: messages are scanned newest to
// oldest and the scan stops at the first user-role hit, whatever it holds.
// An older user message never rescues a blank newer one.
//
// String content is the prompt verbatim. Part-list content joins the
// text-type parts with single spaces and trims the result; non-text parts
// carry no prompt text and are skipped. The second return is false when
// the conversation has no user message or the extracted text is blank.
func ExtractPrompt(messages []api.Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != api.RoleUser {
			continue
		}
		prompt := promptText(messages[i].Content)
		if strings.TrimSpace(prompt) == "" {
			return "", false
		}
		return prompt, true
	}
	return "", false
}

// promptText renders one message's content as prompt text.
func promptText(content api.MessageContent) string {
	if content.Parts == nil {
		return content.Text
	}
	var texts []string
	for _, part := range content.Parts {
		if part.Type == api.ContentTypeText {
			texts = append(texts, part.Text)
		}
	}
	return strings.TrimSpace(strings.Join(texts, " "))
}
