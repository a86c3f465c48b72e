package gmail

import (
	"strings"

	gmail "google.golang.org/api/gmail/v1"
	"jaytaylor.com/html2text"
)

// BodyPreview decodes the top-level payload body of msg and returns at most
// limit runes of readable text. HTML bodies are converted to plain text.
// Messages without inline body data yield an empty preview.
func BodyPreview(msg *gmail.Message, limit int) (string, error) {
	if msg == nil || msg.Payload == nil || msg.Payload.Body == nil || msg.Payload.Body.Data == "" {
		return "", nil
	}

	raw, err := DecodeData(msg.Payload.Body.Data)
	if err != nil {
		return "", err
	}

	text := string(raw)
	if strings.HasPrefix(msg.Payload.MimeType, "text/html") {
		if converted, err := html2text.FromString(text, html2text.Options{TextOnly: true}); err == nil {
			text = converted
		}
	}
	text = strings.TrimSpace(text)

	if limit > 0 {
		if r := []rune(text); len(r) > limit {
			text = string(r[:limit]) + "..."
		}
	}
	return text, nil
}
