package gmail

import (
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// HeaderValue returns the first top-level header of m named header, compared
// case-insensitively, or "" when absent.
func HeaderValue(m *gmail.Message, header string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if strings.EqualFold(h.Name, header) {
			return h.Value
		}
	}
	return ""
}
