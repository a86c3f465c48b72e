package gmail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gmail "google.golang.org/api/gmail/v1"
)

func TestHeaderValue(t *testing.T) {
	msg := &gmail.Message{Payload: &gmail.MessagePart{Headers: []*gmail.MessagePartHeader{
		{Name: "From", Value: "billing@example.com"},
		{Name: "Subject", Value: "Your receipt"},
		{Name: "subject", Value: "duplicate"},
	}}}

	assert.Equal(t, "Your receipt", HeaderValue(msg, "Subject"))
	assert.Equal(t, "Your receipt", HeaderValue(msg, "SUBJECT"))
	assert.Equal(t, "billing@example.com", HeaderValue(msg, "from"))
	assert.Empty(t, HeaderValue(msg, "Date"))
	assert.Empty(t, HeaderValue(&gmail.Message{}, "Subject"))
	assert.Empty(t, HeaderValue(nil, "Subject"))
}
