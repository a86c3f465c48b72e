package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
)

// DefaultFilename is used for attachment parts that carry no filename.
const DefaultFilename = "untitled.txt"

var (
	// ErrNoData is returned when an attachment body comes back without data.
	// Callers treat it as "nothing to do" and skip the attachment.
	ErrNoData = errors.New("attachment has no data")

	// ErrDecode is returned when attachment data is not valid base64.
	ErrDecode = errors.New("attachment decode failed")
)

// AttachmentRef identifies an attachment inside a fetched message.
type AttachmentRef struct {
	MessageID    string
	PartID       string
	AttachmentID string
	Filename     string
	MimeType     string
	Size         int64
}

// Attachments returns every part of msg whose body references an attachment,
// in depth-first part order. Parts without a body or attachment id are ignored.
func Attachments(msg *gmail.Message) []AttachmentRef {
	if msg == nil {
		return nil
	}

	var refs []AttachmentRef
	walkParts(msg.Payload, func(part *gmail.MessagePart) {
		if part.Body == nil || part.Body.AttachmentId == "" {
			return
		}
		name := part.Filename
		if name == "" {
			name = DefaultFilename
		}
		refs = append(refs, AttachmentRef{
			MessageID:    msg.Id,
			PartID:       part.PartId,
			AttachmentID: part.Body.AttachmentId,
			Filename:     name,
			MimeType:     part.MimeType,
			Size:         part.Body.Size,
		})
	})
	return refs
}

// GetAttachment fetches and decodes the body of an attachment.
// It returns ErrNoData when the API response carries no data.
func (c *Client) GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	if messageID == "" {
		return nil, fmt.Errorf("messageID is required")
	}
	if attachmentID == "" {
		return nil, fmt.Errorf("attachmentID is required")
	}

	attachment, err := c.svc.Messages.Attachments.Get(c.user, messageID, attachmentID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: get attachment %s: %w", ErrRequest, attachmentID, err)
	}
	if attachment.Data == "" {
		return nil, ErrNoData
	}

	data, err := DecodeData(attachment.Data)
	if err != nil {
		return nil, fmt.Errorf("attachment %s: %w", attachmentID, err)
	}
	return data, nil
}

// DecodeData decodes Gmail body data. The API uses RFC 4648 base64url; padded,
// unpadded and standard alphabets are accepted in that order.
func DecodeData(s string) ([]byte, error) {
	data, err := base64.URLEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	if data, rawErr := base64.RawURLEncoding.DecodeString(s); rawErr == nil {
		return data, nil
	}
	if data, stdErr := base64.StdEncoding.DecodeString(s); stdErr == nil {
		return data, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrDecode, err)
}

// walkParts recursively walks through message parts
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}

	fn(part)

	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}
