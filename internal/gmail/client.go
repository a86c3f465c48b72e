package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// ErrRequest marks failures talking to the Gmail API: transport errors and
// non-success HTTP statuses alike.
var ErrRequest = errors.New("gmail request failed")

// Client wraps the Gmail Users service for a single authenticated mailbox.
type Client struct {
	svc  *gmail.UsersService
	user string
}

// NewClient creates a Gmail client on top of an already authenticated HTTP
// client. Additional options (for example option.WithEndpoint) are applied
// after the HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	all := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := gmail.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{
		svc:  svc.Users,
		user: "me",
	}, nil
}

// ForeachMessage iterates over all messages matching the query, page by page,
// following the continuation token until the API stops returning one.
// Every listed reference is passed to fn, including ones without an id.
func (c *Client) ForeachMessage(ctx context.Context, q string, fn func(*gmail.Message) error) error {
	pageToken := ""
	for {
		req := c.svc.Messages.List(c.user).Q(q).Context(ctx)
		if pageToken != "" {
			req.PageToken(pageToken)
		}
		res, err := req.Do()
		if err != nil {
			return fmt.Errorf("%w: list messages: %w", ErrRequest, err)
		}
		for _, m := range res.Messages {
			if m == nil {
				m = &gmail.Message{}
			}
			if err := fn(m); err != nil {
				return err
			}
		}
		if res.NextPageToken == "" {
			return nil
		}
		pageToken = res.NextPageToken
	}
}

// SearchMessageIDs returns the ids of every message matching q, in the order
// the API returned them across all pages. A reference listed without an id
// appears as "" so the result has one entry per listed message.
func (c *Client) SearchMessageIDs(ctx context.Context, q string) ([]string, error) {
	var ids []string
	err := c.ForeachMessage(ctx, q, func(m *gmail.Message) error {
		ids = append(ids, m.Id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetMessage retrieves a full Gmail message
func (c *Client) GetMessage(ctx context.Context, messageID string) (*gmail.Message, error) {
	msg, err := c.svc.Messages.Get(c.user, messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: get message %s: %w", ErrRequest, messageID, err)
	}
	return msg, nil
}
