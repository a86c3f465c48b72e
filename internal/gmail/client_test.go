package gmail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/inboxreceipts/internal/gmail/gmailtest"
	"github.com/teemow/inboxreceipts/internal/google"
)

func newTestClient(t *testing.T, srv *gmailtest.Server) *Client {
	t.Helper()
	ctx := context.Background()
	client, err := NewClient(ctx, google.NewHTTPClient(ctx, "test-token", nil), option.WithEndpoint(srv.Endpoint()))
	require.NoError(t, err)
	return client
}

func TestSearchMessageIDs_Pagination(t *testing.T) {
	tests := []struct {
		name  string
		pages [][]string
		want  []string
	}{
		{
			name:  "single page",
			pages: [][]string{{"a", "b"}},
			want:  []string{"a", "b"},
		},
		{
			name:  "three pages concatenated in order",
			pages: [][]string{{"a", "b"}, {"c"}, {"d", "e"}},
			want:  []string{"a", "b", "c", "d", "e"},
		},
		{
			name:  "empty mailbox",
			pages: nil,
			want:  nil,
		},
		{
			name:  "reference without id is kept",
			pages: [][]string{{"a", ""}, {"b"}},
			want:  []string{"a", "", "b"},
		},
		{
			name:  "empty middle page still follows token",
			pages: [][]string{{"a"}, {}, {"b"}},
			want:  []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := gmailtest.NewServer()
			defer srv.Close()
			srv.Pages = tt.pages

			ids, err := newTestClient(t, srv).SearchMessageIDs(context.Background(), ReceiptQuery)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)

			wantRequests := len(tt.pages)
			if wantRequests == 0 {
				wantRequests = 1
			}
			assert.Equal(t, wantRequests, srv.CountPrefix("/gmail/v1/users/me/messages"))
			for _, q := range srv.Queries() {
				assert.Equal(t, ReceiptQuery, q)
			}
		})
	}
}

func TestForeachMessage_StopsOnCallbackError(t *testing.T) {
	srv := gmailtest.NewServer()
	defer srv.Close()
	srv.Pages = [][]string{{"a", "b"}, {"c"}}

	stop := errors.New("stop")
	var seen []string
	err := newTestClient(t, srv).ForeachMessage(context.Background(), "q", func(m *gmail.Message) error {
		seen = append(seen, m.Id)
		return stop
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []string{"a"}, seen)
	assert.Equal(t, 1, srv.CountPrefix("/gmail/v1/users/me/messages"))
}

func TestSearchMessageIDs_APIError(t *testing.T) {
	srv := gmailtest.NewServer()
	defer srv.Close()
	srv.Token = "other-token"

	_, err := newTestClient(t, srv).SearchMessageIDs(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequest)
}

func TestGetMessage(t *testing.T) {
	srv := gmailtest.NewServer()
	defer srv.Close()
	srv.AddMessage(gmailtest.Message("m1", gmailtest.AttachmentPart("1", "receipt.pdf", "att-1")))

	client := newTestClient(t, srv)

	msg, err := client.GetMessage(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.Id)
	require.Len(t, Attachments(msg), 1)

	_, err = client.GetMessage(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRequest)
}

func TestGetAttachment(t *testing.T) {
	srv := gmailtest.NewServer()
	defer srv.Close()
	payload := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xff, 0xfe, '\n'}
	srv.AddAttachment("m1", "att-1", payload)
	srv.AddAttachment("m1", "att-empty", nil)

	client := newTestClient(t, srv)
	ctx := context.Background()

	data, err := client.GetAttachment(ctx, "m1", "att-1")
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = client.GetAttachment(ctx, "m1", "att-empty")
	assert.ErrorIs(t, err, ErrNoData)

	_, err = client.GetAttachment(ctx, "m1", "att-missing")
	assert.ErrorIs(t, err, ErrRequest)

	_, err = client.GetAttachment(ctx, "", "att-1")
	assert.Error(t, err)
	_, err = client.GetAttachment(ctx, "m1", "")
	assert.Error(t, err)

	// Only the three valid lookups reach the API.
	assert.Equal(t, 3, srv.CountPrefix("/gmail/v1/users/me/messages/m1/attachments/"))
}

func TestNewClient_SendsBearerToken(t *testing.T) {
	srv := gmailtest.NewServer()
	defer srv.Close()
	srv.Token = "test-token"
	srv.Pages = [][]string{{"a"}}

	ids, err := newTestClient(t, srv).SearchMessageIDs(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}

func TestGetAttachment_Undecodable(t *testing.T) {
	srv := gmailtest.NewServer()
	defer srv.Close()
	srv.Attachments["m1/att-bad"] = &gmail.MessagePartBody{AttachmentId: "att-bad", Data: "!!not base64!!"}

	_, err := newTestClient(t, srv).GetAttachment(context.Background(), "m1", "att-bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
	assert.NotErrorIs(t, err, ErrRequest)
}
