package fetch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teemow/inboxreceipts/internal/extract"
	"github.com/teemow/inboxreceipts/internal/gmail"
	"github.com/teemow/inboxreceipts/internal/google"
	"github.com/teemow/inboxreceipts/internal/storage"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"unauthenticated", fmt.Errorf("%w: status 401", google.ErrUnauthenticated), KindAuth},
		{"no token", google.ErrNoToken, KindAuth},
		{"unreachable", fmt.Errorf("%w: dial tcp", google.ErrUnreachable), KindNetwork},
		{"gmail request", fmt.Errorf("%w: list messages: boom", gmail.ErrRequest), KindNetwork},
		{"deadline", fmt.Errorf("%w: %w", gmail.ErrRequest, context.DeadlineExceeded), KindNetwork},
		{"canceled", fmt.Errorf("%w: %w", gmail.ErrRequest, context.Canceled), KindCanceled},
		{"decode", fmt.Errorf("attachment a1: %w", gmail.ErrDecode), KindDecode},
		{"parse", fmt.Errorf("extract text from x.pdf: %w", extract.ErrParse), KindParse},
		{"write", fmt.Errorf("%w: out/a: read-only", storage.ErrWrite), KindIO},
		{"other", errors.New("something else"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}
