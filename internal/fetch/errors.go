package fetch

import (
	"context"
	"errors"

	"github.com/teemow/inboxreceipts/internal/extract"
	"github.com/teemow/inboxreceipts/internal/gmail"
	"github.com/teemow/inboxreceipts/internal/google"
	"github.com/teemow/inboxreceipts/internal/storage"
)

// Error kinds returned by Kind.
const (
	KindAuth     = "auth"
	KindNetwork  = "network"
	KindDecode   = "decode"
	KindParse    = "parse"
	KindIO       = "io"
	KindCanceled = "canceled"
	KindUnknown  = "unknown"
)

// Kind classifies err for log attributes and metric labels.
// It returns "" for a nil error.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, google.ErrUnauthenticated), errors.Is(err, google.ErrNoToken):
		return KindAuth
	case errors.Is(err, gmail.ErrDecode):
		return KindDecode
	case errors.Is(err, extract.ErrParse):
		return KindParse
	case errors.Is(err, storage.ErrWrite):
		return KindIO
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, google.ErrUnreachable), errors.Is(err, gmail.ErrRequest),
		errors.Is(err, context.DeadlineExceeded):
		return KindNetwork
	}
	return KindUnknown
}
