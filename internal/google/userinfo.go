package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var (
	// ErrUnauthenticated is returned when the user-info endpoint rejects the token.
	ErrUnauthenticated = errors.New("authentication failed")

	// ErrUnreachable is returned when the user-info endpoint could not be queried.
	ErrUnreachable = errors.New("user-info endpoint unreachable")
)

// UserInfo is the subset of the user-info response the fetcher cares about.
type UserInfo struct {
	ID    string
	Email string
}

// ValidateToken confirms that the bearer token carried by client is accepted by
// the user-info endpoint. Any non-success status yields ErrUnauthenticated.
// No retries are attempted.
func ValidateToken(ctx context.Context, client *http.Client, opts ...option.ClientOption) (*UserInfo, error) {
	all := append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	svc, err := oauth2api.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create user-info service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: failed to fetch user info: status %d: %s", ErrUnauthenticated, apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	return &UserInfo{
		ID:    info.Id,
		Email: info.Email,
	}, nil
}
