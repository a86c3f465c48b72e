package google

import (
	"context"
	"errors"
	"strings"
)

// ErrNoToken is returned by a TokenProvider chain when no source yields a token.
var ErrNoToken = errors.New("no access token provided")

// TokenProvider supplies a bearer token for the mail API.
// A provider that has nothing to offer returns an empty string and a nil error
// so that the next provider in a chain can be consulted.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenProviderFunc adapts a function to the TokenProvider interface.
type TokenProviderFunc func(ctx context.Context) (string, error)

// Token calls f(ctx).
func (f TokenProviderFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticToken is a TokenProvider returning a fixed token, typically from a flag.
type StaticToken string

// Token returns the trimmed static token.
func (s StaticToken) Token(context.Context) (string, error) {
	return strings.TrimSpace(string(s)), nil
}

// ChainTokenProvider consults providers in order and returns the first
// non-empty token.
type ChainTokenProvider []TokenProvider

// Token returns the first non-empty token, the first error, or ErrNoToken.
func (c ChainTokenProvider) Token(ctx context.Context) (string, error) {
	for _, p := range c {
		if p == nil {
			continue
		}
		tok, err := p.Token(ctx)
		if err != nil {
			return "", err
		}
		if tok = strings.TrimSpace(tok); tok != "" {
			return tok, nil
		}
	}
	return "", ErrNoToken
}
