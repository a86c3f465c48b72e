package google

import (
	"context"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

// NewHTTPClient returns an HTTP client that sends token as an OAuth2 bearer
// credential on every request. The token is used as-is and never refreshed.
//
// base is the transport underneath the bearer injection; nil selects a clone of
// http.DefaultTransport forced to HTTP/1.1 to avoid HTTP/2 protocol errors.
// Requests are wrapped with otelhttp so each API call produces a client span.
func NewHTTPClient(ctx context.Context, token string, base http.RoundTripper) *http.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	})

	client := oauth2.NewClient(ctx, ts)

	if base == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.ForceAttemptHTTP2 = false
		base = t
	}
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = otelhttp.NewTransport(base)

	return client
}
