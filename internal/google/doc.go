// Package google provides bearer-token authentication for Google APIs.
//
// Tokens are supplied by the caller (flag, environment, keyring or prompt)
// through the TokenProvider interface; this package never runs an OAuth
// consent flow and never refreshes tokens. NewHTTPClient wraps a token in an
// oauth2 transport, and ValidateToken checks it against the user-info endpoint
// before any mailbox request is made.
package google
