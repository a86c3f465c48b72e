// Package fetch runs the receipt fetch pipeline: validate the token, search
// the mailbox, download every attachment of every matching message, save it
// and print the text extracted from it.
//
// A Runner is configured explicitly through Config and functional options;
// it holds no global state. Errors carry the sentinels of the packages that
// raised them and Kind classifies them for logs and metrics.
package fetch
