// Package cmd implements the command-line interface for inboxreceipts.
//
// This package provides the following commands:
//   - fetch: Download receipt and invoice attachments and print their text
//   - token: Store, inspect or remove the access token kept in the OS keyring
//   - version: Display version information
//
// The fetch command is the default command when no subcommand is specified.
// Every flag can also be set through an INBOXRECEIPTS_<FLAG> environment
// variable or a YAML config file.
package cmd
