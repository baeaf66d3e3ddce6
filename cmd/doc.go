// Package cmd implements the command-line interface for supercal.
//
// This package provides the following commands:
//   - serve: Start the calendar agent server (HTTP chat API or MCP stdio)
//   - auth: Authorize access to Google Calendar and store the token
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
