// Package google provides OAuth2 credential handling for the Google Calendar
// API.
//
// Two credential flows are supported and both yield the same opaque
// oauth2.TokenSource capability: a server-side flow where an exchanged
// refresh token is stored on disk, and a client-held flow where each request
// carries its own bearer token. The agent core does not know or care which
// flow produced the credential it is handed.
package google
