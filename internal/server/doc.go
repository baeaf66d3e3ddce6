// Package server implements the HTTP surface of the calendar agent: the
// streaming /chat endpoint, the auth status probe, health endpoints for
// Kubernetes, and a dedicated Prometheus metrics server.
//
// Each chat request gets its own calendar client bound to the request's
// credential. The credential is either a Bearer token supplied by the client
// or the token stored on the server via the auth command. The shared language
// model client and instrumentation live in the ServerContext.
package server
