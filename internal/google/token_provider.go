package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenProvider yields an OAuth token source for one request. The abstraction
// covers both supported credential flows so the rest of the service stays
// flow-agnostic.
type TokenProvider interface {
	// TokenSource returns a token source for the request credential.
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)

	// HasToken reports whether a usable credential exists at all.
	HasToken() bool
}

// FileTokenProvider provides the server-side stored token.
type FileTokenProvider struct{}

// NewFileTokenProvider creates a provider backed by the stored token file.
func NewFileTokenProvider() *FileTokenProvider {
	return &FileTokenProvider{}
}

// TokenSource returns a refreshing token source for the stored token.
func (p *FileTokenProvider) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	return GetTokenSource(ctx)
}

// HasToken reports whether a token file exists.
func (p *FileTokenProvider) HasToken() bool {
	return HasToken()
}

// StaticTokenProvider wraps a client-held bearer token. The token is used
// as-is with no refresh; the client is responsible for its lifetime.
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider creates a provider for a bearer token taken from the
// request's Authorization header.
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

// TokenSource returns a static token source for the bearer token.
func (p *StaticTokenProvider) TokenSource(_ context.Context) (oauth2.TokenSource, error) {
	if p.token == "" {
		return nil, fmt.Errorf("empty bearer token")
	}
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: p.token,
		TokenType:   "Bearer",
	}), nil
}

// HasToken reports whether a bearer token was supplied.
func (p *StaticTokenProvider) HasToken() bool {
	return p.token != ""
}
