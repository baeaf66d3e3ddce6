package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/teemow/supercal/internal/agent"
	"github.com/teemow/supercal/internal/google"
	"github.com/teemow/supercal/internal/instrumentation"
	"github.com/teemow/supercal/internal/llm"
	"github.com/teemow/supercal/internal/tools/calendar_tools"
)

// Config holds the per-process settings of the chat server.
type Config struct {
	// ModelName is the language model identifier, used for metric labels.
	ModelName string

	// Timezone is the reference timezone for get_current_time
	// (default: Asia/Kolkata).
	Timezone string

	// MaxTurns bounds the agent loop per chat request
	// (default: agent.DefaultMaxTurns).
	MaxTurns int
}

// ServerContext holds the shared dependencies of the chat server.
type ServerContext struct {
	ctx        context.Context
	cancel     context.CancelFunc
	model      llm.Client
	modelName  string
	fileTokens *google.FileTokenProvider
	inst       *instrumentation.Provider
	location   *time.Location
	maxTurns   int
	logger     *slog.Logger
	mu         sync.RWMutex
	shutdown   bool
}

// NewServerContext creates a new server context.
func NewServerContext(ctx context.Context, model llm.Client, inst *instrumentation.Provider, cfg Config) (*ServerContext, error) {
	if model == nil {
		return nil, fmt.Errorf("language model client is required")
	}

	tz := cfg.Timezone
	if tz == "" {
		tz = calendar_tools.DefaultTimezone
	}
	location, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = agent.DefaultMaxTurns
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:        shutdownCtx,
		cancel:     cancel,
		model:      model,
		modelName:  cfg.ModelName,
		fileTokens: google.NewFileTokenProvider(),
		inst:       inst,
		location:   location,
		maxTurns:   maxTurns,
		logger:     slog.Default(),
	}, nil
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Model returns the shared language model client.
func (sc *ServerContext) Model() llm.Client {
	return sc.model
}

// Location returns the reference timezone for the tool catalogue.
func (sc *ServerContext) Location() *time.Location {
	return sc.location
}

// MaxTurns returns the agent loop bound per chat request.
func (sc *ServerContext) MaxTurns() int {
	return sc.maxTurns
}

// Metrics returns the metrics recorder. Never nil; without an
// instrumentation provider a no-op recorder is returned.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	if sc.inst == nil {
		return &instrumentation.Metrics{}
	}
	return sc.inst.Metrics()
}

// TokenProviderForRequest selects the credential flow for one request.
// A Bearer token in the Authorization header takes precedence; otherwise the
// token stored on the server is used.
func (sc *ServerContext) TokenProviderForRequest(r *http.Request) google.TokenProvider {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return google.NewStaticTokenProvider(strings.TrimPrefix(auth, "Bearer "))
	}
	return sc.fileTokens
}

// Authenticated reports whether the server holds a stored token.
func (sc *ServerContext) Authenticated() bool {
	return sc.fileTokens.HasToken()
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
