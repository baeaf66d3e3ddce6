package server

import (
	"context"
	"strings"
	"testing"

	"github.com/teemow/supercal/internal/instrumentation"
)

func createTestProvider(t *testing.T) *instrumentation.Provider {
	t.Helper()

	provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: instrumentation.ExporterPrometheus,
		TracingExporter: instrumentation.ExporterNone,
	})
	if err != nil {
		t.Fatalf("failed to create instrumentation provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	return provider
}

func createDisabledProvider(t *testing.T) *instrumentation.Provider {
	t.Helper()

	provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{Enabled: false})
	if err != nil {
		t.Fatalf("failed to create disabled provider: %v", err)
	}

	return provider
}

func TestNewMetricsServer(t *testing.T) {
	tests := []struct {
		name        string
		config      MetricsServerConfig
		expectError bool
		errContains string
	}{
		{
			name: "valid config",
			config: MetricsServerConfig{
				Addr:                    ":9090",
				Enabled:                 true,
				InstrumentationProvider: createTestProvider(t),
			},
			expectError: false,
		},
		{
			name: "default addr",
			config: MetricsServerConfig{
				Addr:                    "",
				Enabled:                 true,
				InstrumentationProvider: createTestProvider(t),
			},
			expectError: false,
		},
		{
			name: "nil provider",
			config: MetricsServerConfig{
				Addr:                    ":9090",
				Enabled:                 true,
				InstrumentationProvider: nil,
			},
			expectError: true,
			errContains: "instrumentation provider is required",
		},
		{
			name: "disabled provider",
			config: MetricsServerConfig{
				Addr:                    ":9090",
				Enabled:                 true,
				InstrumentationProvider: createDisabledProvider(t),
			},
			expectError: true,
			errContains: "instrumentation provider is not enabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewMetricsServer(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("NewMetricsServer() expected error, got nil")
				} else if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("NewMetricsServer() error = %v, want error containing %q", err, tt.errContains)
				}
			} else {
				if err != nil {
					t.Errorf("NewMetricsServer() unexpected error: %v", err)
				}
				if server == nil {
					t.Error("NewMetricsServer() returned nil server")
				}
			}
		})
	}
}

func TestMetricsServer_DefaultAddr(t *testing.T) {
	server, err := NewMetricsServer(MetricsServerConfig{
		Enabled:                 true,
		InstrumentationProvider: createTestProvider(t),
	})
	if err != nil {
		t.Fatalf("NewMetricsServer() error = %v", err)
	}

	if server.Addr() != DefaultMetricsAddr {
		t.Errorf("Addr() = %q, want %q", server.Addr(), DefaultMetricsAddr)
	}
}

func TestMetricsServer_ShutdownBeforeStart(t *testing.T) {
	server, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    ":0",
		Enabled:                 true,
		InstrumentationProvider: createTestProvider(t),
	})
	if err != nil {
		t.Fatalf("NewMetricsServer() error = %v", err)
	}

	// Shutdown before Start must be a no-op
	if err := server.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
