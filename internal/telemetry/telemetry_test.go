package telemetry

import (
	"context"
	"testing"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		enabled  string
	}{
		{"no endpoint", "", "true"},
		{"disabled", "http://localhost:4318", "false"},
		// Non-routable address so nothing is exported.
		{"enabled", "http://192.0.2.1:4318", "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ANTHOZOA_OTEL_ENDPOINT", tt.endpoint)
			t.Setenv("ANTHOZOA_OTEL_ENABLED", tt.enabled)

			shutdown, err := Setup(context.Background(), "anthozoa-test")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown error: %v", err)
			}
		})
	}
}

func TestSetup_InvalidEnv(t *testing.T) {
	t.Setenv("ANTHOZOA_OTEL_ENABLED", "true")
	t.Setenv("ANTHOZOA_OTEL_SAMPLE_RATIO", "lots")
	if _, err := Setup(context.Background(), "anthozoa-test"); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfigActive(t *testing.T) {
	if (Config{Enabled: true}).Active() {
		t.Error("active without endpoint")
	}
	if !(Config{Enabled: true, Endpoint: "http://x"}).Active() {
		t.Error("inactive with endpoint")
	}
}
