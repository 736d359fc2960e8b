package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/jorgeai/leadflow/config"
)

// Init swaps the process-global otel providers; snapshot them so one test
// cannot bleed into the next.
func withGlobalsRestored(t *testing.T) {
	t.Helper()
	tp, mp := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(tp)
		otel.SetMeterProvider(mp)
	})
}

func enabledConfig(service string) config.TelemetryConfig {
	return config.TelemetryConfig{
		Enabled:      true,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  service,
		SampleRate:   1.0,
	}
}

func TestInit(t *testing.T) {
	t.Run("disabled stays noop", func(t *testing.T) {
		withGlobalsRestored(t)

		p, err := Init(config.TelemetryConfig{Enabled: false}, zap.NewNop())
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Nil(t, p.tp)
		assert.Nil(t, p.mp)
	})

	t.Run("enabled installs sdk providers globally", func(t *testing.T) {
		withGlobalsRestored(t)

		p, err := Init(enabledConfig("telemetry-init-test"), zap.NewNop())
		require.NoError(t, err)
		t.Cleanup(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = p.Shutdown(ctx)
		})

		require.NotNil(t, p.tp)
		require.NotNil(t, p.mp)
		assert.IsType(t, &sdktrace.TracerProvider{}, otel.GetTracerProvider())
		assert.IsType(t, &sdkmetric.MeterProvider{}, otel.GetMeterProvider())
	})
}

func TestShutdown(t *testing.T) {
	t.Run("nil receiver", func(t *testing.T) {
		var p *Providers
		assert.NoError(t, p.Shutdown(context.Background()))
	})

	t.Run("noop providers", func(t *testing.T) {
		withGlobalsRestored(t)
		p, err := Init(config.TelemetryConfig{Enabled: false}, zap.NewNop())
		require.NoError(t, err)
		assert.NoError(t, p.Shutdown(context.Background()))
	})

	t.Run("live providers finish within the deadline", func(t *testing.T) {
		withGlobalsRestored(t)
		p, err := Init(enabledConfig("telemetry-shutdown-test"), zap.NewNop())
		require.NoError(t, err)

		// No collector is listening, so the exporters may report a
		// connection error; Shutdown still has to return before the
		// deadline instead of hanging on the flush.
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NotPanics(t, func() { _ = p.Shutdown(ctx) })
	})
}

func TestBuildVersionFallsBackToDev(t *testing.T) {
	// Test binaries report "(devel)" from debug.ReadBuildInfo.
	assert.Equal(t, "dev", buildVersion())
}
