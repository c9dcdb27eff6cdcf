package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Additional-Code/procurement/internal/config"
)

func TestManager_DisabledProviders(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	mgr, err := NewManager(lc, config.Config{Observability: config.Observability{ServiceName: "procurement"}}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, mgr.TracingEnabled())
	assert.False(t, mgr.MetricsEnabled())
	assert.Nil(t, mgr.MetricsHandler())
	assert.Equal(t, "procurement", mgr.ServiceName())

	metrics, err := mgr.PurchaseOrderMetrics()
	require.NoError(t, err)
	metrics.Created(context.Background(), "DRAFT", "USD")

	lc.RequireStart()
	lc.RequireStop()
}

func TestManager_UnsupportedExportersWarn(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	mgr, err := NewManager(fxtest.NewLifecycle(t), config.Config{Observability: config.Observability{
		EnableTracing:   true,
		TraceExporter:   "zipkin",
		EnableMetrics:   true,
		MetricsExporter: "statsd",
	}}, zap.New(core))
	require.NoError(t, err)

	assert.False(t, mgr.TracingEnabled())
	assert.False(t, mgr.MetricsEnabled())
	assert.Equal(t, 1, logs.FilterMessage("unsupported trace exporter; tracing disabled").Len())
	assert.Equal(t, 1, logs.FilterMessage("unsupported metrics exporter; metrics disabled").Len())
}

func TestManager_OTLPRequiresEndpoint(t *testing.T) {
	_, err := NewManager(fxtest.NewLifecycle(t), config.Config{Observability: config.Observability{
		EnableTracing: true,
		TraceExporter: "otlp",
	}}, zap.NewNop())
	assert.Error(t, err)
}

func TestManager_NilMeterIsNoop(t *testing.T) {
	var mgr *Manager
	assert.NotNil(t, mgr.Meter(meterName))
	assert.NoError(t, (&Manager{}).Shutdown(context.Background()))
}
