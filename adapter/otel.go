package adapter

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/srediag/shmemdev/pkg/transport"
)

const instrumentationName = "github.com/srediag/shmemdev"

// WithOpenTelemetry points cfg at the given providers. Nil providers fall
// back to the global ones registered with otel.
func WithOpenTelemetry(cfg *transport.Config, mp metric.MeterProvider, tp trace.TracerProvider) *transport.Config {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	cfg.Meter = mp.Meter(instrumentationName)
	cfg.Tracer = tp.Tracer(instrumentationName)
	return cfg
}
