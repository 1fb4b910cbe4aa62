package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/ShayCichocki/scriptroom/engine"

// Metrics counts engine activity. The zero value is not usable; use
// NewMetrics or Noop.
type Metrics struct {
	steps           metric.Int64Counter
	actions         metric.Int64Counter
	gateRejections  metric.Int64Counter
	backendFailures metric.Int64Counter
}

// NewMetrics creates the engine counters on meter. A nil meter uses the
// global MeterProvider, configured by the host process via
// otel.SetMeterProvider.
func NewMetrics(meter metric.Meter) *Metrics {
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	return &Metrics{
		steps: counter(meter, "scriptroom.engine.steps",
			"Reasoning calls made by workers"),
		actions: counter(meter, "scriptroom.engine.actions",
			"Actions dispatched"),
		gateRejections: counter(meter, "scriptroom.engine.gate_rejections",
			"Quality gate rejections"),
		backendFailures: counter(meter, "scriptroom.engine.backend_failures",
			"Failed reasoning, lookup or synthesis calls"),
	}
}

// Noop returns metrics that record nothing.
func Noop() *Metrics {
	return NewMetrics(noop.NewMeterProvider().Meter(meterName))
}

func counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit("{call}"))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

// Step records one reasoning call by role.
func (m *Metrics) Step(ctx context.Context, role string) {
	m.steps.Add(ctx, 1, metric.WithAttributes(attribute.String("role", role)))
}

// Action records one dispatched action.
func (m *Metrics) Action(ctx context.Context, name string) {
	m.actions.Add(ctx, 1, metric.WithAttributes(attribute.String("action", name)))
}

// GateRejected records a quality gate rejection.
func (m *Metrics) GateRejected(ctx context.Context, gate string) {
	m.gateRejections.Add(ctx, 1, metric.WithAttributes(attribute.String("gate", gate)))
}

// BackendFailed records a failed external call.
func (m *Metrics) BackendFailed(ctx context.Context, backend string) {
	m.backendFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("backend", backend)))
}
