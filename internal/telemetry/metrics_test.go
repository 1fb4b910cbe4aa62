package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type recordingMeter struct {
	noop.Meter
	mu     sync.Mutex
	counts map[string]map[string]int64
}

type recordingCounter struct {
	noop.Int64Counter
	name  string
	meter *recordingMeter
}

func (m *recordingMeter) Int64Counter(name string, _ ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return &recordingCounter{name: name, meter: m}, nil
}

func (c *recordingCounter) Add(_ context.Context, incr int64, opts ...metric.AddOption) {
	cfg := metric.NewAddConfig(opts)
	key := ""
	for _, kv := range cfg.Attributes().ToSlice() {
		key += string(kv.Key) + "=" + kv.Value.Emit()
	}
	c.meter.mu.Lock()
	defer c.meter.mu.Unlock()
	if c.meter.counts[c.name] == nil {
		c.meter.counts[c.name] = map[string]int64{}
	}
	c.meter.counts[c.name][key] += incr
}

func TestMetrics_Counters(t *testing.T) {
	meter := &recordingMeter{counts: map[string]map[string]int64{}}
	m := NewMetrics(meter)
	ctx := context.Background()

	m.Step(ctx, "producer")
	m.Step(ctx, "producer")
	m.Step(ctx, "writer")
	m.Action(ctx, "delegate")
	m.GateRejected(ctx, "script")
	m.BackendFailed(ctx, "synthesis")

	assert.Equal(t, int64(2), meter.counts["scriptroom.engine.steps"]["role=producer"])
	assert.Equal(t, int64(1), meter.counts["scriptroom.engine.steps"]["role=writer"])
	assert.Equal(t, int64(1), meter.counts["scriptroom.engine.actions"]["action=delegate"])
	assert.Equal(t, int64(1), meter.counts["scriptroom.engine.gate_rejections"]["gate=script"])
	assert.Equal(t, int64(1), meter.counts["scriptroom.engine.backend_failures"]["backend=synthesis"])
}

func TestNoop(t *testing.T) {
	m := Noop()
	assert.NotPanics(t, func() {
		m.Step(context.Background(), "producer")
		m.GateRejected(context.Background(), "audio")
	})
}
