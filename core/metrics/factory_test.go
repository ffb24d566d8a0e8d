package metrics_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	metrics "github.com/kilianp07/autopi/core/metrics"
	_ "github.com/kilianp07/autopi/infra/metrics"
)

type motorCounter struct{ n int }

func (m *motorCounter) RecordMotorState(metrics.MotorStateEvent) error { m.n++; return nil }

func init() {
	_ = metrics.RegisterMetricsSink("counter", func(map[string]any) (metrics.MetricsSink, error) {
		return &motorCounter{}, nil
	})
	_ = metrics.RegisterExclusiveMetricsSink("counter-once", func(map[string]any) (metrics.MetricsSink, error) {
		return &motorCounter{}, nil
	})
}

func decodeYAML(t *testing.T, data string) metrics.Config {
	t.Helper()
	var cfg metrics.Config
	require.NoError(t, yaml.Unmarshal([]byte(data), &cfg))
	return cfg
}

func TestNewMetricsSink_Combines(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)

	cfg := decodeYAML(t, "sinks:\n  - type: nop\n  - type: nop\n")
	s, err = metrics.NewMetricsSink(cfg.Sinks)
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s, "nop entries are dropped")

	cfg = decodeYAML(t, "sinks:\n  - type: nop\n  - type: counter\n")
	s, err = metrics.NewMetricsSink(cfg.Sinks)
	require.NoError(t, err)
	assert.IsType(t, &motorCounter{}, s)

	cfg = decodeYAML(t, "sinks:\n  - type: counter\n  - type: counter\n")
	s, err = metrics.NewMetricsSink(cfg.Sinks)
	require.NoError(t, err)
	multi, ok := s.(*metrics.MultiSink)
	require.True(t, ok, "got %T", s)
	require.Len(t, multi.Sinks, 2)
	require.NoError(t, multi.RecordMotorState(metrics.MotorStateEvent{}))
	assert.Equal(t, 1, multi.Sinks[0].(*motorCounter).n)
	assert.Equal(t, 1, multi.Sinks[1].(*motorCounter).n)
}

func TestNewMetricsSink_Errors(t *testing.T) {
	var cfg metrics.Config
	require.NoError(t, json.Unmarshal([]byte(`{"sinks":[{"type":"nop"},{"type":"missing"}]}`), &cfg))
	_, err := metrics.NewMetricsSink(cfg.Sinks)
	assert.ErrorContains(t, err, "metrics sink 1")

	cfg = decodeYAML(t, "sinks:\n  - type: counter-once\n  - type: nop\n  - type: counter-once\n")
	_, err = metrics.NewMetricsSink(cfg.Sinks)
	assert.ErrorContains(t, err, "counter-once already configured as sink 0")

	cfg = decodeYAML(t, "sinks:\n  - type: prometheus\n  - type: prometheus\n")
	_, err = metrics.NewMetricsSink(cfg.Sinks)
	assert.ErrorContains(t, err, "prometheus already configured")
}
