package metrics

import (
	"fmt"

	"github.com/kilianp07/autopi/core/factory"
)

var (
	sinkRegistry = factory.NewRegistry[MetricsSink]()
	// exclusive sink types own process-wide state and may be configured once.
	exclusive = map[string]bool{}
)

// RegisterMetricsSink adds a metrics sink factory identified by name.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// RegisterExclusiveMetricsSink registers a sink type that may appear at most
// once in the configuration, such as one writing to a global registry.
func RegisterExclusiveMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	if err := sinkRegistry.Register(name, f); err != nil {
		return err
	}
	exclusive[name] = true
	return nil
}

// NewMetricsSink builds the configured sinks. Nop entries are dropped; no
// sink yields NopSink and several are combined in a MultiSink.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	first := make(map[string]int)
	for i, c := range cfgs {
		if prev, ok := first[c.Type]; ok && exclusive[c.Type] {
			return nil, fmt.Errorf("metrics sink %d: %s already configured as sink %d", i, c.Type, prev)
		}
		first[c.Type] = i
	}

	var sinks []MetricsSink
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, fmt.Errorf("metrics sink %d: %w", i, err)
		}
		if _, nop := s.(NopSink); nop {
			continue
		}
		sinks = append(sinks, s)
	}
	switch len(sinks) {
	case 0:
		return NopSink{}, nil
	case 1:
		return sinks[0], nil
	}
	return NewMultiSink(sinks...), nil
}
