package metrics

import (
	"github.com/kilianp07/autopi/core/factory"
	coremetrics "github.com/kilianp07/autopi/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	// The HTTP endpoint is configured by metrics.prometheus_port, not by the
	// sink. Collectors go to the default registerer, hence a single instance.
	_ = coremetrics.RegisterExclusiveMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		s, err := NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
		if err != nil {
			return nil, err
		}
		return s, nil
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			URL     string `json:"url"`
			Token   string `json:"token"`
			Org     string `json:"org"`
			Bucket  string `json:"bucket"`
			Vehicle string `json:"vehicle"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Vehicle == "" {
			c.Vehicle = "car"
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket, c.Vehicle), nil
	})
}
