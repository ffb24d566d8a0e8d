// Package metrics defines the recorder interfaces used to observe the
// controller. A MetricsSink records motor state; sinks may also implement
// CommandRecorder, KeepAliveRecorder and HardwareWriteRecorder.
// NewMetricsSink builds the configured sinks through the registry and wraps
// them in a MultiSink when there is more than one.
package metrics
