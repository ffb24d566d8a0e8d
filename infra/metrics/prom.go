package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/autopi/core/metrics"
	"github.com/kilianp07/autopi/core/motor"
)

// PromSink exposes motor state and controller activity as Prometheus metrics.
type PromSink struct {
	power     *prometheus.GaugeVec
	frequency *prometheus.GaugeVec
	direction *prometheus.GaugeVec
	turning   prometheus.Gauge
	commands  *prometheus.CounterVec
	writes    *prometheus.CounterVec
	connected prometheus.Gauge
	peers     prometheus.Gauge
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		power: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "motor_power",
			Help: "PWM duty cycle of the motor (0-255)",
		}, []string{"motor"}),
		frequency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "motor_frequency_hertz",
			Help: "PWM carrier frequency of the motor",
		}, []string{"motor"}),
		direction: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "motor_reversing",
			Help: "1 while the motor runs backwards",
		}, []string{"motor"}),
		turning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "motor_turning",
			Help: "1 while a turn bias is applied",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "car_commands_total",
			Help: "Messages received on command topics",
		}, []string{"command", "result"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hardware_writes_total",
			Help: "GPIO/PWM writes issued to the hardware driver",
		}, []string{"kind", "failed"}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "keepalive_connected",
			Help: "1 when the last connectivity check found peers",
		}),
		peers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "keepalive_peers",
			Help: "Peers counted by the last successful connectivity check",
		}),
	}
	var err error
	if s.power, err = register(reg, s.power); err != nil {
		return nil, err
	}
	if s.frequency, err = register(reg, s.frequency); err != nil {
		return nil, err
	}
	if s.direction, err = register(reg, s.direction); err != nil {
		return nil, err
	}
	if s.turning, err = register(reg, s.turning); err != nil {
		return nil, err
	}
	if s.commands, err = register(reg, s.commands); err != nil {
		return nil, err
	}
	if s.writes, err = register(reg, s.writes); err != nil {
		return nil, err
	}
	if s.connected, err = register(reg, s.connected); err != nil {
		return nil, err
	}
	if s.peers, err = register(reg, s.peers); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when c was registered
// before, so several sinks can share the default registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordMotorState sets the per-motor gauges.
func (s *PromSink) RecordMotorState(ev coremetrics.MotorStateEvent) error {
	for _, m := range []motor.State{ev.Snapshot.Left, ev.Snapshot.Right} {
		s.power.WithLabelValues(m.Name).Set(float64(m.Power))
		s.frequency.WithLabelValues(m.Name).Set(float64(m.Frequency))
		s.direction.WithLabelValues(m.Name).Set(boolToFloat(m.Direction == motor.Backward))
	}
	s.turning.Set(boolToFloat(ev.Snapshot.Turning))
	return nil
}

// RecordCommand counts commands by outcome.
func (s *PromSink) RecordCommand(rec coremetrics.CommandRecord) error {
	result := "applied"
	name := rec.Command
	switch {
	case rec.Ignored:
		result, name = "ignored", "unknown"
	case rec.Malformed:
		result = "malformed"
	}
	s.commands.WithLabelValues(name, result).Inc()
	return nil
}

// RecordHardwareWrite counts driver calls.
func (s *PromSink) RecordHardwareWrite(rec coremetrics.HardwareWriteRecord) error {
	s.writes.WithLabelValues(rec.Kind, strconv.FormatBool(rec.Failed)).Inc()
	return nil
}

// RecordKeepAlive sets the connectivity gauges.
func (s *PromSink) RecordKeepAlive(rec coremetrics.KeepAliveRecord) error {
	s.connected.Set(boolToFloat(rec.Connected))
	if !rec.CheckFailed {
		s.peers.Set(float64(rec.Peers))
	}
	return nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
