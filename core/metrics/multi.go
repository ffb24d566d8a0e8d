package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordMotorState forwards the state to all sinks, returning the first error encountered.
func (m *MultiSink) RecordMotorState(ev MotorStateEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordMotorState(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordCommand forwards command records to sinks that support them.
func (m *MultiSink) RecordCommand(rec CommandRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(CommandRecorder); ok {
			if err := r.RecordCommand(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordKeepAlive forwards keep-alive records to sinks that support them.
func (m *MultiSink) RecordKeepAlive(rec KeepAliveRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(KeepAliveRecorder); ok {
			if err := r.RecordKeepAlive(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordHardwareWrite forwards hardware writes to sinks that support them.
func (m *MultiSink) RecordHardwareWrite(rec HardwareWriteRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(HardwareWriteRecorder); ok {
			if err := r.RecordHardwareWrite(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
