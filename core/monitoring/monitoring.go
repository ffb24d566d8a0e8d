package monitoring

import "time"

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// FatalFlushTimeout bounds how long CaptureFatal waits for delivery.
const FatalFlushTimeout = 2 * time.Second

// Init sets the global monitor implementation. A nil monitor restores the
// no-op default.
func Init(m Monitor) {
	if m == nil {
		m = NopMonitor{}
	}
	current = m
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	current.CaptureException(err, tags)
}

// CaptureFatal records an error that is about to stop the process and
// flushes it, since nothing else will run afterwards.
func CaptureFatal(err error, module string) {
	current.CaptureException(err, map[string]string{"module": module, "fatal": "true"})
	current.Flush(FatalFlushTimeout)
}

// Recover captures panics in goroutines.
func Recover() {
	current.Recover()
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	current.Flush(d)
}
