package monitoring

import (
	"os"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/autopi/config"
	coremon "github.com/kilianp07/autopi/core/monitoring"
)

// NewSentryMonitor initializes Sentry using the provided configuration and
// returns a Monitor implementation. An empty DSN yields a NopMonitor.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	serverName := cfg.ServerName
	if serverName == "" {
		serverName, _ = os.Hostname()
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate,
		Release:          cfg.Release,
		ServerName:       serverName,
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, err
	}
	return &sentryMonitor{}, nil
}

type sentryMonitor struct{}

// CaptureException reports err. A "fatal" tag set to "true" raises the
// event level so hardware failures that stop the car stand out.
func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("service", "autopi")
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		if tags["fatal"] == "true" {
			scope.SetLevel(sentry.LevelFatal)
		}
		sentry.CaptureException(err)
	})
}

func (s *sentryMonitor) Recover() {
	if r := recover(); r != nil {
		sentry.CurrentHub().Recover(r)
		sentry.Flush(2 * time.Second)
		panic(r)
	}
}

func (s *sentryMonitor) Flush(timeout time.Duration) { sentry.Flush(timeout) }
