package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	motorsapi "github.com/kilianp07/autopi/api/motors"
	"github.com/kilianp07/autopi/config"
	"github.com/kilianp07/autopi/core/command"
	"github.com/kilianp07/autopi/core/control"
	corehw "github.com/kilianp07/autopi/core/hardware"
	corekeepalive "github.com/kilianp07/autopi/core/keepalive"
	coremetrics "github.com/kilianp07/autopi/core/metrics"
	coremon "github.com/kilianp07/autopi/core/monitoring"
	"github.com/kilianp07/autopi/core/motor"
	coremqtt "github.com/kilianp07/autopi/core/mqtt"
	"github.com/kilianp07/autopi/infra/hardware"
	"github.com/kilianp07/autopi/infra/keepalive"
	"github.com/kilianp07/autopi/infra/logger"
	"github.com/kilianp07/autopi/infra/metrics"
	"github.com/kilianp07/autopi/infra/monitoring"
	"github.com/kilianp07/autopi/infra/mqtt"
	"github.com/kilianp07/autopi/internal/eventbus"
)

// Service wires the motors, the command dispatcher, the control loop and
// the MQTT subscription together.
type Service struct {
	Motors     *motor.DualMotors
	Dispatcher *command.Dispatcher
	Loop       *control.Loop

	driver   corehw.Driver
	client   coremqtt.Publisher
	sink     coremetrics.MetricsSink
	bus      *eventbus.Bus
	log      logger.Logger
	promPort string
}

var connectMQTT = func(cfg mqtt.Config, topics []string, h coremqtt.Handler) (coremqtt.Publisher, error) {
	c, err := mqtt.NewPahoClient(cfg, topics, h)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// New creates a Service from the configuration. The motors are initialised
// before the MQTT subscription starts, so no command reaches an
// uninitialised driver.
func New(cfg *config.Config) (*Service, error) {
	if cfg.Logging.Level != "" {
		if err := logger.SetLevel(cfg.Logging.Level); err != nil {
			return nil, err
		}
	}
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	bus := eventbus.New()
	drv, err := corehw.NewDriver(cfg.Hardware)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("hardware driver %s: %w", cfg.Hardware.Type, err)
	}

	motors := motor.New(hardware.Observe(drv, bus), cfg.Motors.Left, cfg.Motors.Right,
		motor.WithLogger(logger.New("motors")))
	if err := motors.Init(); err != nil {
		_ = drv.Close()
		bus.Close()
		return nil, fmt.Errorf("init motors: %w", err)
	}

	var poller corekeepalive.Poller = corekeepalive.Always{}
	if !cfg.KeepAlive.Disabled {
		interval := time.Duration(cfg.KeepAlive.IntervalSeconds) * time.Second
		poller = corekeepalive.New(keepalive.NewStationCounter(cfg.KeepAlive), interval, time.Now(), bus, logger.New("keepalive"))
	} else {
		logg.Warnf("keep-alive disabled, motors keep running without a connected controller")
	}

	loop := control.New(motors, poller, cfg.Control.Period(), bus, logger.New("control"))
	disp := command.NewDispatcher(motors, cfg.MQTT.TopicPrefix, bus, logger.New("dispatcher"))

	client, err := connectMQTT(cfg.MQTT, disp.Topics(), disp.Handle)
	if err != nil {
		_ = drv.Close()
		bus.Close()
		return nil, fmt.Errorf("mqtt client: %w", err)
	}

	return &Service{
		Motors:     motors,
		Dispatcher: disp,
		Loop:       loop,
		driver:     drv,
		client:     client,
		sink:       sink,
		bus:        bus,
		log:        logg,
		promPort:   cfg.Metrics.PrometheusPort,
	}, nil
}

// Run drives the control loop until ctx is cancelled or the hardware fails.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	collected := metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.promPort != "" {
		go func() {
			routes := map[string]http.Handler{
				motorsapi.Prefix + "/": http.StripPrefix(motorsapi.Prefix, motorsapi.NewRouter(s.Motors)),
			}
			if err := metrics.StartPromServer(ctx, s.promPort, routes); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	err := s.Loop.Run(ctx)
	cancel()
	<-collected
	if err != nil {
		return fmt.Errorf("control loop: %w", err)
	}
	return nil
}

// Close stops listening for commands, brings both motors to a halt and
// releases the hardware.
func (s *Service) Close() error {
	if s.client != nil {
		s.client.Disconnect()
	}
	var errs []error
	s.Motors.Stop()
	if err := s.Motors.Update(time.Now()); err != nil {
		errs = append(errs, fmt.Errorf("stop motors: %w", err))
	}
	if err := s.driver.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close driver: %w", err))
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	if n := s.bus.Dropped(); n > 0 {
		s.log.Warnf("%d events dropped by slow subscribers", n)
	}
	s.bus.Close()
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}
