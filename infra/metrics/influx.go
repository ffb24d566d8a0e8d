package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/autopi/core/metrics"
	"github.com/kilianp07/autopi/core/motor"
	"github.com/kilianp07/autopi/infra/logger"
)

// InfluxSink writes motor state and commands to InfluxDB using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	vehicle  string
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
// vehicle is stored as a tag on every point.
func NewInfluxSink(url, token, org, bucket, vehicle string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		vehicle:  vehicle,
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket, vehicle string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket, vehicle)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordMotorState writes one motor_state point per motor.
func (s *InfluxSink) RecordMotorState(ev coremetrics.MotorStateEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, m := range []motor.State{ev.Snapshot.Left, ev.Snapshot.Right} {
		p := write.NewPointWithMeasurement("motor_state").
			AddTag("vehicle", s.vehicle).
			AddTag("motor", m.Name).
			AddField("power", m.Power).
			AddField("frequency", m.Frequency).
			AddField("direction", m.Direction.String()).
			AddField("turning", ev.Snapshot.Turning).
			SetTime(ev.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordCommand writes a command_received point.
func (s *InfluxSink) RecordCommand(rec coremetrics.CommandRecord) error {
	if rec.Ignored {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("command_received").
		AddTag("vehicle", s.vehicle).
		AddTag("command", rec.Command).
		AddField("value", rec.Value).
		AddField("malformed", rec.Malformed).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordKeepAlive writes a keepalive point.
func (s *InfluxSink) RecordKeepAlive(rec coremetrics.KeepAliveRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("keepalive").
		AddTag("vehicle", s.vehicle).
		AddField("connected", rec.Connected).
		AddField("peers", rec.Peers).
		AddField("check_failed", rec.CheckFailed).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }
