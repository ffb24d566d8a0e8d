package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/autopi/core/metrics"
	"github.com/kilianp07/autopi/core/motor"
)

type bodyRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (b *bodyRecorder) handler(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.bodies = append(b.bodies, strings.TrimSpace(string(data)))
	b.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (b *bodyRecorder) all() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.bodies...)
}

func TestInfluxSink_RecordMotorState(t *testing.T) {
	rec := &bodyRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket", "car1")
	defer sink.Close()
	now := time.Now()
	ev := coremetrics.MotorStateEvent{
		Snapshot: motor.Snapshot{
			Left:    motor.State{Name: "left", Direction: motor.Forward, Power: 78, Frequency: 2000},
			Right:   motor.State{Name: "right", Direction: motor.Backward, Power: 178, Frequency: 2000, Reversing: true},
			Turning: true,
		},
		Time: now,
	}
	if err := sink.RecordMotorState(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}

	var expected []string
	for _, m := range []motor.State{ev.Snapshot.Left, ev.Snapshot.Right} {
		p := write.NewPointWithMeasurement("motor_state").
			AddTag("vehicle", "car1").
			AddTag("motor", m.Name).
			AddField("power", m.Power).
			AddField("frequency", m.Frequency).
			AddField("direction", m.Direction.String()).
			AddField("turning", true).
			SetTime(now)
		expected = append(expected, strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond)))
	}
	got := rec.all()
	if len(got) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("write %d: got %s want %s", i, got[i], expected[i])
		}
	}
}

func TestInfluxSink_RecordCommand(t *testing.T) {
	rec := &bodyRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket", "car1")
	defer sink.Close()
	now := time.Now()
	if err := sink.RecordCommand(coremetrics.CommandRecord{Topic: "/car/direction/left", Command: "left", Value: 50, Time: now}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if err := sink.RecordCommand(coremetrics.CommandRecord{Topic: "/car/horn", Ignored: true, Time: now}); err != nil {
		t.Fatalf("record error: %v", err)
	}

	p := write.NewPointWithMeasurement("command_received").
		AddTag("vehicle", "car1").
		AddTag("command", "left").
		AddField("value", 50).
		AddField("malformed", false).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	got := rec.all()
	if len(got) != 1 {
		t.Fatalf("ignored commands must not be written, got %d writes", len(got))
	}
	if got[0] != expected {
		t.Errorf("unexpected body: %s", got[0])
	}
}

func TestInfluxSink_RecordKeepAlive(t *testing.T) {
	rec := &bodyRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket", "car1")
	defer sink.Close()
	now := time.Now()
	if err := sink.RecordKeepAlive(coremetrics.KeepAliveRecord{Connected: true, Peers: 2, Time: now}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	got := rec.all()
	if len(got) != 1 || !strings.HasPrefix(got[0], "keepalive,vehicle=car1 ") {
		t.Fatalf("unexpected writes: %v", got)
	}
	if !strings.Contains(got[0], "peers=2i") || !strings.Contains(got[0], "connected=true") {
		t.Errorf("unexpected fields: %s", got[0])
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket", "car1")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
