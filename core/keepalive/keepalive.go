package keepalive

import (
	"context"
	"sync"
	"time"

	"github.com/kilianp07/autopi/core/events"
	"github.com/kilianp07/autopi/core/logger"
	"github.com/kilianp07/autopi/internal/eventbus"
)

// DefaultInterval is the minimum spacing between two connectivity checks.
const DefaultInterval = 2 * time.Second

// Checker counts the peers currently connected to the vehicle.
type Checker interface {
	ConnectedPeers(ctx context.Context) (int, error)
}

// Poller is what the control loop asks once per tick.
type Poller interface {
	Poll(now time.Time) bool
}

// Always reports connected without checking anything.
type Always struct{}

func (Always) Poll(time.Time) bool { return true }

// KeepAlive rate limits a Checker and acts as a dead man's switch: it
// reports false only when a check succeeded and found zero peers. A failing
// check counts as connected. Checks run in the background so a slow check
// never holds up the caller; Poll returns the latest finished result.
type KeepAlive struct {
	checker  Checker
	interval time.Duration
	timeout  time.Duration
	log      logger.Logger
	bus      eventbus.EventBus
	launch   func(func())

	mu        sync.Mutex
	lastCheck time.Time
	checking  bool
	connected bool
}

// New returns a KeepAlive whose first check happens interval after start.
func New(checker Checker, interval time.Duration, start time.Time, bus eventbus.EventBus, log logger.Logger) *KeepAlive {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &KeepAlive{
		checker:   checker,
		interval:  interval,
		timeout:   interval,
		log:       logger.OrNop(log),
		bus:       bus,
		launch:    func(f func()) { go f() },
		lastCheck: start,
		connected: true,
	}
}

// Poll starts a check when more than the interval elapsed since the
// previous one and none is still running, then returns the latest known
// result.
func (k *KeepAlive) Poll(now time.Time) bool {
	k.mu.Lock()
	due := !k.checking && now.Sub(k.lastCheck) > k.interval
	if due {
		k.lastCheck = now
		k.checking = true
	}
	k.mu.Unlock()
	if due {
		k.launch(func() { k.check(now) })
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	return k.connected
}

func (k *KeepAlive) check(now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), k.timeout)
	defer cancel()
	peers, err := k.checker.ConnectedPeers(ctx)

	k.mu.Lock()
	defer k.mu.Unlock()
	k.checking = false
	switch {
	case err != nil:
		k.log.Warnf("connectivity check failed, assuming connected: %v", err)
		k.connected = true
	case peers == 0:
		if k.connected {
			k.log.Warnf("no peers connected")
		}
		k.connected = false
	default:
		if !k.connected {
			k.log.Infof("%d peer(s) connected again", peers)
		}
		k.connected = true
	}
	if k.bus != nil {
		k.bus.Publish(events.KeepAliveEvent{Peers: peers, Err: err, Connected: k.connected, Time: now})
	}
}
