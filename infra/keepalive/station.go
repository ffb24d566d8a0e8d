package keepalive

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mdlayher/wifi"
)

// Config selects the wireless interface whose stations are counted.
type Config struct {
	Disabled        bool   `json:"disabled"`
	Interface       string `json:"interface"`
	IntervalSeconds int    `json:"interval_seconds"`
}

// SetDefaults applies wlan0 and a 2s interval.
func (c *Config) SetDefaults() {
	if c.Interface == "" {
		c.Interface = "wlan0"
	}
	if c.IntervalSeconds <= 0 {
		c.IntervalSeconds = 2
	}
}

// stationSource is the part of the nl80211 client used to list stations.
type stationSource interface {
	Interfaces() ([]*wifi.Interface, error)
	StationInfo(ifi *wifi.Interface) ([]*wifi.StationInfo, error)
	Close() error
}

var openWifi = func() (stationSource, error) {
	c, err := wifi.New()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// StationCounter counts the clients associated with the access point run
// on this machine, read over nl80211.
type StationCounter struct {
	iface string
}

// NewStationCounter builds a counter from cfg.
func NewStationCounter(cfg Config) *StationCounter {
	cfg.SetDefaults()
	return &StationCounter{iface: cfg.Interface}
}

type countResult struct {
	n   int
	err error
}

// ConnectedPeers returns the number of stations associated with the
// interface. The netlink calls do not take a context, so ctx only bounds
// how long the caller waits.
func (s *StationCounter) ConnectedPeers(ctx context.Context) (int, error) {
	res := make(chan countResult, 1)
	go func() {
		n, err := s.count()
		res <- countResult{n, err}
	}()
	select {
	case r := <-res:
		return r.n, r.err
	case <-ctx.Done():
		return 0, fmt.Errorf("station info on %s: %w", s.iface, ctx.Err())
	}
}

func (s *StationCounter) count() (int, error) {
	c, err := openWifi()
	if err != nil {
		return 0, fmt.Errorf("open nl80211: %w", err)
	}
	defer c.Close() //nolint:errcheck

	ifis, err := c.Interfaces()
	if err != nil {
		return 0, fmt.Errorf("list wifi interfaces: %w", err)
	}
	for _, ifi := range ifis {
		if ifi.Name != s.iface {
			continue
		}
		stations, err := c.StationInfo(ifi)
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		if err != nil {
			return 0, fmt.Errorf("station info on %s: %w", s.iface, err)
		}
		return len(stations), nil
	}
	return 0, fmt.Errorf("wifi interface %s not found", s.iface)
}
