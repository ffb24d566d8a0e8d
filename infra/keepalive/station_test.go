package keepalive

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/mdlayher/wifi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStations struct {
	ifaces   []*wifi.Interface
	stations map[string][]*wifi.StationInfo
	infoErr  error
	block    chan struct{}
	closed   bool
}

func (f *fakeStations) Interfaces() ([]*wifi.Interface, error) {
	if f.block != nil {
		<-f.block
	}
	return f.ifaces, nil
}

func (f *fakeStations) StationInfo(ifi *wifi.Interface) ([]*wifi.StationInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return f.stations[ifi.Name], nil
}

func (f *fakeStations) Close() error { f.closed = true; return nil }

func withFakeWifi(t *testing.T, f *fakeStations, openErr error) {
	t.Helper()
	prev := openWifi
	openWifi = func() (stationSource, error) {
		if openErr != nil {
			return nil, openErr
		}
		return f, nil
	}
	t.Cleanup(func() { openWifi = prev })
}

func apWithTwoStations() *fakeStations {
	return &fakeStations{
		ifaces: []*wifi.Interface{{Name: "eth0"}, {Name: "wlan0", Type: wifi.InterfaceTypeAP}},
		stations: map[string][]*wifi.StationInfo{
			"wlan0": {{Signal: -51}, {Signal: -63}},
		},
	}
}

func TestStationCounter_Counts(t *testing.T) {
	f := apWithTwoStations()
	withFakeWifi(t, f, nil)
	n, err := NewStationCounter(Config{}).ConnectedPeers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, f.closed)
}

func TestStationCounter_NoStations(t *testing.T) {
	f := apWithTwoStations()
	f.infoErr = os.ErrNotExist
	withFakeWifi(t, f, nil)
	n, err := NewStationCounter(Config{}).ConnectedPeers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStationCounter_Errors(t *testing.T) {
	withFakeWifi(t, apWithTwoStations(), nil)
	_, err := NewStationCounter(Config{Interface: "uap0"}).ConnectedPeers(context.Background())
	assert.ErrorContains(t, err, "uap0 not found")

	f := apWithTwoStations()
	f.infoErr = errors.New("operation not supported")
	withFakeWifi(t, f, nil)
	_, err = NewStationCounter(Config{}).ConnectedPeers(context.Background())
	assert.ErrorContains(t, err, "wlan0")

	withFakeWifi(t, nil, errors.New("nl80211 not found"))
	_, err = NewStationCounter(Config{}).ConnectedPeers(context.Background())
	assert.ErrorContains(t, err, "nl80211 not found")
}

func TestStationCounter_ContextBoundsWait(t *testing.T) {
	f := apWithTwoStations()
	f.block = make(chan struct{})
	defer close(f.block)
	withFakeWifi(t, f, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewStationCounter(Config{}).ConnectedPeers(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, Config{Interface: "wlan0", IntervalSeconds: 2}, c)
}
